package usecase

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	apperrors "artisanx/pkg/errors"
)

var (
	artisan    = entity.User{ID: "a1", Name: "Meera Joshi", Avatar: "meera.png", Role: entity.RoleArtisan}
	volunteerA = entity.User{ID: "v1", Name: "Priya", Role: entity.RoleVolunteer}
	volunteerB = entity.User{ID: "v2", Name: "Rohan", Role: entity.RoleVolunteer}
	volunteerC = entity.User{ID: "v3", Name: "Ananya", Role: entity.RoleVolunteer}
)

func setupProject(t *testing.T, h *harness) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []entity.User{artisan, volunteerA, volunteerB, volunteerC} {
		h.putUser(ctx, u)
	}
	h.putProject(ctx, entity.Project{ID: "p1", Title: "Catalogue Shoot", PostedBy: artisan.Name, Status: entity.ProjectOpen, SkillsNeeded: []string{"Photography"}})
}

func loadApps(t *testing.T, h *harness, projectID string) map[string]entity.ProjectApplication {
	t.Helper()
	docs, err := h.store.Find(context.Background(), repository.NewQuery(repository.CollectionProjectApplications).
		Where("projectId", repository.OpEqual, projectID))
	require.NoError(t, err)
	apps, _ := repository.DecodeAll[entity.ProjectApplication](docs)
	out := map[string]entity.ProjectApplication{}
	for _, a := range apps {
		out[a.VolunteerID] = a
	}
	return out
}

func TestApplyForProject(t *testing.T) {
	h := newHarness()
	setupProject(t, h)
	uc := h.deps.Collaboration
	sink := &recordingSink{}
	ctx := context.Background()

	app, err := uc.ApplyForProject(ctx, &volunteerA, "p1", sink)
	require.NoError(t, err)
	assert.Equal(t, artisan.ID, app.ArtisanID)
	assert.Equal(t, entity.ApplicationPending, app.Status)
	assert.Equal(t, []string{"Application sent for \"Catalogue Shoot\"!"}, sink.messages())

	_, err = uc.ApplyForProject(ctx, &volunteerA, "p1", sink)
	assert.True(t, apperrors.Is(err, "CONFLICT"))

	_, err = uc.ApplyForProject(ctx, &artisan, "p1", sink)
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))

	_, err = uc.ApplyForProject(ctx, &volunteerB, "missing", sink)
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))
}

func TestRespondToApplication_AcceptIsExclusive(t *testing.T) {
	h := newHarness()
	setupProject(t, h)
	uc := h.deps.Collaboration
	ctx := context.Background()

	var target *entity.ProjectApplication
	for _, v := range []entity.User{volunteerA, volunteerB, volunteerC} {
		v := v
		app, err := uc.ApplyForProject(ctx, &v, "p1", nil)
		require.NoError(t, err)
		if v.ID == volunteerB.ID {
			target = app
		}
	}

	sink := &recordingSink{}
	collab, err := uc.RespondToApplication(ctx, &artisan, target.ID, true, sink)
	require.NoError(t, err)
	require.NotNil(t, collab)
	assert.Equal(t, []string{"You have accepted Rohan's application."}, sink.messages())

	apps := loadApps(t, h, "p1")
	assert.Equal(t, entity.ApplicationAccepted, apps[volunteerB.ID].Status)
	assert.Equal(t, entity.ApplicationDeclined, apps[volunteerA.ID].Status)
	assert.Equal(t, entity.ApplicationDeclined, apps[volunteerC.ID].Status)

	project, err := loadEntity[entity.Project](ctx, h.store, repository.Doc(repository.CollectionProjects, "p1"), "project")
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectInProgress, project.Status)

	stored, err := loadEntity[entity.Collaboration](ctx, h.store, repository.Doc(repository.CollectionCollaborations, collab.ID), "collaboration")
	require.NoError(t, err)
	assert.Equal(t, volunteerB.ID, stored.VolunteerID)
	assert.Equal(t, entity.CollaborationInProgress, stored.Status)

	// a second acceptance is refused and writes nothing
	_, err = uc.RespondToApplication(ctx, &artisan, apps[volunteerA.ID].ID, true, nil)
	assert.True(t, apperrors.Is(err, "PRECONDITION_FAILED"))
	docs, err := h.store.Find(ctx, repository.NewQuery(repository.CollectionCollaborations))
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestRespondToApplication_MissingVolunteerWritesNothing(t *testing.T) {
	h := newHarness()
	setupProject(t, h)
	ctx := context.Background()

	ref, err := h.store.Add(ctx, repository.CollectionProjectApplications, entity.ProjectApplication{
		ProjectID: "p1", VolunteerID: "ghost", ArtisanID: artisan.ID, Status: entity.ApplicationPending,
	})
	require.NoError(t, err)

	_, err = h.deps.Collaboration.RespondToApplication(ctx, &artisan, ref.ID, true, nil)
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))

	project, err := loadEntity[entity.Project](ctx, h.store, repository.Doc(repository.CollectionProjects, "p1"), "project")
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectOpen, project.Status)
	collabs, err := h.store.Find(ctx, repository.NewQuery(repository.CollectionCollaborations))
	require.NoError(t, err)
	assert.Empty(t, collabs)
}

func TestRespondToApplication_Decline(t *testing.T) {
	h := newHarness()
	setupProject(t, h)
	uc := h.deps.Collaboration
	ctx := context.Background()

	app, err := uc.ApplyForProject(ctx, &volunteerA, "p1", nil)
	require.NoError(t, err)
	other, err := uc.ApplyForProject(ctx, &volunteerB, "p1", nil)
	require.NoError(t, err)

	sink := &recordingSink{}
	collab, err := uc.RespondToApplication(ctx, &artisan, app.ID, false, sink)
	require.NoError(t, err)
	assert.Nil(t, collab)
	assert.Equal(t, []string{"Application for Priya declined."}, sink.messages())

	apps := loadApps(t, h, "p1")
	assert.Equal(t, entity.ApplicationDeclined, apps[volunteerA.ID].Status)
	assert.Equal(t, entity.ApplicationPending, apps[other.VolunteerID].Status)
}

func startCollaboration(t *testing.T, h *harness) *entity.Collaboration {
	t.Helper()
	setupProject(t, h)
	ctx := context.Background()
	app, err := h.deps.Collaboration.ApplyForProject(ctx, &volunteerA, "p1", nil)
	require.NoError(t, err)
	collab, err := h.deps.Collaboration.RespondToApplication(ctx, &artisan, app.ID, true, nil)
	require.NoError(t, err)
	return collab
}

func TestEndCollaboration(t *testing.T) {
	h := newHarness()
	collab := startCollaboration(t, h)
	uc := h.deps.Collaboration
	ctx := context.Background()

	err := uc.EndCollaboration(ctx, &artisan, collab.ID, EndCollaborationInput{Feedback: "Wonderful photos", Rating: 9}, nil)
	assert.True(t, apperrors.Is(err, "BAD_REQUEST"))

	sink := &recordingSink{}
	require.NoError(t, uc.EndCollaboration(ctx, &artisan, collab.ID, EndCollaborationInput{Feedback: "Wonderful photos", Rating: 5}, sink))
	assert.Equal(t, []string{"Collaboration with Priya ended."}, sink.messages())

	stored, err := loadEntity[entity.Collaboration](ctx, h.store, repository.Doc(repository.CollectionCollaborations, collab.ID), "collaboration")
	require.NoError(t, err)
	assert.Equal(t, entity.CollaborationCompleted, stored.Status)
	assert.Equal(t, 5, stored.Rating)
	assert.NotEmpty(t, stored.EndDate)

	project, err := loadEntity[entity.Project](ctx, h.store, repository.Doc(repository.CollectionProjects, "p1"), "project")
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectCompleted, project.Status)

	volunteer, err := loadEntity[entity.User](ctx, h.store, repository.Doc(repository.CollectionUsers, volunteerA.ID), "user")
	require.NoError(t, err)
	require.Len(t, volunteer.Testimonials, 1)
	assert.Equal(t, entity.Testimonial{Quote: "Wonderful photos", ArtisanName: artisan.Name, ArtisanAvatar: artisan.Avatar}, volunteer.Testimonials[0])

	err = uc.EndCollaboration(ctx, &artisan, collab.ID, EndCollaborationInput{Rating: 4}, nil)
	assert.True(t, apperrors.Is(err, "PRECONDITION_FAILED"))
}

func TestEndCollaboration_NoFeedbackNoTestimonial(t *testing.T) {
	h := newHarness()
	collab := startCollaboration(t, h)
	ctx := context.Background()

	require.NoError(t, h.deps.Collaboration.EndCollaboration(ctx, &artisan, collab.ID, EndCollaborationInput{Feedback: "  ", Rating: 3}, nil))

	volunteer, err := loadEntity[entity.User](ctx, h.store, repository.Doc(repository.CollectionUsers, volunteerA.ID), "user")
	require.NoError(t, err)
	assert.Empty(t, volunteer.Testimonials)
}

func TestIssueCertificate_Idempotent(t *testing.T) {
	h := newHarness()
	collab := startCollaboration(t, h)
	uc := h.deps.Collaboration
	ctx := context.Background()

	sink := &recordingSink{}
	record, err := uc.IssueCertificate(ctx, &artisan, collab.ID, "hi", sink)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, collab.ID, record.ID)
	assert.Equal(t, "In recognition of Priya", record.CertificateText)

	again, err := uc.IssueCertificate(ctx, &artisan, collab.ID, "hi", sink)
	require.NoError(t, err)
	assert.Nil(t, again)

	assert.Equal(t, []string{
		"Certificate issued to Priya!",
		"A certificate has already been issued for this project.",
	}, sink.messages())
	assert.Equal(t, 1, h.textGen.callCount(), "the generator is not called for a duplicate")

	req := h.textGen.calls[0]
	assert.Equal(t, certificateHours, req.DurationHours)
	assert.Equal(t, "hi", req.Locale)
	assert.Equal(t, []string{"Photography"}, req.Skills)

	volunteer, err := loadEntity[entity.User](ctx, h.store, repository.Doc(repository.CollectionUsers, volunteerA.ID), "user")
	require.NoError(t, err)
	assert.Len(t, volunteer.CompletedProjects, 1)
	assert.Equal(t, 1, volunteer.ProjectsCompleted)
}

func TestIssueCertificate_GeneratorFailure(t *testing.T) {
	h := newHarness()
	collab := startCollaboration(t, h)
	h.textGen.err = errors.New("model overloaded")
	ctx := context.Background()

	sink := &recordingSink{}
	_, err := h.deps.Collaboration.IssueCertificate(ctx, &artisan, collab.ID, "en", sink)
	assert.True(t, apperrors.Is(err, "GENERATION_FAILED"))
	assert.Equal(t, []string{"Failed to generate or issue certificate."}, sink.messages())

	volunteer, err := loadEntity[entity.User](ctx, h.store, repository.Doc(repository.CollectionUsers, volunteerA.ID), "user")
	require.NoError(t, err)
	assert.Empty(t, volunteer.CompletedProjects)
}

func TestIssueCertificate_MissingProject(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.putUser(ctx, artisan)
	h.putUser(ctx, volunteerA)
	ref, err := h.store.Add(ctx, repository.CollectionCollaborations, entity.Collaboration{
		ProjectID: "gone", VolunteerID: volunteerA.ID, ArtisanID: artisan.ID, Status: entity.CollaborationCompleted,
	})
	require.NoError(t, err)

	sink := &recordingSink{}
	_, err = h.deps.Collaboration.IssueCertificate(ctx, &artisan, ref.ID, "en", sink)
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))
	assert.Equal(t, []string{"Could not find volunteer or project details."}, sink.messages())
	assert.Zero(t, h.textGen.callCount())
}

func TestPostNewProject(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	project, err := h.deps.Collaboration.PostNewProject(ctx, &artisan, PostProjectInput{Title: "Tile Mural", SkillsNeeded: []string{"Painting"}})
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectOpen, project.Status)
	assert.Equal(t, artisan.Name, project.PostedBy)

	_, err = h.deps.Collaboration.PostNewProject(ctx, &volunteerA, PostProjectInput{Title: "x"})
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))
}
