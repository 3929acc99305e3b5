package usecase

import (
	"context"
	"fmt"
	"strings"

	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	"artisanx/internal/domain/service"
	"artisanx/pkg/errors"
	"artisanx/pkg/logger"
)

// certificateHours is the volunteering time printed on every certificate.
const certificateHours = 40

type CollaborationUseCase struct {
	store   repository.DocumentStore
	textGen service.CertificateTextGenerator
}

func NewCollaborationUseCase(store repository.DocumentStore, textGen service.CertificateTextGenerator) *CollaborationUseCase {
	return &CollaborationUseCase{
		store:   store,
		textGen: textGen,
	}
}

type PostProjectInput struct {
	Title        string
	Description  string
	SkillsNeeded []string
}

func (uc *CollaborationUseCase) PostNewProject(ctx context.Context, actor *entity.User, input PostProjectInput) (*entity.Project, error) {
	if err := requireRole(actor, entity.RoleArtisan); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.BadRequest("project title is required", nil)
	}

	project := entity.Project{
		Title:        input.Title,
		Description:  input.Description,
		SkillsNeeded: input.SkillsNeeded,
		PostedBy:     actor.Name,
		Status:       entity.ProjectOpen,
	}
	ref := uc.store.NewRef(repository.CollectionProjects)
	project.ID = ref.ID
	if err := uc.store.Set(ctx, ref, project, false); err != nil {
		logger.Error("PostNewProject Error: %v", err)
		return nil, err
	}
	return &project, nil
}

func (uc *CollaborationUseCase) ApplyForProject(ctx context.Context, actor *entity.User, projectID string, sink NotificationSink) (*entity.ProjectApplication, error) {
	if err := requireRole(actor, entity.RoleVolunteer); err != nil {
		return nil, err
	}

	project, err := loadEntity[entity.Project](ctx, uc.store, repository.Doc(repository.CollectionProjects, projectID), "project")
	if err != nil {
		return nil, err
	}
	if project.Status != entity.ProjectOpen {
		return nil, errors.PreconditionFailed("project is no longer open")
	}

	artisans, err := uc.store.Find(ctx, repository.NewQuery(repository.CollectionUsers).
		Where("role", repository.OpEqual, entity.RoleArtisan).
		Where("name", repository.OpEqual, project.PostedBy))
	if err != nil {
		return nil, err
	}
	if len(artisans) == 0 {
		return nil, errors.NotFound("artisan", nil)
	}
	artisanID := artisans[0].ID()

	existing, err := uc.store.Find(ctx, repository.NewQuery(repository.CollectionProjectApplications).
		Where("projectId", repository.OpEqual, projectID).
		Where("volunteerId", repository.OpEqual, actor.ID))
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, errors.Conflict("you have already applied for this project")
	}

	app := entity.ProjectApplication{
		ProjectID:       projectID,
		VolunteerID:     actor.ID,
		ArtisanID:       artisanID,
		Status:          entity.ApplicationPending,
		ApplicationDate: nowRFC3339(),
	}
	ref, err := uc.store.Add(ctx, repository.CollectionProjectApplications, app)
	if err != nil {
		logger.Error("ApplyForProject Error: %v", err)
		return nil, err
	}
	app.ID = ref.ID

	notify(sink, fmt.Sprintf("Application sent for \"%s\"!", project.Title), entity.NotificationSuccess, nil)
	return &app, nil
}

// RespondToApplication accepts or declines a pending application. Accepting
// creates the collaboration, moves the project to In Progress and declines
// every other pending application for the project in one transaction.
func (uc *CollaborationUseCase) RespondToApplication(ctx context.Context, actor *entity.User, applicationID string, accept bool, sink NotificationSink) (*entity.Collaboration, error) {
	if err := requireRole(actor, entity.RoleArtisan); err != nil {
		return nil, err
	}
	appRef := repository.Doc(repository.CollectionProjectApplications, applicationID)

	if !accept {
		app, err := loadEntity[entity.ProjectApplication](ctx, uc.store, appRef, "application")
		if err != nil {
			return nil, err
		}
		if app.ArtisanID != actor.ID {
			return nil, errors.Forbidden("this application was not sent to you", nil)
		}
		if app.Status != entity.ApplicationPending {
			return nil, errors.PreconditionFailed("application was already answered")
		}
		volunteer, err := loadEntity[entity.User](ctx, uc.store, repository.Doc(repository.CollectionUsers, app.VolunteerID), "volunteer")
		if err != nil {
			return nil, err
		}
		if err := uc.store.Update(ctx, appRef, []repository.Update{field("status", entity.ApplicationDeclined)}); err != nil {
			logger.Error("RespondToApplication Error: %v", err)
			return nil, err
		}
		notify(sink, fmt.Sprintf("Application for %s declined.", volunteer.Name), entity.NotificationInfo, nil)
		return nil, nil
	}

	collabRef := uc.store.NewRef(repository.CollectionCollaborations)
	var collab entity.Collaboration
	var volunteerName string

	err := uc.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Transaction) error {
		app, err := txLoad[entity.ProjectApplication](tx, appRef, "application")
		if err != nil {
			return err
		}
		if app.ArtisanID != actor.ID {
			return errors.Forbidden("this application was not sent to you", nil)
		}
		if app.Status != entity.ApplicationPending {
			return errors.PreconditionFailed("application was already answered")
		}

		projectRef := repository.Doc(repository.CollectionProjects, app.ProjectID)
		project, err := txLoad[entity.Project](tx, projectRef, "project")
		if err != nil {
			return err
		}
		if !project.Status.CanMoveTo(entity.ProjectInProgress) {
			return errors.PreconditionFailed(fmt.Sprintf("project is already %s", project.Status))
		}

		volunteer, err := txLoad[entity.User](tx, repository.Doc(repository.CollectionUsers, app.VolunteerID), "volunteer")
		if err != nil {
			return err
		}

		siblings, err := tx.Find(repository.NewQuery(repository.CollectionProjectApplications).
			Where("projectId", repository.OpEqual, app.ProjectID).
			Where("status", repository.OpEqual, entity.ApplicationPending))
		if err != nil {
			return err
		}

		collab = entity.Collaboration{
			ID:          collabRef.ID,
			ProjectID:   app.ProjectID,
			VolunteerID: app.VolunteerID,
			ArtisanID:   actor.ID,
			StartDate:   nowRFC3339(),
			Status:      entity.CollaborationInProgress,
		}
		volunteerName = volunteer.Name

		if err := tx.Update(appRef, []repository.Update{field("status", entity.ApplicationAccepted)}); err != nil {
			return err
		}
		if err := tx.Set(collabRef, collab); err != nil {
			return err
		}
		if err := tx.Update(projectRef, []repository.Update{field("status", entity.ProjectInProgress)}); err != nil {
			return err
		}
		for _, doc := range siblings {
			if doc.ID() == applicationID {
				continue
			}
			ref := repository.Doc(repository.CollectionProjectApplications, doc.ID())
			if err := tx.Update(ref, []repository.Update{field("status", entity.ApplicationDeclined)}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("RespondToApplication Error: %v", err)
		return nil, err
	}

	notify(sink, fmt.Sprintf("You have accepted %s's application.", volunteerName), entity.NotificationSuccess, nil)
	return &collab, nil
}

type EndCollaborationInput struct {
	Feedback string
	Rating   int
}

// EndCollaboration completes the collaboration and its project and, when
// there is feedback, appends it to the volunteer's testimonials.
func (uc *CollaborationUseCase) EndCollaboration(ctx context.Context, actor *entity.User, collaborationID string, input EndCollaborationInput, sink NotificationSink) error {
	if err := requireRole(actor, entity.RoleArtisan); err != nil {
		return err
	}
	if input.Rating < 1 || input.Rating > 5 {
		return errors.BadRequest("rating must be between 1 and 5", nil)
	}

	collabRef := repository.Doc(repository.CollectionCollaborations, collaborationID)
	var volunteerName string

	err := uc.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Transaction) error {
		collab, err := txLoad[entity.Collaboration](tx, collabRef, "collaboration")
		if err != nil {
			return err
		}
		if collab.ArtisanID != actor.ID {
			return errors.Forbidden("this collaboration is not yours", nil)
		}
		if collab.Status != entity.CollaborationInProgress {
			return errors.PreconditionFailed("collaboration has already ended")
		}

		projectRef := repository.Doc(repository.CollectionProjects, collab.ProjectID)
		project, err := txLoad[entity.Project](tx, projectRef, "project")
		if err != nil {
			return err
		}
		if !project.Status.CanMoveTo(entity.ProjectCompleted) {
			return errors.PreconditionFailed(fmt.Sprintf("project is already %s", project.Status))
		}

		volunteerRef := repository.Doc(repository.CollectionUsers, collab.VolunteerID)
		volunteer, err := txLoad[entity.User](tx, volunteerRef, "volunteer")
		if err != nil {
			return err
		}
		volunteerName = volunteer.Name

		if err := tx.Update(collabRef, []repository.Update{
			field("status", entity.CollaborationCompleted),
			field("endDate", nowRFC3339()),
			field("feedback", input.Feedback),
			field("rating", input.Rating),
		}); err != nil {
			return err
		}
		if err := tx.Update(projectRef, []repository.Update{field("status", entity.ProjectCompleted)}); err != nil {
			return err
		}

		if strings.TrimSpace(input.Feedback) == "" {
			return nil
		}
		testimonials := append(volunteer.Testimonials, entity.Testimonial{
			Quote:         input.Feedback,
			ArtisanName:   actor.Name,
			ArtisanAvatar: actor.Avatar,
		})
		return tx.Update(volunteerRef, []repository.Update{field("testimonials", testimonials)})
	})
	if err != nil {
		logger.Error("EndCollaboration Error: %v", err)
		return err
	}

	notify(sink, fmt.Sprintf("Collaboration with %s ended.", volunteerName), entity.NotificationSuccess, nil)
	return nil
}

// IssueCertificate appends a completed project, keyed by the collaboration
// id, to the volunteer. A second call for the same collaboration is a no-op
// that returns nil.
func (uc *CollaborationUseCase) IssueCertificate(ctx context.Context, actor *entity.User, collaborationID, locale string, sink NotificationSink) (*entity.CompletedProject, error) {
	if err := requireRole(actor, entity.RoleArtisan); err != nil {
		return nil, err
	}

	collab, err := loadEntity[entity.Collaboration](ctx, uc.store, repository.Doc(repository.CollectionCollaborations, collaborationID), "collaboration")
	if err != nil {
		return nil, err
	}
	if collab.ArtisanID != actor.ID {
		return nil, errors.Forbidden("this collaboration is not yours", nil)
	}

	volunteerRef := repository.Doc(repository.CollectionUsers, collab.VolunteerID)
	volunteer, verr := loadEntity[entity.User](ctx, uc.store, volunteerRef, "volunteer")
	project, perr := loadEntity[entity.Project](ctx, uc.store, repository.Doc(repository.CollectionProjects, collab.ProjectID), "project")
	if verr != nil || perr != nil {
		notify(sink, "Could not find volunteer or project details.", entity.NotificationError, nil)
		if verr != nil {
			return nil, verr
		}
		return nil, perr
	}

	if volunteer.HasCompletedProject(collab.ID) {
		notify(sink, "A certificate has already been issued for this project.", entity.NotificationInfo, nil)
		return nil, nil
	}

	text, err := uc.textGen.GenerateCertificateText(ctx, service.CertificateTextRequest{
		IssuerName:    actor.Name,
		RecipientName: volunteer.Name,
		ProjectTitle:  project.Title,
		DurationHours: certificateHours,
		Skills:        project.SkillsNeeded,
		Locale:        locale,
	})
	if err != nil {
		logger.Error("IssueCertificate Error: %v", err)
		notify(sink, "Failed to generate or issue certificate.", entity.NotificationError, nil)
		return nil, errors.GenerationFailed("certificate text generation failed", err)
	}

	record := entity.CompletedProject{
		ID:              collab.ID,
		ProjectName:     project.Title,
		ArtisanName:     actor.Name,
		ArtisanAvatar:   actor.Avatar,
		CertificateText: text,
		Skills:          project.SkillsNeeded,
		IssuedDate:      nowRFC3339(),
	}

	duplicate := false
	err = uc.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Transaction) error {
		duplicate = false
		current, err := txLoad[entity.User](tx, volunteerRef, "volunteer")
		if err != nil {
			return err
		}
		if current.HasCompletedProject(collab.ID) {
			duplicate = true
			return nil
		}
		return tx.Update(volunteerRef, []repository.Update{
			field("projectsCompleted", current.ProjectsCompleted+1),
			field("completedProjects", append(current.CompletedProjects, record)),
		})
	})
	if err != nil {
		logger.Error("IssueCertificate Error: %v", err)
		notify(sink, "Failed to generate or issue certificate.", entity.NotificationError, nil)
		return nil, err
	}
	if duplicate {
		notify(sink, "A certificate has already been issued for this project.", entity.NotificationInfo, nil)
		return nil, nil
	}

	notify(sink, fmt.Sprintf("Certificate issued to %s!", volunteer.Name), entity.NotificationSuccess, nil)
	return &record, nil
}
