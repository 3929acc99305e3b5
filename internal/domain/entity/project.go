package entity

type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "Open"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"
)

func (s ProjectStatus) rank() int {
	switch s {
	case ProjectOpen:
		return 0
	case ProjectInProgress:
		return 1
	case ProjectCompleted:
		return 2
	}
	return -1
}

// CanMoveTo reports whether a project may go from s to next. Status only
// moves forward.
func (s ProjectStatus) CanMoveTo(next ProjectStatus) bool {
	return s.rank() >= 0 && next.rank() > s.rank()
}

type Project struct {
	ID           string        `json:"id" firestore:"id"`
	Title        string        `json:"title" firestore:"title"`
	Description  string        `json:"description" firestore:"description"`
	SkillsNeeded []string      `json:"skillsNeeded" firestore:"skillsNeeded"`
	PostedBy     string        `json:"postedBy" firestore:"postedBy"`
	Status       ProjectStatus `json:"status" firestore:"status"`
}

func (p *Project) SetID(id string) { p.ID = id }

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationDeclined ApplicationStatus = "declined"
)

type ProjectApplication struct {
	ID              string            `json:"id" firestore:"id"`
	ProjectID       string            `json:"projectId" firestore:"projectId"`
	VolunteerID     string            `json:"volunteerId" firestore:"volunteerId"`
	ArtisanID       string            `json:"artisanId" firestore:"artisanId"`
	Status          ApplicationStatus `json:"status" firestore:"status"`
	ApplicationDate string            `json:"applicationDate" firestore:"applicationDate"`
}

func (a *ProjectApplication) SetID(id string) { a.ID = id }

type CollaborationStatus string

const (
	CollaborationInProgress CollaborationStatus = "in-progress"
	CollaborationCompleted  CollaborationStatus = "completed"
)

type Collaboration struct {
	ID          string              `json:"id" firestore:"id"`
	ProjectID   string              `json:"projectId" firestore:"projectId"`
	VolunteerID string              `json:"volunteerId" firestore:"volunteerId"`
	ArtisanID   string              `json:"artisanId" firestore:"artisanId"`
	StartDate   string              `json:"startDate" firestore:"startDate"`
	EndDate     string              `json:"endDate,omitempty" firestore:"endDate,omitempty"`
	Status      CollaborationStatus `json:"status" firestore:"status"`
	Feedback    string              `json:"feedback,omitempty" firestore:"feedback,omitempty"`
	Rating      int                 `json:"rating,omitempty" firestore:"rating,omitempty"`
}

func (c *Collaboration) SetID(id string) { c.ID = id }
