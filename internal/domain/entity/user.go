package entity

import "strings"

type Role string

const (
	RoleArtisan   Role = "artisan"
	RoleVolunteer Role = "volunteer"
	RoleCustomer  Role = "customer"
)

const GuestIDPrefix = "guest_"

// User is stored once in the users collection. Artisan and volunteer fields
// are only populated for their role.
type User struct {
	ID              string `json:"id" firestore:"id"`
	Name            string `json:"name" firestore:"name"`
	Email           string `json:"email,omitempty" firestore:"email,omitempty"`
	Avatar          string `json:"avatar" firestore:"avatar"`
	Role            Role   `json:"role" firestore:"role"`
	ProfileComplete bool   `json:"profileComplete" firestore:"profileComplete"`
	Bio             string `json:"bio,omitempty" firestore:"bio,omitempty"`
	Location        string `json:"location,omitempty" firestore:"location,omitempty"`

	// artisan
	Craft     string   `json:"craft,omitempty" firestore:"craft,omitempty"`
	Portfolio []string `json:"portfolio,omitempty" firestore:"portfolio,omitempty"`

	// volunteer
	Skills            []string           `json:"skills,omitempty" firestore:"skills,omitempty"`
	ProjectsCompleted int                `json:"projectsCompleted,omitempty" firestore:"projectsCompleted,omitempty"`
	CompletedProjects []CompletedProject `json:"completedProjects,omitempty" firestore:"completedProjects,omitempty"`
	Testimonials      []Testimonial      `json:"testimonials,omitempty" firestore:"testimonials,omitempty"`
}

func (u *User) SetID(id string) { u.ID = id }

func (u *User) IsGuest() bool {
	return u != nil && strings.HasPrefix(u.ID, GuestIDPrefix)
}

func (u *User) HasCompletedProject(id string) bool {
	for _, cp := range u.CompletedProjects {
		if cp.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so view-model readers never share slices with
// the session state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Portfolio = append([]string(nil), u.Portfolio...)
	c.Skills = append([]string(nil), u.Skills...)
	c.CompletedProjects = append([]CompletedProject(nil), u.CompletedProjects...)
	c.Testimonials = append([]Testimonial(nil), u.Testimonials...)
	return &c
}

// CompletedProject is the certificate record appended to a volunteer. Its ID
// is the collaboration id it was issued for.
type CompletedProject struct {
	ID              string   `json:"id" firestore:"id"`
	ProjectName     string   `json:"projectName" firestore:"projectName"`
	ArtisanName     string   `json:"artisanName" firestore:"artisanName"`
	ArtisanAvatar   string   `json:"artisanAvatar" firestore:"artisanAvatar"`
	CertificateText string   `json:"certificateText" firestore:"certificateText"`
	Skills          []string `json:"skills" firestore:"skills"`
	IssuedDate      string   `json:"issuedDate" firestore:"issuedDate"`
}

type Testimonial struct {
	Quote         string `json:"quote" firestore:"quote"`
	ArtisanName   string `json:"artisanName" firestore:"artisanName"`
	ArtisanAvatar string `json:"artisanAvatar" firestore:"artisanAvatar"`
}

// Identity is what the identity provider knows about a signed-in account.
type Identity struct {
	UID          string `json:"uid"`
	Email        string `json:"email,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	IDToken      string `json:"idToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}
