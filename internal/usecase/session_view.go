package usecase

import (
	"artisanx/internal/domain/entity"
)

// ViewModel is the read-only snapshot of a session handed to clients.
type ViewModel struct {
	SessionID           string                      `json:"sessionId"`
	State               SessionState                `json:"state"`
	Degraded            bool                        `json:"degraded"`
	FirestoreError      string                      `json:"firestoreError,omitempty"`
	Locale              string                      `json:"locale"`
	CurrentUser         *entity.User                `json:"currentUser"`
	Products            []entity.Product            `json:"products"`
	Projects            []entity.Project            `json:"projects"`
	Artisans            []entity.User               `json:"artisans"`
	Volunteers          []entity.User               `json:"volunteers"`
	Certificates        []entity.Certificate        `json:"certificates"`
	BargainRequests     []entity.BargainRequest     `json:"bargainRequests"`
	ConnectionRequests  []entity.ConnectionRequest  `json:"connectionRequests"`
	ProjectApplications []entity.ProjectApplication `json:"projectApplications"`
	Collaborations      []entity.Collaboration      `json:"collaborations"`
	Conversations       []entity.Conversation       `json:"conversations"`
	Cart                []entity.CartItem           `json:"cart"`
	Favorites           []string                    `json:"favorites"`
	Notifications       []entity.Notification       `json:"notifications"`
}

func (s *Session) View() ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func cloneUsers(in []entity.User) []entity.User {
	out := make([]entity.User, len(in))
	for i := range in {
		out[i] = *in[i].Clone()
	}
	return out
}

func cloneCart(c entity.Cart) entity.Cart {
	return entity.Cart{
		Items:     append([]entity.CartItem(nil), c.Items...),
		Favorites: append([]string(nil), c.Favorites...),
	}
}

func (s *Session) viewLocked() ViewModel {
	cart := cloneCart(s.state.cart)
	return ViewModel{
		SessionID:           s.id,
		State:               s.machine.State(),
		Degraded:            s.latch.Tripped(),
		FirestoreError:      s.state.firestoreError,
		Locale:              s.locale,
		CurrentUser:         s.user.Clone(),
		Products:            append([]entity.Product(nil), s.state.products...),
		Projects:            append([]entity.Project(nil), s.state.projects...),
		Artisans:            cloneUsers(s.state.artisans),
		Volunteers:          cloneUsers(s.state.volunteers),
		Certificates:        append([]entity.Certificate(nil), s.state.certificates...),
		BargainRequests:     append([]entity.BargainRequest(nil), s.state.bargains...),
		ConnectionRequests:  append([]entity.ConnectionRequest(nil), s.state.connections...),
		ProjectApplications: append([]entity.ProjectApplication(nil), s.state.applications...),
		Collaborations:      append([]entity.Collaboration(nil), s.state.collaborations...),
		Conversations:       s.convs.view(),
		Cart:                cart.Items,
		Favorites:           cart.Favorites,
		Notifications:       s.notifier.List(),
	}
}
