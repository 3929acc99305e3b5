package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	"artisanx/pkg/errors"
	"artisanx/pkg/logger"
)

const switchedCustomerID = "customer_switched_1"

func (s *Session) beginAuth() error {
	if s.deps.Identity == nil {
		return errors.New("IDENTITY_UNAVAILABLE", "sign-in is not configured on this server", http.StatusServiceUnavailable, nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.Conflict("session is closed")
	}
	return s.machine.Transition(StateAuthenticating)
}

// finishAuth moves an authenticating session on to profile loading, or back
// to signed out when the identity provider refused.
func (s *Session) finishAuth(ident *entity.Identity, authErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.Conflict("session is closed")
	}

	if authErr != nil {
		if s.machine.State() == StateAuthenticating {
			_ = s.machine.Transition(StateSignedOut)
		}
		return authErr
	}

	if err := s.machine.Transition(StateProfileLoading); err != nil {
		return err
	}
	s.identity = ident
	s.watches.openDoc(DomainProfile, repository.Doc(repository.CollectionUsers, ident.UID), s.onProfile, s.onProfileError)
	return nil
}

func (s *Session) SignIn(ctx context.Context, email, password string) error {
	if err := s.beginAuth(); err != nil {
		return err
	}
	ident, err := s.deps.Identity.SignInWithPassword(ctx, email, password)
	return s.finishAuth(ident, err)
}

func (s *Session) SignInWithProvider(ctx context.Context, providerID, credential string) error {
	if err := s.beginAuth(); err != nil {
		return err
	}
	ident, err := s.deps.Identity.SignInWithProvider(ctx, providerID, credential)
	return s.finishAuth(ident, err)
}

// SignUp creates the account and signs in. The profile document is written
// later, when the user completes their profile.
func (s *Session) SignUp(ctx context.Context, name, email, password string) error {
	if err := s.beginAuth(); err != nil {
		return err
	}
	ident, err := s.deps.Identity.CreateIdentity(ctx, email, password)
	if err == nil && name != "" {
		if uerr := s.deps.Identity.UpdateDisplayName(ctx, ident.UID, name); uerr != nil {
			logger.Warn("SignUp: could not set display name for %s: %v", ident.UID, uerr)
		} else {
			ident.DisplayName = name
		}
	}
	return s.finishAuth(ident, err)
}

func (s *Session) onProfile(doc repository.Document) {
	var u *entity.User
	if doc.Exists() {
		decoded, err := repository.DecodeOne[entity.User](doc)
		if err != nil {
			logger.Error("Decode profile %s: %v", doc.ID(), err)
		} else {
			u = decoded
		}
	}
	s.setUser(u)
	if s.machine.State() == StateProfileLoading {
		_ = s.machine.Transition(StateReady)
	}
	s.publishViewLocked()
}

func (s *Session) onProfileError(err error) {
	logger.Error("Error listening to user profile: %v", err)
	s.watchFailed(DomainProfile, err)
	s.setUser(nil)
	if s.machine.State() == StateProfileLoading {
		_ = s.machine.Transition(StateReady)
	}
	s.publishViewLocked()
}

// ContinueAsGuest enters the guest branch with a local profile that has no
// stored counterpart.
func (s *Session) ContinueAsGuest() (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.Conflict("session is closed")
	}
	if err := s.machine.Transition(StateAuthenticating); err != nil {
		return nil, err
	}

	guest := &entity.User{Role: entity.RoleArtisan}
	if artisans := s.deps.Seed.Artisans; len(artisans) > 0 {
		guest = artisans[0].Clone()
	}
	guest.ID = fmt.Sprintf("%s%d", entity.GuestIDPrefix, time.Now().UnixMilli())
	guest.Name = "Guest User"
	guest.ProfileComplete = false

	if err := s.machine.Transition(StateGuest); err != nil {
		return nil, err
	}
	s.identity = nil
	s.setUser(guest)
	s.publishViewLocked()
	return guest.Clone(), nil
}

// SignOut tears down every identity-scoped watch and clears the cart. The
// identity provider is told last, outside the session lock.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	if s.machine.State() == StateSignedOut {
		s.mu.Unlock()
		return nil
	}
	uid := ""
	if s.identity != nil {
		uid = s.identity.UID
	}

	s.watches.close(DomainProfile)
	s.identity = nil
	s.setUser(nil)
	s.state.cart = entity.Cart{}
	err := s.machine.Transition(StateSignedOut)
	s.publishViewLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if uid != "" && s.deps.Identity != nil {
		if err := s.deps.Identity.SignOut(ctx, uid); err != nil {
			logger.Warn("SignOut: revoke tokens for %s: %v", uid, err)
		}
	}
	return nil
}

// SwitchRole swaps the current profile for a representative of another
// role without touching the session state. Debug builds only.
func (s *Session) SwitchRole(role entity.Role) (*entity.User, error) {
	if !s.deps.EnableRoleSwitch {
		return nil, errors.Forbidden("role switching is disabled", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, errors.Unauthorized("sign in first", nil)
	}

	pick := func(users []entity.User) *entity.User {
		for i := range users {
			if users[i].ID != s.user.ID {
				return users[i].Clone()
			}
		}
		if len(users) > 0 {
			return users[0].Clone()
		}
		return nil
	}

	var target *entity.User
	switch role {
	case entity.RoleArtisan:
		target = pick(s.state.artisans)
	case entity.RoleVolunteer:
		target = pick(s.state.volunteers)
	case entity.RoleCustomer:
		target = &entity.User{
			ID:     switchedCustomerID,
			Name:   s.user.Name,
			Avatar: s.user.Avatar,
			Role:   entity.RoleCustomer,
		}
	default:
		return nil, errors.BadRequest("unknown role "+string(role), nil)
	}
	if target == nil {
		return nil, errors.NotFound(string(role)+" profile", nil)
	}
	target.ProfileComplete = true

	s.setUser(target)
	s.publishViewLocked()
	return target.Clone(), nil
}

// ProfileInput holds the profile fields a user may edit. Empty fields are
// left unchanged.
type ProfileInput struct {
	Name      string
	Avatar    string
	Role      entity.Role
	Bio       string
	Location  string
	Craft     string
	Portfolio []string
	Skills    []string
}

func (in ProfileInput) fields() map[string]interface{} {
	out := map[string]interface{}{}
	put := func(key, value string) {
		if strings.TrimSpace(value) != "" {
			out[key] = value
		}
	}
	put("name", in.Name)
	put("avatar", in.Avatar)
	put("role", string(in.Role))
	put("bio", in.Bio)
	put("location", in.Location)
	put("craft", in.Craft)
	if in.Portfolio != nil {
		out["portfolio"] = in.Portfolio
	}
	if in.Skills != nil {
		out["skills"] = in.Skills
	}
	return out
}

func (in ProfileInput) applyTo(u *entity.User) {
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Avatar != "" {
		u.Avatar = in.Avatar
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	if in.Bio != "" {
		u.Bio = in.Bio
	}
	if in.Location != "" {
		u.Location = in.Location
	}
	if in.Craft != "" {
		u.Craft = in.Craft
	}
	if in.Portfolio != nil {
		u.Portfolio = in.Portfolio
	}
	if in.Skills != nil {
		u.Skills = in.Skills
	}
	u.ProfileComplete = true
}

// UpdateProfile completes or edits the profile. Guests change only their
// local copy. Signed-in users write users/{uid} with merge and see the
// result through the profile watch.
func (s *Session) UpdateProfile(ctx context.Context, input ProfileInput) error {
	s.mu.Lock()
	if s.user.IsGuest() {
		u := s.user.Clone()
		input.applyTo(u)
		s.setUser(u)
		s.publishViewLocked()
		s.mu.Unlock()
		return nil
	}
	if s.identity == nil {
		s.mu.Unlock()
		return errors.Unauthorized("sign in first", nil)
	}
	ident := *s.identity
	current := s.user.Clone()
	s.mu.Unlock()

	data := input.fields()
	if current == nil {
		if _, ok := data["role"]; !ok {
			return errors.BadRequest("role is required to create a profile", nil)
		}
		if _, ok := data["name"]; !ok {
			data["name"] = ident.DisplayName
		}
		if ident.Email != "" {
			data["email"] = ident.Email
		}
	} else if current.Role != "" {
		delete(data, "role")
	}
	data["id"] = ident.UID
	data["profileComplete"] = true

	if err := s.deps.Store.Set(ctx, repository.Doc(repository.CollectionUsers, ident.UID), data, true); err != nil {
		logger.Error("CRITICAL: Failed to save user profile %s: %v", ident.UID, err)
		s.notifier.Notify("Error: Could not save your profile. Please check your network connection and database security rules.", entity.NotificationError, nil)
		return errors.ProfileWriteFailed(err)
	}
	return nil
}
