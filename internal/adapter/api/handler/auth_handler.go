package handler

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/domain/entity"
	"artisanx/internal/usecase"
	"artisanx/pkg/response"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProviderSignInRequest struct {
	ProviderID string `json:"providerId" validate:"required"`
	Credential string `json:"credential" validate:"required"`
}

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type UpdateProfileRequest struct {
	Name      string   `json:"name" validate:"omitempty,min=2"`
	Avatar    string   `json:"avatar" validate:"omitempty,url"`
	Role      string   `json:"role" validate:"omitempty,oneof=artisan volunteer customer"`
	Bio       string   `json:"bio"`
	Location  string   `json:"location"`
	Craft     string   `json:"craft"`
	Portfolio []string `json:"portfolio"`
	Skills    []string `json:"skills"`
}

type SwitchRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=artisan volunteer customer"`
}

// identityView is returned after sign-in; the profile arrives later through
// the push channel once its document has loaded.
func identityView(s *usecase.Session) map[string]interface{} {
	return map[string]interface{}{
		"state":    s.State(),
		"identity": s.Identity(),
	}
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		if err := s.SignIn(c.Request().Context(), req.Email, req.Password); err != nil {
			return nil, err
		}
		return identityView(s), nil
	})
}

func (h *AuthHandler) SignInWithProvider(c echo.Context) error {
	var req ProviderSignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		if err := s.SignInWithProvider(c.Request().Context(), req.ProviderID, req.Credential); err != nil {
			return nil, err
		}
		return identityView(s), nil
	})
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		if err := s.SignUp(c.Request().Context(), req.Name, req.Email, req.Password); err != nil {
			return nil, err
		}
		return identityView(s), nil
	})
}

func (h *AuthHandler) ContinueAsGuest(c echo.Context) error {
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		return s.ContinueAsGuest()
	})
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		if err := s.SignOut(c.Request().Context()); err != nil {
			return nil, err
		}
		return map[string]string{"message": "Signed out"}, nil
	})
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		err := s.UpdateProfile(c.Request().Context(), usecase.ProfileInput{
			Name:      req.Name,
			Avatar:    req.Avatar,
			Role:      entity.Role(req.Role),
			Bio:       req.Bio,
			Location:  req.Location,
			Craft:     req.Craft,
			Portfolio: req.Portfolio,
			Skills:    req.Skills,
		})
		if err != nil {
			return nil, err
		}
		return map[string]string{"message": "Profile saved"}, nil
	})
}

func (h *AuthHandler) SwitchRole(c echo.Context) error {
	var req SwitchRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		return s.SwitchRole(entity.Role(req.Role))
	})
}
