package handler

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/usecase"
	"artisanx/pkg/errors"
	"artisanx/pkg/response"
)

type SessionHandler struct {
	registry *usecase.SessionRegistry
	onClose  func(sessionID string)
}

func NewSessionHandler(registry *usecase.SessionRegistry, onClose func(sessionID string)) *SessionHandler {
	return &SessionHandler{registry: registry, onClose: onClose}
}

// CreateSession opens a session for a new tab and returns its first view.
func (h *SessionHandler) CreateSession(c echo.Context) error {
	s := h.registry.Create()
	return response.Created(c, s.View())
}

func (h *SessionHandler) GetView(c echo.Context) error {
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		return s.View(), nil
	})
}

func (h *SessionHandler) CloseSession(c echo.Context) error {
	s, err := currentSession(c)
	if err != nil {
		return response.Error(c, err)
	}
	h.registry.Remove(s.ID())
	if h.onClose != nil {
		h.onClose(s.ID())
	}
	return response.Success(c, map[string]string{"message": "Session closed"})
}

type SetLocaleRequest struct {
	Locale string `json:"locale" validate:"required,min=2,max=10"`
}

func (h *SessionHandler) SetLocale(c echo.Context) error {
	var req SetLocaleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		if err := s.SetLocale(req.Locale); err != nil {
			return nil, err
		}
		return map[string]string{"locale": req.Locale}, nil
	})
}

func (h *SessionHandler) GetNotifications(c echo.Context) error {
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		return s.Notifications(), nil
	})
}

// DismissNotification is idempotent: unknown ids succeed.
func (h *SessionHandler) DismissNotification(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return response.Error(c, errors.BadRequest("Notification ID is required", nil))
	}
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		s.RemoveNotification(id)
		return map[string]string{"message": "Notification dismissed"}, nil
	})
}
