package handler

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/adapter/api/middleware"
	"artisanx/internal/usecase"
	"artisanx/pkg/errors"
	"artisanx/pkg/response"
)

var (
	sessionHandler       *SessionHandler
	authHandler          *AuthHandler
	marketplaceHandler   *MarketplaceHandler
	cartHandler          *CartHandler
	collaborationHandler *CollaborationHandler
	chatHandler          *ChatHandler
)

func Setup(registry *usecase.SessionRegistry, onClose func(sessionID string)) {
	sessionHandler = NewSessionHandler(registry, onClose)
	authHandler = NewAuthHandler()
	marketplaceHandler = NewMarketplaceHandler()
	cartHandler = NewCartHandler()
	collaborationHandler = NewCollaborationHandler()
	chatHandler = NewChatHandler()
}

func GetSessionHandler() *SessionHandler {
	return sessionHandler
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetMarketplaceHandler() *MarketplaceHandler {
	return marketplaceHandler
}

func GetCartHandler() *CartHandler {
	return cartHandler
}

func GetCollaborationHandler() *CollaborationHandler {
	return collaborationHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

// bindAndValidate decodes the body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(req)
}

// currentSession returns the session resolved by the session middleware.
func currentSession(c echo.Context) (*usecase.Session, error) {
	s := middleware.SessionFrom(c)
	if s == nil {
		return nil, errors.Unauthorized("Session required", nil)
	}
	return s, nil
}

// withSession runs fn with the request's session and renders its result.
func withSession(c echo.Context, fn func(s *usecase.Session) (interface{}, error)) error {
	s, err := currentSession(c)
	if err != nil {
		return response.Error(c, err)
	}
	data, err := fn(s)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, data)
}
