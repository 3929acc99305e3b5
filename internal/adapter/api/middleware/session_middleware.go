package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"artisanx/internal/usecase"
	"artisanx/pkg/errors"
	"artisanx/pkg/response"
)

const (
	SessionHeader = "X-Session-ID"
	sessionKey    = "session"
	uidKey        = "uid"
)

// TokenVerifier checks a Firebase ID token and returns its uid.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (string, error)
}

type SessionMiddleware struct {
	registry *usecase.SessionRegistry
	verifier TokenVerifier
}

// NewSessionMiddleware returns the session resolver. A nil verifier skips
// the token check, which only makes sense without an identity provider.
func NewSessionMiddleware(registry *usecase.SessionRegistry, verifier TokenVerifier) *SessionMiddleware {
	return &SessionMiddleware{registry: registry, verifier: verifier}
}

// RequireSession resolves the X-Session-ID header. Sessions holding a
// signed-in identity also need a bearer token for that same uid.
func (m *SessionMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID := c.Request().Header.Get(SessionHeader)
		if sessionID == "" {
			return response.Error(c, errors.Unauthorized("Session header is required", nil))
		}

		s, err := m.Resolve(c.Request().Context(), sessionID, bearerToken(c.Request().Header.Get("Authorization")))
		if err != nil {
			return response.Error(c, err)
		}

		c.Set(sessionKey, s)
		if ident := s.Identity(); ident != nil {
			c.Set(uidKey, ident.UID)
		}
		return next(c)
	}
}

// Resolve looks up sessionID and checks token against its identity.
func (m *SessionMiddleware) Resolve(ctx context.Context, sessionID, token string) (*usecase.Session, error) {
	s, ok := m.registry.Get(sessionID)
	if !ok {
		return nil, errors.NotFound("Session", nil)
	}

	ident := s.Identity()
	if ident == nil || m.verifier == nil {
		return s, nil
	}
	if token == "" {
		return nil, errors.Unauthorized("Authorization header is required", nil)
	}
	uid, err := m.verifier.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}
	if uid != ident.UID {
		return nil, errors.Forbidden("Token does not belong to this session", nil)
	}
	return s, nil
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// SessionFrom returns the session set by RequireSession.
func SessionFrom(c echo.Context) *usecase.Session {
	s, _ := c.Get(sessionKey).(*usecase.Session)
	return s
}
