package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"artisanx/internal/adapter/api/middleware"
	"artisanx/internal/domain/entity"
	ws "artisanx/internal/infrastructure/websocket"
	"artisanx/pkg/errors"
	"artisanx/pkg/response"
)

// Presence counts the push clients bound to a session.
type Presence interface {
	Attach(sessionID string)
	Detach(sessionID string)
}

type WebSocketHandler struct {
	wsManager *ws.Manager
	sessions  *middleware.SessionMiddleware
	presence  Presence
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, sessions *middleware.SessionMiddleware, presence Presence) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
		sessions:  sessions,
		presence:  presence,
	}
}

// HandleWebSocket binds a connection to the session named by ?session=.
// Browsers cannot set headers on the upgrade, so identified sessions pass
// their ID token as ?token=.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	sessionID := c.QueryParam("session")
	if sessionID == "" {
		return response.Error(c, errors.BadRequest("session query parameter is required", nil))
	}
	s, err := h.sessions.Resolve(c.Request().Context(), sessionID, c.QueryParam("token"))
	if err != nil {
		return response.Error(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewClient(s.ID(), conn)
	h.wsManager.Register(client)
	h.presence.Attach(s.ID())

	go func() {
		client.ReadPump(h.wsManager)
		h.presence.Detach(s.ID())
	}()
	go client.WritePump()

	// the first frame is the full view so the tab can render at once
	h.wsManager.Publish(s.ID(), entity.SessionEvent{Type: entity.EventState, Data: s.View()})
	return nil
}
