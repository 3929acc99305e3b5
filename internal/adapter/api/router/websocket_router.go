package router

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/adapter/api/handler"
)

// SetupWebSocketRouter mounts the push channel. The handler resolves the
// session itself from the query string.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/v1/ws", wsHandler.HandleWebSocket)
}
