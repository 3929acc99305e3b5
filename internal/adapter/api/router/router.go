package router

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/adapter/api/handler"
	"artisanx/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware, wsHandler *handler.WebSocketHandler, enableRoleSwitch bool) {
	SetupSessionRouter(e, sessionMiddleware)
	SetupAuthRouter(e, sessionMiddleware)
	SetupMarketplaceRouter(e, sessionMiddleware)
	SetupCartRouter(e, sessionMiddleware)
	SetupCollaborationRouter(e, sessionMiddleware)
	SetupChatRouter(e, sessionMiddleware)
	SetupWebSocketRouter(e, wsHandler)
	SetupDevRouter(e, sessionMiddleware, enableRoleSwitch)
	SetupHealthRouter(e)
}
