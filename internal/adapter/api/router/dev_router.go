package router

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/adapter/api/handler"
	"artisanx/internal/adapter/api/middleware"
)

// SetupDevRouter exposes the role switch used for demos. It is not mounted
// unless enabled.
func SetupDevRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware, enabled bool) {
	if !enabled {
		return
	}
	authHandler := handler.GetAuthHandler()

	dev := e.Group("/_dev")
	dev.Use(sessionMiddleware.RequireSession)
	dev.POST("/switch-role", authHandler.SwitchRole)
}
