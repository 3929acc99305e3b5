package router

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/adapter/api/handler"
	"artisanx/internal/adapter/api/middleware"
)

func SetupSessionRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	sessionHandler := handler.GetSessionHandler()

	e.POST("/v1/sessions", sessionHandler.CreateSession)

	session := e.Group("/v1/session")
	session.Use(sessionMiddleware.RequireSession)

	session.GET("", sessionHandler.GetView)
	session.DELETE("", sessionHandler.CloseSession)
	session.PUT("/locale", sessionHandler.SetLocale)
	session.GET("/notifications", sessionHandler.GetNotifications)
	session.DELETE("/notifications/:id", sessionHandler.DismissNotification)
}
