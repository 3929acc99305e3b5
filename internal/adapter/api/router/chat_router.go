package router

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/adapter/api/handler"
	"artisanx/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	chatHandler := handler.GetChatHandler()

	v1 := e.Group("/v1")
	v1.Use(sessionMiddleware.RequireSession)

	v1.POST("/connections", chatHandler.SendConnectionRequest)
	v1.PUT("/connections/:id", chatHandler.RespondToConnectionRequest)
	v1.POST("/conversations", chatHandler.CreateOrSelectConversation)
	v1.POST("/conversations/:id/messages", chatHandler.SendMessage)
}
