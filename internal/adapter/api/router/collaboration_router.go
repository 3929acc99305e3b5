package router

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/adapter/api/handler"
	"artisanx/internal/adapter/api/middleware"
)

func SetupCollaborationRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	collaborationHandler := handler.GetCollaborationHandler()

	v1 := e.Group("/v1")
	v1.Use(sessionMiddleware.RequireSession)

	v1.POST("/projects", collaborationHandler.PostNewProject)
	v1.POST("/projects/:id/applications", collaborationHandler.ApplyForProject)
	v1.PUT("/applications/:id", collaborationHandler.RespondToApplication)
	v1.POST("/collaborations/:id/end", collaborationHandler.EndCollaboration)
	v1.POST("/collaborations/:id/certificate", collaborationHandler.IssueCertificate)
}
