package router

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/adapter/api/handler"
	"artisanx/internal/adapter/api/middleware"
)

// SetupAuthRouter initializes auth routes. Sign-in routes only need the
// session header since the token does not exist yet.
func SetupAuthRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	authHandler := handler.GetAuthHandler()

	auth := e.Group("/v1/auth")
	auth.Use(sessionMiddleware.RequireSession)

	auth.POST("/signin", authHandler.SignIn, middleware.AuthRateLimit())
	auth.POST("/signin/provider", authHandler.SignInWithProvider, middleware.AuthRateLimit())
	auth.POST("/signup", authHandler.SignUp, middleware.AuthRateLimit())
	auth.POST("/guest", authHandler.ContinueAsGuest)
	auth.POST("/signout", authHandler.SignOut)
	auth.PUT("/profile", authHandler.UpdateProfile)
}
