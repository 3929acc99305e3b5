package router

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/adapter/api/handler"
	"artisanx/internal/adapter/api/middleware"
)

func SetupMarketplaceRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	marketplaceHandler := handler.GetMarketplaceHandler()

	v1 := e.Group("/v1")
	v1.Use(sessionMiddleware.RequireSession)

	v1.POST("/products", marketplaceHandler.AddProduct)
	v1.POST("/certificates", marketplaceHandler.AddCertificate)
	v1.GET("/certificates/:id", marketplaceHandler.GetCertificate)

	v1.POST("/bargains", marketplaceHandler.CreateBargainRequest)
	v1.PUT("/bargains/:id/status", marketplaceHandler.UpdateBargainRequestStatus)
	v1.POST("/bargains/:id/complete", marketplaceHandler.CompleteBargainRequest)
}

func SetupCartRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	cartHandler := handler.GetCartHandler()

	cart := e.Group("/v1/cart")
	cart.Use(sessionMiddleware.RequireSession)

	cart.GET("", cartHandler.GetCart)
	cart.POST("/items", cartHandler.AddToCart)
	cart.PUT("/items/:productId", cartHandler.UpdateQuantity)
	cart.DELETE("/items/:productId", cartHandler.RemoveFromCart)
	cart.POST("/favorites/:productId", cartHandler.ToggleFavorite)
}
