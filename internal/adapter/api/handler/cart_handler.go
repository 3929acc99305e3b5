package handler

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/usecase"
	"artisanx/pkg/response"
)

type CartHandler struct{}

func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

type AddToCartRequest struct {
	ProductID  string   `json:"productId" validate:"required"`
	OfferPrice *float64 `json:"offerPrice" validate:"omitempty,gt=0"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		return s.Cart(), nil
	})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	var req AddToCartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		return s.AddToCart(c.Request().Context(), req.ProductID, req.OfferPrice)
	})
}

// UpdateQuantity sets an item's quantity; zero or less removes it.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	var req UpdateQuantityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	productID := c.Param("productId")
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		return s.UpdateCartQuantity(c.Request().Context(), productID, req.Quantity)
	})
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	productID := c.Param("productId")
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		return s.RemoveFromCart(c.Request().Context(), productID)
	})
}

func (h *CartHandler) ToggleFavorite(c echo.Context) error {
	productID := c.Param("productId")
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		return s.ToggleFavorite(c.Request().Context(), productID)
	})
}
