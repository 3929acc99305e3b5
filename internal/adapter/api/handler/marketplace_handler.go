package handler

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/domain/entity"
	"artisanx/internal/usecase"
	"artisanx/pkg/errors"
	"artisanx/pkg/response"
)

type MarketplaceHandler struct{}

func NewMarketplaceHandler() *MarketplaceHandler {
	return &MarketplaceHandler{}
}

type AddProductRequest struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" validate:"gt=0"`
	Image         string  `json:"image"`
	Category      string  `json:"category"`
	CertificateID string  `json:"certificateId"`
}

type AddCertificateRequest struct {
	ArtworkTitle string `json:"artworkTitle" validate:"required"`
	Medium       string `json:"medium" validate:"required"`
	Dimensions   string `json:"dimensions"`
	CreationDate string `json:"creationDate"`
	Description  string `json:"description"`
}

type BargainRequest struct {
	ProductID  string  `json:"productId" validate:"required"`
	OfferPrice float64 `json:"offerPrice" validate:"gt=0"`
}

type BargainStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

func (h *MarketplaceHandler) AddProduct(c echo.Context) error {
	var req AddProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	s, err := currentSession(c)
	if err != nil {
		return response.Error(c, err)
	}

	product, err := s.AddProduct(c.Request().Context(), usecase.AddProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Image:         req.Image,
		Category:      req.Category,
		CertificateID: req.CertificateID,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, product)
}

func (h *MarketplaceHandler) AddCertificate(c echo.Context) error {
	var req AddCertificateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	s, err := currentSession(c)
	if err != nil {
		return response.Error(c, err)
	}

	cert, err := s.AddCertificate(c.Request().Context(), usecase.AddCertificateInput{
		ArtworkTitle: req.ArtworkTitle,
		Medium:       req.Medium,
		Dimensions:   req.Dimensions,
		CreationDate: req.CreationDate,
		Description:  req.Description,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, cert)
}

func (h *MarketplaceHandler) GetCertificate(c echo.Context) error {
	id := c.Param("id")
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		cert, err := s.GetCertificate(c.Request().Context(), id)
		if err != nil {
			return nil, err
		}
		if cert == nil {
			return nil, errors.NotFound("Certificate", nil)
		}
		return cert, nil
	})
}

func (h *MarketplaceHandler) CreateBargainRequest(c echo.Context) error {
	var req BargainRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	s, err := currentSession(c)
	if err != nil {
		return response.Error(c, err)
	}

	id, err := s.CreateBargainRequest(c.Request().Context(), req.ProductID, req.OfferPrice)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, map[string]string{"id": id})
}

func (h *MarketplaceHandler) UpdateBargainRequestStatus(c echo.Context) error {
	var req BargainStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	id := c.Param("id")
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		if err := s.UpdateBargainRequestStatus(c.Request().Context(), id, entity.BargainStatus(req.Status)); err != nil {
			return nil, err
		}
		return map[string]string{"id": id, "status": req.Status}, nil
	})
}

func (h *MarketplaceHandler) CompleteBargainRequest(c echo.Context) error {
	id := c.Param("id")
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		if err := s.CompleteBargainRequest(c.Request().Context(), id); err != nil {
			return nil, err
		}
		return map[string]string{"id": id, "status": string(entity.BargainCompleted)}, nil
	})
}
