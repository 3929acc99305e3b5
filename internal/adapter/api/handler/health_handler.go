package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"artisanx/internal/domain/repository"
	"artisanx/internal/usecase"
)

type HealthHandler struct {
	store    repository.DocumentStore
	registry *usecase.SessionRegistry
	driver   string
}

var healthHandler *HealthHandler

func NewHealthHandler(store repository.DocumentStore, registry *usecase.SessionRegistry, driver string) *HealthHandler {
	return &HealthHandler{
		store:    store,
		registry: registry,
		driver:   driver,
	}
}

func SetupHealthHandler(store repository.DocumentStore, registry *usecase.SessionRegistry, driver string) {
	healthHandler = NewHealthHandler(store, registry, driver)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "Server is running",
		"time":     time.Now().Format(time.RFC3339),
		"sessions": h.registry.Len(),
	})
}

// CheckStoreHealth reads a probe document to prove the store answers.
func (h *HealthHandler) CheckStoreHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, err := h.store.Get(ctx, repository.Doc(repository.CollectionUsers, "_health"))
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "Document store unavailable",
			"driver": h.driver,
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Document store connected",
		"driver": h.driver,
	})
}
