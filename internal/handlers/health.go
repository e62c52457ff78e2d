package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fabzclean/analytics/internal/analytics/anomaly"
	"github.com/fabzclean/analytics/internal/analytics/forecast"
	"github.com/fabzclean/analytics/internal/models"
)

// Health handles health check requests
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	})
}

// Methods lists the registered forecasters and anomaly detectors
// GET /v1/methods
func (h *Handler) Methods(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"forecasters": forecast.ListForecasters(),
		"detectors":   anomaly.ListDetectors(),
	})
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}
