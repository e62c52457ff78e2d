package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fabzclean/analytics/internal/analytics/stats"
	"github.com/fabzclean/analytics/internal/models"
	"github.com/fabzclean/analytics/internal/services"
)

// Summary handles POST /v1/stats/summary
func (h *Handler) Summary(c *fiber.Ctx) error {
	var req models.ValuesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireValues("values", req.Values); err != nil {
		return err
	}
	return c.JSON(stats.Summarize(req.Values))
}

// Percentile handles POST /v1/stats/percentile
func (h *Handler) Percentile(c *fiber.Ctx) error {
	var req models.PercentileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireValues("values", req.Values); err != nil {
		return err
	}
	if req.P < 0 || req.P > 100 {
		return services.NewServiceErrorWithDetails(services.CodeInvalidRequest, "p must be between 0 and 100",
			map[string]interface{}{"p": req.P})
	}
	return c.JSON(models.ValueResponse{Value: stats.Percentile(req.Values, req.P)})
}

// ConfidenceInterval handles POST /v1/stats/confidence-interval.
// Confidence defaults to 0.95; levels other than 0.99 and 0.95 use the 90% z value.
func (h *Handler) ConfidenceInterval(c *fiber.Ctx) error {
	var req models.ConfidenceIntervalRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireValues("values", req.Values); err != nil {
		return err
	}
	if req.Confidence == 0 {
		req.Confidence = 0.95
	}
	return c.JSON(models.ConfidenceIntervalResponse{
		Confidence:         req.Confidence,
		ConfidenceInterval: stats.ConfidenceIntervalFor(req.Values, req.Confidence),
	})
}

// Correlation handles POST /v1/stats/correlation
func (h *Handler) Correlation(c *fiber.Ctx) error {
	var req models.CorrelationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireValues("x", req.X); err != nil {
		return err
	}
	if err := requireValues("y", req.Y); err != nil {
		return err
	}
	if len(req.X) != len(req.Y) {
		return services.NewServiceErrorWithDetails(services.CodeInvalidRequest, "x and y must have the same length",
			map[string]interface{}{"x": len(req.X), "y": len(req.Y)})
	}
	return c.JSON(models.ValueResponse{Value: stats.Correlation(req.X, req.Y)})
}
