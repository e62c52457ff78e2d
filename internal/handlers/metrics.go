package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fabzclean/analytics/internal/analytics/metrics"
)

// BusinessMetrics handles POST /v1/metrics/business. Any rate whose
// denominator is zero is reported as 0.
func (h *Handler) BusinessMetrics(c *fiber.Ctx) error {
	var counts metrics.Counts
	if err := parseBody(c, &counts); err != nil {
		return err
	}
	return c.JSON(metrics.Compute(counts))
}
