package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fabzclean/analytics/internal/analytics/forecast"
	"github.com/fabzclean/analytics/internal/models"
	"github.com/fabzclean/analytics/internal/services"
)

// Forecast handles POST /v1/forecast
func (h *Handler) Forecast(c *fiber.Ctx) error {
	var req models.ForecastRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.reports.Forecast(c.UserContext(), &services.ForecastRequest{
		Series:         req.Series,
		Values:         req.Values,
		Method:         req.Method,
		Periods:        req.Periods,
		Window:         req.Window,
		SeasonalPeriod: req.SeasonalPeriod,
		Confidence:     req.Confidence,
	})
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Decompose handles POST /v1/forecast/decompose. Series shorter than two
// periods come back as pass-through trend with zero seasonality.
func (h *Handler) Decompose(c *fiber.Ctx) error {
	var req models.DecomposeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireValues("values", req.Values); err != nil {
		return err
	}
	return c.JSON(forecast.SeasonalDecomposition(req.Values, req.Period))
}
