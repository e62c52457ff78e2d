package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/trend"
	"github.com/fabzclean/analytics/internal/models"
	"github.com/fabzclean/analytics/internal/services"
)

// Growth handles POST /v1/trend/growth. When both series are given the
// response also carries element-wise growth over the shorter length.
func (h *Handler) Growth(c *fiber.Ctx) error {
	var req models.GrowthRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp := models.GrowthResponse{Growth: trend.GrowthRate(req.Current, req.Previous)}
	if len(req.CurrentSeries) > 0 || len(req.PreviousSeries) > 0 {
		resp.Elements = trend.YearOverYearGrowth(req.CurrentSeries, req.PreviousSeries)
	}
	return c.JSON(resp)
}

// CAGR handles POST /v1/trend/cagr
func (h *Handler) CAGR(c *fiber.Ctx) error {
	var req models.CAGRRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return c.JSON(models.ValueResponse{Value: trend.CAGR(req.Start, req.End, req.Periods)})
}

// MovingAverage handles POST /v1/trend/moving-average. Slots without a full
// window are null; a window outside [1, len] leaves every slot null.
func (h *Handler) MovingAverage(c *fiber.Ctx) error {
	var req models.MovingAverageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireValues("values", req.Values); err != nil {
		return err
	}
	return c.JSON(models.SmoothedResponse{Values: trend.MovingAverage(req.Values, req.Window)})
}

// EMA handles POST /v1/trend/ema
func (h *Handler) EMA(c *fiber.Ctx) error {
	var req models.EMARequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireValues("values", req.Values); err != nil {
		return err
	}

	alpha := req.Alpha
	if !(alpha > 0 && alpha <= 1) {
		alpha = trend.DefaultAlpha
	}
	return c.JSON(models.EMAResponse{
		Alpha:  alpha,
		Values: trend.ExponentialMovingAverage(req.Values, alpha),
	})
}

// Regression handles POST /v1/trend/regression
func (h *Handler) Regression(c *fiber.Ctx) error {
	var req models.RegressionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if len(req.Points) == 0 {
		return services.NewServiceErrorWithDetails(services.CodeInvalidRequest, "points must not be empty",
			map[string]interface{}{"field": "points"})
	}
	return c.JSON(trend.LinearRegression(req.Points))
}

// Direction handles POST /v1/trend/direction
func (h *Handler) Direction(c *fiber.Ctx) error {
	var req models.SeriesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if len(req.Series) == 0 {
		return services.NewServiceError(services.CodeInvalidRequest, "series must not be empty")
	}

	series := analytics.TimeSeriesData(req.Series)
	return c.JSON(models.DirectionResponse{
		Direction:  trend.CalculateTrend(series),
		Regression: trend.LinearRegression(analytics.IndexPoints(series.Values())),
	})
}
