package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/anomaly"
	"github.com/fabzclean/analytics/internal/models"
	"github.com/fabzclean/analytics/internal/services"
)

// Anomalies handles POST /v1/anomalies
func (h *Handler) Anomalies(c *fiber.Ctx) error {
	var req models.AnomalyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireValues("values", req.Values); err != nil {
		return err
	}

	detector := req.Detector
	if detector == "" {
		detector = "zscore"
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = anomaly.DefaultThresholdFor(detector)
	}

	series := make([]analytics.TimeSeriesPoint, len(req.Values))
	for i, v := range req.Values {
		series[i].Value = v
	}

	annotated, err := anomaly.Run(detector, series, anomaly.DetectorConfig{Threshold: threshold})
	if err != nil {
		return services.NewServiceErrorWithDetails(services.CodeInvalidMethod, err.Error(),
			map[string]interface{}{"available_detectors": anomaly.ListDetectors()})
	}

	indices := make([]int, len(annotated))
	for i, a := range annotated {
		indices[i] = a.Index
	}

	return c.JSON(models.AnomalyResponse{
		Threshold: threshold,
		Indices:   indices,
		Anomalies: annotated,
	})
}
