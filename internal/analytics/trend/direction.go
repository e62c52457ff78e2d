package trend

import (
	"github.com/fabzclean/analytics/internal/analytics"
)

// Direction classifies the overall movement of a series
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

const (
	// MinTrendR2 is the fit quality below which a slope is not trusted
	MinTrendR2 = 0.3
	// SlopeThreshold is the per-step change treated as flat
	SlopeThreshold = 0.01
)

// CalculateTrend regresses the series values against their position and
// classifies the slope. Short series and poor fits are reported as stable.
func CalculateTrend(series analytics.TimeSeriesData) Direction {
	if len(series) < 2 {
		return DirectionStable
	}

	model := LinearRegression(analytics.IndexPoints(series.Values()))
	if model.R2 < MinTrendR2 {
		return DirectionStable
	}

	switch {
	case model.Slope > SlopeThreshold:
		return DirectionIncreasing
	case model.Slope < -SlopeThreshold:
		return DirectionDecreasing
	default:
		return DirectionStable
	}
}
