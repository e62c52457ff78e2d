package models

import (
	"github.com/fabzclean/analytics/internal/analytics"
)

// ValuesRequest carries a plain sample
type ValuesRequest struct {
	Values []float64 `json:"values"`
}

// PercentileRequest asks for the p-th percentile of Values
type PercentileRequest struct {
	Values []float64 `json:"values"`
	P      float64   `json:"p"`
}

// ConfidenceIntervalRequest asks for an interval at Confidence (default 0.95)
type ConfidenceIntervalRequest struct {
	Values     []float64 `json:"values"`
	Confidence float64   `json:"confidence"`
}

// CorrelationRequest pairs two samples
type CorrelationRequest struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// GrowthRequest compares current with previous. Scalars use Current and
// Previous; element-wise year-over-year growth uses the slices.
type GrowthRequest struct {
	Current        float64   `json:"current"`
	Previous       float64   `json:"previous"`
	CurrentSeries  []float64 `json:"current_series,omitempty"`
	PreviousSeries []float64 `json:"previous_series,omitempty"`
}

// CAGRRequest asks for compound annual growth between Start and End
type CAGRRequest struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Periods float64 `json:"periods"`
}

// MovingAverageRequest asks for a trailing moving average
type MovingAverageRequest struct {
	Values []float64 `json:"values"`
	Window int       `json:"window"`
}

// EMARequest asks for exponential smoothing with factor Alpha
type EMARequest struct {
	Values []float64 `json:"values"`
	Alpha  float64   `json:"alpha"`
}

// RegressionRequest carries the points to fit
type RegressionRequest struct {
	Points []analytics.Point `json:"points"`
}

// SeriesRequest carries a timestamped series
type SeriesRequest struct {
	Series []analytics.TimeSeriesPoint `json:"series"`
}

// ForecastRequest asks for a projection of Values or Series
type ForecastRequest struct {
	Values         []float64                   `json:"values,omitempty"`
	Series         []analytics.TimeSeriesPoint `json:"series,omitempty"`
	Method         string                      `json:"method"`
	Periods        int                         `json:"periods"`
	Window         int                         `json:"window"`
	SeasonalPeriod int                         `json:"seasonal_period"`
	Confidence     float64                     `json:"confidence"`
}

// DecomposeRequest asks for a seasonal decomposition with the given period
type DecomposeRequest struct {
	Values []float64 `json:"values"`
	Period int       `json:"period"`
}

// AnomalyRequest asks for anomalies above Threshold. Detector names the
// registered detector used for the annotated list (default zscore).
type AnomalyRequest struct {
	Values    []float64 `json:"values"`
	Threshold float64   `json:"threshold"`
	Detector  string    `json:"detector,omitempty"`
}
