package models

import (
	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/anomaly"
	"github.com/fabzclean/analytics/internal/analytics/stats"
	"github.com/fabzclean/analytics/internal/analytics/trend"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ValueResponse wraps a single scalar result
type ValueResponse struct {
	Value float64 `json:"value"`
}

// ConfidenceIntervalResponse is a confidence interval with its level
type ConfidenceIntervalResponse struct {
	Confidence float64 `json:"confidence"`
	stats.ConfidenceInterval
}

// GrowthResponse carries scalar growth or element-wise growth series
type GrowthResponse struct {
	Growth   float64   `json:"growth"`
	Elements []float64 `json:"elements,omitempty"`
}

// SmoothedResponse carries a smoothed series aligned with its input
type SmoothedResponse struct {
	Values []analytics.OptionalFloat `json:"values"`
}

// EMAResponse carries an exponentially smoothed series
type EMAResponse struct {
	Alpha  float64   `json:"alpha"`
	Values []float64 `json:"values"`
}

// DirectionResponse is the classified trend of a series
type DirectionResponse struct {
	Direction  trend.Direction       `json:"direction"`
	Regression trend.RegressionModel `json:"regression"`
}

// AnomalyResponse lists the flagged indices and the detector's annotated
// anomalies, in the same order
type AnomalyResponse struct {
	Threshold float64           `json:"threshold"`
	Indices   []int             `json:"indices"`
	Anomalies []anomaly.Anomaly `json:"anomalies"`
}

// JobAcceptedResponse acknowledges a queued report job
type JobAcceptedResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	ReplyTo string `json:"reply_to,omitempty"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
