package anomaly

import (
	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/stats"
)

// DefaultIQRMultiplier is Tukey's fence multiplier
const DefaultIQRMultiplier = 1.5

// IQRDetector detects anomalies using Interquartile Range (IQR) method.
// Anomalies are points outside [Q1 - k*IQR, Q3 + k*IQR].
type IQRDetector struct{}

func init() {
	RegisterDetector("iqr", &IQRDetector{})
}

// Name returns the algorithm name
func (iqr *IQRDetector) Name() string {
	return "iqr"
}

// Detect finds anomalies using IQR method. config.Threshold is the fence
// multiplier k; a non-positive value uses Tukey's 1.5.
func (iqr *IQRDetector) Detect(data []DataPoint, config DetectorConfig) []AnomalyResult {
	if len(data) < config.MinDataPoints || len(data) == 0 {
		return nil
	}

	values := analytics.TimeSeriesData(data).Values()
	q := stats.Quartiles(values)

	multiplier := config.Threshold
	if multiplier <= 0 {
		multiplier = DefaultIQRMultiplier
	}

	expected := &Range{
		Min: q.Q1 - multiplier*q.IQR,
		Max: q.Q3 + multiplier*q.IQR,
	}

	var results []AnomalyResult
	for i, v := range values {
		if v >= expected.Min && v <= expected.Max {
			continue
		}

		// Score is the distance outside the fence in IQR units
		score := 1.0
		anomalyType := AnomalyTypeSpike
		if v < expected.Min {
			anomalyType = AnomalyTypeDrop
			if q.IQR > 0 {
				score = (expected.Min - v) / q.IQR
			}
		} else if q.IQR > 0 {
			score = (v - expected.Max) / q.IQR
		}

		results = append(results, AnomalyResult{
			Index:    i,
			Score:    score,
			Type:     anomalyType,
			Expected: expected,
		})
	}
	return results
}
