package forecast

import (
	"math"

	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/trend"
)

// Linear fits a least-squares line through history against its index and
// projects it over x = n .. n+periods-1. Projections are clamped at zero.
// Fewer than two history values or a non-positive horizon yields an empty slice.
func Linear(history []float64, periods int) []float64 {
	if len(history) < 2 || periods <= 0 {
		return []float64{}
	}

	model := trend.LinearRegression(analytics.IndexPoints(history))
	n := len(history)

	out := make([]float64, periods)
	for i := range out {
		out[i] = math.Max(0, model.Predict(float64(n+i)))
	}
	return out
}

// LinearForecaster wraps Linear for the forecaster registry
type LinearForecaster struct{}

// NewLinearForecaster creates a new linear forecaster
func NewLinearForecaster() *LinearForecaster {
	return &LinearForecaster{}
}

func init() {
	RegisterForecaster("linear", NewLinearForecaster())
}

// Name returns the algorithm name
func (f *LinearForecaster) Name() string {
	return "linear"
}

// Forecast generates predictions using least-squares regression over the index
func (f *LinearForecaster) Forecast(data []DataPoint, config Config) (*Result, error) {
	if err := checkMinData(data, config); err != nil {
		return nil, err
	}

	values := analytics.TimeSeriesData(data).Values()
	model := trend.LinearRegression(analytics.IndexPoints(values))

	fitted := make([]analytics.OptionalFloat, len(values))
	if len(values) >= 2 {
		for i := range values {
			fitted[i] = analytics.Some(model.Predict(float64(i)))
		}
	}

	return buildResult(data, Linear(values, config.Horizon), fitted, config, ModelInfo{
		Algorithm: f.Name(),
		Parameters: map[string]interface{}{
			"slope":     model.Slope,
			"intercept": model.Intercept,
			"r2":        model.R2,
		},
	}), nil
}
