package forecast

import (
	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/trend"
)

// MovingAverage forecasts autoregressively: each projected value is the mean
// of the last window values, and is appended to a private working copy before
// the next step. history is never modified. A window that is non-positive or
// longer than history, or a non-positive horizon, yields an empty slice.
func MovingAverage(history []float64, window, periods int) []float64 {
	if window <= 0 || len(history) < window || periods <= 0 {
		return []float64{}
	}

	working := make([]float64, len(history), len(history)+periods)
	copy(working, history)

	out := make([]float64, periods)
	for i := range out {
		sum := 0.0
		for _, v := range working[len(working)-window:] {
			sum += v
		}
		next := sum / float64(window)
		out[i] = next
		working = append(working, next)
	}
	return out
}

// MovingAverageForecaster wraps MovingAverage for the forecaster registry
type MovingAverageForecaster struct{}

// NewMovingAverageForecaster creates a new moving-average forecaster
func NewMovingAverageForecaster() *MovingAverageForecaster {
	return &MovingAverageForecaster{}
}

func init() {
	RegisterForecaster("moving_average", NewMovingAverageForecaster())
}

// Name returns the algorithm name
func (f *MovingAverageForecaster) Name() string {
	return "moving_average"
}

// Forecast generates predictions using an autoregressive simple moving average.
// The window is shrunk to the data length when it does not fit.
func (f *MovingAverageForecaster) Forecast(data []DataPoint, config Config) (*Result, error) {
	if err := checkMinData(data, config); err != nil {
		return nil, err
	}

	window := config.WindowSize
	if window <= 0 {
		window = DefaultConfig().WindowSize
	}
	if window > len(data) {
		window = len(data)
	}

	values := analytics.TimeSeriesData(data).Values()

	// in-sample fit is the trailing average of the preceding window
	fitted := make([]analytics.OptionalFloat, len(values))
	smoothed := trend.MovingAverage(values, window)
	for i := 1; i < len(values); i++ {
		fitted[i] = smoothed[i-1]
	}

	return buildResult(data, MovingAverage(values, window, config.Horizon), fitted, config, ModelInfo{
		Algorithm:  f.Name(),
		Parameters: map[string]interface{}{"window_size": window},
	}), nil
}
