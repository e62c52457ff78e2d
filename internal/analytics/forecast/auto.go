package forecast

import (
	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/stats"
	"github.com/fabzclean/analytics/internal/analytics/trend"
)

// seasonalAutocorrelation is the lag-period autocorrelation above which a
// series is treated as seasonal
const seasonalAutocorrelation = 0.5

// AutoForecaster automatically selects the best forecasting algorithm
type AutoForecaster struct{}

// NewAutoForecaster creates a new Auto forecaster
func NewAutoForecaster() *AutoForecaster {
	return &AutoForecaster{}
}

func init() {
	RegisterForecaster("auto", NewAutoForecaster())
}

// Name returns the algorithm name
func (f *AutoForecaster) Name() string {
	return "auto"
}

// Forecast picks seasonal_naive for seasonal data, linear for trending data
// and moving_average otherwise.
func (f *AutoForecaster) Forecast(data []DataPoint, config Config) (*Result, error) {
	if err := checkMinData(data, config); err != nil {
		return nil, err
	}

	selected := selectForecaster(data, config)
	result, err := selected.Forecast(data, config)
	if err != nil {
		return nil, err
	}

	result.ModelInfo.Algorithm = selected.Name() + " (auto-selected)"
	return result, nil
}

func selectForecaster(data []DataPoint, config Config) Forecaster {
	values := analytics.TimeSeriesData(data).Values()
	switch {
	case detectSeasonality(values, config.SeasonalPeriod):
		return NewSeasonalNaiveForecaster()
	case trend.CalculateTrend(data) != trend.DirectionStable:
		return NewLinearForecaster()
	default:
		return NewMovingAverageForecaster()
	}
}

// detectSeasonality reports whether the linearly detrended values correlate
// with themselves one period back. It needs two full periods.
func detectSeasonality(values []float64, period int) bool {
	if period <= 1 || len(values) < period*2 {
		return false
	}

	model := trend.LinearRegression(analytics.IndexPoints(values))
	detrended := make([]float64, len(values))
	for i, v := range values {
		detrended[i] = v - model.Predict(float64(i))
	}
	return stats.Correlation(detrended[period:], detrended[:len(detrended)-period]) > seasonalAutocorrelation
}
