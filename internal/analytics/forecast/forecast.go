// Package forecast projects historical series forward.
//
// The package-level functions (Linear, MovingAverage, SeasonalDecomposition)
// are pure and never fail: degenerate input yields an empty or pass-through
// result. The Forecaster registry wraps them with timestamps, fitted values,
// prediction intervals and accuracy metrics for the report service.
package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/stats"
)

// DataPoint is an alias to the shared analytics.TimeSeriesPoint type.
type DataPoint = analytics.TimeSeriesPoint

// Prediction represents a single projected value. Time is zero, and
// omitted from JSON, when the input series carries no timestamps.
type Prediction struct {
	Time       time.Time `json:"time,omitzero"`
	Value      float64   `json:"value"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
}

// ModelInfo contains metadata about the forecast model
type ModelInfo struct {
	Algorithm  string                 `json:"algorithm"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	MAPE       float64                `json:"mape"` // Mean Absolute Percentage Error
	MAE        float64                `json:"mae"`  // Mean Absolute Error
	RMSE       float64                `json:"rmse"` // Root Mean Squared Error
	DataPoints int                    `json:"data_points"`
}

// Result contains the predictions and model information
type Result struct {
	Predictions []Prediction              `json:"predictions"`
	Fitted      []analytics.OptionalFloat `json:"fitted,omitempty"`    // in-sample fit, undefined where the model has no estimate
	Residuals   []analytics.OptionalFloat `json:"residuals,omitempty"` // actual - fitted
	ModelInfo   ModelInfo                 `json:"model_info"`
}

// Config holds configuration for registry forecasters
type Config struct {
	Horizon        int           // Number of periods to forecast
	WindowSize     int           // Window for moving-average methods
	SeasonalPeriod int           // Period for seasonal methods
	Confidence     float64       // Confidence level for prediction intervals
	MinDataPoints  int           // Minimum data points required
	Interval       time.Duration // Spacing between points; inferred from data when zero
}

// DefaultConfig returns default forecast configuration, sized for monthly
// business reports.
func DefaultConfig() Config {
	return Config{
		Horizon:        6,
		WindowSize:     3,
		SeasonalPeriod: 12,
		Confidence:     0.95,
		MinDataPoints:  2,
	}
}

// Forecaster interface for all forecasting algorithms
type Forecaster interface {
	// Name returns the algorithm name
	Name() string
	// Forecast generates predictions for future periods
	Forecast(data []DataPoint, config Config) (*Result, error)
}

var forecasterRegistry = make(map[string]Forecaster)

// RegisterForecaster adds a forecaster to the registry. Registration happens
// from init functions only; the registry is read-only afterwards.
func RegisterForecaster(name string, forecaster Forecaster) {
	forecasterRegistry[name] = forecaster
}

// GetForecaster returns a forecaster by name
func GetForecaster(name string) (Forecaster, error) {
	if forecaster, ok := forecasterRegistry[name]; ok {
		return forecaster, nil
	}
	return nil, fmt.Errorf("unknown forecaster: %s", name)
}

// ListForecasters returns the sorted names of available forecasters
func ListForecasters() []string {
	names := make([]string, 0, len(forecasterRegistry))
	for name := range forecasterRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CalculateMAPE calculates Mean Absolute Percentage Error, skipping zero actuals
func CalculateMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateMAE calculates Mean Absolute Error
func CalculateMAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// CalculateRMSE calculates Root Mean Squared Error
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// predictionInterval widens value by the tabulated z value times stdError
func predictionInterval(value, stdError, confidence float64) (lower, upper float64) {
	margin := stats.CriticalValue(confidence) * stdError
	return value - margin, value + margin
}

// checkMinData returns an error when data is shorter than the configured minimum
func checkMinData(data []DataPoint, config Config) error {
	if len(data) < config.MinDataPoints {
		return fmt.Errorf("insufficient data points: need %d, have %d", config.MinDataPoints, len(data))
	}
	return nil
}

// inferInterval returns config.Interval, or the spacing of the first two points
func inferInterval(data []DataPoint, config Config) time.Duration {
	if config.Interval != 0 || len(data) < 2 {
		return config.Interval
	}
	return data[1].Time.Sub(data[0].Time)
}

// buildResult attaches timestamps, intervals and accuracy metrics to raw projections
func buildResult(data []DataPoint, projections []float64, fitted []analytics.OptionalFloat, config Config, info ModelInfo) *Result {
	var actual, predicted []float64
	residuals := make([]analytics.OptionalFloat, len(fitted))
	for i, f := range fitted {
		if !f.Valid {
			continue
		}
		residuals[i] = analytics.Some(data[i].Value - f.Value)
		actual = append(actual, data[i].Value)
		predicted = append(predicted, f.Value)
	}

	stdError := 0.0
	if len(actual) > 1 {
		sse := 0.0
		for i := range actual {
			d := actual[i] - predicted[i]
			sse += d * d
		}
		stdError = math.Sqrt(sse / float64(len(actual)-1))
	}

	interval := inferInterval(data, config)
	lastTime := time.Time{}
	if len(data) > 0 {
		lastTime = data[len(data)-1].Time
	}

	predictions := make([]Prediction, len(projections))
	for i, v := range projections {
		lower, upper := predictionInterval(v, stdError, config.Confidence)
		predictions[i] = Prediction{
			Value:      v,
			LowerBound: lower,
			UpperBound: upper,
		}
		if !lastTime.IsZero() {
			predictions[i].Time = lastTime.Add(interval * time.Duration(i+1))
		}
	}

	info.MAPE = CalculateMAPE(actual, predicted)
	info.MAE = CalculateMAE(actual, predicted)
	info.RMSE = CalculateRMSE(actual, predicted)
	info.DataPoints = len(data)

	return &Result{
		Predictions: predictions,
		Fitted:      fitted,
		Residuals:   residuals,
		ModelInfo:   info,
	}
}
