package forecast

import (
	"fmt"
	"math"

	"github.com/fabzclean/analytics/internal/analytics"
)

// Decomposition splits a series into additive components.
// Trend and Residual are undefined at the edges where the centered window
// does not fit.
type Decomposition struct {
	Trend    []analytics.OptionalFloat `json:"trend"`
	Seasonal []float64                 `json:"seasonal"`
	Residual []analytics.OptionalFloat `json:"residual"`
	Period   int                       `json:"period"`
}

// SeasonalDecomposition performs a classical additive decomposition.
//
// The trend at i is the mean of the period values starting at i-period/2.
// The seasonal value at i is the mean detrended value over every index with
// the same phase (i mod period). When data is shorter than two full periods,
// or period is not positive, the input is returned unchanged as the trend with
// zero seasonal and residual components.
func SeasonalDecomposition(data []float64, period int) Decomposition {
	n := len(data)
	d := Decomposition{
		Trend:    make([]analytics.OptionalFloat, n),
		Seasonal: make([]float64, n),
		Residual: make([]analytics.OptionalFloat, n),
		Period:   period,
	}

	if period <= 0 || n < 2*period {
		for i, v := range data {
			d.Trend[i] = analytics.Some(v)
			d.Residual[i] = analytics.Some(0)
		}
		return d
	}

	half := period / 2
	for i := range data {
		start := i - half
		end := start + period
		if start < 0 || end > n {
			continue
		}
		sum := 0.0
		for _, v := range data[start:end] {
			sum += v
		}
		d.Trend[i] = analytics.Some(sum / float64(period))
	}

	pattern := make([]float64, period)
	counts := make([]int, period)
	for i, v := range data {
		if !d.Trend[i].Valid {
			continue
		}
		pattern[i%period] += v - d.Trend[i].Value
		counts[i%period]++
	}
	for p := range pattern {
		if counts[p] > 0 {
			pattern[p] /= float64(counts[p])
		}
	}

	for i, v := range data {
		d.Seasonal[i] = pattern[i%period]
		if d.Trend[i].Valid {
			d.Residual[i] = analytics.Some(v - d.Trend[i].Value - d.Seasonal[i])
		}
	}
	return d
}

// SeasonalNaiveForecaster projects the last trend estimate forward and adds
// the seasonal component for each future phase.
type SeasonalNaiveForecaster struct{}

// NewSeasonalNaiveForecaster creates a new seasonal naive forecaster
func NewSeasonalNaiveForecaster() *SeasonalNaiveForecaster {
	return &SeasonalNaiveForecaster{}
}

func init() {
	RegisterForecaster("seasonal_naive", NewSeasonalNaiveForecaster())
}

// Name returns the algorithm name
func (f *SeasonalNaiveForecaster) Name() string {
	return "seasonal_naive"
}

// Forecast generates predictions from a seasonal decomposition. It needs at
// least two full seasonal periods of data.
func (f *SeasonalNaiveForecaster) Forecast(data []DataPoint, config Config) (*Result, error) {
	if err := checkMinData(data, config); err != nil {
		return nil, err
	}

	period := config.SeasonalPeriod
	if period <= 0 {
		return nil, fmt.Errorf("seasonal period must be positive, got %d", period)
	}
	if len(data) < 2*period {
		return nil, fmt.Errorf("insufficient data points for seasonal period %d: need %d, have %d", period, 2*period, len(data))
	}

	values := analytics.TimeSeriesData(data).Values()
	d := SeasonalDecomposition(values, period)

	level := 0.0
	for i := len(d.Trend) - 1; i >= 0; i-- {
		if d.Trend[i].Valid {
			level = d.Trend[i].Value
			break
		}
	}

	fitted := make([]analytics.OptionalFloat, len(values))
	for i, t := range d.Trend {
		if t.Valid {
			fitted[i] = analytics.Some(t.Value + d.Seasonal[i])
		}
	}

	projections := make([]float64, max(config.Horizon, 0))
	for i := range projections {
		phase := (len(values) + i) % period
		projections[i] = math.Max(0, level+d.Seasonal[phase])
	}

	return buildResult(data, projections, fitted, config, ModelInfo{
		Algorithm: f.Name(),
		Parameters: map[string]interface{}{
			"seasonal_period": period,
			"level":           level,
		},
	}), nil
}
