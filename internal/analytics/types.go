// Package analytics provides common types shared by the statistics, trend,
// forecasting, anomaly and business-metric packages.
//
// Every function under internal/analytics is a pure transformation over
// caller-owned values: no I/O, no shared state, no mutation of input slices.
package analytics

import (
	"bytes"
	"encoding/json"
	"time"
)

// OptionalFloat is a float64 that may be undefined, e.g. a moving-average slot
// before the window fills. It serializes as JSON null when undefined.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Undefined is the zero OptionalFloat.
var Undefined = OptionalFloat{}

// Some wraps a defined value.
func Some(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// Float64 returns the value and whether it is defined.
func (o OptionalFloat) Float64() (float64, bool) {
	return o.Value, o.Valid
}

// Or returns the value, or fallback when undefined.
func (o OptionalFloat) Or(fallback float64) float64 {
	if !o.Valid {
		return fallback
	}
	return o.Value
}

// MarshalJSON implements json.Marshaler
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Point is a single (x, y) observation used for regression.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IndexPoints pairs each value with its position, so the index acts as x.
func IndexPoints(values []float64) []Point {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{X: float64(i), Y: v}
	}
	return points
}

// TimeSeriesPoint represents a single time-series observation.
// Series are assumed chronological; no gap filling is performed anywhere.
type TimeSeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// TimeSeriesData represents a collection of time-series data points
type TimeSeriesData []TimeSeriesPoint

// Values extracts just the values from the time series
func (ts TimeSeriesData) Values() []float64 {
	values := make([]float64, len(ts))
	for i, p := range ts {
		values[i] = p.Value
	}
	return values
}

// Times extracts just the times from the time series
func (ts TimeSeriesData) Times() []time.Time {
	times := make([]time.Time, len(ts))
	for i, p := range ts {
		times[i] = p.Time
	}
	return times
}

// Len returns the number of data points
func (ts TimeSeriesData) Len() int {
	return len(ts)
}
