// Package trend implements growth rates, moving averages, least-squares
// regression and trend classification.
package trend

import (
	"math"

	"github.com/fabzclean/analytics/internal/analytics"
)

// GrowthRate returns the percentage change from previous to current.
// When previous is 0 the change is reported as 100 for a positive current
// value and 0 otherwise.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// CAGR returns the compound growth rate per period, as a percentage.
// A non-positive start value or period count yields 0.
func CAGR(start, end, periods float64) float64 {
	if start <= 0 || periods <= 0 {
		return 0
	}
	return (math.Pow(end/start, 1/periods) - 1) * 100
}

// YearOverYearGrowth compares two aligned series element by element.
// Series of different length are truncated to the shorter one.
func YearOverYearGrowth(current, previous []float64) []float64 {
	n := min(len(current), len(previous))
	growth := make([]float64, n)
	for i := 0; i < n; i++ {
		growth[i] = GrowthRate(current[i], previous[i])
	}
	return growth
}

// PeriodOverPeriodGrowth returns the growth of each value over its
// predecessor. The first slot has no predecessor and is undefined.
func PeriodOverPeriodGrowth(values []float64) []analytics.OptionalFloat {
	growth := make([]analytics.OptionalFloat, len(values))
	for i := 1; i < len(values); i++ {
		growth[i] = analytics.Some(GrowthRate(values[i], values[i-1]))
	}
	return growth
}

// MonthOverMonthGrowth applies PeriodOverPeriodGrowth to a monthly series.
func MonthOverMonthGrowth(series analytics.TimeSeriesData) []analytics.OptionalFloat {
	return PeriodOverPeriodGrowth(series.Values())
}
