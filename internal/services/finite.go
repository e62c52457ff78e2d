package services

import (
	"math"

	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/forecast"
	"github.com/fabzclean/analytics/internal/analytics/stats"
)

// finite reports whether every value is a JSON-encodable number
func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finiteOptional(values []analytics.OptionalFloat) bool {
	for _, v := range values {
		if v.Valid && !finite(v.Value) {
			return false
		}
	}
	return true
}

func finiteSummary(s stats.Summary) bool {
	return finite(s.Mode...) &&
		finite(s.Mean, s.Median, s.StdDev, s.Variance, s.Min, s.Max, s.Range, s.Q1, s.Q2, s.Q3, s.IQR)
}

func finiteForecast(r *forecast.Result) bool {
	if r == nil {
		return true
	}
	for _, p := range r.Predictions {
		if !finite(p.Value, p.LowerBound, p.UpperBound) {
			return false
		}
	}
	for _, v := range r.ModelInfo.Parameters {
		if f, ok := v.(float64); ok && !finite(f) {
			return false
		}
	}
	return finiteOptional(r.Fitted) && finiteOptional(r.Residuals) &&
		finite(r.ModelInfo.MAPE, r.ModelInfo.MAE, r.ModelInfo.RMSE)
}

// nonFiniteField names the first report section holding an overflowed value,
// or returns "" when the whole report is encodable. Finite inputs of extreme
// magnitude overflow in sums of squares and growth ratios.
func nonFiniteField(r *Report) string {
	ci, reg := r.ConfidenceInterval, r.Regression
	checks := []struct {
		field string
		ok    bool
	}{
		{"summary", finiteSummary(r.Summary)},
		{"confidence_interval", finite(ci.Lower, ci.Upper, ci.Margin)},
		{"regression", finite(reg.Slope, reg.Intercept, reg.R2)},
		{"moving_average", finiteOptional(r.MovingAverage)},
		{"ema", finite(r.EMA...)},
		{"period_growth", finiteOptional(r.PeriodGrowth)},
		{"forecast", finiteForecast(r.Forecast)},
		{"decomposition", finiteOptional(r.Decomposition.Trend) &&
			finite(r.Decomposition.Seasonal...) && finiteOptional(r.Decomposition.Residual)},
		{"anomalies", finiteAnomalies(r)},
		{"kpis", r.KPIs == nil || finite(r.KPIs.AverageOrderValue, r.KPIs.RevenuePerCustomer,
			r.KPIs.CustomerLifetimeValue, r.KPIs.ChurnRate, r.KPIs.RetentionRate,
			r.KPIs.ConversionRate, r.KPIs.OrderCompletionRate)},
	}
	for _, c := range checks {
		if !c.ok {
			return c.field
		}
	}
	return ""
}

func finiteAnomalies(r *Report) bool {
	for _, a := range r.Anomalies {
		if !finite(a.Value, a.Score) {
			return false
		}
		if a.Expected != nil && !finite(a.Expected.Min, a.Expected.Max) {
			return false
		}
	}
	return true
}

func overflowError(field string) *ServiceError {
	return NewServiceErrorWithDetails(CodeInvalidRequest, "series values are too large to analyze", map[string]interface{}{
		"field": field,
	})
}
