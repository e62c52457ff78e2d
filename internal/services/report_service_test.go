package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/anomaly"
	"github.com/fabzclean/analytics/internal/analytics/metrics"
	"github.com/fabzclean/analytics/internal/analytics/trend"
	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/logging"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func createTestReportService() *ReportService {
	svc := NewReportService(logging.NewNop(), config.DefaultConfig().Analytics)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func monthlyRevenue(values ...float64) []analytics.TimeSeriesPoint {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]analytics.TimeSeriesPoint, len(values))
	for i, v := range values {
		series[i] = analytics.TimeSeriesPoint{Time: start.AddDate(0, i, 0), Value: v}
	}
	return series
}

func requireServiceError(t *testing.T, err error, code string) *ServiceError {
	t.Helper()
	require.Error(t, err)
	se, ok := AsServiceError(err)
	require.True(t, ok, "expected *ServiceError, got %T", err)
	assert.Equal(t, code, se.Code)
	return se
}

func TestReportService_Generate(t *testing.T) {
	svc := createTestReportService()

	report, err := svc.Generate(context.Background(), &ReportRequest{
		Series:           monthlyRevenue(100, 110, 120, 130, 400, 150, 160, 170),
		ForecastPeriods:  3,
		Window:           2,
		AnomalyThreshold: 2,
		Counts:           &metrics.Counts{Revenue: 1000, Orders: 50, Customers: 20},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 8, report.Points)
	assert.Equal(t, fixedNow, report.GeneratedAt)
	assert.Equal(t, 8, report.Summary.Count)
	assert.Equal(t, 0.95, report.Confidence)
	assert.Len(t, report.MovingAverage, 8)
	assert.False(t, report.MovingAverage[0].Valid)
	assert.True(t, report.MovingAverage[1].Valid)
	assert.Len(t, report.EMA, 8)
	assert.Len(t, report.PeriodGrowth, 8)
	assert.False(t, report.PeriodGrowth[0].Valid)

	require.NotNil(t, report.Forecast)
	assert.Len(t, report.Forecast.Predictions, 3)
	assert.Equal(t, "linear", report.Forecast.ModelInfo.Algorithm)

	// 8 points is shorter than two 12-month periods: pass-through decomposition
	for i, v := range []float64{100, 110, 120, 130, 400, 150, 160, 170} {
		assert.Equal(t, analytics.Some(v), report.Decomposition.Trend[i])
		assert.Zero(t, report.Decomposition.Seasonal[i])
	}

	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, 4, report.Anomalies[0].Index)
	assert.Equal(t, anomaly.AnomalyTypeSpike, report.Anomalies[0].Type)

	require.NotNil(t, report.KPIs)
	assert.InDelta(t, 20.0, report.KPIs.AverageOrderValue, 1e-9)
	assert.Empty(t, report.Warnings)
}

func TestReportService_Generate_PlainValues(t *testing.T) {
	svc := createTestReportService()

	report, err := svc.Generate(context.Background(), &ReportRequest{
		Values:         []float64{10, 12, 14, 16, 18, 20},
		ForecastMethod: "moving_average",
	})
	require.NoError(t, err)

	assert.Equal(t, trend.DirectionIncreasing, report.Trend)
	assert.InDelta(t, 2.0, report.Regression.Slope, 1e-9)
	require.NotNil(t, report.Forecast)
	assert.Equal(t, "moving_average", report.Forecast.ModelInfo.Algorithm)
	assert.Len(t, report.Forecast.Predictions, 6)
	assert.Empty(t, report.Anomalies)
	assert.Nil(t, report.KPIs)
}

func TestReportService_Generate_ForecastWarning(t *testing.T) {
	svc := createTestReportService()

	report, err := svc.Generate(context.Background(), &ReportRequest{
		Values:         []float64{5, 6, 7, 8},
		ForecastMethod: "seasonal_naive",
	})
	require.NoError(t, err)

	assert.Nil(t, report.Forecast)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "forecast skipped")
}

func TestReportService_Generate_ConstantSeries(t *testing.T) {
	report, err := createTestReportService().Generate(context.Background(), &ReportRequest{
		Series: monthlyRevenue(40, 40, 40, 40, 40, 40),
	})
	require.NoError(t, err)

	assert.Empty(t, report.Anomalies)
	assert.Equal(t, trend.DirectionStable, report.Trend)
}

func TestReportService_Generate_IQRDefaultThreshold(t *testing.T) {
	svc := createTestReportService()
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 22}

	// unset threshold: Tukey's 1.5 fence, not the configured z-score limit
	report, err := svc.Generate(context.Background(), &ReportRequest{Values: values, AnomalyDetector: "iqr"})
	require.NoError(t, err)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, 9, report.Anomalies[0].Index)

	report, err = svc.Generate(context.Background(), &ReportRequest{Values: values, AnomalyDetector: "iqr", AnomalyThreshold: 3})
	require.NoError(t, err)
	assert.Empty(t, report.Anomalies)
}

func TestReportService_Overflow(t *testing.T) {
	svc := createTestReportService()
	huge := []float64{1e200, -1e200, 1e200, -1e200}

	_, err := svc.Generate(context.Background(), &ReportRequest{Values: huge})
	se := requireServiceError(t, err, CodeInvalidRequest)
	assert.Equal(t, "summary", se.Details["field"])

	_, err = svc.Forecast(context.Background(), &ForecastRequest{Values: huge, Method: "linear"})
	se = requireServiceError(t, err, CodeInvalidRequest)
	assert.Equal(t, "forecast", se.Details["field"])
}

func TestReportService_Generate_Errors(t *testing.T) {
	svc := createTestReportService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  *ReportRequest
		code string
	}{
		{"empty", &ReportRequest{}, CodeInvalidRequest},
		{"both series and values", &ReportRequest{Series: monthlyRevenue(1), Values: []float64{1}}, CodeInvalidRequest},
		{"unknown forecaster", &ReportRequest{Values: []float64{1, 2}, ForecastMethod: "arima"}, CodeInvalidMethod},
		{"unknown detector", &ReportRequest{Values: []float64{1, 2}, AnomalyDetector: "lof"}, CodeInvalidMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(ctx, tt.req)
			requireServiceError(t, err, tt.code)
		})
	}
}

func TestReportService_Generate_MaxLength(t *testing.T) {
	cfg := config.DefaultConfig().Analytics
	cfg.MaxSeriesLength = 3
	svc := NewReportService(logging.NewNop(), cfg)

	_, err := svc.Generate(context.Background(), &ReportRequest{Values: []float64{1, 2, 3, 4}})
	se := requireServiceError(t, err, CodeInvalidRequest)
	assert.Equal(t, 3, se.Details["max_length"])
}

func TestReportService_Generate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := createTestReportService().Generate(ctx, &ReportRequest{Values: []float64{1, 2, 3}})
	requireServiceError(t, err, CodeCanceled)
}

func TestReportService_Forecast(t *testing.T) {
	svc := createTestReportService()

	result, err := svc.Forecast(context.Background(), &ForecastRequest{
		Series:  monthlyRevenue(10, 20, 30),
		Method:  "linear",
		Periods: 2,
	})
	require.NoError(t, err)
	require.Len(t, result.Predictions, 2)
	assert.InDelta(t, 40.0, result.Predictions[0].Value, 1e-9)
	assert.InDelta(t, 50.0, result.Predictions[1].Value, 1e-9)

	_, err = svc.Forecast(context.Background(), &ForecastRequest{Series: monthlyRevenue(10), Method: "linear"})
	requireServiceError(t, err, CodeInsufficientData)

	_, err = svc.Forecast(context.Background(), &ForecastRequest{Series: monthlyRevenue(10, 20), Method: "prophet"})
	se := requireServiceError(t, err, CodeInvalidMethod)
	assert.Contains(t, se.Details["available_methods"], "linear")
}
