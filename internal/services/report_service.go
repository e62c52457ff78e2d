package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/anomaly"
	"github.com/fabzclean/analytics/internal/analytics/forecast"
	"github.com/fabzclean/analytics/internal/analytics/metrics"
	"github.com/fabzclean/analytics/internal/analytics/stats"
	"github.com/fabzclean/analytics/internal/analytics/trend"
	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/logging"
)

// defaultDetector is used when a request names no anomaly detector
const defaultDetector = "zscore"

// ReportService assembles analytics reports from a single series
type ReportService struct {
	logger *logging.Logger
	cfg    config.AnalyticsConfig
	now    func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(logger *logging.Logger, cfg config.AnalyticsConfig) *ReportService {
	return &ReportService{
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// ReportRequest describes the series to analyze. Either Series or Values is
// required; zero-valued parameters take the configured defaults.
type ReportRequest struct {
	Series           []analytics.TimeSeriesPoint `json:"series,omitempty"`
	Values           []float64                   `json:"values,omitempty"`
	ForecastMethod   string                      `json:"forecast_method,omitempty"`
	ForecastPeriods  int                         `json:"forecast_periods,omitempty"`
	Window           int                         `json:"window,omitempty"`
	SeasonalPeriod   int                         `json:"seasonal_period,omitempty"`
	AnomalyThreshold float64                     `json:"anomaly_threshold,omitempty"`
	AnomalyDetector  string                      `json:"anomaly_detector,omitempty"`
	Confidence       float64                     `json:"confidence,omitempty"`
	Alpha            float64                     `json:"alpha,omitempty"`
	Counts           *metrics.Counts             `json:"counts,omitempty"`
}

// Report is the full analysis of one series
type Report struct {
	ID                 string                    `json:"id"`
	Points             int                       `json:"points"`
	Summary            stats.Summary             `json:"summary"`
	Confidence         float64                   `json:"confidence"`
	ConfidenceInterval stats.ConfidenceInterval  `json:"confidence_interval"`
	Trend              trend.Direction           `json:"trend"`
	Regression         trend.RegressionModel     `json:"regression"`
	MovingAverage      []analytics.OptionalFloat `json:"moving_average"`
	EMA                []float64                 `json:"ema"`
	PeriodGrowth       []analytics.OptionalFloat `json:"period_growth"`
	Forecast           *forecast.Result          `json:"forecast,omitempty"`
	Decomposition      forecast.Decomposition    `json:"decomposition"`
	Anomalies          []anomaly.Anomaly         `json:"anomalies"`
	KPIs               *metrics.KPIs             `json:"kpis,omitempty"`
	Warnings           []string                  `json:"warnings,omitempty"`
	GeneratedAt        time.Time                 `json:"generated_at"`
}

// ForecastRequest asks for a projection of Series or of plain Values
type ForecastRequest struct {
	Series         []analytics.TimeSeriesPoint
	Values         []float64
	Method         string
	Periods        int
	Window         int
	SeasonalPeriod int
	Confidence     float64
}

// params are the request parameters after defaulting
type params struct {
	method     string
	periods    int
	window     int
	period     int
	threshold  float64
	detector   string
	confidence float64
	alpha      float64
}

func (s *ReportService) resolve(req *ReportRequest) params {
	p := params{
		method:     req.ForecastMethod,
		periods:    req.ForecastPeriods,
		window:     req.Window,
		period:     req.SeasonalPeriod,
		threshold:  req.AnomalyThreshold,
		detector:   req.AnomalyDetector,
		confidence: req.Confidence,
		alpha:      req.Alpha,
	}
	if p.method == "" {
		p.method = s.cfg.ForecastMethod
	}
	if p.periods <= 0 {
		p.periods = s.cfg.ForecastPeriods
	}
	if p.window <= 0 {
		p.window = s.cfg.MovingAvgWindow
	}
	if p.period <= 0 {
		p.period = s.cfg.SeasonalPeriod
	}
	if p.detector == "" {
		p.detector = defaultDetector
	}
	if p.threshold <= 0 {
		// the configured threshold is a z-score limit; iqr takes a fence multiplier
		p.threshold = s.cfg.AnomalyThreshold
		if p.detector == "iqr" {
			p.threshold = anomaly.DefaultThresholdFor(p.detector)
		}
	}
	if p.confidence <= 0 {
		p.confidence = s.cfg.Confidence
	}
	if p.alpha <= 0 {
		p.alpha = s.cfg.EMAAlpha
	}
	return p
}

// Generate runs every analysis over the request series and returns the report.
// A forecast that cannot be produced (too little data for the method) is
// reported as a warning rather than failing the whole report.
func (s *ReportService) Generate(ctx context.Context, req *ReportRequest) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewServiceError(CodeCanceled, err.Error())
	}

	series, err := s.seriesFrom(req.Series, req.Values)
	if err != nil {
		return nil, err
	}
	p := s.resolve(req)

	forecaster, err := forecast.GetForecaster(p.method)
	if err != nil {
		return nil, invalidForecaster(err)
	}
	if _, err := anomaly.GetDetector(p.detector); err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidMethod, err.Error(), map[string]interface{}{
			"available_detectors": anomaly.ListDetectors(),
		})
	}

	start := time.Now()
	reportID := uuid.New().String()
	log := logging.FromContext(logging.WithReportID(ctx, reportID))

	values := series.Values()
	report := &Report{
		ID:                 reportID,
		Points:             len(values),
		Summary:            stats.Summarize(values),
		Confidence:         p.confidence,
		ConfidenceInterval: stats.ConfidenceIntervalFor(values, p.confidence),
		Trend:              trend.CalculateTrend(series),
		Regression:         trend.LinearRegression(analytics.IndexPoints(values)),
		MovingAverage:      trend.MovingAverage(values, p.window),
		EMA:                trend.ExponentialMovingAverage(values, p.alpha),
		PeriodGrowth:       trend.PeriodOverPeriodGrowth(values),
		Decomposition:      forecast.SeasonalDecomposition(values, p.period),
		GeneratedAt:        s.now().UTC(),
	}

	result, err := forecaster.Forecast(series, s.forecastConfig(p.periods, p.window, p.period, p.confidence))
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("forecast skipped: %v", err))
		log.Warn("Forecast skipped", "method", p.method, "error", err)
	} else {
		report.Forecast = result
	}

	anomalies, err := anomaly.Run(p.detector, series, anomaly.DetectorConfig{Threshold: p.threshold})
	if err != nil {
		return nil, NewServiceError(CodeInvalidMethod, err.Error())
	}
	report.Anomalies = anomalies

	if req.Counts != nil {
		kpis := metrics.Compute(*req.Counts)
		report.KPIs = &kpis
	}

	if field := nonFiniteField(report); field != "" {
		log.Warn("Report overflowed", "field", field, "points", report.Points)
		return nil, overflowError(field)
	}

	log.Info("Report generated",
		"points", report.Points,
		"method", p.method,
		"trend", string(report.Trend),
		"anomalies", len(report.Anomalies),
		"latency_ms", time.Since(start).Milliseconds())

	return report, nil
}

// Forecast projects a series with the named registered method
func (s *ReportService) Forecast(ctx context.Context, req *ForecastRequest) (*forecast.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewServiceError(CodeCanceled, err.Error())
	}

	series, err := s.seriesFrom(req.Series, req.Values)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = s.cfg.ForecastMethod
	}
	forecaster, err := forecast.GetForecaster(method)
	if err != nil {
		return nil, invalidForecaster(err)
	}

	periods, window, period, confidence := req.Periods, req.Window, req.SeasonalPeriod, req.Confidence
	if periods <= 0 {
		periods = s.cfg.ForecastPeriods
	}
	if window <= 0 {
		window = s.cfg.MovingAvgWindow
	}
	if period <= 0 {
		period = s.cfg.SeasonalPeriod
	}
	if confidence <= 0 {
		confidence = s.cfg.Confidence
	}

	result, err := forecaster.Forecast(series, s.forecastConfig(periods, window, period, confidence))
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInsufficientData, err.Error(), map[string]interface{}{
			"method": method,
			"points": len(series),
		})
	}

	if !finiteForecast(result) {
		return nil, overflowError("forecast")
	}

	logging.FromContext(ctx).Debug("Forecast completed",
		"method", method,
		"points", len(series),
		"horizon", periods)

	return result, nil
}

// Validate checks a series the way Generate does, without analyzing it
func (s *ReportService) Validate(series []analytics.TimeSeriesPoint, values []float64) error {
	_, err := s.seriesFrom(series, values)
	return err
}

func (s *ReportService) forecastConfig(periods, window, period int, confidence float64) forecast.Config {
	cfg := forecast.DefaultConfig()
	cfg.Horizon = periods
	cfg.WindowSize = window
	cfg.SeasonalPeriod = period
	cfg.Confidence = confidence
	return cfg
}

// seriesFrom validates the input and returns it as a series. Plain values
// get zero timestamps.
func (s *ReportService) seriesFrom(series []analytics.TimeSeriesPoint, values []float64) (analytics.TimeSeriesData, error) {
	if len(series) == 0 && len(values) == 0 {
		return nil, NewServiceError(CodeInvalidRequest, "series is empty")
	}
	if len(series) > 0 && len(values) > 0 {
		return nil, NewServiceError(CodeInvalidRequest, "provide either series or values, not both")
	}

	if len(series) == 0 {
		series = make([]analytics.TimeSeriesPoint, len(values))
		for i, v := range values {
			series[i].Value = v
		}
	}

	if s.cfg.MaxSeriesLength > 0 && len(series) > s.cfg.MaxSeriesLength {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "series exceeds maximum length", map[string]interface{}{
			"length":     len(series),
			"max_length": s.cfg.MaxSeriesLength,
		})
	}

	for i, p := range series {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "series contains a non-finite value", map[string]interface{}{
				"index": i,
			})
		}
	}

	return series, nil
}

func invalidForecaster(err error) *ServiceError {
	return NewServiceErrorWithDetails(CodeInvalidMethod, err.Error(), map[string]interface{}{
		"available_methods": forecast.ListForecasters(),
	})
}
