package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/anomaly"
	"github.com/fabzclean/analytics/internal/analytics/stats"
	"github.com/fabzclean/analytics/internal/analytics/trend"
	"github.com/fabzclean/analytics/internal/queue"
	"github.com/fabzclean/analytics/internal/services"
	"github.com/fabzclean/analytics/internal/worker"
)

// cmdSummary prints descriptive statistics and the trend of a series.
// report summary sales.csv
var cmdSummary = cli.Command{
	Action:    summarize,
	Name:      "summary",
	Aliases:   []string{"s"},
	Usage:     "Prints descriptive statistics, confidence interval and trend.",
	ArgsUsage: "<file.csv>",
	Flags:     withSeriesFlags(&jsonFlag),
}

// cmdForecast projects a series forward.
// report forecast --method auto --periods 6 sales.csv
var cmdForecast = cli.Command{
	Action:    forecastSeries,
	Name:      "forecast",
	Aliases:   []string{"f"},
	Usage:     "Projects the series forward with a registered forecaster.",
	ArgsUsage: "<file.csv>",
	Flags: withSeriesFlags(
		&configFlag, &methodFlag, &periodsFlag, &windowFlag, &seasonalPeriodFlag, &jsonFlag,
	),
}

// cmdAnomalies lists anomalous points.
// report anomalies --threshold 2 sales.csv
var cmdAnomalies = cli.Command{
	Action:    findAnomalies,
	Name:      "anomalies",
	Aliases:   []string{"a"},
	Usage:     "Lists points that sit far from the rest of the series.",
	ArgsUsage: "<file.csv>",
	Flags:     withSeriesFlags(&thresholdFlag, &detectorFlag, &jsonFlag),
}

// cmdReport generates the full report locally.
var cmdReport = cli.Command{
	Action:    generateReport,
	Name:      "report",
	Aliases:   []string{"r"},
	Usage:     "Generates the full analytics report as JSON.",
	ArgsUsage: "<file.csv>",
	Flags: withSeriesFlags(
		&configFlag, &methodFlag, &periodsFlag, &windowFlag, &seasonalPeriodFlag, &thresholdFlag, &detectorFlag,
	),
}

// cmdSubmit queues a report job and waits for the worker's answer.
var cmdSubmit = cli.Command{
	Action:      submitReport,
	Name:        "submit",
	Usage:       "Queues a report job for a running worker and prints the result.",
	Description: "Uses the queue and worker sections of --config. The result is read from a reply subject unique to this invocation.",
	ArgsUsage:   "<file.csv>",
	Flags: withSeriesFlags(
		&configFlag, &methodFlag, &periodsFlag, &timeoutFlag,
	),
}

func summarize(cCtx *cli.Context) error {
	series, err := readSeries(cCtx)
	if err != nil {
		return err
	}
	values := series.Values()
	summary := stats.Summarize(values)
	ci := stats.ConfidenceIntervalFor(values, 0.95)
	direction := trend.CalculateTrend(series)

	w := cCtx.App.Writer
	if cCtx.Bool(jsonFlag.Name) {
		return writeJSON(w, map[string]interface{}{
			"summary":             summary,
			"confidence_interval": ci,
			"trend":               direction,
		})
	}

	tbl := newTable(w, "Metric", "Value")
	tbl.Append([]string{"Count", strconv.Itoa(summary.Count)})
	tbl.Append([]string{"Mean", num(summary.Mean)})
	tbl.Append([]string{"Median", num(summary.Median)})
	tbl.Append([]string{"Std Dev", num(summary.StdDev)})
	tbl.Append([]string{"Min", num(summary.Min)})
	tbl.Append([]string{"Max", num(summary.Max)})
	tbl.Append([]string{"Q1 / Q3", num(summary.Q1) + " / " + num(summary.Q3)})
	tbl.Append([]string{"95% CI", fmt.Sprintf("[%s, %s]", num(ci.Lower), num(ci.Upper))})
	tbl.Append([]string{"Trend", string(direction)})
	tbl.Render()
	return nil
}

func forecastSeries(cCtx *cli.Context) error {
	series, err := readSeries(cCtx)
	if err != nil {
		return err
	}
	svc, err := reportService(cCtx)
	if err != nil {
		return err
	}

	result, err := svc.Forecast(context.Background(), &services.ForecastRequest{
		Series:         series,
		Method:         cCtx.String(methodFlag.Name),
		Periods:        cCtx.Int(periodsFlag.Name),
		Window:         cCtx.Int(windowFlag.Name),
		SeasonalPeriod: cCtx.Int(seasonalPeriodFlag.Name),
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	w := cCtx.App.Writer
	if cCtx.Bool(jsonFlag.Name) {
		return writeJSON(w, result)
	}

	tbl := newTable(w, "Step", "Time", "Forecast", "Lower", "Upper")
	for i, p := range result.Predictions {
		tbl.Append([]string{strconv.Itoa(i + 1), date(p.Time), num(p.Value), num(p.LowerBound), num(p.UpperBound)})
	}
	tbl.Render()

	info := result.ModelInfo
	_, err = fmt.Fprintf(w, "model: %s  points: %d  MAE: %s  RMSE: %s  MAPE: %s%%\n",
		info.Algorithm, info.DataPoints, num(info.MAE), num(info.RMSE), num(info.MAPE))
	return err
}

func findAnomalies(cCtx *cli.Context) error {
	series, err := readSeries(cCtx)
	if err != nil {
		return err
	}

	found, err := anomaly.Run(cCtx.String(detectorFlag.Name), series, anomaly.DetectorConfig{
		Threshold: cCtx.Float64(thresholdFlag.Name),
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("%v (available: %v)", err, anomaly.ListDetectors()), 2)
	}

	w := cCtx.App.Writer
	if cCtx.Bool(jsonFlag.Name) {
		return writeJSON(w, found)
	}
	if len(found) == 0 {
		_, err := fmt.Fprintln(w, "no anomalies")
		return err
	}

	tbl := newTable(w, "Index", "Time", "Value", "Score", "Type")
	for _, a := range found {
		tbl.Append([]string{strconv.Itoa(a.Index), a.Time, num(a.Value), num(a.Score), string(a.Type)})
	}
	tbl.Render()
	return nil
}

func reportRequest(cCtx *cli.Context, series analytics.TimeSeriesData) services.ReportRequest {
	return services.ReportRequest{
		Series:           series,
		ForecastMethod:   cCtx.String(methodFlag.Name),
		ForecastPeriods:  cCtx.Int(periodsFlag.Name),
		Window:           cCtx.Int(windowFlag.Name),
		SeasonalPeriod:   cCtx.Int(seasonalPeriodFlag.Name),
		AnomalyThreshold: cCtx.Float64(thresholdFlag.Name),
		AnomalyDetector:  cCtx.String(detectorFlag.Name),
	}
}

func generateReport(cCtx *cli.Context) error {
	series, err := readSeries(cCtx)
	if err != nil {
		return err
	}
	svc, err := reportService(cCtx)
	if err != nil {
		return err
	}

	req := reportRequest(cCtx, series)
	report, err := svc.Generate(context.Background(), &req)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return writeJSON(cCtx.App.Writer, report)
}

func submitReport(cCtx *cli.Context) error {
	series, err := readSeries(cCtx)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	q, err := queue.NewQueue(cfg.Queue, toolLogger(cCtx))
	if err != nil {
		return err
	}
	defer func() { _ = q.Close() }()

	replyTo := queue.NewReplySubject()
	results := make(chan *worker.ReportJobResult, 1)
	if err := q.Subscribe(replyTo, func(data []byte) error {
		result, err := worker.DecodeResult(data)
		if err != nil {
			return err
		}
		select {
		case results <- result:
		default:
		}
		return nil
	}); err != nil {
		return err
	}

	submitter, err := worker.NewSubmitter(q, cfg.Worker)
	if err != nil {
		return err
	}
	jobID, err := submitter.Submit(context.Background(), worker.ReportJob{
		ReplyTo: replyTo,
		Request: reportRequest(cCtx, series),
	})
	if err != nil {
		return err
	}

	select {
	case result := <-results:
		if result.Status == worker.JobFailed {
			return cli.Exit(fmt.Sprintf("job %s failed: %s: %s", jobID, result.Error.Code, result.Error.Message), 1)
		}
		return writeJSON(cCtx.App.Writer, result.Report)
	case <-time.After(cCtx.Duration(timeoutFlag.Name)):
		return cli.Exit(fmt.Sprintf("timed out waiting for job %s", jobID), 1)
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader(header)
	tbl.SetBorder(true)
	tbl.SetAutoWrapText(false)
	return tbl
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
