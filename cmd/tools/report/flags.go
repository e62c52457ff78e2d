package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/services"
)

var (
	verboseFlag = cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log analysis steps to stderr",
	}
	configFlag = cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "service configuration file; analytics defaults and queue settings are read from it",
	}
	valueColumnFlag = cli.StringFlag{
		Name:  "column",
		Usage: "CSV header of the value column (default: \"value\", else the last column)",
	}
	dateColumnFlag = cli.StringFlag{
		Name:  "date-column",
		Usage: "CSV header of the date column (default: \"date\" when present)",
	}
	dateFormatFlag = cli.StringFlag{
		Name:  "date-format",
		Usage: "Go layout of the date column",
		Value: "2006-01-02",
	}
	noHeaderFlag = cli.BoolFlag{
		Name:  "no-header",
		Usage: "CSV has no header row; columns are date,value or a single value",
	}
	methodFlag = cli.StringFlag{
		Name:    "method",
		Aliases: []string{"m"},
		Usage:   "forecast method: linear, moving_average, seasonal_naive, auto",
	}
	periodsFlag = cli.IntFlag{
		Name:    "periods",
		Aliases: []string{"n"},
		Usage:   "number of periods to forecast",
	}
	windowFlag = cli.IntFlag{
		Name:  "window",
		Usage: "moving average window",
	}
	seasonalPeriodFlag = cli.IntFlag{
		Name:  "seasonal-period",
		Usage: "season length in points",
	}
	thresholdFlag = cli.Float64Flag{
		Name:    "threshold",
		Aliases: []string{"t"},
		Usage:   "anomaly threshold (z-score limit, or fence multiplier for iqr)",
	}
	detectorFlag = cli.StringFlag{
		Name:  "detector",
		Usage: "anomaly detector: zscore, iqr",
		Value: "zscore",
	}
	jsonFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "print the full result as JSON",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "how long to wait for the worker's result",
		Value: time.Minute,
	}
)

var seriesFlags = []cli.Flag{&valueColumnFlag, &dateColumnFlag, &dateFormatFlag, &noHeaderFlag}

// withSeriesFlags appends the CSV flags to a command's own flags
func withSeriesFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, seriesFlags...)
}

// readSeries loads the CSV named by the first argument
func readSeries(cCtx *cli.Context) (analytics.TimeSeriesData, error) {
	path := cCtx.Args().First()
	if path == "" {
		return nil, cli.Exit("missing CSV file argument (use - for stdin)", 2)
	}

	opts := defaultCSVOptions()
	opts.ValueColumn = cCtx.String(valueColumnFlag.Name)
	opts.DateColumn = cCtx.String(dateColumnFlag.Name)
	opts.DateFormat = cCtx.String(dateFormatFlag.Name)
	opts.NoHeader = cCtx.Bool(noHeaderFlag.Name)
	return loadSeriesFile(path, opts)
}

// loadConfig reads --config, or the defaults when it is not given
func loadConfig(cCtx *cli.Context) (*config.Config, error) {
	path := cCtx.String(configFlag.Name)
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

func toolLogger(cCtx *cli.Context) *logging.Logger {
	if cCtx.Bool(verboseFlag.Name) {
		return logging.NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, zerolog.DebugLevel)
	}
	return logging.NewNop()
}

// reportService builds the service with the configured analytics defaults
func reportService(cCtx *cli.Context) (*services.ReportService, error) {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return nil, err
	}
	return services.NewReportService(toolLogger(cCtx), cfg.Analytics), nil
}
