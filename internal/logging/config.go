package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/fabzclean/analytics/internal/config"
)

// consoleTimeFormats maps logging.time_format names to layouts
var consoleTimeFormats = map[string]string{
	"RFC3339":     time.RFC3339,
	"RFC3339Nano": time.RFC3339Nano,
	"DateTime":    time.DateTime,
	"Unix":        time.UnixDate,
	"UnixMs":      time.StampMilli,
	"Kitchen":     time.Kitchen,
}

// NewFromConfig builds a logger for the logging section of the config.
// An unparsable level means info; unknown time formats mean RFC3339.
func NewFromConfig(cfg config.LoggingConfig) (*Logger, error) {
	out, err := openOutput(cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	return newLogger(formatted(out, cfg.Format, cfg.TimeFormat), levelOf(cfg.Level)), nil
}

// Setup builds a logger from cfg and installs it as the global logger
func Setup(cfg config.LoggingConfig) (*Logger, error) {
	logger, err := NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	SetGlobal(logger)
	return logger, nil
}

func levelOf(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// openOutput resolves stdout, stderr or an append-only log file whose
// directory is created on demand
func openOutput(path string) (io.Writer, error) {
	switch path {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

// formatted wraps out in a console writer for the human-readable formats
func formatted(out io.Writer, format, timeFormat string) io.Writer {
	if format != "console" && format != "pretty" {
		return out
	}
	layout, ok := consoleTimeFormats[timeFormat]
	if !ok {
		layout = time.RFC3339
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: layout, NoColor: out != os.Stdout && out != os.Stderr}
}
