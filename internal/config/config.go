package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`             // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort        int           `mapstructure:"http_port"`        // HTTP server port
	BodyLimit       int           `mapstructure:"body_limit"`       // Max request body in bytes
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // Grace period for in-flight requests
}

// AnalyticsConfig holds the defaults applied to report requests that leave
// a parameter unset
type AnalyticsConfig struct {
	ForecastPeriods  int     `mapstructure:"forecast_periods"`  // Number of periods to project
	ForecastMethod   string  `mapstructure:"forecast_method"`   // Registered forecaster name
	MovingAvgWindow  int     `mapstructure:"moving_avg_window"` // Trailing window for smoothing and MA forecasts
	SeasonalPeriod   int     `mapstructure:"seasonal_period"`   // Period for seasonal decomposition (12 = monthly data)
	AnomalyThreshold float64 `mapstructure:"anomaly_threshold"` // z-score limit
	Confidence       float64 `mapstructure:"confidence"`        // 0.90, 0.95 or 0.99
	EMAAlpha         float64 `mapstructure:"ema_alpha"`         // Smoothing factor in (0, 1]
	MaxSeriesLength  int     `mapstructure:"max_series_length"` // Upper bound on accepted series
}

// QueueConfig represents message queue configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"`     // Queue type: nats (default), redis, kafka, memory
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`       // Redis database number (default: 0)
	RedisStream   string `mapstructure:"redis_stream"`   // Redis stream prefix (default: "analytics")
	RedisGroup    string `mapstructure:"redis_group"`    // Redis consumer group (default: "analytics-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // Redis consumer name (default: hostname)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`  // Kafka broker addresses
	KafkaGroupID string   `mapstructure:"kafka_group_id"` // Kafka consumer group ID
}

// WorkerConfig controls the queue-driven report worker
type WorkerConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	RequestSubject string `mapstructure:"request_subject"` // Subject report jobs arrive on
	ResultSubject  string `mapstructure:"result_subject"`  // Subject results go to when a job has no reply_to
	Compression    string `mapstructure:"compression"`     // none, snappy
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics config: %w", err)
	}

	if err := c.Worker.Validate(); err != nil {
		return fmt.Errorf("worker config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.BodyLimit < 0 {
		return fmt.Errorf("body_limit cannot be negative")
	}

	return nil
}

// Validate validates analytics defaults
func (c *AnalyticsConfig) Validate() error {
	if c.ForecastPeriods < 1 {
		return fmt.Errorf("analytics.forecast_periods must be at least 1")
	}

	if c.MovingAvgWindow < 1 {
		return fmt.Errorf("analytics.moving_avg_window must be at least 1")
	}

	if c.SeasonalPeriod < 2 {
		return fmt.Errorf("analytics.seasonal_period must be at least 2")
	}

	if c.AnomalyThreshold <= 0 {
		return fmt.Errorf("analytics.anomaly_threshold must be positive")
	}

	if c.Confidence <= 0 || c.Confidence >= 1 {
		return fmt.Errorf("analytics.confidence must be between 0 and 1")
	}

	if c.EMAAlpha <= 0 || c.EMAAlpha > 1 {
		return fmt.Errorf("analytics.ema_alpha must be in (0, 1]")
	}

	if c.MaxSeriesLength < 1 {
		return fmt.Errorf("analytics.max_series_length must be at least 1")
	}

	return nil
}

// Validate validates worker configuration
func (c *WorkerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.RequestSubject == "" {
		return fmt.Errorf("worker.request_subject is required")
	}

	if c.ResultSubject == "" {
		return fmt.Errorf("worker.result_subject is required")
	}

	if c.Compression != "" && c.Compression != "none" && c.Compression != "snappy" {
		return fmt.Errorf("worker.compression must be 'none' or 'snappy'")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Logging.Level == "info" && c.Logging.Format == "json"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}
