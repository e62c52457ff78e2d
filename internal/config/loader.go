package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")                        // Current directory
		v.AddConfigPath("./configs")                // Project configs directory
		v.AddConfigPath("./config")                 // Alternative config directory
		v.AddConfigPath("/etc/fabzclean-analytics") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides, e.g. ANALYTICS_SERVER_HTTP_PORT
	v.SetEnvPrefix("ANALYTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout.String())

	// Analytics defaults
	v.SetDefault("analytics.forecast_periods", d.Analytics.ForecastPeriods)
	v.SetDefault("analytics.forecast_method", d.Analytics.ForecastMethod)
	v.SetDefault("analytics.moving_avg_window", d.Analytics.MovingAvgWindow)
	v.SetDefault("analytics.seasonal_period", d.Analytics.SeasonalPeriod)
	v.SetDefault("analytics.anomaly_threshold", d.Analytics.AnomalyThreshold)
	v.SetDefault("analytics.confidence", d.Analytics.Confidence)
	v.SetDefault("analytics.ema_alpha", d.Analytics.EMAAlpha)
	v.SetDefault("analytics.max_series_length", d.Analytics.MaxSeriesLength)

	// Queue defaults
	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.url", d.Queue.URL)
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)
	v.SetDefault("queue.redis_group", d.Queue.RedisGroup)
	v.SetDefault("queue.kafka_group_id", d.Queue.KafkaGroupID)

	// Worker defaults
	v.SetDefault("worker.enabled", d.Worker.Enabled)
	v.SetDefault("worker.request_subject", d.Worker.RequestSubject)
	v.SetDefault("worker.result_subject", d.Worker.ResultSubject)
	v.SetDefault("worker.compression", d.Worker.Compression)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			HTTPPort:        5580,
			BodyLimit:       4 * 1024 * 1024,
			ShutdownTimeout: 10 * time.Second,
		},
		Analytics: AnalyticsConfig{
			ForecastPeriods:  6,
			ForecastMethod:   "linear",
			MovingAvgWindow:  3,
			SeasonalPeriod:   12,
			AnomalyThreshold: 3,
			Confidence:       0.95,
			EMAAlpha:         0.5,
			MaxSeriesLength:  100000,
		},
		Queue: QueueConfig{
			Type:         "nats",
			URL:          "nats://localhost:4222",
			RedisStream:  "analytics",
			RedisGroup:   "analytics-group",
			KafkaGroupID: "analytics-worker",
		},
		Worker: WorkerConfig{
			Enabled:        false,
			RequestSubject: "analytics.reports.request",
			ResultSubject:  "analytics.reports.result",
			Compression:    "none",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
