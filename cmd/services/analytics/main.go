package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/handlers"
	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/queue"
	"github.com/fabzclean/analytics/internal/router"
	"github.com/fabzclean/analytics/internal/services"
	"github.com/fabzclean/analytics/internal/worker"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("Analytics service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	reports := services.NewReportService(logger, cfg.Analytics)

	// The queue is only needed for asynchronous report jobs
	var jobs handlers.JobSubmitter
	var reportWorker *worker.Worker
	if cfg.Worker.Enabled {
		logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
		queueClient, err := queue.NewQueue(cfg.Queue, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Queue", "error", err)
		}
		defer func() { _ = queueClient.Close() }()

		submitter, err := worker.NewSubmitter(queueClient, cfg.Worker)
		if err != nil {
			logger.Fatal("Failed to create job submitter", "error", err)
		}
		jobs = submitter

		reportWorker, err = worker.New(logger, queueClient, reports, cfg.Worker)
		if err != nil {
			logger.Fatal("Failed to create report worker", "error", err)
		}
		if err := reportWorker.Start(); err != nil {
			logger.Fatal("Failed to start report worker", "error", err)
		}
	} else {
		logger.Info("Report worker disabled, POST /v1/reports/jobs will answer 503")
	}

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, reports, jobs, *cfg)

	// Start server in goroutine
	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if reportWorker != nil {
		if err := reportWorker.Stop(); err != nil {
			logger.Warn("Failed to stop report worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
