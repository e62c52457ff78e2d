package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/handlers"
	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/middleware"
	"github.com/fabzclean/analytics/internal/services"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, reports *services.ReportService, jobs handlers.JobSubmitter, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, reports, jobs)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddlewareWithConfig(logger, logging.DefaultMiddlewareConfig()))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled))
	v1.Get("/methods", h.Methods)

	// Descriptive statistics
	st := v1.Group("/stats")
	st.Post("/summary", h.Summary)
	st.Post("/percentile", h.Percentile)
	st.Post("/confidence-interval", h.ConfidenceInterval)
	st.Post("/correlation", h.Correlation)

	// Growth and smoothing
	tr := v1.Group("/trend")
	tr.Post("/growth", h.Growth)
	tr.Post("/cagr", h.CAGR)
	tr.Post("/moving-average", h.MovingAverage)
	tr.Post("/ema", h.EMA)
	tr.Post("/regression", h.Regression)
	tr.Post("/direction", h.Direction)

	// Forecasting
	v1.Post("/forecast", h.Forecast)
	v1.Post("/forecast/decompose", h.Decompose)

	v1.Post("/anomalies", h.Anomalies)
	v1.Post("/metrics/business", h.BusinessMetrics)

	// Reports, synchronous and queued
	v1.Post("/reports", h.CreateReport)
	v1.Post("/reports/jobs", h.SubmitReport)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, reports *services.ReportService, jobs handlers.JobSubmitter, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "FabZClean Analytics",
		DisableStartupMessage: true,
		BodyLimit:             cfg.Server.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(logger),
		JSONEncoder:           handlers.EncodeJSON,
	})

	Setup(app, logger, reports, jobs, cfg)

	return app
}
