package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/services"
	"github.com/fabzclean/analytics/internal/worker"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// JobSubmitter queues report jobs for the worker
type JobSubmitter interface {
	Submit(ctx context.Context, job worker.ReportJob) (string, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	logger  *logging.Logger
	reports *services.ReportService
	jobs    JobSubmitter
}

// New creates a new handler instance. jobs may be nil, in which case
// asynchronous report submission answers 503.
func New(logger *logging.Logger, reports *services.ReportService, jobs JobSubmitter) *Handler {
	return &Handler{
		logger:  logger,
		reports: reports,
		jobs:    jobs,
	}
}

// parseBody decodes the JSON body into v
func parseBody(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return services.NewServiceError(services.CodeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// requireValues rejects an empty sample
func requireValues(field string, values []float64) error {
	if len(values) == 0 {
		return services.NewServiceErrorWithDetails(services.CodeInvalidRequest, field+" must not be empty",
			map[string]interface{}{"field": field})
	}
	return nil
}

// EncodeJSON is the app's JSON encoder. Results that overflowed to NaN or
// infinity cannot be encoded and are reported as a rejected request.
func EncodeJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	var unsupported *json.UnsupportedValueError
	if errors.As(err, &unsupported) {
		return nil, services.NewServiceError(services.CodeInvalidRequest,
			"values are too large to analyze: result is "+unsupported.Str)
	}
	return data, err
}
