package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/middleware"
	"github.com/fabzclean/analytics/internal/models"
	"github.com/fabzclean/analytics/internal/queue"
	"github.com/fabzclean/analytics/internal/services"
)

// MockQueuePublisher records published messages
type MockQueuePublisher struct {
	mu          sync.Mutex
	published   []queue.BatchMessage
	shouldError bool
}

func (m *MockQueuePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if m.shouldError {
		return errors.New("broker unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, queue.BatchMessage{Subject: subject, Data: data})
	return nil
}

func (m *MockQueuePublisher) PublishBatch(ctx context.Context, messages []queue.BatchMessage) (int, error) {
	for _, msg := range messages {
		if err := m.Publish(ctx, msg.Subject, msg.Data); err != nil {
			return 0, err
		}
	}
	return len(messages), nil
}

func (m *MockQueuePublisher) Close() error { return nil }

func (m *MockQueuePublisher) messages() []queue.BatchMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]queue.BatchMessage(nil), m.published...)
}

// createTestApp mounts h's routes behind the production error handler
func createTestApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logging.NewNop()),
		JSONEncoder:  EncodeJSON,
	})
	app.Get("/v1/methods", h.Methods)
	app.Post("/v1/stats/summary", h.Summary)
	app.Post("/v1/stats/percentile", h.Percentile)
	app.Post("/v1/stats/confidence-interval", h.ConfidenceInterval)
	app.Post("/v1/stats/correlation", h.Correlation)
	app.Post("/v1/trend/growth", h.Growth)
	app.Post("/v1/trend/cagr", h.CAGR)
	app.Post("/v1/trend/moving-average", h.MovingAverage)
	app.Post("/v1/trend/ema", h.EMA)
	app.Post("/v1/trend/regression", h.Regression)
	app.Post("/v1/trend/direction", h.Direction)
	app.Post("/v1/forecast", h.Forecast)
	app.Post("/v1/forecast/decompose", h.Decompose)
	app.Post("/v1/anomalies", h.Anomalies)
	app.Post("/v1/metrics/business", h.BusinessMetrics)
	app.Post("/v1/reports", h.CreateReport)
	app.Post("/v1/reports/jobs", h.SubmitReport)
	return app
}

func createTestHandler(jobs JobSubmitter) *Handler {
	logger := logging.NewNop()
	return New(logger, services.NewReportService(logger, config.DefaultConfig().Analytics), jobs)
}

// postJSON sends body to path and decodes the response into out when non-nil
func postJSON(t *testing.T, app *fiber.App, path string, body interface{}, out interface{}) int {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(data, out), "body: %s", data)
	}
	return resp.StatusCode
}

// postError sends body and decodes the error envelope
func postError(t *testing.T, app *fiber.App, path string, body interface{}) (int, models.ErrorDetail) {
	t.Helper()
	var resp models.ErrorResponse
	status := postJSON(t, app, path, body, &resp)
	return status, resp.Error
}

func httptestGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
