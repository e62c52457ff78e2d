package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/models"
	"github.com/fabzclean/analytics/internal/services"
)

const testAPIKey = "test-key-0123456789abcdef0123456789"

func createTestApp(authEnabled bool) *fiber.App {
	cfg := config.DefaultConfig()
	cfg.Auth = config.AuthConfig{Enabled: authEnabled, APIKeys: []string{testAPIKey}}

	logger := logging.NewNop()
	return New(logger, services.NewReportService(logger, cfg.Analytics), nil, *cfg)
}

func request(method, path, body, apiKey string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	return req
}

func TestRouter_Routes(t *testing.T) {
	app := createTestApp(true)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		apiKey string
		status int
	}{
		{"health needs no key", http.MethodGet, "/health", "", "", fiber.StatusOK},
		{"v1 without key", http.MethodPost, "/v1/stats/summary", `{"values":[1,2]}`, "", fiber.StatusUnauthorized},
		{"v1 with wrong key", http.MethodPost, "/v1/stats/summary", `{"values":[1,2]}`, strings.Repeat("x", 40), fiber.StatusUnauthorized},
		{"summary", http.MethodPost, "/v1/stats/summary", `{"values":[1,2]}`, testAPIKey, fiber.StatusOK},
		{"percentile", http.MethodPost, "/v1/stats/percentile", `{"values":[1,2],"p":50}`, testAPIKey, fiber.StatusOK},
		{"confidence interval", http.MethodPost, "/v1/stats/confidence-interval", `{"values":[1,2]}`, testAPIKey, fiber.StatusOK},
		{"correlation", http.MethodPost, "/v1/stats/correlation", `{"x":[1,2],"y":[2,4]}`, testAPIKey, fiber.StatusOK},
		{"growth", http.MethodPost, "/v1/trend/growth", `{"current":2,"previous":1}`, testAPIKey, fiber.StatusOK},
		{"cagr", http.MethodPost, "/v1/trend/cagr", `{"start":1,"end":4,"periods":2}`, testAPIKey, fiber.StatusOK},
		{"moving average", http.MethodPost, "/v1/trend/moving-average", `{"values":[1,2,3],"window":2}`, testAPIKey, fiber.StatusOK},
		{"ema", http.MethodPost, "/v1/trend/ema", `{"values":[1,2,3],"alpha":0.3}`, testAPIKey, fiber.StatusOK},
		{"regression", http.MethodPost, "/v1/trend/regression", `{"points":[{"x":0,"y":1},{"x":1,"y":3}]}`, testAPIKey, fiber.StatusOK},
		{"direction", http.MethodPost, "/v1/trend/direction", `{"series":[{"time":"2025-01-01T00:00:00Z","value":1}]}`, testAPIKey, fiber.StatusOK},
		{"forecast", http.MethodPost, "/v1/forecast", `{"values":[1,2,3],"method":"linear"}`, testAPIKey, fiber.StatusOK},
		{"decompose", http.MethodPost, "/v1/forecast/decompose", `{"values":[1,2,3],"period":2}`, testAPIKey, fiber.StatusOK},
		{"anomalies", http.MethodPost, "/v1/anomalies", `{"values":[1,2,3]}`, testAPIKey, fiber.StatusOK},
		{"business metrics", http.MethodPost, "/v1/metrics/business", `{"revenue":10,"orders":2}`, testAPIKey, fiber.StatusOK},
		{"report", http.MethodPost, "/v1/reports", `{"values":[1,2,3]}`, testAPIKey, fiber.StatusOK},
		{"report jobs without worker", http.MethodPost, "/v1/reports/jobs", `{"request":{"values":[1]}}`, testAPIKey, fiber.StatusServiceUnavailable},
		{"methods", http.MethodGet, "/v1/methods", "", testAPIKey, fiber.StatusOK},
		{"unknown route", http.MethodGet, "/v2/nothing", "", "", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(request(tt.method, tt.path, tt.body, tt.apiKey))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRouter_AuthDisabled(t *testing.T) {
	app := createTestApp(false)

	resp, err := app.Test(request(http.MethodPost, "/v1/stats/summary", `{"values":[3]}`, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(logging.RequestIDHeader))
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	app := createTestApp(false)

	resp, err := app.Test(request(http.MethodPost, "/v1/forecast", `{"values":[1],"method":"linear"}`, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, services.CodeInsufficientData, body.Error.Code)
	assert.Equal(t, "/v1/forecast", body.Error.Path)
	assert.Equal(t, "linear", body.Error.Details["method"])
}

func TestRouter_CORS(t *testing.T) {
	app := createTestApp(true)

	req := httptest.NewRequest(http.MethodOptions, "/v1/stats/summary", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
