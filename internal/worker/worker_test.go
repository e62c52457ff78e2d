package worker

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabzclean/analytics/internal/analytics/stats"
	"github.com/fabzclean/analytics/internal/compression"
	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/queue"
	"github.com/fabzclean/analytics/internal/services"
)

func testWorkerConfig(compression string) config.WorkerConfig {
	cfg := config.DefaultConfig().Worker
	cfg.Enabled = true
	cfg.Compression = compression
	return cfg
}

// startTestWorker wires a worker and a submitter to one memory queue and
// returns a channel receiving every decoded result on subject
func startTestWorker(t *testing.T, cfg config.WorkerConfig, subject string) (*Submitter, <-chan *ReportJobResult) {
	t.Helper()
	logger := logging.NewNop()

	q, err := queue.NewQueue(config.QueueConfig{Type: "memory"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })

	reports := services.NewReportService(logger, config.DefaultConfig().Analytics)
	w, err := New(logger, q, reports, cfg)
	require.NoError(t, err)
	require.NoError(t, w.Start())

	results := make(chan *ReportJobResult, 4)
	require.NoError(t, q.Subscribe(subject, func(data []byte) error {
		result, err := DecodeResult(data)
		if err != nil {
			return err
		}
		results <- result
		return nil
	}))

	submitter, err := NewSubmitter(q, cfg)
	require.NoError(t, err)
	return submitter, results
}

func awaitResult(t *testing.T, results <-chan *ReportJobResult) *ReportJobResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job result")
		return nil
	}
}

func TestWorker_CompletesJob(t *testing.T) {
	for _, compression := range []string{"none", "snappy"} {
		t.Run(compression, func(t *testing.T) {
			cfg := testWorkerConfig(compression)
			submitter, results := startTestWorker(t, cfg, cfg.ResultSubject)

			id, err := submitter.Submit(context.Background(), ReportJob{
				Request: services.ReportRequest{Values: []float64{10, 12, 14, 16, 18, 20}},
			})
			require.NoError(t, err)
			assert.NotEmpty(t, id)

			result := awaitResult(t, results)
			assert.Equal(t, id, result.JobID)
			assert.Equal(t, JobCompleted, result.Status)
			assert.Nil(t, result.Error)
			require.NotNil(t, result.Report)
			assert.Equal(t, 6, result.Report.Points)
			assert.False(t, result.CompletedAt.IsZero())
		})
	}
}

func TestWorker_ReplyTo(t *testing.T) {
	cfg := testWorkerConfig("snappy")
	submitter, results := startTestWorker(t, cfg, "analytics.reports.result.client-7")

	_, err := submitter.Submit(context.Background(), ReportJob{
		ID:      "job-7",
		ReplyTo: "analytics.reports.result.client-7",
		Request: services.ReportRequest{Values: []float64{1, 2, 3}},
	})
	require.NoError(t, err)

	result := awaitResult(t, results)
	assert.Equal(t, "job-7", result.JobID)
	assert.Equal(t, JobCompleted, result.Status)
}

func TestWorker_FailedJob(t *testing.T) {
	cfg := testWorkerConfig("none")
	submitter, results := startTestWorker(t, cfg, cfg.ResultSubject)

	_, err := submitter.Submit(context.Background(), ReportJob{
		Request: services.ReportRequest{Values: []float64{1, 2}, ForecastMethod: "arima"},
	})
	require.NoError(t, err)

	result := awaitResult(t, results)
	assert.Equal(t, JobFailed, result.Status)
	assert.Nil(t, result.Report)
	require.NotNil(t, result.Error)
	assert.Equal(t, services.CodeInvalidMethod, result.Error.Code)
	assert.Contains(t, result.Error.Details, "available_methods")
}

func TestWorker_OverflowingSeries(t *testing.T) {
	cfg := testWorkerConfig("snappy")
	submitter, results := startTestWorker(t, cfg, cfg.ResultSubject)

	_, err := submitter.Submit(context.Background(), ReportJob{
		Request: services.ReportRequest{Values: []float64{1e200, -1e200, 1e200, -1e200}},
	})
	require.NoError(t, err)

	result := awaitResult(t, results)
	assert.Equal(t, JobFailed, result.Status)
	assert.Nil(t, result.Report)
	require.NotNil(t, result.Error)
	assert.Equal(t, services.CodeInvalidRequest, result.Error.Code)
}

func TestEncodeResult_Unencodable(t *testing.T) {
	c, err := compression.GetCompressor(compression.Snappy)
	require.NoError(t, err)

	completed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	payload, err := encodeResult(c, &ReportJobResult{
		JobID:       "job-inf",
		Status:      JobCompleted,
		Report:      &services.Report{Summary: stats.Summary{Variance: math.Inf(1)}},
		CompletedAt: completed,
	})
	require.NoError(t, err)

	result, err := DecodeResult(payload)
	require.NoError(t, err)
	assert.Equal(t, "job-inf", result.JobID)
	assert.Equal(t, JobFailed, result.Status)
	assert.Nil(t, result.Report)
	require.NotNil(t, result.Error)
	assert.Equal(t, services.CodeInternal, result.Error.Code)
	assert.True(t, completed.Equal(result.CompletedAt))
}

func TestWorker_DropsUndecodableJob(t *testing.T) {
	logger := logging.NewNop()
	q, err := queue.NewQueue(config.QueueConfig{Type: "memory"}, logger)
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	cfg := testWorkerConfig("none")
	w, err := New(logger, q, services.NewReportService(logger, config.DefaultConfig().Analytics), cfg)
	require.NoError(t, err)

	for _, payload := range [][]byte{nil, {9, '{'}, {0, 'n', 'o', 't'}} {
		assert.NoError(t, w.handle(payload))
	}
	assert.Zero(t, q.(*queue.MemoryQueue).Pending(cfg.ResultSubject))
}

func TestNew_InvalidCompression(t *testing.T) {
	logger := logging.NewNop()
	q, err := queue.NewQueue(config.QueueConfig{Type: "memory"}, logger)
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	_, err = New(logger, q, nil, testWorkerConfig("brotli"))
	assert.Error(t, err)

	_, err = NewSubmitter(q, testWorkerConfig("brotli"))
	assert.Error(t, err)
}

func TestWorker_StartStop(t *testing.T) {
	logger := logging.NewNop()
	q, err := queue.NewQueue(config.QueueConfig{Type: "memory"}, logger)
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	w, err := New(logger, q, services.NewReportService(logger, config.DefaultConfig().Analytics), testWorkerConfig("none"))
	require.NoError(t, err)

	require.NoError(t, w.Start())
	assert.ErrorIs(t, w.Start(), queue.ErrAlreadySubscribed)
	require.NoError(t, w.Stop())
	assert.ErrorIs(t, w.Stop(), queue.ErrNotSubscribed)
}
