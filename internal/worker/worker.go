package worker

import (
	"context"
	"time"

	"github.com/fabzclean/analytics/internal/compression"
	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/models"
	"github.com/fabzclean/analytics/internal/queue"
	"github.com/fabzclean/analytics/internal/services"
	"github.com/fabzclean/analytics/internal/utils"
)

// Worker consumes report jobs and publishes their results
type Worker struct {
	logger     *logging.Logger
	queue      queue.Queue
	reports    *services.ReportService
	cfg        config.WorkerConfig
	compressor compression.Compressor
	now        func() time.Time
}

// New creates a Worker. Results are compressed with cfg.Compression.
func New(logger *logging.Logger, q queue.Queue, reports *services.ReportService, cfg config.WorkerConfig) (*Worker, error) {
	c, err := compression.ForName(cfg.Compression)
	if err != nil {
		return nil, err
	}
	return &Worker{
		logger:     logger,
		queue:      q,
		reports:    reports,
		cfg:        cfg,
		compressor: c,
		now:        time.Now,
	}, nil
}

// Start subscribes to the request subject
func (w *Worker) Start() error {
	if err := w.queue.Subscribe(w.cfg.RequestSubject, w.handle); err != nil {
		return err
	}
	w.logger.Info("Report worker started",
		"request_subject", w.cfg.RequestSubject,
		"result_subject", w.cfg.ResultSubject,
		"compression", w.compressor.Algorithm().String())
	return nil
}

// Stop unsubscribes from the request subject
func (w *Worker) Stop() error {
	return w.queue.Unsubscribe(w.cfg.RequestSubject)
}

// handle processes one job message. Undecodable messages are logged and
// acknowledged; only a failed result publish asks for redelivery.
func (w *Worker) handle(data []byte) error {
	job, err := DecodeJob(data)
	if err != nil {
		w.logger.Error("Dropping undecodable report job", "error", err, "bytes", len(data))
		return nil
	}

	ctx := logging.WithLogger(logging.WithJobID(context.Background(), job.ID), w.logger)
	log := logging.FromContext(ctx)

	result := w.process(ctx, job)

	subject := job.ReplyTo
	if subject == "" {
		subject = w.cfg.ResultSubject
	}
	payload, err := encodeResult(w.compressor, result)
	if err != nil {
		log.Error("Failed to encode job result", "error", err)
		return err
	}

	pubCtx, cancel := context.WithTimeout(context.Background(), utils.PublishTimeout)
	defer cancel()
	if err := w.queue.Publish(pubCtx, subject, payload); err != nil {
		log.Error("Failed to publish job result", "subject", subject, "error", err)
		return err
	}

	log.Info("Report job processed",
		"status", string(result.Status),
		"subject", subject,
		"queued_ms", w.now().Sub(job.SubmittedAt).Milliseconds())
	return nil
}

// process runs the job's report under the job timeout
func (w *Worker) process(ctx context.Context, job *ReportJob) *ReportJobResult {
	ctx, cancel := context.WithTimeout(ctx, utils.JobTimeout)
	defer cancel()

	result := &ReportJobResult{JobID: job.ID}
	report, err := w.reports.Generate(ctx, &job.Request)
	result.CompletedAt = w.now().UTC()

	if err != nil {
		result.Status = JobFailed
		detail := &models.ErrorDetail{Code: services.CodeInternal, Message: err.Error()}
		if se, ok := services.AsServiceError(err); ok {
			detail.Code = se.Code
			detail.Message = se.Message
			detail.Details = se.Details
		}
		result.Error = detail
		logging.FromContext(ctx).Warn("Report job failed", "code", detail.Code, "error", err)
		return result
	}

	result.Status = JobCompleted
	result.Report = report
	return result
}
