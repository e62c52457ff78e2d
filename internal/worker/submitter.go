package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fabzclean/analytics/internal/compression"
	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/queue"
	"github.com/fabzclean/analytics/internal/utils"
)

// Submitter publishes report jobs to the request subject
type Submitter struct {
	publisher  queue.Publisher
	subject    string
	compressor compression.Compressor
	now        func() time.Time
}

// NewSubmitter creates a Submitter using the worker subjects and compression
func NewSubmitter(publisher queue.Publisher, cfg config.WorkerConfig) (*Submitter, error) {
	c, err := compression.ForName(cfg.Compression)
	if err != nil {
		return nil, err
	}
	return &Submitter{
		publisher:  publisher,
		subject:    cfg.RequestSubject,
		compressor: c,
		now:        time.Now,
	}, nil
}

// Submit assigns the job an ID when it has none, publishes it and returns the ID
func (s *Submitter) Submit(ctx context.Context, job ReportJob) (string, error) {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.SubmittedAt = s.now().UTC()

	data, err := encode(s.compressor, job)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, utils.PublishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, s.subject, data); err != nil {
		return "", fmt.Errorf("failed to submit job %s: %w", job.ID, err)
	}
	return job.ID, nil
}
