// Package worker generates reports for jobs that arrive over the message
// queue, and submits such jobs on behalf of the HTTP API.
package worker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fabzclean/analytics/internal/compression"
	"github.com/fabzclean/analytics/internal/models"
	"github.com/fabzclean/analytics/internal/services"
)

// JobStatus is the outcome of a report job
type JobStatus string

const (
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ReportJob asks the worker for one report. The result goes to ReplyTo when
// set, otherwise to the configured result subject.
type ReportJob struct {
	ID          string                 `json:"id"`
	ReplyTo     string                 `json:"reply_to,omitempty"`
	Request     services.ReportRequest `json:"request"`
	SubmittedAt time.Time              `json:"submitted_at"`
}

// ReportJobResult is published once per processed job
type ReportJobResult struct {
	JobID       string              `json:"job_id"`
	Status      JobStatus           `json:"status"`
	Report      *services.Report    `json:"report,omitempty"`
	Error       *models.ErrorDetail `json:"error,omitempty"`
	CompletedAt time.Time           `json:"completed_at"`
}

// encode marshals v to JSON and frames it with c
func encode(c compression.Compressor, v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return compression.Frame(c, data)
}

// encodeResult frames result. A result that cannot be encoded is replaced by
// a failed result without the report, so the requester still gets an answer.
func encodeResult(c compression.Compressor, result *ReportJobResult) ([]byte, error) {
	payload, err := encode(c, result)
	if err == nil {
		return payload, nil
	}
	return encode(c, &ReportJobResult{
		JobID:       result.JobID,
		Status:      JobFailed,
		Error:       &models.ErrorDetail{Code: services.CodeInternal, Message: err.Error()},
		CompletedAt: result.CompletedAt,
	})
}

// decode unframes data and unmarshals the JSON into v
func decode(data []byte, v interface{}) error {
	raw, err := compression.Unframe(data)
	if err != nil {
		return fmt.Errorf("failed to unframe payload: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// DecodeJob decodes a framed ReportJob
func DecodeJob(data []byte) (*ReportJob, error) {
	var job ReportJob
	if err := decode(data, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// DecodeResult decodes a framed ReportJobResult
func DecodeResult(data []byte) (*ReportJobResult, error) {
	var result ReportJobResult
	if err := decode(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
