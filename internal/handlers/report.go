package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/models"
	"github.com/fabzclean/analytics/internal/services"
	"github.com/fabzclean/analytics/internal/worker"
)

// CreateReport handles POST /v1/reports
func (h *Handler) CreateReport(c *fiber.Ctx) error {
	var req services.ReportRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	report, err := h.reports.Generate(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// SubmitReport handles POST /v1/reports/jobs. The request is validated here so
// malformed series are rejected before they reach the queue.
func (h *Handler) SubmitReport(c *fiber.Ctx) error {
	if h.jobs == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "report worker is not enabled")
	}

	var job worker.ReportJob
	if err := parseBody(c, &job); err != nil {
		return err
	}
	if err := h.reports.Validate(job.Request.Series, job.Request.Values); err != nil {
		return err
	}

	ctx := c.UserContext()
	jobID, err := h.jobs.Submit(ctx, job)
	if err != nil {
		logging.FromContext(ctx).Error("Failed to submit report job", "error", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "failed to queue report job")
	}

	logging.FromContext(logging.WithJobID(ctx, jobID)).Info("Report job queued", "reply_to", job.ReplyTo)
	return c.Status(fiber.StatusAccepted).JSON(models.JobAcceptedResponse{
		JobID:   jobID,
		Status:  "queued",
		ReplyTo: job.ReplyTo,
	})
}
