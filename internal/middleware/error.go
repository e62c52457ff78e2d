package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/models"
	"github.com/fabzclean/analytics/internal/services"
)

// StatusForCode maps a service error code to an HTTP status
func StatusForCode(code string) int {
	switch code {
	case services.CodeInvalidRequest, services.CodeInvalidMethod:
		return fiber.StatusBadRequest
	case services.CodeInsufficientData:
		return fiber.StatusUnprocessableEntity
	case services.CodeCanceled:
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a handler as an ErrorResponse.
// Service errors keep their code and details; fiber errors use their status
// text as the code.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    services.CodeInternal,
			Message: "Internal Server Error",
			Path:    c.Path(),
		}

		if se, ok := services.AsServiceError(err); ok {
			status = StatusForCode(se.Code)
			detail.Code = se.Code
			detail.Message = se.Message
			detail.Details = se.Details
		} else if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
			detail.Code = strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(fe.Code), " ", "_"))
			detail.Message = fe.Message
		}

		fields := []interface{}{
			"path", c.Path(),
			"method", c.Method(),
			"status", status,
			"error", err,
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("Request error", fields...)
		} else {
			logger.Warn("Request rejected", fields...)
		}

		return c.Status(status).JSON(models.ErrorResponse{Error: detail})
	}
}
