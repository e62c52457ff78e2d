// Package services provides the layer between transports (HTTP, queue, CLI)
// and the analytics engine: request validation, defaulting and report
// assembly.
package services

import "errors"

// Error codes returned by the services
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidMethod    = "INVALID_METHOD"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeCanceled         = "CANCELED"
	CodeInternal         = "INTERNAL_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// AsServiceError unwraps err to a *ServiceError when it is one
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
