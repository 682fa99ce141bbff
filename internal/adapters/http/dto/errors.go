// Package dto holds the forms the backoffice binds and the JSON error envelope
// it answers with when a client asks for JSON.
package dto

import (
	"errors"
	"net/http"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/web"
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "VALIDATION_ERROR").
	Code string `json:"code"`

	Message string `json:"message"`

	// Details holds field-level messages for validation errors.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes.
const (
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodeConflict    = "CONFLICT"
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeForbidden   = "FORBIDDEN"
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal    = "INTERNAL_ERROR"
	ErrorCodeTimeout     = "TIMEOUT"
	ErrorCodeBadRequest  = "BAD_REQUEST"
)

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithTraceID adds a trace ID to the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// MapDomainError maps a domain error to an HTTP status and error envelope.
// Unknown errors become 500 with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, messageOf(err))

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, messageOf(err))

	case domain.IsValidation(err):
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return http.StatusBadRequest, NewErrorResponseWithDetails(
				ErrorCodeValidation, messageOf(err), validationErr.Fields)
		}

		return http.StatusBadRequest, NewErrorResponse(ErrorCodeValidation, messageOf(err))

	case domain.IsForbidden(err):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, messageOf(err))

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, messageOf(err))

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// Message returns the user-facing text for a domain error: the API's own
// wording when there is one, otherwise the error text.
func Message(err error) string {
	return messageOf(err)
}

func messageOf(err error) string {
	var (
		notFound    *domain.NotFoundError
		conflict    *domain.ConflictError
		validation  *domain.ValidationError
		forbidden   *domain.ForbiddenError
		unavailable *domain.UnavailableError
	)

	switch {
	case errors.As(err, &notFound):
		return web.Label(notFound.Entity) + " not found"
	case errors.As(err, &conflict) && conflict.Reason != "":
		return conflict.Reason
	case errors.As(err, &validation) && validation.Message != "":
		return validation.Message
	case errors.As(err, &validation):
		return "Please correct the highlighted fields"
	case errors.As(err, &forbidden) && forbidden.Reason != "":
		return forbidden.Reason
	case errors.As(err, &unavailable):
		return "The Zapallo API is unavailable. Please try again."
	default:
		return err.Error()
	}
}
