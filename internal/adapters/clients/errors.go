// Package clients provides the HTTP client for the Zapallo API and the error
// taxonomy every failed call is classified into.
package clients

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorKind classifies an APIError.
type ErrorKind int

const (
	// KindGeneric is any failure not covered by a more specific kind.
	KindGeneric ErrorKind = iota
	// KindValidation is a 400 response.
	KindValidation
	// KindNotFound is a 404 response.
	KindNotFound
	// KindConflict is a 409 response.
	KindConflict
	// KindNetwork is a transport failure with no response.
	KindNetwork
	// KindTimeout is a request that exceeded its deadline.
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	default:
		return "api"
	}
}

// Sentinels matched by errors.Is against an *APIError of the same kind.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrNetwork    = errors.New("network error")
	ErrTimeout    = errors.New("request timeout")

	// ErrCircuitOpen is wrapped by the network error returned while the
	// circuit breaker is rejecting requests.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// DefaultErrorMessage is used when an error body carries no usable message.
const DefaultErrorMessage = "An unexpected error occurred"

// FieldError is one entry of a field-level validation failure.
type FieldError struct {
	// Location is the path to the offending value, e.g. ["body", "name"].
	Location []string
	Message  string
	Type     string
}

// Field returns the last segment of the location, which names the field.
func (f FieldError) Field() string {
	if len(f.Location) == 0 {
		return ""
	}

	return f.Location[len(f.Location)-1]
}

// APIError is returned for every failed API call. StatusCode is zero for
// network and timeout failures, where no response was received.
type APIError struct {
	StatusCode int
	Message    string
	// Data is the decoded error body, or {"detail": text} for non-JSON bodies.
	Data   any
	Kind   ErrorKind
	Fields []FieldError
	// Err is the underlying transport error, if any.
	Err error
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap exposes the kind sentinel and the transport cause.
func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}

	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// IsClientError reports a 4xx response.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError
}

// IsServerError reports a 5xx response.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// IsNetworkError reports a failure where no response was received.
func (e *APIError) IsNetworkError() bool {
	return e.StatusCode == 0
}

// FieldMessages returns field-level messages keyed by field name. Several
// messages for the same field are joined.
func (e *APIError) FieldMessages() map[string]string {
	if len(e.Fields) == 0 {
		return nil
	}

	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		name := f.Field()
		if name == "" {
			continue
		}

		if prev, ok := out[name]; ok {
			out[name] = prev + ", " + f.Message
		} else {
			out[name] = f.Message
		}
	}

	return out
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindNetwork:
		return ErrNetwork
	case KindTimeout:
		return ErrTimeout
	default:
		return nil
	}
}

// KindForStatus maps an HTTP status onto an error kind.
func KindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindGeneric
	}
}

// NewAPIError builds the error for a response status, choosing the kind from it.
func NewAPIError(status int, message string, data any) *APIError {
	if message == "" {
		message = DefaultErrorMessage
	}

	return &APIError{
		StatusCode: status,
		Message:    message,
		Data:       data,
		Kind:       KindForStatus(status),
	}
}

// NewNetworkError reports a request that never got a response.
func NewNetworkError(url string, cause error) *APIError {
	return &APIError{
		Message: "Network request failed: " + url,
		Kind:    KindNetwork,
		Err:     cause,
	}
}

// NewTimeoutError reports a request aborted after d, stated in milliseconds.
func NewTimeoutError(url string, d time.Duration, cause error) *APIError {
	return &APIError{
		Message: fmt.Sprintf("Request timeout after %dms: %s", d.Milliseconds(), url),
		Kind:    KindTimeout,
		Err:     cause,
	}
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsClientError reports whether err carries a 4xx response.
func IsClientError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsClientError()
}

// IsServerError reports whether err carries a 5xx response.
func IsServerError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsServerError()
}

// IsNetworkError reports whether err is a failure without a response,
// including timeouts.
func IsNetworkError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsNetworkError()
}

// joinMessages renders field errors the way the API documents them.
func joinMessages(fields []FieldError) string {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}

	return strings.Join(msgs, ", ")
}
