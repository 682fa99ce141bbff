// Package domain contains the backoffice records and the errors raised while
// managing them. Domain errors describe what went wrong with a record, not how
// the failure travelled over the wire; adapters map them to pages and statuses.
package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the record clashes with existing data, such as a duplicate exchange name.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates the record was rejected as invalid.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden indicates the API refused the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates the Zapallo API could not be reached or failed.
	ErrUnavailable = errors.New("unavailable")
)

// NotFoundError reports a missing record.
type NotFoundError struct {
	Entity string
	ID     string
	Cause  error
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *NotFoundError) Unwrap() []error {
	return withCause(ErrNotFound, e.Cause)
}

// NewNotFoundError creates a not found error for an entity and id.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a record that clashes with existing data.
type ConflictError struct {
	Entity string
	Reason string
	Cause  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ConflictError) Unwrap() []error {
	return withCause(ErrConflict, e.Cause)
}

// NewConflictError creates a conflict error.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError reports a rejected record. Fields holds per-field messages
// keyed by the API field name when the rejection was field specific.
type ValidationError struct {
	Message string
	Fields  map[string]string
	Cause   error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Message
	}

	parts := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, field+": "+e.Fields[field])
	}

	if e.Message == "" {
		return "validation failed: " + strings.Join(parts, "; ")
	}

	return fmt.Sprintf("validation failed: %s (%s)", e.Message, strings.Join(parts, "; "))
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ValidationError) Unwrap() []error {
	return withCause(ErrValidation, e.Cause)
}

// NewValidationError creates a validation error. An empty field yields a
// record-level message.
func NewValidationError(field, message string) error {
	if field == "" {
		return &ValidationError{Message: message}
	}

	return &ValidationError{Fields: map[string]string{field: message}}
}

// NewFieldValidationError creates a validation error carrying several field messages.
func NewFieldValidationError(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}

// ForbiddenError reports an operation the API refused.
type ForbiddenError struct {
	Operation string
	Reason    string
	Cause     error
}

func (e *ForbiddenError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("operation %q forbidden: %s", e.Operation, e.Reason)
	}

	return fmt.Sprintf("operation %q forbidden", e.Operation)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ForbiddenError) Unwrap() []error {
	return withCause(ErrForbidden, e.Cause)
}

// NewForbiddenError creates a forbidden error.
func NewForbiddenError(operation, reason string) error {
	return &ForbiddenError{Operation: operation, Reason: reason}
}

// UnavailableError reports that the API could not serve the request.
type UnavailableError struct {
	Service string
	Reason  string
	Cause   error
}

func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *UnavailableError) Unwrap() []error {
	return withCause(ErrUnavailable, e.Cause)
}

// NewUnavailableError creates an unavailable error.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func withCause(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}

	return []error{sentinel, cause}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsForbidden checks if an error is a forbidden error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
