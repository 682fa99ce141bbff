package acl

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/clients"
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

// ErrInvalidRecord is wrapped when an API response does not hold a usable record.
var ErrInvalidRecord = errors.New("invalid record")

// Operation describes the call being mapped, for error context.
type Operation struct {
	// Action is the verb, e.g. "get" or "update".
	Action string
	// Entity is the record type, e.g. "exchange".
	Entity string
	// ID is the record id, empty for list and create.
	ID string
}

func (o Operation) String() string {
	return o.Action + " " + o.Entity
}

// MapError translates an error returned by clients.Client into a domain
// error. The original error is kept as the cause.
func MapError(err error, serviceName string, op Operation) error {
	if err == nil {
		return nil
	}

	apiErr, ok := clients.AsAPIError(err)
	if !ok {
		return &domain.UnavailableError{
			Service: serviceName,
			Reason:  fmt.Sprintf("%s failed: %v", op, err),
			Cause:   err,
		}
	}

	switch apiErr.Kind {
	case clients.KindNetwork:
		reason := apiErr.Message
		if errors.Is(apiErr, clients.ErrCircuitOpen) {
			reason = fmt.Sprintf("circuit breaker open during %s", op)
		}

		return &domain.UnavailableError{Service: serviceName, Reason: reason, Cause: apiErr}

	case clients.KindTimeout:
		return &domain.UnavailableError{Service: serviceName, Reason: apiErr.Message, Cause: apiErr}

	case clients.KindNotFound:
		return &domain.NotFoundError{Entity: op.Entity, ID: op.ID, Cause: apiErr}

	case clients.KindConflict:
		return &domain.ConflictError{Entity: op.Entity, Reason: apiErr.Message, Cause: apiErr}

	case clients.KindValidation:
		return validationError(apiErr)
	}

	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		return &domain.ForbiddenError{Operation: op.String(), Reason: "authentication required", Cause: apiErr}

	case apiErr.StatusCode == http.StatusForbidden:
		return &domain.ForbiddenError{Operation: op.String(), Reason: apiErr.Message, Cause: apiErr}

	case apiErr.StatusCode == http.StatusTooManyRequests:
		return &domain.UnavailableError{Service: serviceName, Reason: "rate limit exceeded", Cause: apiErr}

	case apiErr.IsServerError():
		return &domain.UnavailableError{Service: serviceName, Reason: apiErr.Message, Cause: apiErr}

	default:
		// Remaining 4xx, 422 included, are treated as rejected input.
		return validationError(apiErr)
	}
}

func validationError(apiErr *clients.APIError) error {
	return &domain.ValidationError{
		Message: apiErr.Message,
		Fields:  apiErr.FieldMessages(),
		Cause:   apiErr,
	}
}

// invalidRecord reports a decoded record that fails the record checks.
func invalidRecord(entity, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidRecord, entity, fmt.Sprintf(format, args...))
}
