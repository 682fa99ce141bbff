package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/clients"
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/logging"
)

// healthCheckTimeout bounds the readiness probe independently of the API timeout.
const healthCheckTimeout = 5 * time.Second

// Config configures an accessor.
type Config struct {
	// Client is the Zapallo API client.
	Client *clients.Client

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// BaseAdapter holds what every accessor shares: the client, the service name
// used in errors and health output, and error mapping around each call.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
	entity      string
	logger      *slog.Logger
}

// NewBaseAdapter creates a base adapter for one entity. Panics if the client is nil.
func NewBaseAdapter(cfg Config, entity string) BaseAdapter {
	if cfg.Client == nil {
		panic("acl: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return BaseAdapter{
		client:      cfg.Client,
		serviceName: cfg.Client.ServiceName(),
		entity:      entity,
		logger:      logger.With(slog.String("entity", entity)),
	}
}

// Client returns the underlying API client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// ServiceName returns the API's service name.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// call runs fn and maps any failure to a domain error.
func (a *BaseAdapter) call(ctx context.Context, action, id string, fn func() error) error {
	op := Operation{Action: action, Entity: a.entity, ID: id}

	a.logger.Log(ctx, logging.LevelTrace, "calling api", slog.String("operation", op.String()), slog.String("id", id))

	if err := fn(); err != nil {
		mapped := MapError(err, a.serviceName, op)
		a.logger.DebugContext(ctx, "api call failed",
			slog.String("operation", op.String()),
			slog.String("id", id),
			slog.Any("error", err),
		)

		return mapped
	}

	return nil
}

// invalid wraps a translation failure as an unavailable API.
func (a *BaseAdapter) invalid(err error) error {
	return &domain.UnavailableError{
		Service: a.serviceName,
		Reason:  err.Error(),
		Cause:   err,
	}
}

// check probes a collection endpoint for readiness.
func (a *BaseAdapter) check(ctx context.Context, path string) error {
	return a.client.Get(ctx, path, nil, clients.WithTimeout(healthCheckTimeout))
}

// ValidateRequired returns a validation error naming field when value is empty.
func ValidateRequired(value, field string) error {
	if value == "" {
		return domain.NewValidationError(field, "is required")
	}

	return nil
}

// resourcePath joins a collection path and an escaped id.
func resourcePath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}

// Translator converts an external DTO into a domain record, rejecting DTOs
// that are missing required fields.
type Translator[External any, Domain any] func(ext *External) (*Domain, error)

// TranslateSlice applies translate to every item, stopping at the first failure.
func TranslateSlice[E any, D any](items []E, translate Translator[E, D]) ([]D, error) {
	result := make([]D, 0, len(items))

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		result = append(result, *translated)
	}

	return result, nil
}

// timestampLayouts are tried in order. The API may omit the zone offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func parseTimestamp(entity, field string, value *string) (time.Time, error) {
	if value == nil {
		return time.Time{}, invalidRecord(entity, "missing %s", field)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, invalidRecord(entity, "%s %q is not a timestamp", field, *value)
}

func requireString(entity, field string, value *string) (string, error) {
	if value == nil {
		return "", invalidRecord(entity, "missing %s", field)
	}

	return *value, nil
}

// requireFields resolves a list of required string fields, stopping at the first missing one.
func requireFields(entity string, fields ...requiredField) error {
	for _, f := range fields {
		v, err := requireString(entity, f.name, f.src)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	return nil
}

type requiredField struct {
	name string
	src  *string
	dst  *string
}

func field(name string, src *string, dst *string) requiredField {
	return requiredField{name: name, src: src, dst: dst}
}

// timestamps fills the creation and update times shared by every record.
func timestamps(entity string, created, updated *string, createdAt, updatedAt *time.Time) error {
	var err error

	if *createdAt, err = parseTimestamp(entity, "created_at", created); err != nil {
		return err
	}

	if *updatedAt, err = parseTimestamp(entity, "updated_at", updated); err != nil {
		return err
	}

	return nil
}
