// Package app contains the backoffice use cases. Services sit between the
// web handlers and the Zapallo API accessors: they validate writes, assemble
// pages from several API calls, and never see HTTP or API DTOs.
//
// Reads go through app/context so that one page render asks the API for the
// exchange list at most once. Writes go through the Executor.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	appctx "github.com/jsamuelsen/zapallo-backoffice/internal/app/context"
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/logging"
	"github.com/jsamuelsen/zapallo-backoffice/internal/ports"
)

// UnknownExchange labels a record whose exchange is not in the exchange list.
const UnknownExchange = "Unknown Exchange"

const keyExchanges = "exchanges"

var errNoRecord = errors.New("API answered without a record")

// ServiceConfig holds optional configuration for the services.
type ServiceConfig struct {
	Logger *slog.Logger
}

func (c *ServiceConfig) logger(component string) *slog.Logger {
	logger := slog.Default()
	if c != nil && c.Logger != nil {
		logger = c.Logger
	}

	return logger.With(slog.String("component", component))
}

// Services bundles the application services the web layer needs.
type Services struct {
	Dashboard     *DashboardService
	Exchanges     *ExchangeService
	ExchangeUsers *ExchangeUserService
	ExchangeCards *ExchangeCardService
}

// NewServices wires every service to the given accessors.
func NewServices(
	exchanges ports.ExchangeClient,
	users ports.ExchangeUserClient,
	cards ports.ExchangeCardClient,
	cfg *ServiceConfig,
) *Services {
	return &Services{
		Dashboard:     NewDashboardService(exchanges, users, cards, cfg),
		Exchanges:     NewExchangeService(exchanges, cfg),
		ExchangeUsers: NewExchangeUserService(users, exchanges, cfg),
		ExchangeCards: NewExchangeCardService(cards, exchanges, cfg),
	}
}

// listExchanges returns the exchange list, memoized per request.
func listExchanges(ctx context.Context, client ports.ExchangeClient) ([]domain.Exchange, error) {
	exchanges, err := appctx.Fetch(ctx, keyExchanges, client.List)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}

	return exchanges, nil
}

// bestEffortLabel returns the label of one exchange. A failed lookup is
// logged and yields UnknownExchange, so the record itself still shows.
func bestEffortLabel(ctx context.Context, logger *slog.Logger, client ports.ExchangeClient, exchangeID string) string {
	exchanges, err := listExchanges(ctx, client)
	if err != nil {
		logging.FromContextOr(ctx, logger).WarnContext(ctx, "exchange lookup failed",
			slog.String("exchange_id", exchangeID),
			slog.Any("error", err),
		)

		return UnknownExchange
	}

	if exchange := findExchange(exchanges, exchangeID); exchange != nil {
		return exchangeLabel(exchange)
	}

	return UnknownExchange
}

// exchangeLabels maps exchange IDs to the name shown next to their records.
func exchangeLabels(exchanges []domain.Exchange) map[string]string {
	labels := make(map[string]string, len(exchanges))
	for i := range exchanges {
		labels[exchanges[i].ID] = exchangeLabel(&exchanges[i])
	}

	return labels
}

func exchangeLabel(e *domain.Exchange) string {
	if e.DisplayName != "" {
		return e.DisplayName
	}

	return e.Name
}

func labelFor(labels map[string]string, exchangeID string) string {
	if label, ok := labels[exchangeID]; ok {
		return label
	}

	return UnknownExchange
}

func findExchange(exchanges []domain.Exchange, id string) *domain.Exchange {
	for i := range exchanges {
		if exchanges[i].ID == id {
			return &exchanges[i]
		}
	}

	return nil
}

func requireID(id string) error {
	if id == "" {
		return domain.NewValidationError("id", "is required")
	}

	return nil
}

// verifyCreated checks that the API answered a create with an identified record.
func verifyCreated(entity, gotID string) error {
	if gotID == "" {
		return fmt.Errorf("%s created without an id", entity)
	}

	return nil
}

// verifyTarget checks that the API answered a write with the record it was asked to change.
func verifyTarget(entity, wantID, gotID string) error {
	if gotID != wantID {
		return fmt.Errorf("%s %q updated but the API returned %q", entity, wantID, gotID)
	}

	return nil
}

// target carries an ID plus the write payload through the Executor.
type target[P any] struct {
	ID    string
	Patch P
}
