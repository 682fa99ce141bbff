package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
	"github.com/jsamuelsen/zapallo-backoffice/internal/ports"
)

// Summary holds the dashboard counts.
type Summary struct {
	Exchanges     int
	ExchangeUsers int
	ExchangeCards int
}

// DashboardService assembles the dashboard.
type DashboardService struct {
	exchanges ports.ExchangeClient
	users     ports.ExchangeUserClient
	cards     ports.ExchangeCardClient
	logger    *slog.Logger
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(
	exchanges ports.ExchangeClient,
	users ports.ExchangeUserClient,
	cards ports.ExchangeCardClient,
	cfg *ServiceConfig,
) *DashboardService {
	return &DashboardService{
		exchanges: exchanges,
		users:     users,
		cards:     cards,
		logger:    cfg.logger("app.DashboardService"),
	}
}

// Summary counts the records of each entity.
func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	exchanges, users, cards, err := Parallel3(ctx,
		func(ctx context.Context) ([]domain.Exchange, error) { return listExchanges(ctx, s.exchanges) },
		func(ctx context.Context) ([]domain.ExchangeUser, error) {
			return s.users.List(ctx, domain.ExchangeUserFilter{})
		},
		s.cards.List,
	)
	if err != nil {
		return nil, fmt.Errorf("building dashboard: %w", err)
	}

	summary := &Summary{
		Exchanges:     len(exchanges),
		ExchangeUsers: len(users),
		ExchangeCards: len(cards),
	}

	s.logger.DebugContext(ctx, "dashboard assembled",
		slog.Int("exchanges", summary.Exchanges),
		slog.Int("exchange_users", summary.ExchangeUsers),
		slog.Int("exchange_cards", summary.ExchangeCards),
	)

	return summary, nil
}
