package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
	"github.com/jsamuelsen/zapallo-backoffice/internal/ports"
)

// ExchangeCardRow is an exchange card labelled with its exchange.
type ExchangeCardRow struct {
	domain.ExchangeCard

	ExchangeName string
}

// ExchangeCardService manages exchange cards.
type ExchangeCardService struct {
	cards     ports.ExchangeCardClient
	exchanges ports.ExchangeClient
	exec      *Executor
	logger    *slog.Logger
}

// NewExchangeCardService creates an ExchangeCardService.
func NewExchangeCardService(
	cards ports.ExchangeCardClient,
	exchanges ports.ExchangeClient,
	cfg *ServiceConfig,
) *ExchangeCardService {
	logger := cfg.logger("app.ExchangeCardService")

	return &ExchangeCardService{
		cards:     cards,
		exchanges: exchanges,
		exec:      NewExecutor(logger),
		logger:    logger,
	}
}

// List returns the cards labelled with their exchange. A non-empty
// exchangeID keeps only that exchange's cards.
func (s *ExchangeCardService) List(ctx context.Context, exchangeID string) ([]ExchangeCardRow, error) {
	cards, exchanges, err := Parallel2(ctx,
		s.cards.List,
		func(ctx context.Context) ([]domain.Exchange, error) { return listExchanges(ctx, s.exchanges) },
	)
	if err != nil {
		return nil, fmt.Errorf("listing exchange cards: %w", err)
	}

	labels := exchangeLabels(exchanges)
	rows := make([]ExchangeCardRow, 0, len(cards))

	for _, card := range cards {
		if exchangeID != "" && card.ExchangeID != exchangeID {
			continue
		}

		rows = append(rows, ExchangeCardRow{ExchangeCard: card, ExchangeName: labelFor(labels, card.ExchangeID)})
	}

	return rows, nil
}

// Detail returns one card labelled with its exchange.
func (s *ExchangeCardService) Detail(ctx context.Context, id string) (*ExchangeCardRow, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	card, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting exchange card: %w", err)
	}

	if card == nil {
		return nil, domain.NewNotFoundError("exchange_card", id)
	}

	return &ExchangeCardRow{
		ExchangeCard: *card,
		ExchangeName: bestEffortLabel(ctx, s.logger, s.exchanges, card.ExchangeID),
	}, nil
}

// Exchanges returns the exchanges a card can be listed on, ordered by label.
func (s *ExchangeCardService) Exchanges(ctx context.Context) ([]domain.Exchange, error) {
	return sortedExchanges(ctx, s.exchanges)
}

// Create creates an exchange card.
func (s *ExchangeCardService) Create(ctx context.Context, in domain.ExchangeCardInput) (*domain.ExchangeCard, error) {
	op := Operation[domain.ExchangeCardInput, *domain.ExchangeCard]{
		Name:     "create exchange card",
		Validate: domain.ExchangeCardInput.Validate,
		Perform:  s.cards.Create,
		Verify: func(_ domain.ExchangeCardInput, out *domain.ExchangeCard) error {
			if out == nil {
				return errNoRecord
			}

			return verifyCreated("exchange card", out.ID)
		},
	}

	return Execute(ctx, s.exec, op, in)
}

// Update changes the fields set in patch. A domain.Null field is cleared.
func (s *ExchangeCardService) Update(
	ctx context.Context,
	id string,
	patch domain.ExchangeCardPatch,
) (*domain.ExchangeCard, error) {
	op := Operation[target[domain.ExchangeCardPatch], *domain.ExchangeCard]{
		Name: "update exchange card",
		Validate: func(in target[domain.ExchangeCardPatch]) error {
			if err := requireID(in.ID); err != nil {
				return err
			}

			return in.Patch.Validate()
		},
		Perform: func(ctx context.Context, in target[domain.ExchangeCardPatch]) (*domain.ExchangeCard, error) {
			return s.cards.Update(ctx, in.ID, in.Patch)
		},
		Verify: func(in target[domain.ExchangeCardPatch], out *domain.ExchangeCard) error {
			if out == nil {
				return errNoRecord
			}

			return verifyTarget("exchange card", in.ID, out.ID)
		},
	}

	return Execute(ctx, s.exec, op, target[domain.ExchangeCardPatch]{ID: id, Patch: patch})
}

// Delete deletes an exchange card.
func (s *ExchangeCardService) Delete(ctx context.Context, id string) error {
	op := Operation[string, struct{}]{
		Name:     "delete exchange card",
		Validate: requireID,
		Perform: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, s.cards.Delete(ctx, id)
		},
	}

	_, err := Execute(ctx, s.exec, op, id)

	return err
}
