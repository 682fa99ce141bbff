package app

import (
	"context"
	"fmt"

	appctx "github.com/jsamuelsen/zapallo-backoffice/internal/app/context"
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
	"github.com/jsamuelsen/zapallo-backoffice/internal/ports"
)

// ExchangeService manages exchanges.
type ExchangeService struct {
	client ports.ExchangeClient
	exec   *Executor
}

// NewExchangeService creates an ExchangeService.
func NewExchangeService(client ports.ExchangeClient, cfg *ServiceConfig) *ExchangeService {
	logger := cfg.logger("app.ExchangeService")

	return &ExchangeService{
		client: client,
		exec:   NewExecutor(logger),
	}
}

// List returns every exchange.
func (s *ExchangeService) List(ctx context.Context) ([]domain.Exchange, error) {
	return listExchanges(ctx, s.client)
}

// Get returns one exchange.
func (s *ExchangeService) Get(ctx context.Context, id string) (*domain.Exchange, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	exchange, err := appctx.Fetch(ctx, "exchange:"+id, func(ctx context.Context) (*domain.Exchange, error) {
		return s.client.Get(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("getting exchange: %w", err)
	}

	return exchange, nil
}

// Create creates an exchange.
func (s *ExchangeService) Create(ctx context.Context, in domain.ExchangeInput) (*domain.Exchange, error) {
	op := Operation[domain.ExchangeInput, *domain.Exchange]{
		Name:     "create exchange",
		Validate: domain.ExchangeInput.Validate,
		Perform:  s.client.Create,
		Verify: func(_ domain.ExchangeInput, out *domain.Exchange) error {
			if out == nil {
				return errNoRecord
			}

			return verifyCreated("exchange", out.ID)
		},
	}

	created, err := Execute(ctx, s.exec, op, in)
	if err != nil {
		return nil, err
	}

	appctx.Invalidate(ctx, keyExchanges)

	return created, nil
}

// Update changes the fields set in patch.
func (s *ExchangeService) Update(ctx context.Context, id string, patch domain.ExchangePatch) (*domain.Exchange, error) {
	op := Operation[target[domain.ExchangePatch], *domain.Exchange]{
		Name: "update exchange",
		Validate: func(in target[domain.ExchangePatch]) error {
			if err := requireID(in.ID); err != nil {
				return err
			}

			return in.Patch.Validate()
		},
		Perform: func(ctx context.Context, in target[domain.ExchangePatch]) (*domain.Exchange, error) {
			return s.client.Update(ctx, in.ID, in.Patch)
		},
		Verify: func(in target[domain.ExchangePatch], out *domain.Exchange) error {
			if out == nil {
				return errNoRecord
			}

			return verifyTarget("exchange", in.ID, out.ID)
		},
	}

	updated, err := Execute(ctx, s.exec, op, target[domain.ExchangePatch]{ID: id, Patch: patch})
	if err != nil {
		return nil, err
	}

	appctx.Invalidate(ctx, keyExchanges)
	appctx.Invalidate(ctx, "exchange:"+id)

	return updated, nil
}

// Delete deletes an exchange.
func (s *ExchangeService) Delete(ctx context.Context, id string) error {
	op := Operation[string, struct{}]{
		Name:     "delete exchange",
		Validate: requireID,
		Perform: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, s.client.Delete(ctx, id)
		},
	}

	if _, err := Execute(ctx, s.exec, op, id); err != nil {
		return err
	}

	appctx.Invalidate(ctx, keyExchanges)
	appctx.Invalidate(ctx, "exchange:"+id)

	return nil
}
