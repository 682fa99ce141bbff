// Package ports defines the interfaces the application layer depends on.
// Adapters implement them; services never see HTTP or API DTOs.
//
// Every method takes a context first, returns domain types, and reports
// failures as domain errors (ErrNotFound, ErrConflict, ErrValidation,
// ErrUnavailable).
package ports

import (
	"context"

	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

// ExchangeClient manages exchanges in the Zapallo API.
type ExchangeClient interface {
	List(ctx context.Context) ([]domain.Exchange, error)

	// Get returns domain.ErrNotFound if the exchange does not exist.
	Get(ctx context.Context, id string) (*domain.Exchange, error)

	// Create returns domain.ErrConflict when the name is taken.
	Create(ctx context.Context, in domain.ExchangeInput) (*domain.Exchange, error)

	Update(ctx context.Context, id string, patch domain.ExchangePatch) (*domain.Exchange, error)
	Delete(ctx context.Context, id string) error
}

// ExchangeUserClient manages exchange users in the Zapallo API.
type ExchangeUserClient interface {
	// List applies filter server-side. The API may ignore the sort settings.
	List(ctx context.Context, filter domain.ExchangeUserFilter) ([]domain.ExchangeUser, error)

	Get(ctx context.Context, id string) (*domain.ExchangeUser, error)
	Create(ctx context.Context, in domain.ExchangeUserInput) (*domain.ExchangeUser, error)
	Update(ctx context.Context, id string, patch domain.ExchangeUserPatch) (*domain.ExchangeUser, error)
	Delete(ctx context.Context, id string) error
}

// ExchangeCardClient manages exchange cards in the Zapallo API.
type ExchangeCardClient interface {
	List(ctx context.Context) ([]domain.ExchangeCard, error)
	Get(ctx context.Context, id string) (*domain.ExchangeCard, error)
	Create(ctx context.Context, in domain.ExchangeCardInput) (*domain.ExchangeCard, error)

	// Update clears a nullable field when its patch value is domain.Null.
	Update(ctx context.Context, id string, patch domain.ExchangeCardPatch) (*domain.ExchangeCard, error)

	Delete(ctx context.Context, id string) error
}
