package app

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
	"github.com/jsamuelsen/zapallo-backoffice/internal/ports"
)

// ExchangeUserRow is an exchange user labelled with its exchange.
type ExchangeUserRow struct {
	domain.ExchangeUser

	ExchangeName string
}

// ExchangeUserService manages exchange users.
type ExchangeUserService struct {
	users     ports.ExchangeUserClient
	exchanges ports.ExchangeClient
	exec      *Executor
	logger    *slog.Logger
}

// NewExchangeUserService creates an ExchangeUserService.
func NewExchangeUserService(
	users ports.ExchangeUserClient,
	exchanges ports.ExchangeClient,
	cfg *ServiceConfig,
) *ExchangeUserService {
	logger := cfg.logger("app.ExchangeUserService")

	return &ExchangeUserService{
		users:     users,
		exchanges: exchanges,
		exec:      NewExecutor(logger),
		logger:    logger,
	}
}

// List returns the users matching filter, each labelled with its exchange.
// The filter and ordering are applied again locally because the API may
// ignore them.
func (s *ExchangeUserService) List(ctx context.Context, filter domain.ExchangeUserFilter) ([]ExchangeUserRow, error) {
	filter = filter.Normalized()

	users, exchanges, err := Parallel2(ctx,
		func(ctx context.Context) ([]domain.ExchangeUser, error) { return s.users.List(ctx, filter) },
		func(ctx context.Context) ([]domain.Exchange, error) { return listExchanges(ctx, s.exchanges) },
	)
	if err != nil {
		return nil, fmt.Errorf("listing exchange users: %w", err)
	}

	labels := exchangeLabels(exchanges)
	rows := make([]ExchangeUserRow, 0, len(users))

	for _, user := range users {
		if filter.ExchangeID != "" && user.ExchangeID != filter.ExchangeID {
			continue
		}

		rows = append(rows, ExchangeUserRow{ExchangeUser: user, ExchangeName: labelFor(labels, user.ExchangeID)})
	}

	SortExchangeUsers(rows, filter.SortBy, filter.SortOrder)

	return rows, nil
}

// SortExchangeUsers orders rows in place. Text columns compare case-insensitively
// and ties keep their API order.
func SortExchangeUsers(rows []ExchangeUserRow, by domain.UserSortField, order domain.SortOrder) {
	compare := func(a, b *ExchangeUserRow) int {
		switch by {
		case domain.SortByName:
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case domain.SortByExternalUserID:
			return strings.Compare(strings.ToLower(a.ExternalUserID), strings.ToLower(b.ExternalUserID))
		case domain.SortByUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}

	slices.SortStableFunc(rows, func(a, b ExchangeUserRow) int {
		c := compare(&a, &b)
		if order == domain.SortDesc {
			return -c
		}

		return c
	})
}

// Detail returns one user labelled with its exchange.
func (s *ExchangeUserService) Detail(ctx context.Context, id string) (*ExchangeUserRow, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting exchange user: %w", err)
	}

	if user == nil {
		return nil, domain.NewNotFoundError("exchange_user", id)
	}

	return &ExchangeUserRow{
		ExchangeUser: *user,
		ExchangeName: bestEffortLabel(ctx, s.logger, s.exchanges, user.ExchangeID),
	}, nil
}

// Exchanges returns the exchanges a user can belong to, ordered by label.
func (s *ExchangeUserService) Exchanges(ctx context.Context) ([]domain.Exchange, error) {
	return sortedExchanges(ctx, s.exchanges)
}

// Create creates an exchange user.
func (s *ExchangeUserService) Create(ctx context.Context, in domain.ExchangeUserInput) (*domain.ExchangeUser, error) {
	op := Operation[domain.ExchangeUserInput, *domain.ExchangeUser]{
		Name:     "create exchange user",
		Validate: domain.ExchangeUserInput.Validate,
		Perform:  s.users.Create,
		Verify: func(_ domain.ExchangeUserInput, out *domain.ExchangeUser) error {
			if out == nil {
				return errNoRecord
			}

			return verifyCreated("exchange user", out.ID)
		},
	}

	return Execute(ctx, s.exec, op, in)
}

// Update changes the fields set in patch.
func (s *ExchangeUserService) Update(
	ctx context.Context,
	id string,
	patch domain.ExchangeUserPatch,
) (*domain.ExchangeUser, error) {
	op := Operation[target[domain.ExchangeUserPatch], *domain.ExchangeUser]{
		Name: "update exchange user",
		Validate: func(in target[domain.ExchangeUserPatch]) error {
			if err := requireID(in.ID); err != nil {
				return err
			}

			return in.Patch.Validate()
		},
		Perform: func(ctx context.Context, in target[domain.ExchangeUserPatch]) (*domain.ExchangeUser, error) {
			return s.users.Update(ctx, in.ID, in.Patch)
		},
		Verify: func(in target[domain.ExchangeUserPatch], out *domain.ExchangeUser) error {
			if out == nil {
				return errNoRecord
			}

			return verifyTarget("exchange user", in.ID, out.ID)
		},
	}

	return Execute(ctx, s.exec, op, target[domain.ExchangeUserPatch]{ID: id, Patch: patch})
}

// Delete deletes an exchange user.
func (s *ExchangeUserService) Delete(ctx context.Context, id string) error {
	op := Operation[string, struct{}]{
		Name:     "delete exchange user",
		Validate: requireID,
		Perform: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, s.users.Delete(ctx, id)
		},
	}

	_, err := Execute(ctx, s.exec, op, id)

	return err
}

// sortedExchanges returns the memoized exchange list ordered by label for
// form selects. The memoized slice is not modified.
func sortedExchanges(ctx context.Context, client ports.ExchangeClient) ([]domain.Exchange, error) {
	exchanges, err := listExchanges(ctx, client)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(exchanges)
	slices.SortStableFunc(sorted, func(a, b domain.Exchange) int {
		return cmp.Compare(strings.ToLower(exchangeLabel(&a)), strings.ToLower(exchangeLabel(&b)))
	})

	return sorted, nil
}
