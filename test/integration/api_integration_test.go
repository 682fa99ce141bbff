//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/clients"
	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/clients/acl"
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/config"
	"github.com/jsamuelsen/zapallo-backoffice/internal/ports"
)

// accessors is the set of ACL clients wired to one fake API.
type accessors struct {
	api       *fakeAPI
	client    *clients.Client
	exchanges *acl.ExchangeClient
	users     *acl.ExchangeUserClient
	cards     *acl.ExchangeCardClient
}

func newAccessors(t *testing.T, mutate ...func(*clients.Config)) *accessors {
	t.Helper()

	api := newFakeAPI()
	t.Cleanup(api.Close)

	cfg := &clients.Config{
		BaseURL:     api.URL(),
		Prefix:      apiPrefix,
		ServiceName: "zapallo-api",
		Timeout:     2 * time.Second,
		Transport: config.TransportConfig{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     30 * time.Second,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, m := range mutate {
		m(cfg)
	}

	client, err := clients.New(cfg)
	require.NoError(t, err)

	aclCfg := acl.Config{Client: client, Logger: cfg.Logger}

	return &accessors{
		api:       api,
		client:    client,
		exchanges: acl.NewExchangeClient(aclCfg),
		users:     acl.NewExchangeUserClient(aclCfg),
		cards:     acl.NewExchangeCardClient(aclCfg),
	}
}

func (a *accessors) exchange(t *testing.T, name string) *domain.Exchange {
	t.Helper()

	ex, err := a.exchanges.Create(context.Background(), domain.ExchangeInput{Name: name, DisplayName: name + " (display)"})
	require.NoError(t, err)

	return ex
}

func TestExchangeLifecycle(t *testing.T) {
	a := newAccessors(t)
	ctx := context.Background()

	created, err := a.exchanges.Create(ctx, domain.ExchangeInput{Name: "cardmarket", DisplayName: "Cardmarket"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := a.exchanges.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cardmarket", got.DisplayName)

	renamed := "Cardmarket EU"
	updated, err := a.exchanges.Update(ctx, created.ID, domain.ExchangePatch{DisplayName: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "Cardmarket EU", updated.DisplayName)
	assert.Equal(t, "cardmarket", updated.Name, "fields not in the patch are kept")

	list, err := a.exchanges.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, a.exchanges.Delete(ctx, created.ID))

	_, err = a.exchanges.Get(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestErrorMapping(t *testing.T) {
	a := newAccessors(t)
	ctx := context.Background()
	a.exchange(t, "cardmarket")

	t.Run("validation detail list", func(t *testing.T) {
		_, err := a.exchanges.Create(ctx, domain.ExchangeInput{Name: "tcgplayer", DisplayName: " "})

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "Field required", validationErr.Fields["display_name"])
	})

	t.Run("conflict detail string", func(t *testing.T) {
		_, err := a.exchanges.Create(ctx, domain.ExchangeInput{Name: "cardmarket", DisplayName: "Again"})

		var conflictErr *domain.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, "Exchange with this name already exists", conflictErr.Reason)
	})

	t.Run("not found", func(t *testing.T) {
		err := a.users.Delete(ctx, "11111111-2222-4333-8444-555555555555")

		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("plain text 503", func(t *testing.T) {
		a.api.SetDown(true)
		defer a.api.SetDown(false)

		_, err := a.exchanges.List(ctx)

		var unavailable *domain.UnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Contains(t, unavailable.Reason, "upstream unavailable")
	})
}

func TestExchangeUsers_FilterByExchange(t *testing.T) {
	a := newAccessors(t)
	ctx := context.Background()

	cardmarket := a.exchange(t, "cardmarket")
	tcgplayer := a.exchange(t, "tcgplayer")

	for i, ex := range []*domain.Exchange{cardmarket, cardmarket, tcgplayer} {
		_, err := a.users.Create(ctx, domain.ExchangeUserInput{
			ExchangeID:     ex.ID,
			ExternalUserID: fmt.Sprintf("u-%d", i),
			Name:           fmt.Sprintf("user %d", i),
		})
		require.NoError(t, err)
	}

	all, err := a.users.List(ctx, domain.ExchangeUserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := a.users.List(ctx, domain.ExchangeUserFilter{ExchangeID: cardmarket.ID}.Normalized())
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	for _, u := range filtered {
		assert.Equal(t, cardmarket.ID, u.ExchangeID)
	}
}

func TestExchangeCards_NullableFields(t *testing.T) {
	a := newAccessors(t)
	ctx := context.Background()
	ex := a.exchange(t, "cardmarket")

	rarity := "rare"
	card, err := a.cards.Create(ctx, domain.ExchangeCardInput{
		ExchangeID:     ex.ID,
		ExternalCardID: "c-1",
		Name:           "Black Lotus",
		SetName:        "Alpha",
		Language:       "en",
		Rarity:         &rarity,
		IsFoil:         true,
	})
	require.NoError(t, err)
	require.NotNil(t, card.Rarity)
	assert.Equal(t, "rare", *card.Rarity)
	assert.Nil(t, card.CardID)
	assert.True(t, card.IsFoil)

	cleared, err := a.cards.Update(ctx, card.ID, domain.ExchangeCardPatch{Rarity: domain.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.Rarity, "explicit null clears the value")
	assert.Equal(t, "Black Lotus", cleared.Name)

	unchanged, err := a.cards.Update(ctx, card.ID, domain.ExchangeCardPatch{})
	require.NoError(t, err)
	assert.Equal(t, cleared.UpdatedAt, unchanged.UpdatedAt, "an empty patch does not write")
}

func TestClient_Timeout(t *testing.T) {
	a := newAccessors(t, func(cfg *clients.Config) {
		cfg.Timeout = 100 * time.Millisecond
	})
	a.api.SetDelay(500 * time.Millisecond)

	start := time.Now()
	_, err := a.exchanges.List(context.Background())

	require.Error(t, err)
	assert.Less(t, time.Since(start), 450*time.Millisecond)
	assert.True(t, domain.IsUnavailable(err))

	apiErr, ok := clients.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, clients.KindTimeout, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "100ms")
}

func TestClient_PerRequestTimeout(t *testing.T) {
	a := newAccessors(t)
	a.api.SetDelay(300 * time.Millisecond)

	err := a.client.Get(context.Background(), "/exchanges", nil, clients.WithTimeout(50*time.Millisecond))

	apiErr, ok := clients.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, clients.KindTimeout, apiErr.Kind)
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	a := newAccessors(t, func(cfg *clients.Config) {
		cfg.Circuit = config.CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Minute, HalfOpenLimit: 1}
	})
	a.api.SetDown(true)

	ctx := context.Background()

	for range 2 {
		_, err := a.exchanges.List(ctx)
		require.True(t, domain.IsUnavailable(err))
	}

	hits := a.api.Hits()

	_, err := a.exchanges.List(ctx)

	require.True(t, domain.IsUnavailable(err))
	assert.True(t, errors.Is(err, clients.ErrCircuitOpen))
	assert.Equal(t, clients.StateOpen, a.client.CircuitState())
	assert.Equal(t, hits, a.api.Hits(), "an open circuit sends nothing")
}

func TestConcurrentCreates(t *testing.T) {
	a := newAccessors(t)
	ctx := context.Background()

	const n = 20

	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			_, err := a.exchanges.Create(gctx, domain.ExchangeInput{
				Name:        fmt.Sprintf("exchange-%02d", i),
				DisplayName: fmt.Sprintf("Exchange %02d", i),
			})

			return err
		})
	}

	require.NoError(t, g.Wait())

	list, err := a.exchanges.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, n)
}

func TestReadinessChecks(t *testing.T) {
	a := newAccessors(t)

	registry := ports.NewHealthRegistry(time.Second)
	for _, checker := range []ports.HealthChecker{a.exchanges, a.users, a.cards} {
		require.NoError(t, registry.Register(checker))
	}

	healthy := registry.CheckAll(context.Background())
	assert.Equal(t, ports.HealthStatusHealthy, healthy.Status)
	assert.Len(t, healthy.Checks, 3)

	a.api.SetDown(true)

	unhealthy := registry.CheckAll(context.Background())
	assert.Equal(t, ports.HealthStatusUnhealthy, unhealthy.Status)

	for name, check := range unhealthy.Checks {
		assert.Equal(t, ports.HealthStatusUnhealthy, check.Status, name)
	}
}
