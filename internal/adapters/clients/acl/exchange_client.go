package acl

import (
	"context"

	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

const exchangesPath = "/exchanges"

// ExchangeClient manages exchanges through the Zapallo API.
// Implements ports.ExchangeClient and ports.HealthChecker.
type ExchangeClient struct {
	BaseAdapter
}

// NewExchangeClient creates an exchange accessor. Panics if cfg.Client is nil.
func NewExchangeClient(cfg Config) *ExchangeClient {
	return &ExchangeClient{BaseAdapter: NewBaseAdapter(cfg, "exchange")}
}

// exchangeResponse is the API's exchange record.
type exchangeResponse struct {
	ID          *string `json:"id"`
	Name        *string `json:"name"`
	DisplayName *string `json:"display_name"`
	CreatedAt   *string `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

type createExchangeRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// List returns every exchange.
func (c *ExchangeClient) List(ctx context.Context) ([]domain.Exchange, error) {
	var ext []exchangeResponse
	if err := c.call(ctx, "list", "", func() error {
		return c.client.Get(ctx, exchangesPath, &ext)
	}); err != nil {
		return nil, err
	}

	exchanges, err := TranslateSlice(ext, translateExchange)
	if err != nil {
		return nil, c.invalid(err)
	}

	return exchanges, nil
}

// Get returns one exchange.
func (c *ExchangeClient) Get(ctx context.Context, id string) (*domain.Exchange, error) {
	if err := ValidateRequired(id, "id"); err != nil {
		return nil, err
	}

	var ext exchangeResponse
	if err := c.call(ctx, "get", id, func() error {
		return c.client.Get(ctx, resourcePath(exchangesPath, id), &ext)
	}); err != nil {
		return nil, err
	}

	return c.translate(&ext)
}

// Create creates an exchange and returns it as stored.
func (c *ExchangeClient) Create(ctx context.Context, in domain.ExchangeInput) (*domain.Exchange, error) {
	body := createExchangeRequest{Name: in.Name, DisplayName: in.DisplayName}

	var ext exchangeResponse
	if err := c.call(ctx, "create", "", func() error {
		return c.client.Post(ctx, exchangesPath, body, &ext)
	}); err != nil {
		return nil, err
	}

	return c.translate(&ext)
}

// Update sends only the fields set in patch. An empty patch returns the
// exchange unchanged without writing.
func (c *ExchangeClient) Update(ctx context.Context, id string, patch domain.ExchangePatch) (*domain.Exchange, error) {
	if err := ValidateRequired(id, "id"); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return c.Get(ctx, id)
	}

	body := map[string]any{}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.DisplayName != nil {
		body["display_name"] = *patch.DisplayName
	}

	var ext exchangeResponse
	if err := c.call(ctx, "update", id, func() error {
		return c.client.Patch(ctx, resourcePath(exchangesPath, id), body, &ext)
	}); err != nil {
		return nil, err
	}

	return c.translate(&ext)
}

// Delete removes an exchange.
func (c *ExchangeClient) Delete(ctx context.Context, id string) error {
	if err := ValidateRequired(id, "id"); err != nil {
		return err
	}

	return c.call(ctx, "delete", id, func() error {
		return c.client.Delete(ctx, resourcePath(exchangesPath, id), nil)
	})
}

// Name implements ports.HealthChecker.
func (c *ExchangeClient) Name() string {
	return c.serviceName + "/exchanges"
}

// Check implements ports.HealthChecker.
func (c *ExchangeClient) Check(ctx context.Context) error {
	return c.check(ctx, exchangesPath)
}

func (c *ExchangeClient) translate(ext *exchangeResponse) (*domain.Exchange, error) {
	exchange, err := translateExchange(ext)
	if err != nil {
		return nil, c.invalid(err)
	}

	return exchange, nil
}

func translateExchange(ext *exchangeResponse) (*domain.Exchange, error) {
	const entity = "exchange"

	var e domain.Exchange
	if err := requireFields(entity,
		field("id", ext.ID, &e.ID),
		field("name", ext.Name, &e.Name),
		field("display_name", ext.DisplayName, &e.DisplayName),
	); err != nil {
		return nil, err
	}

	if err := timestamps(entity, ext.CreatedAt, ext.UpdatedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}

	return &e, nil
}
