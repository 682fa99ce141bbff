package acl

import (
	"context"
	"net/url"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/clients"
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

const exchangeUsersPath = "/exchange_users"

// ExchangeUserClient manages exchange users through the Zapallo API.
// Implements ports.ExchangeUserClient and ports.HealthChecker.
type ExchangeUserClient struct {
	BaseAdapter
}

// NewExchangeUserClient creates an exchange user accessor. Panics if cfg.Client is nil.
func NewExchangeUserClient(cfg Config) *ExchangeUserClient {
	return &ExchangeUserClient{BaseAdapter: NewBaseAdapter(cfg, "exchange_user")}
}

type exchangeUserResponse struct {
	ID             *string `json:"id"`
	ExchangeID     *string `json:"exchange_id"`
	ExternalUserID *string `json:"external_user_id"`
	Name           *string `json:"name"`
	CreatedAt      *string `json:"created_at"`
	UpdatedAt      *string `json:"updated_at"`
}

type createExchangeUserRequest struct {
	ExchangeID     string `json:"exchange_id"`
	ExternalUserID string `json:"external_user_id"`
	Name           string `json:"name"`
}

// List returns exchange users narrowed and ordered by filter. Zero filter
// fields are not sent.
func (c *ExchangeUserClient) List(ctx context.Context, filter domain.ExchangeUserFilter) ([]domain.ExchangeUser, error) {
	query := url.Values{}
	query.Set("exchange_id", filter.ExchangeID)
	query.Set("sort_by", string(filter.SortBy))
	query.Set("sort_order", string(filter.SortOrder))

	var ext []exchangeUserResponse
	if err := c.call(ctx, "list", "", func() error {
		return c.client.Get(ctx, exchangeUsersPath, &ext, clients.WithQuery(query))
	}); err != nil {
		return nil, err
	}

	users, err := TranslateSlice(ext, translateExchangeUser)
	if err != nil {
		return nil, c.invalid(err)
	}

	return users, nil
}

// Get returns one exchange user.
func (c *ExchangeUserClient) Get(ctx context.Context, id string) (*domain.ExchangeUser, error) {
	if err := ValidateRequired(id, "id"); err != nil {
		return nil, err
	}

	var ext exchangeUserResponse
	if err := c.call(ctx, "get", id, func() error {
		return c.client.Get(ctx, resourcePath(exchangeUsersPath, id), &ext)
	}); err != nil {
		return nil, err
	}

	return c.translate(&ext)
}

// Create creates an exchange user.
func (c *ExchangeUserClient) Create(ctx context.Context, in domain.ExchangeUserInput) (*domain.ExchangeUser, error) {
	body := createExchangeUserRequest{
		ExchangeID:     in.ExchangeID,
		ExternalUserID: in.ExternalUserID,
		Name:           in.Name,
	}

	var ext exchangeUserResponse
	if err := c.call(ctx, "create", "", func() error {
		return c.client.Post(ctx, exchangeUsersPath, body, &ext)
	}); err != nil {
		return nil, err
	}

	return c.translate(&ext)
}

// Update sends only the fields set in patch. An empty patch returns the user
// unchanged without writing.
func (c *ExchangeUserClient) Update(ctx context.Context, id string, patch domain.ExchangeUserPatch) (*domain.ExchangeUser, error) {
	if err := ValidateRequired(id, "id"); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return c.Get(ctx, id)
	}

	body := map[string]any{}
	if patch.ExchangeID != nil {
		body["exchange_id"] = *patch.ExchangeID
	}
	if patch.ExternalUserID != nil {
		body["external_user_id"] = *patch.ExternalUserID
	}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}

	var ext exchangeUserResponse
	if err := c.call(ctx, "update", id, func() error {
		return c.client.Patch(ctx, resourcePath(exchangeUsersPath, id), body, &ext)
	}); err != nil {
		return nil, err
	}

	return c.translate(&ext)
}

// Delete removes an exchange user.
func (c *ExchangeUserClient) Delete(ctx context.Context, id string) error {
	if err := ValidateRequired(id, "id"); err != nil {
		return err
	}

	return c.call(ctx, "delete", id, func() error {
		return c.client.Delete(ctx, resourcePath(exchangeUsersPath, id), nil)
	})
}

// Name implements ports.HealthChecker.
func (c *ExchangeUserClient) Name() string {
	return c.serviceName + "/exchange_users"
}

// Check implements ports.HealthChecker.
func (c *ExchangeUserClient) Check(ctx context.Context) error {
	return c.check(ctx, exchangeUsersPath)
}

func (c *ExchangeUserClient) translate(ext *exchangeUserResponse) (*domain.ExchangeUser, error) {
	user, err := translateExchangeUser(ext)
	if err != nil {
		return nil, c.invalid(err)
	}

	return user, nil
}

func translateExchangeUser(ext *exchangeUserResponse) (*domain.ExchangeUser, error) {
	const entity = "exchange_user"

	var u domain.ExchangeUser
	if err := requireFields(entity,
		field("id", ext.ID, &u.ID),
		field("exchange_id", ext.ExchangeID, &u.ExchangeID),
		field("external_user_id", ext.ExternalUserID, &u.ExternalUserID),
		field("name", ext.Name, &u.Name),
	); err != nil {
		return nil, err
	}

	if err := timestamps(entity, ext.CreatedAt, ext.UpdatedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	return &u, nil
}
