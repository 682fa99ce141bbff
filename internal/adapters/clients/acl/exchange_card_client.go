package acl

import (
	"context"

	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

const exchangeCardsPath = "/exchange_cards"

// ExchangeCardClient manages exchange cards through the Zapallo API.
// Implements ports.ExchangeCardClient and ports.HealthChecker.
type ExchangeCardClient struct {
	BaseAdapter
}

// NewExchangeCardClient creates an exchange card accessor. Panics if cfg.Client is nil.
func NewExchangeCardClient(cfg Config) *ExchangeCardClient {
	return &ExchangeCardClient{BaseAdapter: NewBaseAdapter(cfg, "exchange_card")}
}

type exchangeCardResponse struct {
	ID             *string `json:"id"`
	ExchangeID     *string `json:"exchange_id"`
	ExternalCardID *string `json:"external_card_id"`
	Name           *string `json:"name"`
	SetName        *string `json:"set_name"`
	Language       *string `json:"language"`
	Rarity         *string `json:"rarity"`
	IsFoil         *bool   `json:"is_foil"`
	ImageFrontID   *string `json:"image_front_id"`
	ImageBackID    *string `json:"image_back_id"`
	CardID         *string `json:"card_id"`
	CreatedAt      *string `json:"created_at"`
	UpdatedAt      *string `json:"updated_at"`
}

type createExchangeCardRequest struct {
	ExchangeID     string  `json:"exchange_id"`
	ExternalCardID string  `json:"external_card_id"`
	Name           string  `json:"name"`
	SetName        string  `json:"set_name"`
	Language       string  `json:"language"`
	Rarity         *string `json:"rarity"`
	IsFoil         bool    `json:"is_foil"`
	ImageFrontID   *string `json:"image_front_id"`
	ImageBackID    *string `json:"image_back_id"`
	CardID         *string `json:"card_id"`
}

// List returns every exchange card.
func (c *ExchangeCardClient) List(ctx context.Context) ([]domain.ExchangeCard, error) {
	var ext []exchangeCardResponse
	if err := c.call(ctx, "list", "", func() error {
		return c.client.Get(ctx, exchangeCardsPath, &ext)
	}); err != nil {
		return nil, err
	}

	cards, err := TranslateSlice(ext, translateExchangeCard)
	if err != nil {
		return nil, c.invalid(err)
	}

	return cards, nil
}

// Get returns one exchange card.
func (c *ExchangeCardClient) Get(ctx context.Context, id string) (*domain.ExchangeCard, error) {
	if err := ValidateRequired(id, "id"); err != nil {
		return nil, err
	}

	var ext exchangeCardResponse
	if err := c.call(ctx, "get", id, func() error {
		return c.client.Get(ctx, resourcePath(exchangeCardsPath, id), &ext)
	}); err != nil {
		return nil, err
	}

	return c.translate(&ext)
}

// Create creates an exchange card. Unset optional references are sent as null.
func (c *ExchangeCardClient) Create(ctx context.Context, in domain.ExchangeCardInput) (*domain.ExchangeCard, error) {
	body := createExchangeCardRequest{
		ExchangeID:     in.ExchangeID,
		ExternalCardID: in.ExternalCardID,
		Name:           in.Name,
		SetName:        in.SetName,
		Language:       in.Language,
		Rarity:         in.Rarity,
		IsFoil:         in.IsFoil,
		ImageFrontID:   in.ImageFrontID,
		ImageBackID:    in.ImageBackID,
		CardID:         in.CardID,
	}

	var ext exchangeCardResponse
	if err := c.call(ctx, "create", "", func() error {
		return c.client.Post(ctx, exchangeCardsPath, body, &ext)
	}); err != nil {
		return nil, err
	}

	return c.translate(&ext)
}

// Update sends only the fields set in patch. Nullable fields set to null are
// sent as JSON null, which clears them. An empty patch returns the card
// unchanged without writing.
func (c *ExchangeCardClient) Update(ctx context.Context, id string, patch domain.ExchangeCardPatch) (*domain.ExchangeCard, error) {
	if err := ValidateRequired(id, "id"); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return c.Get(ctx, id)
	}

	body := map[string]any{}
	setString(body, "exchange_id", patch.ExchangeID)
	setString(body, "external_card_id", patch.ExternalCardID)
	setString(body, "name", patch.Name)
	setString(body, "set_name", patch.SetName)
	setString(body, "language", patch.Language)
	if patch.IsFoil != nil {
		body["is_foil"] = *patch.IsFoil
	}
	setNullable(body, "rarity", patch.Rarity)
	setNullable(body, "image_front_id", patch.ImageFrontID)
	setNullable(body, "image_back_id", patch.ImageBackID)
	setNullable(body, "card_id", patch.CardID)

	var ext exchangeCardResponse
	if err := c.call(ctx, "update", id, func() error {
		return c.client.Patch(ctx, resourcePath(exchangeCardsPath, id), body, &ext)
	}); err != nil {
		return nil, err
	}

	return c.translate(&ext)
}

// Delete removes an exchange card.
func (c *ExchangeCardClient) Delete(ctx context.Context, id string) error {
	if err := ValidateRequired(id, "id"); err != nil {
		return err
	}

	return c.call(ctx, "delete", id, func() error {
		return c.client.Delete(ctx, resourcePath(exchangeCardsPath, id), nil)
	})
}

// Name implements ports.HealthChecker.
func (c *ExchangeCardClient) Name() string {
	return c.serviceName + "/exchange_cards"
}

// Check implements ports.HealthChecker.
func (c *ExchangeCardClient) Check(ctx context.Context) error {
	return c.check(ctx, exchangeCardsPath)
}

func (c *ExchangeCardClient) translate(ext *exchangeCardResponse) (*domain.ExchangeCard, error) {
	card, err := translateExchangeCard(ext)
	if err != nil {
		return nil, c.invalid(err)
	}

	return card, nil
}

func translateExchangeCard(ext *exchangeCardResponse) (*domain.ExchangeCard, error) {
	const entity = "exchange_card"

	var card domain.ExchangeCard
	if err := requireFields(entity,
		field("id", ext.ID, &card.ID),
		field("exchange_id", ext.ExchangeID, &card.ExchangeID),
		field("external_card_id", ext.ExternalCardID, &card.ExternalCardID),
		field("name", ext.Name, &card.Name),
		field("set_name", ext.SetName, &card.SetName),
		field("language", ext.Language, &card.Language),
	); err != nil {
		return nil, err
	}

	if ext.IsFoil == nil {
		return nil, invalidRecord(entity, "missing is_foil")
	}
	card.IsFoil = *ext.IsFoil

	card.Rarity = ext.Rarity
	card.ImageFrontID = ext.ImageFrontID
	card.ImageBackID = ext.ImageBackID
	card.CardID = ext.CardID

	if err := timestamps(entity, ext.CreatedAt, ext.UpdatedAt, &card.CreatedAt, &card.UpdatedAt); err != nil {
		return nil, err
	}

	return &card, nil
}

func setString(body map[string]any, key string, v *string) {
	if v != nil {
		body[key] = *v
	}
}

func setNullable(body map[string]any, key string, v *domain.Nullable[string]) {
	if v == nil {
		return
	}

	if v.Valid {
		body[key] = v.Value
	} else {
		body[key] = nil
	}
}
