package domain

import "time"

// Field limits enforced by the Zapallo API.
const (
	MaxExchangeNameLen        = 100
	MaxExchangeDisplayNameLen = 255
	MaxExternalIDLen          = 255
	MaxNameLen                = 255
	MaxLanguageLen            = 50
	MaxRarityLen              = 50
)

// Exchange is a trading-card marketplace.
type Exchange struct {
	ID          string
	Name        string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExchangeInput carries the fields needed to create an exchange.
type ExchangeInput struct {
	Name        string
	DisplayName string
}

// ExchangePatch carries the fields to change on an exchange. Nil fields are left as they are.
type ExchangePatch struct {
	Name        *string
	DisplayName *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ExchangePatch) IsEmpty() bool {
	return p.Name == nil && p.DisplayName == nil
}

// ExchangeUser is an account on a specific exchange.
type ExchangeUser struct {
	ID             string
	ExchangeID     string
	ExternalUserID string
	Name           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExchangeUserInput carries the fields needed to create an exchange user.
type ExchangeUserInput struct {
	ExchangeID     string
	ExternalUserID string
	Name           string
}

// ExchangeUserPatch carries the fields to change on an exchange user.
type ExchangeUserPatch struct {
	ExchangeID     *string
	ExternalUserID *string
	Name           *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ExchangeUserPatch) IsEmpty() bool {
	return p.ExchangeID == nil && p.ExternalUserID == nil && p.Name == nil
}

// ExchangeCard is a card listing on a specific exchange.
type ExchangeCard struct {
	ID             string
	ExchangeID     string
	ExternalCardID string
	Name           string
	SetName        string
	Language       string
	Rarity         *string
	IsFoil         bool
	ImageFrontID   *string
	ImageBackID    *string
	CardID         *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExchangeCardInput carries the fields needed to create an exchange card.
type ExchangeCardInput struct {
	ExchangeID     string
	ExternalCardID string
	Name           string
	SetName        string
	Language       string
	Rarity         *string
	IsFoil         bool
	ImageFrontID   *string
	ImageBackID    *string
	CardID         *string
}

// ExchangeCardPatch carries the fields to change on an exchange card.
// The nullable fields use Nullable so that a value can be cleared.
type ExchangeCardPatch struct {
	ExchangeID     *string
	ExternalCardID *string
	Name           *string
	SetName        *string
	Language       *string
	IsFoil         *bool
	Rarity         *Nullable[string]
	ImageFrontID   *Nullable[string]
	ImageBackID    *Nullable[string]
	CardID         *Nullable[string]
}

// IsEmpty reports whether the patch changes nothing.
func (p ExchangeCardPatch) IsEmpty() bool {
	return p.ExchangeID == nil && p.ExternalCardID == nil && p.Name == nil &&
		p.SetName == nil && p.Language == nil && p.IsFoil == nil &&
		p.Rarity == nil && p.ImageFrontID == nil && p.ImageBackID == nil && p.CardID == nil
}

// Nullable is a value that may be explicitly null. Valid=false means null.
type Nullable[T any] struct {
	Value T
	Valid bool
}

// Set returns a non-null Nullable holding v.
func Set[T any](v T) *Nullable[T] {
	return &Nullable[T]{Value: v, Valid: true}
}

// Null returns a Nullable that clears the field.
func Null[T any]() *Nullable[T] {
	return &Nullable[T]{}
}

// NullableString converts an optional string into a Nullable, treating an
// empty string as null.
func NullableString(s string) *Nullable[string] {
	if s == "" {
		return Null[string]()
	}

	return Set(s)
}

// UserSortField names a column the exchange user list can be ordered by.
type UserSortField string

// Sortable exchange user columns.
const (
	SortByName           UserSortField = "name"
	SortByExternalUserID UserSortField = "external_user_id"
	SortByCreatedAt      UserSortField = "created_at"
	SortByUpdatedAt      UserSortField = "updated_at"
)

// Valid reports whether f names a sortable column.
func (f UserSortField) Valid() bool {
	switch f {
	case SortByName, SortByExternalUserID, SortByCreatedAt, SortByUpdatedAt:
		return true
	default:
		return false
	}
}

// SortOrder is ascending or descending.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid reports whether o is a known direction.
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// Toggle returns the opposite direction.
func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}

	return SortAsc
}

// ExchangeUserFilter narrows and orders the exchange user list. Zero values are omitted.
type ExchangeUserFilter struct {
	ExchangeID string
	SortBy     UserSortField
	SortOrder  SortOrder
}

// Normalized returns the filter with invalid sort settings replaced by the
// default ordering (newest first).
func (f ExchangeUserFilter) Normalized() ExchangeUserFilter {
	if !f.SortBy.Valid() {
		f.SortBy = SortByCreatedAt
	}

	if !f.SortOrder.Valid() {
		f.SortOrder = SortDesc
	}

	return f
}
