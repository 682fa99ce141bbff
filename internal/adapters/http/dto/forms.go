package dto

import (
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

// ExchangeForm is the submitted exchange form.
type ExchangeForm struct {
	Name        string `form:"name"         label:"Name"         validate:"notempty,max=100"`
	DisplayName string `form:"display_name" label:"Display name" validate:"notempty,max=255"`
}

// NewExchangeForm fills the form from an existing exchange.
func NewExchangeForm(e *domain.Exchange) ExchangeForm {
	return ExchangeForm{Name: e.Name, DisplayName: e.DisplayName}
}

// Input converts the form into a create request.
func (f ExchangeForm) Input() domain.ExchangeInput {
	return domain.ExchangeInput{Name: f.Name, DisplayName: f.DisplayName}
}

// Patch returns the fields that differ from current.
func (f ExchangeForm) Patch(current *domain.Exchange) domain.ExchangePatch {
	return domain.ExchangePatch{
		Name:        changed(f.Name, current.Name),
		DisplayName: changed(f.DisplayName, current.DisplayName),
	}
}

// ExchangeUserForm is the submitted exchange user form.
type ExchangeUserForm struct {
	ExchangeID     string `form:"exchange_id"      message:"Select an exchange"    validate:"required,uuid"`
	ExternalUserID string `form:"external_user_id" label:"External user ID" validate:"notempty,max=255"`
	Name           string `form:"name"             label:"Name"             validate:"notempty,max=255"`
}

// NewExchangeUserForm fills the form from an existing user.
func NewExchangeUserForm(u *domain.ExchangeUser) ExchangeUserForm {
	return ExchangeUserForm{ExchangeID: u.ExchangeID, ExternalUserID: u.ExternalUserID, Name: u.Name}
}

// Input converts the form into a create request.
func (f ExchangeUserForm) Input() domain.ExchangeUserInput {
	return domain.ExchangeUserInput{ExchangeID: f.ExchangeID, ExternalUserID: f.ExternalUserID, Name: f.Name}
}

// Patch returns the fields that differ from current.
func (f ExchangeUserForm) Patch(current *domain.ExchangeUser) domain.ExchangeUserPatch {
	return domain.ExchangeUserPatch{
		ExchangeID:     changed(f.ExchangeID, current.ExchangeID),
		ExternalUserID: changed(f.ExternalUserID, current.ExternalUserID),
		Name:           changed(f.Name, current.Name),
	}
}

// ExchangeUserQuery is the exchange user list query string.
type ExchangeUserQuery struct {
	ExchangeID string `form:"exchange_id" validate:"omitempty,uuid"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
}

// Filter converts the query into a list filter with a valid ordering.
func (q ExchangeUserQuery) Filter() domain.ExchangeUserFilter {
	return domain.ExchangeUserFilter{
		ExchangeID: q.ExchangeID,
		SortBy:     domain.UserSortField(q.SortBy),
		SortOrder:  domain.SortOrder(q.SortOrder),
	}.Normalized()
}

// ExchangeCardForm is the submitted exchange card form. Empty optional
// fields mean "no value".
type ExchangeCardForm struct {
	ExchangeID     string `form:"exchange_id"      message:"Select an exchange"    validate:"required,uuid"`
	ExternalCardID string `form:"external_card_id" label:"External card ID" validate:"notempty,max=255"`
	Name           string `form:"name"             label:"Name"             validate:"notempty,max=255"`
	SetName        string `form:"set_name"         label:"Set name"         validate:"notempty,max=255"`
	Language       string `form:"language"         label:"Language"         validate:"notempty,max=50"`
	Rarity         string `form:"rarity"           label:"Rarity"           validate:"max=50"`
	IsFoil         bool   `form:"is_foil"`
	ImageFrontID   string `form:"image_front_id"   label:"Front image ID"   validate:"uuid"`
	ImageBackID    string `form:"image_back_id"    label:"Back image ID"    validate:"uuid"`
	CardID         string `form:"card_id"          label:"Card ID"          validate:"uuid"`
}

// NewExchangeCardForm fills the form from an existing card.
func NewExchangeCardForm(c *domain.ExchangeCard) ExchangeCardForm {
	return ExchangeCardForm{
		ExchangeID:     c.ExchangeID,
		ExternalCardID: c.ExternalCardID,
		Name:           c.Name,
		SetName:        c.SetName,
		Language:       c.Language,
		Rarity:         value(c.Rarity),
		IsFoil:         c.IsFoil,
		ImageFrontID:   value(c.ImageFrontID),
		ImageBackID:    value(c.ImageBackID),
		CardID:         value(c.CardID),
	}
}

// Input converts the form into a create request.
func (f ExchangeCardForm) Input() domain.ExchangeCardInput {
	return domain.ExchangeCardInput{
		ExchangeID:     f.ExchangeID,
		ExternalCardID: f.ExternalCardID,
		Name:           f.Name,
		SetName:        f.SetName,
		Language:       f.Language,
		Rarity:         optional(f.Rarity),
		IsFoil:         f.IsFoil,
		ImageFrontID:   optional(f.ImageFrontID),
		ImageBackID:    optional(f.ImageBackID),
		CardID:         optional(f.CardID),
	}
}

// Patch returns the fields that differ from current. A cleared optional
// field is sent as null.
func (f ExchangeCardForm) Patch(current *domain.ExchangeCard) domain.ExchangeCardPatch {
	patch := domain.ExchangeCardPatch{
		ExchangeID:     changed(f.ExchangeID, current.ExchangeID),
		ExternalCardID: changed(f.ExternalCardID, current.ExternalCardID),
		Name:           changed(f.Name, current.Name),
		SetName:        changed(f.SetName, current.SetName),
		Language:       changed(f.Language, current.Language),
		Rarity:         changedNullable(f.Rarity, current.Rarity),
		ImageFrontID:   changedNullable(f.ImageFrontID, current.ImageFrontID),
		ImageBackID:    changedNullable(f.ImageBackID, current.ImageBackID),
		CardID:         changedNullable(f.CardID, current.CardID),
	}

	if f.IsFoil != current.IsFoil {
		patch.IsFoil = &f.IsFoil
	}

	return patch
}

func changed(submitted, current string) *string {
	if submitted == current {
		return nil
	}

	return &submitted
}

func changedNullable(submitted string, current *string) *domain.Nullable[string] {
	if submitted == value(current) {
		return nil
	}

	return domain.NullableString(submitted)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func value(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
