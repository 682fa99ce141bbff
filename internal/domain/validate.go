package domain

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// fieldRules collects per-field messages, keeping the first failure per field.
// Required means at least one character; whitespace counts.
type fieldRules map[string]string

func (r fieldRules) required(field, label, value string) {
	if _, done := r[field]; done {
		return
	}

	if value == "" {
		r[field] = label + " is required"
	}
}

func (r fieldRules) maxLen(field, label, value string, limit int) {
	if _, done := r[field]; done {
		return
	}

	if utf8.RuneCountInString(value) > limit {
		r[field] = fmt.Sprintf("%s must be %d characters or less", label, limit)
	}
}

func (r fieldRules) uuid(field, message, value string) {
	if _, done := r[field]; done {
		return
	}

	if err := uuid.Validate(value); err != nil {
		r[field] = message
	}
}

func (r fieldRules) optionalUUID(field, label string, value *string) {
	if value == nil || *value == "" {
		return
	}

	r.uuid(field, label+" must be a valid UUID", *value)
}

func (r fieldRules) err() error {
	if len(r) == 0 {
		return nil
	}

	return NewFieldValidationError("", r)
}

// Validate checks an exchange before it is sent to the API.
func (in ExchangeInput) Validate() error {
	r := fieldRules{}
	r.required("name", "Name", in.Name)
	r.maxLen("name", "Name", in.Name, MaxExchangeNameLen)
	r.required("display_name", "Display name", in.DisplayName)
	r.maxLen("display_name", "Display name", in.DisplayName, MaxExchangeDisplayNameLen)

	return r.err()
}

// Validate checks the fields a patch sets.
func (p ExchangePatch) Validate() error {
	r := fieldRules{}
	if p.Name != nil {
		r.required("name", "Name", *p.Name)
		r.maxLen("name", "Name", *p.Name, MaxExchangeNameLen)
	}
	if p.DisplayName != nil {
		r.required("display_name", "Display name", *p.DisplayName)
		r.maxLen("display_name", "Display name", *p.DisplayName, MaxExchangeDisplayNameLen)
	}

	return r.err()
}

// Validate checks an exchange user before it is sent to the API.
func (in ExchangeUserInput) Validate() error {
	r := fieldRules{}
	r.uuid("exchange_id", "Select an exchange", in.ExchangeID)
	r.required("external_user_id", "External user ID", in.ExternalUserID)
	r.maxLen("external_user_id", "External user ID", in.ExternalUserID, MaxExternalIDLen)
	r.required("name", "Name", in.Name)
	r.maxLen("name", "Name", in.Name, MaxNameLen)

	return r.err()
}

// Validate checks the fields a patch sets.
func (p ExchangeUserPatch) Validate() error {
	r := fieldRules{}
	if p.ExchangeID != nil {
		r.uuid("exchange_id", "Select an exchange", *p.ExchangeID)
	}
	if p.ExternalUserID != nil {
		r.required("external_user_id", "External user ID", *p.ExternalUserID)
		r.maxLen("external_user_id", "External user ID", *p.ExternalUserID, MaxExternalIDLen)
	}
	if p.Name != nil {
		r.required("name", "Name", *p.Name)
		r.maxLen("name", "Name", *p.Name, MaxNameLen)
	}

	return r.err()
}

// Validate checks an exchange card before it is sent to the API.
func (in ExchangeCardInput) Validate() error {
	r := fieldRules{}
	r.uuid("exchange_id", "Select an exchange", in.ExchangeID)
	r.required("external_card_id", "External card ID", in.ExternalCardID)
	r.maxLen("external_card_id", "External card ID", in.ExternalCardID, MaxExternalIDLen)
	r.required("name", "Name", in.Name)
	r.maxLen("name", "Name", in.Name, MaxNameLen)
	r.required("set_name", "Set name", in.SetName)
	r.maxLen("set_name", "Set name", in.SetName, MaxNameLen)
	r.required("language", "Language", in.Language)
	r.maxLen("language", "Language", in.Language, MaxLanguageLen)
	if in.Rarity != nil {
		r.maxLen("rarity", "Rarity", *in.Rarity, MaxRarityLen)
	}
	r.optionalUUID("image_front_id", "Front image ID", in.ImageFrontID)
	r.optionalUUID("image_back_id", "Back image ID", in.ImageBackID)
	r.optionalUUID("card_id", "Card ID", in.CardID)

	return r.err()
}

// Validate checks the fields a patch sets.
func (p ExchangeCardPatch) Validate() error {
	r := fieldRules{}
	if p.ExchangeID != nil {
		r.uuid("exchange_id", "Select an exchange", *p.ExchangeID)
	}
	if p.ExternalCardID != nil {
		r.required("external_card_id", "External card ID", *p.ExternalCardID)
		r.maxLen("external_card_id", "External card ID", *p.ExternalCardID, MaxExternalIDLen)
	}
	if p.Name != nil {
		r.required("name", "Name", *p.Name)
		r.maxLen("name", "Name", *p.Name, MaxNameLen)
	}
	if p.SetName != nil {
		r.required("set_name", "Set name", *p.SetName)
		r.maxLen("set_name", "Set name", *p.SetName, MaxNameLen)
	}
	if p.Language != nil {
		r.required("language", "Language", *p.Language)
		r.maxLen("language", "Language", *p.Language, MaxLanguageLen)
	}
	if p.Rarity != nil && p.Rarity.Valid {
		r.maxLen("rarity", "Rarity", p.Rarity.Value, MaxRarityLen)
	}
	for field, v := range map[string]*Nullable[string]{
		"image_front_id": p.ImageFrontID,
		"image_back_id":  p.ImageBackID,
		"card_id":        p.CardID,
	} {
		if v != nil && v.Valid {
			r.optionalUUID(field, uuidLabels[field], &v.Value)
		}
	}

	return r.err()
}

var uuidLabels = map[string]string{
	"image_front_id": "Front image ID",
	"image_back_id":  "Back image ID",
	"card_id":        "Card ID",
}
