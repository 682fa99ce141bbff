package dto

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

const (
	exchangeID = "3f1b6b9e-0d2a-4c55-9f4e-0a3c2b1d4e5f"
	imageID    = "8a7d1c2e-4b3f-4a6e-9d8c-1b2a3c4d5e6f"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewErrorResponse(t *testing.T) {
	got := NewErrorResponse(ErrorCodeNotFound, "Exchange not found").WithTraceID("trace-1")

	assert.Equal(t, &ErrorResponse{
		Error:   ErrorDetail{Code: ErrorCodeNotFound, Message: "Exchange not found"},
		TraceID: "trace-1",
	}, got)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeBadRequest, http.StatusBadRequest},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeInternal, http.StatusInternalServerError},
		{"UNKNOWN", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails map[string]string
	}{
		{
			name:        "not found",
			err:         domain.NewNotFoundError("exchange_user", "42"),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeNotFound,
			wantMessage: "Exchange user not found",
		},
		{
			name:        "conflict keeps API reason",
			err:         domain.NewConflictError("exchange", "Exchange name already exists"),
			wantStatus:  http.StatusConflict,
			wantCode:    ErrorCodeConflict,
			wantMessage: "Exchange name already exists",
		},
		{
			name:        "validation with fields",
			err:         domain.NewFieldValidationError("", map[string]string{"name": "too long"}),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "Please correct the highlighted fields",
			wantDetails: map[string]string{"name": "too long"},
		},
		{
			name:        "validation with message",
			err:         domain.NewValidationError("", "Invalid request"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "Invalid request",
		},
		{
			name:        "forbidden",
			err:         domain.NewForbiddenError("delete", "Not allowed"),
			wantStatus:  http.StatusForbidden,
			wantCode:    ErrorCodeForbidden,
			wantMessage: "Not allowed",
		},
		{
			name:        "unavailable wrapped",
			err:         fmt.Errorf("listing: %w", domain.NewUnavailableError("zapallo-api", "timeout")),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: "The Zapallo API is unavailable. Please try again.",
		},
		{
			name:        "unknown error hides detail",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)
		})
	}
}

func TestMapDomainError_Nil(t *testing.T) {
	status, resp := MapDomainError(nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp)
}

func TestValidate_ExchangeForm(t *testing.T) {
	tests := []struct {
		name string
		form ExchangeForm
		want map[string]string
	}{
		{
			name: "valid",
			form: ExchangeForm{Name: "cardmarket", DisplayName: "Cardmarket"},
			want: map[string]string{},
		},
		{
			name: "missing fields",
			form: ExchangeForm{},
			want: map[string]string{
				"name":         "Name is required",
				"display_name": "Display name is required",
			},
		},
		{
			name: "whitespace only accepted",
			form: ExchangeForm{Name: "   ", DisplayName: " "},
			want: map[string]string{},
		},
		{
			name: "too long",
			form: ExchangeForm{Name: strings.Repeat("x", 101), DisplayName: strings.Repeat("y", 256)},
			want: map[string]string{
				"name":         "Name must be 100 characters or less",
				"display_name": "Display name must be 255 characters or less",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			if len(tt.want) == 0 {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.want, ValidationErrors(err, tt.form))
		})
	}
}

func TestValidate_ExchangeUserForm(t *testing.T) {
	form := ExchangeUserForm{ExternalUserID: "u-1", Name: "Alice"}

	err := Validate(form)

	require.Error(t, err)
	assert.Equal(t, map[string]string{"exchange_id": "Select an exchange"}, ValidationErrors(err, &form))
}

func TestValidate_ExchangeCardForm(t *testing.T) {
	form := ExchangeCardForm{
		ExchangeID:     exchangeID,
		ExternalCardID: "c-1",
		Name:           "Black Lotus",
		SetName:        "Alpha",
		Language:       "en",
		ImageFrontID:   "not-a-uuid",
		CardID:         "",
	}

	err := Validate(form)

	require.Error(t, err)
	assert.Equal(t, map[string]string{"image_front_id": "Front image ID must be a valid UUID"}, ValidationErrors(err, form))
}

func TestValidationErrors_NotValidatorError(t *testing.T) {
	assert.Empty(t, ValidationErrors(errors.New("boom"), ExchangeForm{}))
}

func TestBindForm(t *testing.T) {
	body := url.Values{
		"exchange_id":      {exchangeID},
		"external_card_id": {"c-1"},
		"name":             {"Black Lotus"},
		"set_name":         {"Alpha"},
		"language":         {"en"},
		"is_foil":          {"true"},
		"image_back_id":    {imageID},
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/exchange-cards", strings.NewReader(body.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var form ExchangeCardForm
	require.NoError(t, BindForm(c, &form))

	assert.True(t, form.IsFoil)
	assert.Equal(t, "Black Lotus", form.Name)

	input := form.Input()
	assert.Nil(t, input.Rarity)
	assert.Nil(t, input.ImageFrontID)
	require.NotNil(t, input.ImageBackID)
	assert.Equal(t, imageID, *input.ImageBackID)
}

func TestBindQuery(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/exchange-users?sort_by=name&sort_order=asc", nil)

	var q ExchangeUserQuery
	require.NoError(t, BindQuery(c, &q))

	assert.Equal(t, domain.ExchangeUserFilter{SortBy: domain.SortByName, SortOrder: domain.SortAsc}, q.Filter())
}

func TestBindQuery_InvalidExchange(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/exchange-users?exchange_id=nope", nil)

	var q ExchangeUserQuery
	err := BindQuery(c, &q)

	require.ErrorIs(t, err, ErrValidation)
}

func TestExchangeUserQuery_FilterDefaults(t *testing.T) {
	f := ExchangeUserQuery{SortBy: "bogus", SortOrder: "sideways"}.Filter()

	assert.Equal(t, domain.SortByCreatedAt, f.SortBy)
	assert.Equal(t, domain.SortDesc, f.SortOrder)
}

func TestExchangeForm_Patch(t *testing.T) {
	current := &domain.Exchange{ID: exchangeID, Name: "cardmarket", DisplayName: "Cardmarket"}

	unchanged := NewExchangeForm(current).Patch(current)
	assert.True(t, unchanged.IsEmpty())

	patch := ExchangeForm{Name: "cardmarket", DisplayName: "Cardmarket EU"}.Patch(current)
	assert.Nil(t, patch.Name)
	require.NotNil(t, patch.DisplayName)
	assert.Equal(t, "Cardmarket EU", *patch.DisplayName)
}

func TestExchangeUserForm_Patch(t *testing.T) {
	current := &domain.ExchangeUser{ExchangeID: exchangeID, ExternalUserID: "u-1", Name: "Alice"}

	patch := ExchangeUserForm{ExchangeID: exchangeID, ExternalUserID: "u-2", Name: "Alice"}.Patch(current)

	assert.Nil(t, patch.ExchangeID)
	assert.Nil(t, patch.Name)
	require.NotNil(t, patch.ExternalUserID)
	assert.Equal(t, "u-2", *patch.ExternalUserID)
}

func TestExchangeCardForm_Patch(t *testing.T) {
	rarity := "rare"
	current := &domain.ExchangeCard{
		ExchangeID:     exchangeID,
		ExternalCardID: "c-1",
		Name:           "Black Lotus",
		SetName:        "Alpha",
		Language:       "en",
		Rarity:         &rarity,
	}

	form := NewExchangeCardForm(current)
	assert.True(t, form.Patch(current).IsEmpty())

	form.Rarity = ""
	form.IsFoil = true
	form.CardID = imageID

	patch := form.Patch(current)

	require.NotNil(t, patch.Rarity)
	assert.False(t, patch.Rarity.Valid, "cleared rarity is sent as null")
	require.NotNil(t, patch.IsFoil)
	assert.True(t, *patch.IsFoil)
	require.NotNil(t, patch.CardID)
	assert.Equal(t, domain.Nullable[string]{Value: imageID, Valid: true}, *patch.CardID)
	assert.Nil(t, patch.ImageFrontID)
	assert.Nil(t, patch.Name)
}
