package acl

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

func TestExchangeUserClient_List_Filter(t *testing.T) {
	tests := []struct {
		name      string
		filter    domain.ExchangeUserFilter
		wantQuery string
	}{
		{
			name:      "no filter",
			filter:    domain.ExchangeUserFilter{},
			wantQuery: "",
		},
		{
			name:      "exchange only",
			filter:    domain.ExchangeUserFilter{ExchangeID: "ex-1"},
			wantQuery: "exchange_id=ex-1",
		},
		{
			name: "all params",
			filter: domain.ExchangeUserFilter{
				ExchangeID: "ex-1",
				SortBy:     domain.SortByName,
				SortOrder:  domain.SortAsc,
			},
			wantQuery: "exchange_id=ex-1&sort_by=name&sort_order=asc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, api := setupAPI(t, http.StatusOK, `[`+exchangeUserJSON+`]`)
			client := NewExchangeUserClient(cfg)

			users, err := client.List(context.Background(), tt.filter)

			require.NoError(t, err)
			require.Len(t, users, 1)
			assert.Equal(t, "/api/v1/exchange_users", api.Last().Path)
			assert.Equal(t, tt.wantQuery, api.Last().Query)
		})
	}
}

func TestExchangeUserClient_Get(t *testing.T) {
	cfg, api := setupAPI(t, http.StatusOK, exchangeUserJSON)
	client := NewExchangeUserClient(cfg)

	user, err := client.Get(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "seller42", user.ExternalUserID)
	assert.Equal(t, "Jamie Doe", user.Name)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", user.ExchangeID)
	assert.Equal(t, "/api/v1/exchange_users/user-1", api.Last().Path)
}

func TestExchangeUserClient_Get_MissingExchangeID(t *testing.T) {
	cfg, _ := setupAPI(t, http.StatusOK, `{"id":"user-1","external_user_id":"seller42","name":"Jamie Doe","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`)
	client := NewExchangeUserClient(cfg)

	_, err := client.Get(context.Background(), "user-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "missing exchange_id")
}

func TestExchangeUserClient_Create(t *testing.T) {
	cfg, api := setupAPI(t, http.StatusCreated, exchangeUserJSON)
	client := NewExchangeUserClient(cfg)

	_, err := client.Create(context.Background(), domain.ExchangeUserInput{
		ExchangeID:     "ex-1",
		ExternalUserID: "seller42",
		Name:           "Jamie Doe",
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, api.Last().Method)
	assert.JSONEq(t, `{"exchange_id":"ex-1","external_user_id":"seller42","name":"Jamie Doe"}`, api.Last().Body)
}

func TestExchangeUserClient_Create_ValidationFields(t *testing.T) {
	cfg, _ := setupAPI(t, http.StatusBadRequest,
		`{"detail":[{"loc":["body","external_user_id"],"msg":"String should have at most 255 characters","type":"string_too_long"}]}`)
	client := NewExchangeUserClient(cfg)

	_, err := client.Create(context.Background(), domain.ExchangeUserInput{ExchangeID: "ex-1"})

	require.Error(t, err)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "String should have at most 255 characters", validation.Message)
	assert.Equal(t, "String should have at most 255 characters", validation.Fields["external_user_id"])
}

func TestExchangeUserClient_Update(t *testing.T) {
	cfg, api := setupAPI(t, http.StatusOK, exchangeUserJSON)
	client := NewExchangeUserClient(cfg)

	name := "Jamie D."
	exchangeID := "ex-2"
	_, err := client.Update(context.Background(), "user-1", domain.ExchangeUserPatch{
		Name:       &name,
		ExchangeID: &exchangeID,
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, api.Last().Method)
	assert.Equal(t, "/api/v1/exchange_users/user-1", api.Last().Path)
	assert.JSONEq(t, `{"name":"Jamie D.","exchange_id":"ex-2"}`, api.Last().Body)
}

func TestExchangeUserClient_Delete(t *testing.T) {
	cfg, api := setupAPI(t, http.StatusNoContent, "")
	client := NewExchangeUserClient(cfg)

	require.NoError(t, client.Delete(context.Background(), "user-1"))
	assert.Equal(t, http.MethodDelete, api.Last().Method)

	assert.True(t, domain.IsValidation(client.Delete(context.Background(), "")))
}

func TestExchangeUserClient_Name(t *testing.T) {
	cfg, _ := setupAPI(t, http.StatusOK, `[]`)

	assert.Equal(t, "zapallo-api/exchange_users", NewExchangeUserClient(cfg).Name())
}
