package acl

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

func TestNewBaseAdapter_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() {
		NewBaseAdapter(Config{}, "exchange")
	})
}

func TestBaseAdapter_ServiceName(t *testing.T) {
	cfg, _ := setupAPI(t, 200, `[]`)

	adapter := NewBaseAdapter(cfg, "exchange")

	assert.Equal(t, "zapallo-api", adapter.ServiceName())
	assert.Same(t, cfg.Client, adapter.Client())
}

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("ex-1", "id"))

	err := ValidateRequired("", "id")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "id: is required")
}

func TestTranslateSlice(t *testing.T) {
	double := func(n *int) (*int, error) {
		if *n < 0 {
			return nil, errors.New("negative")
		}
		v := *n * 2
		return &v, nil
	}

	t.Run("success", func(t *testing.T) {
		got, err := TranslateSlice([]int{1, 2, 3}, double)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 4, 6}, got)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := TranslateSlice([]int{}, double)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		_, err := TranslateSlice([]int{1, -1, 3}, double)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "translating item 1")
	})
}

func TestParseTimestamp(t *testing.T) {
	ptr := func(s string) *string { return &s }

	got, err := parseTimestamp("exchange", "created_at", ptr("2024-03-05T10:20:30Z"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC), got)

	got, err = parseTimestamp("exchange", "created_at", ptr("2024-03-05T10:20:30.5"))
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, time.Duration(got.Nanosecond()))

	_, err = parseTimestamp("exchange", "created_at", nil)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "missing created_at")

	_, err = parseTimestamp("exchange", "updated_at", ptr("yesterday"))
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), `updated_at "yesterday" is not a timestamp`)
}
