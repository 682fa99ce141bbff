package acl

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/clients"
	"github.com/jsamuelsen/zapallo-backoffice/internal/ports"
)

var (
	_ ports.ExchangeClient     = (*ExchangeClient)(nil)
	_ ports.ExchangeUserClient = (*ExchangeUserClient)(nil)
	_ ports.ExchangeCardClient = (*ExchangeCardClient)(nil)
	_ ports.HealthChecker      = (*ExchangeClient)(nil)
	_ ports.HealthChecker      = (*ExchangeUserClient)(nil)
	_ ports.HealthChecker      = (*ExchangeCardClient)(nil)
)

// recordedRequest captures what the fake API received.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeAPI serves a canned response and records the last request.
type fakeAPI struct {
	mu     sync.Mutex
	status int
	body   string
	last   recordedRequest
	calls  int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.last = recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   string(body),
	}

	if f.status == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, f.body)
}

// Last returns the most recent request.
func (f *fakeAPI) Last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Calls returns how many requests were served.
func (f *fakeAPI) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// setupAPI starts a fake API and returns an accessor config pointing at it.
func setupAPI(t *testing.T, status int, body string) (Config, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{status: status, body: body}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	client, err := clients.New(&clients.Config{
		BaseURL:     server.URL,
		Prefix:      "/api/v1",
		ServiceName: "zapallo-api",
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)

	return Config{Client: client}, api
}

const (
	exchangeJSON = `{
		"id": "550e8400-e29b-41d4-a716-446655440000",
		"name": "cardmarket",
		"display_name": "CardMarket",
		"created_at": "2024-01-01T00:00:00Z",
		"updated_at": "2024-01-02T00:00:00Z"
	}`

	exchangeUserJSON = `{
		"id": "user-1",
		"exchange_id": "550e8400-e29b-41d4-a716-446655440000",
		"external_user_id": "seller42",
		"name": "Jamie Doe",
		"created_at": "2024-01-01T00:00:00Z",
		"updated_at": "2024-01-01T00:00:00Z"
	}`

	exchangeCardJSON = `{
		"id": "card-1",
		"exchange_id": "550e8400-e29b-41d4-a716-446655440000",
		"external_card_id": "mkm-1001",
		"name": "Black Lotus",
		"set_name": "Alpha",
		"language": "English",
		"rarity": "Rare",
		"is_foil": false,
		"image_front_id": null,
		"image_back_id": null,
		"card_id": null,
		"created_at": "2024-01-01T00:00:00.123456",
		"updated_at": "2024-01-01T00:00:00Z"
	}`
)
