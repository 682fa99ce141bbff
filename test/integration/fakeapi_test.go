//go:build integration

package integration

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// record is one stored API resource as the API serializes it.
type record map[string]any

// collection is one resource collection of the fake API.
type collection struct {
	path     string
	entity   string
	required []string
	// unique, when set, names a field that must not repeat.
	unique   string
	defaults record
	filters  []string

	mu    sync.Mutex
	items map[string]record
	order []string
}

// fakeAPI is an in-memory stand-in for the Zapallo API. It speaks the same
// JSON shapes: bare records, arrays, {"detail": ...} errors and 204 deletes.
type fakeAPI struct {
	server      *httptest.Server
	collections []*collection

	down  atomic.Bool
	delay atomic.Int64
	hits  atomic.Int64
}

const apiPrefix = "/api/v1"

func newFakeAPI() *fakeAPI {
	api := &fakeAPI{
		collections: []*collection{
			{
				path:     "/exchanges",
				entity:   "Exchange",
				required: []string{"name", "display_name"},
				unique:   "name",
			},
			{
				path:     "/exchange_users",
				entity:   "Exchange user",
				required: []string{"exchange_id", "external_user_id", "name"},
				filters:  []string{"exchange_id"},
			},
			{
				path:     "/exchange_cards",
				entity:   "Exchange card",
				required: []string{"exchange_id", "external_card_id", "name", "set_name", "language"},
				defaults: record{"rarity": nil, "is_foil": false, "image_front_id": nil, "image_back_id": nil, "card_id": nil},
				filters:  []string{"exchange_id"},
			},
		},
	}

	engine := gin.New()
	engine.Use(api.gate)

	group := engine.Group(apiPrefix)
	for _, c := range api.collections {
		c.items = map[string]record{}
		group.GET(c.path, c.list)
		group.POST(c.path, c.create)
		group.GET(c.path+"/:id", c.get)
		group.PATCH(c.path+"/:id", c.update)
		group.DELETE(c.path+"/:id", c.remove)
	}

	api.server = httptest.NewServer(engine)

	return api
}

func (a *fakeAPI) URL() string { return a.server.URL }

func (a *fakeAPI) Close() { a.server.Close() }

// SetDown makes every request answer 503 with a plain-text body.
func (a *fakeAPI) SetDown(down bool) { a.down.Store(down) }

// SetDelay holds every response for d.
func (a *fakeAPI) SetDelay(d time.Duration) { a.delay.Store(int64(d)) }

// Hits returns the number of requests received.
func (a *fakeAPI) Hits() int64 { return a.hits.Load() }

// Reset empties every collection and clears the failure modes.
func (a *fakeAPI) Reset() {
	a.SetDown(false)
	a.SetDelay(0)
	a.hits.Store(0)

	for _, c := range a.collections {
		c.mu.Lock()
		c.items = map[string]record{}
		c.order = nil
		c.mu.Unlock()
	}
}

func (a *fakeAPI) gate(c *gin.Context) {
	a.hits.Add(1)

	if d := time.Duration(a.delay.Load()); d > 0 {
		select {
		case <-time.After(d):
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}

	if a.down.Load() {
		c.String(http.StatusServiceUnavailable, "upstream unavailable")
		c.Abort()

		return
	}

	c.Next()
}

func (col *collection) list(c *gin.Context) {
	col.mu.Lock()
	defer col.mu.Unlock()

	out := make([]record, 0, len(col.order))

	for _, id := range col.order {
		item := col.items[id]
		if col.matches(c, item) {
			out = append(out, item)
		}
	}

	c.JSON(http.StatusOK, out)
}

func (col *collection) matches(c *gin.Context, item record) bool {
	for _, name := range col.filters {
		if want := c.Query(name); want != "" && item[name] != want {
			return false
		}
	}

	return true
}

func (col *collection) get(c *gin.Context) {
	col.mu.Lock()
	defer col.mu.Unlock()

	item, ok := col.items[c.Param("id")]
	if !ok {
		col.notFound(c)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (col *collection) create(c *gin.Context) {
	var body record
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid JSON body"})
		return
	}

	var missing []gin.H

	for _, name := range col.required {
		if s, _ := body[name].(string); strings.TrimSpace(s) == "" {
			missing = append(missing, gin.H{"loc": []string{"body", name}, "msg": "Field required", "type": "missing"})
		}
	}

	if len(missing) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": missing})
		return
	}

	col.mu.Lock()
	defer col.mu.Unlock()

	if col.duplicate(body, "") {
		col.conflict(c)
		return
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	item := record{"id": uuid.NewString(), "created_at": now, "updated_at": now}

	for k, v := range col.defaults {
		item[k] = v
	}

	for k, v := range body {
		item[k] = v
	}

	id := item["id"].(string)
	col.items[id] = item
	col.order = append(col.order, id)

	c.JSON(http.StatusCreated, item)
}

func (col *collection) update(c *gin.Context) {
	var body record
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid JSON body"})
		return
	}

	col.mu.Lock()
	defer col.mu.Unlock()

	id := c.Param("id")

	item, ok := col.items[id]
	if !ok {
		col.notFound(c)
		return
	}

	if col.duplicate(body, id) {
		col.conflict(c)
		return
	}

	for k, v := range body {
		if k != "id" && k != "created_at" {
			item[k] = v
		}
	}

	item["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	c.JSON(http.StatusOK, item)
}

func (col *collection) remove(c *gin.Context) {
	col.mu.Lock()
	defer col.mu.Unlock()

	id := c.Param("id")
	if _, ok := col.items[id]; !ok {
		col.notFound(c)
		return
	}

	delete(col.items, id)
	col.order = slices.DeleteFunc(col.order, func(s string) bool { return s == id })

	c.Status(http.StatusNoContent)
}

// duplicate reports whether body reuses the unique field of another item.
func (col *collection) duplicate(body record, self string) bool {
	if col.unique == "" {
		return false
	}

	value, ok := body[col.unique]
	if !ok {
		return false
	}

	for id, item := range col.items {
		if id != self && item[col.unique] == value {
			return true
		}
	}

	return false
}

func (col *collection) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": col.entity + " not found"})
}

func (col *collection) conflict(c *gin.Context) {
	c.JSON(http.StatusConflict, gin.H{"detail": col.entity + " with this " + col.unique + " already exists"})
}
