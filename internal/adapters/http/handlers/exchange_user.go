package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/dto"
	"github.com/jsamuelsen/zapallo-backoffice/internal/app"
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

const exchangeUsersPath = "/exchange-users"

// ExchangeUserHandler serves the exchange user pages.
type ExchangeUserHandler struct {
	formPage[dto.ExchangeUserForm]
	service *app.ExchangeUserService
}

// NewExchangeUserHandler creates a new exchange user handler.
func NewExchangeUserHandler(service *app.ExchangeUserService, flash *Flasher) *ExchangeUserHandler {
	h := &ExchangeUserHandler{
		formPage: formPage[dto.ExchangeUserForm]{
			pages:    pages{flash: flash},
			template: "user_form",
			section:  SectionExchangeUsers,
			root:     exchangeUsersPath,
			entity:   "Exchange User",
		},
		service: service,
	}

	h.prepare = func(ctx context.Context, view *formView[dto.ExchangeUserForm]) error {
		exchanges, err := service.Exchanges(ctx)
		if err != nil {
			return err
		}

		view.Exchanges = exchanges
		view.Selected = view.Values.ExchangeID

		return nil
	}

	return h
}

// RegisterRoutes registers the exchange user pages under /exchange-users.
func (h *ExchangeUserHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group(exchangeUsersPath)
	g.GET("", h.List)
	g.GET("/new", h.New)
	g.POST("", h.Create)
	g.GET("/:id", h.Detail)
	g.GET("/:id/edit", h.Edit)
	g.POST("/:id/edit", h.Update)
	g.GET("/:id/delete", h.ConfirmDelete)
	g.POST("/:id/delete", h.Delete)
}

// sortColumn is a header of the exchange user table.
type sortColumn struct {
	Label  string
	URL    string
	Active bool
	Arrow  string
}

type userListView struct {
	Exchanges []domain.Exchange
	Filter    domain.ExchangeUserFilter
	Columns   []sortColumn
	Rows      []app.ExchangeUserRow
}

type userDetailView struct {
	User *app.ExchangeUserRow
}

// userColumns lists the table headers in order. An empty field is not sortable.
var userColumns = []struct {
	label string
	field domain.UserSortField
}{
	{"Name", domain.SortByName},
	{"External User ID", domain.SortByExternalUserID},
	{"Exchange", ""},
	{"Created", domain.SortByCreatedAt},
	{"Updated", domain.SortByUpdatedAt},
}

// List handles GET /exchange-users?exchange_id=&sort_by=&sort_order=.
func (h *ExchangeUserHandler) List(c *gin.Context) {
	var query dto.ExchangeUserQuery
	if err := dto.BindQuery(c, &query); err != nil {
		h.fail(c, SectionExchangeUsers, domain.NewValidationError("exchange_id", "Invalid exchange filter"))
		return
	}

	filter := query.Filter()
	ctx := c.Request.Context()

	rows, err := h.service.List(ctx, filter)
	if err != nil {
		h.fail(c, SectionExchangeUsers, err)
		return
	}

	exchanges, err := h.service.Exchanges(ctx)
	if err != nil {
		h.fail(c, SectionExchangeUsers, err)
		return
	}

	h.render(c, http.StatusOK, "user_list", "Exchange Users", SectionExchangeUsers, userListView{
		Exchanges: exchanges,
		Filter:    filter,
		Columns:   sortColumns(filter),
		Rows:      rows,
	})
}

// sortColumns builds the headers. The active column links to the opposite
// order; the others link to ascending order on themselves.
func sortColumns(filter domain.ExchangeUserFilter) []sortColumn {
	columns := make([]sortColumn, 0, len(userColumns))

	for _, col := range userColumns {
		column := sortColumn{Label: col.label}

		if col.field != "" {
			order := domain.SortAsc
			if col.field == filter.SortBy {
				column.Active = true
				column.Arrow = arrow(filter.SortOrder)
				order = filter.SortOrder.Toggle()
			}

			column.URL = userListURL(filter.ExchangeID, col.field, order)
		}

		columns = append(columns, column)
	}

	return columns
}

func userListURL(exchangeID string, by domain.UserSortField, order domain.SortOrder) string {
	q := url.Values{}
	if exchangeID != "" {
		q.Set("exchange_id", exchangeID)
	}

	q.Set("sort_by", string(by))
	q.Set("sort_order", string(order))

	return exchangeUsersPath + "?" + q.Encode()
}

func arrow(order domain.SortOrder) string {
	if order == domain.SortAsc {
		return "▲"
	}

	return "▼"
}

// Detail handles GET /exchange-users/:id.
func (h *ExchangeUserHandler) Detail(c *gin.Context) {
	row, err := h.service.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, SectionExchangeUsers, err)
		return
	}

	h.render(c, http.StatusOK, "user_detail", row.Name, SectionExchangeUsers, userDetailView{User: row})
}

// New handles GET /exchange-users/new. An exchange_id query value preselects the exchange.
func (h *ExchangeUserHandler) New(c *gin.Context) {
	h.show(c, http.StatusOK, h.createView(dto.ExchangeUserForm{ExchangeID: c.Query("exchange_id")}))
}

// Create handles POST /exchange-users.
func (h *ExchangeUserHandler) Create(c *gin.Context) {
	var form dto.ExchangeUserForm

	if err := dto.BindForm(c, &form); err != nil {
		h.invalid(c, h.createView(form), err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), form.Input())
	if err != nil {
		h.writeFailed(c, h.createView(form), err)
		return
	}

	h.redirect(c, entityPath(exchangeUsersPath, created.ID), "Exchange user created successfully!")
}

// Edit handles GET /exchange-users/:id/edit.
func (h *ExchangeUserHandler) Edit(c *gin.Context) {
	row, err := h.service.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, SectionExchangeUsers, err)
		return
	}

	h.show(c, http.StatusOK, h.editView(row.ID, dto.NewExchangeUserForm(&row.ExchangeUser)))
}

// Update handles POST /exchange-users/:id/edit.
func (h *ExchangeUserHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var form dto.ExchangeUserForm

	if err := dto.BindForm(c, &form); err != nil {
		h.invalid(c, h.editView(id, form), err)
		return
	}

	ctx := c.Request.Context()

	current, err := h.service.Detail(ctx, id)
	if err != nil {
		h.fail(c, SectionExchangeUsers, err)
		return
	}

	if _, err := h.service.Update(ctx, id, form.Patch(&current.ExchangeUser)); err != nil {
		h.writeFailed(c, h.editView(id, form), err)
		return
	}

	h.redirect(c, entityPath(exchangeUsersPath, id), "Exchange user updated successfully!")
}

// ConfirmDelete handles GET /exchange-users/:id/delete.
func (h *ExchangeUserHandler) ConfirmDelete(c *gin.Context) {
	row, err := h.service.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, SectionExchangeUsers, err)
		return
	}

	h.render(c, http.StatusOK, "confirm_delete", "Delete Exchange User", SectionExchangeUsers, deleteView{
		Entity: "exchange user",
		Name:   row.Name,
		Action: entityPath(exchangeUsersPath, row.ID, "delete"),
		Cancel: entityPath(exchangeUsersPath, row.ID),
	})
}

// Delete handles POST /exchange-users/:id/delete.
func (h *ExchangeUserHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if domain.IsNotFound(err) {
			h.fail(c, SectionExchangeUsers, err)
			return
		}

		h.redirectError(c, entityPath(exchangeUsersPath, id), err)

		return
	}

	h.redirect(c, exchangeUsersPath, "Exchange user deleted successfully!")
}
