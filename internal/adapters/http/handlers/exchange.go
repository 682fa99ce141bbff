package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/dto"
	"github.com/jsamuelsen/zapallo-backoffice/internal/app"
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

const exchangesPath = "/exchanges"

// ExchangeHandler serves the exchange pages.
type ExchangeHandler struct {
	formPage[dto.ExchangeForm]
	service *app.ExchangeService
}

// NewExchangeHandler creates a new exchange handler.
func NewExchangeHandler(service *app.ExchangeService, flash *Flasher) *ExchangeHandler {
	return &ExchangeHandler{
		formPage: formPage[dto.ExchangeForm]{
			pages:    pages{flash: flash},
			template: "exchange_form",
			section:  SectionExchanges,
			root:     exchangesPath,
			entity:   "Exchange",
		},
		service: service,
	}
}

// RegisterRoutes registers the exchange pages under /exchanges.
func (h *ExchangeHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group(exchangesPath)
	g.GET("", h.List)
	g.GET("/new", h.New)
	g.POST("", h.Create)
	g.GET("/:id", h.Detail)
	g.GET("/:id/edit", h.Edit)
	g.POST("/:id/edit", h.Update)
	g.GET("/:id/delete", h.ConfirmDelete)
	g.POST("/:id/delete", h.Delete)
}

type exchangeListView struct {
	Exchanges []domain.Exchange
}

type exchangeDetailView struct {
	Exchange *domain.Exchange
}

// List handles GET /exchanges.
func (h *ExchangeHandler) List(c *gin.Context) {
	exchanges, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, SectionExchanges, err)
		return
	}

	h.render(c, http.StatusOK, "exchange_list", "Exchanges", SectionExchanges, exchangeListView{Exchanges: exchanges})
}

// Detail handles GET /exchanges/:id.
func (h *ExchangeHandler) Detail(c *gin.Context) {
	exchange, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, SectionExchanges, err)
		return
	}

	h.render(c, http.StatusOK, "exchange_detail", exchange.DisplayName, SectionExchanges, exchangeDetailView{Exchange: exchange})
}

// New handles GET /exchanges/new.
func (h *ExchangeHandler) New(c *gin.Context) {
	h.show(c, http.StatusOK, h.createView(dto.ExchangeForm{}))
}

// Create handles POST /exchanges.
func (h *ExchangeHandler) Create(c *gin.Context) {
	var form dto.ExchangeForm

	if err := dto.BindForm(c, &form); err != nil {
		h.invalid(c, h.createView(form), err)
		return
	}

	if _, err := h.service.Create(c.Request.Context(), form.Input()); err != nil {
		h.writeFailed(c, h.createView(form), err)
		return
	}

	h.redirect(c, exchangesPath, "Exchange created successfully!")
}

// Edit handles GET /exchanges/:id/edit.
func (h *ExchangeHandler) Edit(c *gin.Context) {
	exchange, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, SectionExchanges, err)
		return
	}

	h.show(c, http.StatusOK, h.editView(exchange.ID, dto.NewExchangeForm(exchange)))
}

// Update handles POST /exchanges/:id/edit.
func (h *ExchangeHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var form dto.ExchangeForm

	if err := dto.BindForm(c, &form); err != nil {
		h.invalid(c, h.editView(id, form), err)
		return
	}

	ctx := c.Request.Context()

	current, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(c, SectionExchanges, err)
		return
	}

	if _, err := h.service.Update(ctx, id, form.Patch(current)); err != nil {
		h.writeFailed(c, h.editView(id, form), err)
		return
	}

	h.redirect(c, entityPath(exchangesPath, id), "Exchange updated successfully!")
}

// ConfirmDelete handles GET /exchanges/:id/delete.
func (h *ExchangeHandler) ConfirmDelete(c *gin.Context) {
	exchange, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, SectionExchanges, err)
		return
	}

	h.render(c, http.StatusOK, "confirm_delete", "Delete Exchange", SectionExchanges, deleteView{
		Entity: "exchange",
		Name:   exchange.DisplayName,
		Action: entityPath(exchangesPath, exchange.ID, "delete"),
		Cancel: entityPath(exchangesPath, exchange.ID),
	})
}

// Delete handles POST /exchanges/:id/delete.
func (h *ExchangeHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if domain.IsNotFound(err) {
			h.fail(c, SectionExchanges, err)
			return
		}

		h.redirectError(c, entityPath(exchangesPath, id), err)

		return
	}

	h.redirect(c, exchangesPath, "Exchange deleted successfully!")
}
