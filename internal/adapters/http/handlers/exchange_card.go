package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/dto"
	"github.com/jsamuelsen/zapallo-backoffice/internal/app"
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

const exchangeCardsPath = "/exchange-cards"

// uuidLen is the length of a canonical UUID string.
const uuidLen = 36

// ExchangeCardHandler serves the exchange card pages.
type ExchangeCardHandler struct {
	formPage[dto.ExchangeCardForm]
	service *app.ExchangeCardService
}

// NewExchangeCardHandler creates a new exchange card handler.
func NewExchangeCardHandler(service *app.ExchangeCardService, flash *Flasher) *ExchangeCardHandler {
	h := &ExchangeCardHandler{
		formPage: formPage[dto.ExchangeCardForm]{
			pages:    pages{flash: flash},
			template: "card_form",
			section:  SectionExchangeCards,
			root:     exchangeCardsPath,
			entity:   "Exchange Card",
		},
		service: service,
	}

	h.prepare = func(ctx context.Context, view *formView[dto.ExchangeCardForm]) error {
		exchanges, err := service.Exchanges(ctx)
		if err != nil {
			return err
		}

		view.Exchanges = exchanges
		view.Selected = view.Values.ExchangeID
		view.Fields = cardFields(view.Values, view.Errors)

		return nil
	}

	return h
}

// RegisterRoutes registers the exchange card pages under /exchange-cards.
func (h *ExchangeCardHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group(exchangeCardsPath)
	g.GET("", h.List)
	g.GET("/new", h.New)
	g.POST("", h.Create)
	g.GET("/:id", h.Detail)
	g.GET("/:id/edit", h.Edit)
	g.POST("/:id/edit", h.Update)
	g.GET("/:id/delete", h.ConfirmDelete)
	g.POST("/:id/delete", h.Delete)
}

type cardListView struct {
	Exchanges  []domain.Exchange
	ExchangeID string
	Rows       []app.ExchangeCardRow
}

type cardDetailView struct {
	Card *app.ExchangeCardRow
}

// cardFields lays out the text inputs of the card form.
func cardFields(v dto.ExchangeCardForm, errs map[string]string) []formField {
	fields := []formField{
		{Name: "external_card_id", Label: "External Card ID", MaxLen: domain.MaxExternalIDLen, Value: v.ExternalCardID},
		{Name: "name", Label: "Name", MaxLen: domain.MaxNameLen, Value: v.Name},
		{Name: "set_name", Label: "Set Name", MaxLen: domain.MaxNameLen, Value: v.SetName},
		{Name: "language", Label: "Language", MaxLen: domain.MaxLanguageLen, Value: v.Language},
		{Name: "rarity", Label: "Rarity", MaxLen: domain.MaxRarityLen, Value: v.Rarity},
		{Name: "image_front_id", Label: "Front Image ID", MaxLen: uuidLen, Value: v.ImageFrontID},
		{Name: "image_back_id", Label: "Back Image ID", MaxLen: uuidLen, Value: v.ImageBackID},
		{Name: "card_id", Label: "Card ID", MaxLen: uuidLen, Value: v.CardID},
	}

	for i := range fields {
		fields[i].Error = errs[fields[i].Name]
	}

	return fields
}

// List handles GET /exchange-cards?exchange_id=.
func (h *ExchangeCardHandler) List(c *gin.Context) {
	exchangeID := c.Query("exchange_id")
	ctx := c.Request.Context()

	rows, err := h.service.List(ctx, exchangeID)
	if err != nil {
		h.fail(c, SectionExchangeCards, err)
		return
	}

	exchanges, err := h.service.Exchanges(ctx)
	if err != nil {
		h.fail(c, SectionExchangeCards, err)
		return
	}

	h.render(c, http.StatusOK, "card_list", "Exchange Cards", SectionExchangeCards, cardListView{
		Exchanges:  exchanges,
		ExchangeID: exchangeID,
		Rows:       rows,
	})
}

// Detail handles GET /exchange-cards/:id.
func (h *ExchangeCardHandler) Detail(c *gin.Context) {
	row, err := h.service.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, SectionExchangeCards, err)
		return
	}

	h.render(c, http.StatusOK, "card_detail", row.Name, SectionExchangeCards, cardDetailView{Card: row})
}

// New handles GET /exchange-cards/new. An exchange_id query value preselects the exchange.
func (h *ExchangeCardHandler) New(c *gin.Context) {
	h.show(c, http.StatusOK, h.createView(dto.ExchangeCardForm{ExchangeID: c.Query("exchange_id")}))
}

// Create handles POST /exchange-cards.
func (h *ExchangeCardHandler) Create(c *gin.Context) {
	var form dto.ExchangeCardForm

	if err := dto.BindForm(c, &form); err != nil {
		h.invalid(c, h.createView(form), err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), form.Input())
	if err != nil {
		h.writeFailed(c, h.createView(form), err)
		return
	}

	h.redirect(c, entityPath(exchangeCardsPath, created.ID), "Exchange card created successfully!")
}

// Edit handles GET /exchange-cards/:id/edit.
func (h *ExchangeCardHandler) Edit(c *gin.Context) {
	row, err := h.service.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, SectionExchangeCards, err)
		return
	}

	h.show(c, http.StatusOK, h.editView(row.ID, dto.NewExchangeCardForm(&row.ExchangeCard)))
}

// Update handles POST /exchange-cards/:id/edit.
func (h *ExchangeCardHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var form dto.ExchangeCardForm

	if err := dto.BindForm(c, &form); err != nil {
		h.invalid(c, h.editView(id, form), err)
		return
	}

	ctx := c.Request.Context()

	current, err := h.service.Detail(ctx, id)
	if err != nil {
		h.fail(c, SectionExchangeCards, err)
		return
	}

	if _, err := h.service.Update(ctx, id, form.Patch(&current.ExchangeCard)); err != nil {
		h.writeFailed(c, h.editView(id, form), err)
		return
	}

	h.redirect(c, entityPath(exchangeCardsPath, id), "Exchange card updated successfully!")
}

// ConfirmDelete handles GET /exchange-cards/:id/delete.
func (h *ExchangeCardHandler) ConfirmDelete(c *gin.Context) {
	row, err := h.service.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, SectionExchangeCards, err)
		return
	}

	h.render(c, http.StatusOK, "confirm_delete", "Delete Exchange Card", SectionExchangeCards, deleteView{
		Entity: "exchange card",
		Name:   row.Name,
		Action: entityPath(exchangeCardsPath, row.ID, "delete"),
		Cancel: entityPath(exchangeCardsPath, row.ID),
	})
}

// Delete handles POST /exchange-cards/:id/delete.
func (h *ExchangeCardHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if domain.IsNotFound(err) {
			h.fail(c, SectionExchangeCards, err)
			return
		}

		h.redirectError(c, entityPath(exchangeCardsPath, id), err)

		return
	}

	h.redirect(c, exchangeCardsPath, "Exchange card deleted successfully!")
}
