package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/dto"
	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/middleware"
	"github.com/jsamuelsen/zapallo-backoffice/internal/domain"
)

// Sidebar sections.
const (
	SectionHome          = "home"
	SectionExchanges     = "exchanges"
	SectionExchangeUsers = "exchange-users"
	SectionExchangeCards = "exchange-cards"
)

// Page is the data every template receives. Data holds the page-specific view.
type Page struct {
	Title   string
	Section string
	Flash   *Flash
	Data    any
}

// errorView is the data of the error page.
type errorView struct {
	Heading   string
	Message   string
	Retry     string
	RequestID string
}

// formView is the data of the create and edit forms.
type formView[F any] struct {
	Action  string
	Cancel  string
	Submit  string
	Message string
	Values  F
	Errors  map[string]string

	// Used by forms with an exchange select.
	Exchanges []domain.Exchange
	Selected  string

	// Text inputs of forms rendered from a field list.
	Fields []formField
}

// formField is one text input of a form rendered from a field list.
type formField struct {
	Name   string
	Label  string
	MaxLen int
	Value  string
	Error  string
}

// deleteView is the data of the delete confirmation dialog.
type deleteView struct {
	Entity string
	Name   string
	Action string
	Cancel string
}

// pages renders templates and answers errors. Each resource handler embeds it.
type pages struct {
	flash *Flasher
}

func (p pages) render(c *gin.Context, status int, name, title, section string, data any) {
	c.HTML(status, name, Page{
		Title:   title,
		Section: section,
		Flash:   p.flash.Pop(c),
		Data:    data,
	})
}

// redirect sends the browser to location with a success notice.
func (p pages) redirect(c *gin.Context, location, message string) {
	p.flash.Set(c, FlashSuccess, message)
	c.Redirect(http.StatusSeeOther, location)
}

// redirectError sends the browser to location with an error notice.
func (p pages) redirectError(c *gin.Context, location string, err error) {
	_ = c.Error(err)

	p.flash.Set(c, FlashError, pageMessage(err))
	c.Redirect(http.StatusSeeOther, location)
}

// fail answers err with the error page, or with the JSON error envelope when
// the client asked for JSON.
func (p pages) fail(c *gin.Context, section string, err error) {
	_ = c.Error(err)

	status, resp := dto.MapDomainError(err)

	if wantsJSON(c) {
		c.JSON(status, resp.WithTraceID(middleware.TraceID(c)))
		return
	}

	view := errorView{
		Heading:   heading(status),
		Message:   pageMessage(err),
		RequestID: middleware.GetRequestID(c),
	}

	if status == http.StatusServiceUnavailable && c.Request.Method == http.MethodGet {
		view.Retry = c.Request.URL.RequestURI()
	}

	p.render(c, status, "error", view.Heading, section, view)
}

// formPage renders the create and edit form of one resource.
type formPage[F any] struct {
	pages
	template string
	section  string
	root     string
	entity   string

	// prepare, when set, fills the view with what the template needs beyond
	// the submitted values, such as the exchange select options.
	prepare func(ctx context.Context, view *formView[F]) error
}

func (f formPage[F]) createView(values F) formView[F] {
	return formView[F]{
		Action: f.root,
		Cancel: f.root,
		Submit: "Create " + f.entity,
		Values: values,
		Errors: map[string]string{},
	}
}

func (f formPage[F]) editView(id string, values F) formView[F] {
	return formView[F]{
		Action: entityPath(f.root, id, "edit"),
		Cancel: entityPath(f.root, id),
		Submit: "Save Changes",
		Values: values,
		Errors: map[string]string{},
	}
}

func (f formPage[F]) show(c *gin.Context, status int, view formView[F]) {
	if f.prepare != nil {
		if err := f.prepare(c.Request.Context(), &view); err != nil {
			f.fail(c, f.section, err)
			return
		}
	}

	title := "Edit " + f.entity
	if view.Action == f.root {
		title = "New " + f.entity
	}

	f.render(c, status, f.template, title, f.section, view)
}

// invalid re-renders the form with the binding or validation errors.
func (f formPage[F]) invalid(c *gin.Context, view formView[F], err error) {
	if dto.IsValidationError(err) {
		view.Errors = dto.ValidationErrors(err, view.Values)
	} else {
		_ = c.Error(err)
		view.Message = "The form could not be read. Please check the values and try again."
	}

	f.show(c, http.StatusBadRequest, view)
}

// writeFailed re-renders the form for errors the user can fix and shows the
// error page otherwise.
func (f formPage[F]) writeFailed(c *gin.Context, view formView[F], err error) {
	status, ok := rejected(err)
	if !ok {
		f.fail(c, f.section, err)
		return
	}

	_ = c.Error(err)

	view.Errors = fieldErrors(err)
	view.Message = dto.Message(err)
	f.show(c, status, view)
}

// rejected reports whether err should re-render the submitted form instead of
// the error page, and with which status.
func rejected(err error) (int, bool) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, true
	case domain.IsConflict(err):
		return http.StatusConflict, true
	case domain.IsForbidden(err):
		return http.StatusForbidden, true
	default:
		return 0, false
	}
}

// fieldErrors returns the API's per-field messages, keyed by form field name.
func fieldErrors(err error) map[string]string {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) && len(validationErr.Fields) > 0 {
		return validationErr.Fields
	}

	return map[string]string{}
}

// pageMessage is the sentence shown to the user for err.
func pageMessage(err error) string {
	status, _ := dto.MapDomainError(err)
	if status == http.StatusInternalServerError {
		return "An unexpected error occurred"
	}

	return dto.Message(err)
}

func heading(status int) string {
	switch status {
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusServiceUnavailable:
		return "Service Unavailable"
	case http.StatusBadRequest:
		return "Invalid Request"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusConflict:
		return "Conflict"
	default:
		return "Something Went Wrong"
	}
}

// wantsJSON reports whether the Accept header prefers JSON over HTML.
func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// NotFound renders the 404 page for unknown routes.
func (p pages) NotFound(c *gin.Context) {
	p.fail(c, "", domain.NewNotFoundError("page", ""))
}

// ServerError renders the 500 page. Recovery uses it for panics.
func (p pages) ServerError(c *gin.Context) {
	if wantsJSON(c) {
		c.JSON(http.StatusInternalServerError,
			dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred").WithTraceID(middleware.TraceID(c)))

		return
	}

	p.render(c, http.StatusInternalServerError, "error", heading(http.StatusInternalServerError), "", errorView{
		Heading:   heading(http.StatusInternalServerError),
		Message:   "An unexpected error occurred",
		RequestID: middleware.GetRequestID(c),
	})
}

// entityPath joins a resource root and an ID.
func entityPath(root, id string, suffix ...string) string {
	return strings.Join(append([]string{root, id}, suffix...), "/")
}
