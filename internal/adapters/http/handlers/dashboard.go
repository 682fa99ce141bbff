package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/zapallo-backoffice/internal/app"
)

// DashboardHandler serves the home page.
type DashboardHandler struct {
	pages
	service *app.DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service *app.DashboardService, flash *Flasher) *DashboardHandler {
	return &DashboardHandler{pages: pages{flash: flash}, service: service}
}

// Home handles GET /.
func (h *DashboardHandler) Home(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, SectionHome, err)
		return
	}

	h.render(c, http.StatusOK, "dashboard", "Home", SectionHome, summary)
}
