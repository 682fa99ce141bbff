// Package handlers provides the backoffice pages and the health endpoints.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/zapallo-backoffice/internal/app"
)

// Handlers groups the page handlers of the backoffice.
type Handlers struct {
	pages

	Dashboard     *DashboardHandler
	Exchanges     *ExchangeHandler
	ExchangeUsers *ExchangeUserHandler
	ExchangeCards *ExchangeCardHandler
}

// New creates the page handlers over the application services.
func New(services *app.Services, flash *Flasher) *Handlers {
	return &Handlers{
		pages:         pages{flash: flash},
		Dashboard:     NewDashboardHandler(services.Dashboard, flash),
		Exchanges:     NewExchangeHandler(services.Exchanges, flash),
		ExchangeUsers: NewExchangeUserHandler(services.ExchangeUsers, flash),
		ExchangeCards: NewExchangeCardHandler(services.ExchangeCards, flash),
	}
}

// RegisterRoutes registers every page. Unknown paths render the 404 page.
func (h *Handlers) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/", h.Dashboard.Home)

	h.Exchanges.RegisterRoutes(engine)
	h.ExchangeUsers.RegisterRoutes(engine)
	h.ExchangeCards.RegisterRoutes(engine)

	engine.NoRoute(h.NotFound)
}
