package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/handlers"
	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/middleware"
	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/web"
	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/config"
	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/telemetry"
)

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// Handlers serves the backoffice pages.
	Handlers *handlers.Handlers

	// Renderer renders the page templates.
	Renderer *web.Renderer

	// RequestTimeout bounds each page request. Zero disables it.
	RequestTimeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health and static paths)
//  6. Timeout - request deadline shared by every API call of a page
//  7. Request context - per-request memoization of API reads, bound to
//     the deadline set by Timeout
//
// Routes:
//   - /-/ (internal): health and metrics
//   - /static/: stylesheet and script
//   - everything else: backoffice pages
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	var onPanic middleware.PanicResponder
	if cfg.Handlers != nil {
		onPanic = cfg.Handlers.ServerError
	}

	engine.Use(
		middleware.Recovery(cfg.Logger, onPanic),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.AppConfig.Name),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
		middleware.Timeout(cfg.RequestTimeout),
		middleware.RequestContext(),
	)

	if cfg.Renderer != nil {
		engine.HTMLRender = cfg.Renderer
	}

	engine.StaticFS("/static", web.Static())

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.Handlers != nil {
		cfg.Handlers.RegisterRoutes(engine)
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger, nil),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}

// NewRouterConfig creates a RouterConfig from the loaded configuration.
func NewRouterConfig(
	logger *slog.Logger,
	cfg *config.Config,
	renderer *web.Renderer,
	healthHandler *handlers.HealthHandler,
	pages *handlers.Handlers,
) RouterConfig {
	return RouterConfig{
		Logger:         logger,
		AppConfig:      &cfg.App,
		HealthHandler:  healthHandler,
		Handlers:       pages,
		Renderer:       renderer,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
}
