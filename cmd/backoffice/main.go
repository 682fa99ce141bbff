// Package main is the entry point for the Zapallo backoffice.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/browser"
	"github.com/spf13/pflag"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/clients"
	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/clients/acl"
	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http"
	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/handlers"
	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/web"
	"github.com/jsamuelsen/zapallo-backoffice/internal/app"
	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/config"
	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/logging"
	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/telemetry"
	"github.com/jsamuelsen/zapallo-backoffice/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the backoffice.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

// readinessTimeout bounds one readiness check of an API collection.
const readinessTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) (err error) {
	ctx := context.Background()

	// 1. Parse flags and pick the profile
	flags := config.NewFlagSet("backoffice")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return fmt.Errorf("parsing flags: %w", err)
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile(flags), config.WithFlags(flags))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting backoffice",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("api_base_url", cfg.API.BaseURL),
		slog.Bool("api_key_set", cfg.API.APIKey != ""),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, telemetry.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			err = multierror.Append(err, fmt.Errorf("telemetry shutdown: %w", shutdownErr)).ErrorOrNil()
		}
	}()

	// 5. Create the Zapallo API client
	apiClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.API.BaseURL,
		Prefix:      cfg.API.Prefix,
		ServiceName: cfg.API.Name,
		Timeout:     cfg.API.Timeout,
		APIKey:      cfg.API.APIKey,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	// 6. Create the resource accessors (ACL pattern)
	aclCfg := acl.Config{Client: apiClient, Logger: logger}
	exchangeClient := acl.NewExchangeClient(aclCfg)
	userClient := acl.NewExchangeUserClient(aclCfg)
	cardClient := acl.NewExchangeCardClient(aclCfg)

	// 7. Register every accessor as a readiness check
	healthRegistry := ports.NewHealthRegistry(readinessTimeout)
	for _, checker := range []ports.HealthChecker{exchangeClient, userClient, cardClient} {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	// 8. Create application services
	services := app.NewServices(exchangeClient, userClient, cardClient, &app.ServiceConfig{Logger: logger})

	// 9. Create handlers and the page renderer
	renderer, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	buildInfo := handlers.NewBuildInfo(cfg.App.Name, Version, Commit, BuildTime, cfg.API.BaseURL)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo)
	pages := handlers.New(services, handlers.NewFlasher(cfg.Web.FlashCookie))

	// 10. Create HTTP server and router
	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.NewRouterConfig(logger, cfg, renderer, healthHandler, pages))

	// 11. Bind, then serve (non-blocking)
	if err := server.Listen(); err != nil {
		return err
	}

	serverErr := server.Start()

	logger.Info("backoffice ready", slog.String("url", server.URL()))

	if cfg.Web.OpenBrowser {
		if err := browser.OpenURL(server.URL()); err != nil {
			logger.Warn("could not open browser", slog.Any("error", err))
		}
	}

	// 12. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// profile returns the --profile flag, then APP_ENVIRONMENT, then "local".
func profile(flags *pflag.FlagSet) string {
	if p, err := flags.GetString("profile"); err == nil && p != "" {
		return p
	}

	if p := os.Getenv("APP_ENVIRONMENT"); p != "" {
		return p
	}

	return "local"
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then drains the server, reporting both a serve error and a shutdown error.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var result *multierror.Error

	select {
	case err := <-serverErr:
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("server error: %w", err))
		}

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	if err := server.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, err)
	}

	if result.ErrorOrNil() == nil {
		logger.Info("shutdown complete")
	}

	return result.ErrorOrNil()
}
