package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xmenbro/AutoRepairCenter/pkg/httpclient"
	"github.com/xmenbro/AutoRepairCenter/pkg/tracing"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/cartstore"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/catalog"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/config"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/identity"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/localstore"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/remote"
)

// CatalogLoader returns the product catalog.
type CatalogLoader func(ctx context.Context) (*catalog.Catalog, error)

// App wires together all dependencies of the storefront CLI.
type App struct {
	logger   *slog.Logger
	identity *identity.Source
	store    *cartstore.Store
	catalog  CatalogLoader
	out      io.Writer
	now      func() time.Time
	closers  []func(context.Context) error
}

// NewApp creates a new application instance, opening local storage and
// building the remote client.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*App, error) {
	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Open device-local storage.
	slots, err := localstore.Open(ctx, cfg.DBPath)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, fmt.Errorf("open local storage: %w", err)
	}
	logger.Debug("local storage opened", slog.String("path", cfg.DBPath))

	// Remote cart endpoint behind retry and circuit breaker.
	httpClient := httpclient.New(cfg.HTTPClient())
	breaker := httpclient.NewCircuitBreakerClient(httpClient, cfg.Breaker(), logger)
	api := remote.NewClient(breaker, remote.Config{BaseURL: cfg.CartAPIURL, Timeout: cfg.RemoteTimeout}, logger)

	ident := identity.NewSource(slots, cfg.UserKey, logger)
	store := cartstore.New(ident, api, slots, cartstore.Config{CartKey: cfg.CartKey}, logger)

	loader := func(ctx context.Context) (*catalog.Catalog, error) {
		if cfg.CatalogURL != "" {
			return catalog.LoadURL(ctx, httpClient, cfg.CatalogURL)
		}
		return catalog.LoadFile(cfg.CatalogPath)
	}

	a := newApp(ident, store, loader, logger, out)
	a.closers = []func(context.Context) error{
		func(context.Context) error { return slots.Close() },
		shutdownTracer,
	}
	return a, nil
}

func newApp(ident *identity.Source, store *cartstore.Store, loader CatalogLoader, logger *slog.Logger, out io.Writer) *App {
	return &App{
		logger:   logger,
		identity: ident,
		store:    store,
		catalog:  loader,
		out:      out,
		now:      time.Now,
	}
}

// Close releases local storage and flushes traces.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			a.logger.Error("close error", slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
