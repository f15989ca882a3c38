package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xmenbro/AutoRepairCenter/pkg/database"
	"github.com/xmenbro/AutoRepairCenter/pkg/health"
	pkgkafka "github.com/xmenbro/AutoRepairCenter/pkg/kafka"
	"github.com/xmenbro/AutoRepairCenter/pkg/middleware"
	"github.com/xmenbro/AutoRepairCenter/pkg/tracing"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/config"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/event"
	handler "github.com/xmenbro/AutoRepairCenter/services/cart/internal/handler/http"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/repository"
	pgrepo "github.com/xmenbro/AutoRepairCenter/services/cart/internal/repository/postgres"
	redisrepo "github.com/xmenbro/AutoRepairCenter/services/cart/internal/repository/redis"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/service"
	"github.com/xmenbro/AutoRepairCenter/services/cart/migrations"
)

const slowQueryThreshold = 200 * time.Millisecond

// App wires together all dependencies and runs the cart server.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	limiter    *middleware.RateLimiter
	// closers run in reverse order on shutdown.
	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(initCtx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.onClose("tracer", shutdownTracer)

	database.SetSlowQueryLogging(slowQueryThreshold, logger)
	healthHandler := health.NewHandler()

	repo, err := a.openRepository(initCtx, healthHandler)
	if err != nil {
		a.closeAll(context.Background())
		return nil, err
	}

	var events service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.onClose("kafka producer", func(context.Context) error { return producer.Close() })
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
		events = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("kafka brokers not configured, cart events disabled")
	}

	cartService := service.NewCartService(repo, events, logger)

	routerCfg := handler.RouterConfig{CORS: cfg.CORS()}
	if cfg.RateLimitEnabled() {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
		routerCfg.RateLimiter = a.limiter
	}
	router := handler.NewRouter(cartService, healthHandler, routerCfg, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// openRepository connects the configured storage backend and registers its
// readiness check.
func (a *App) openRepository(ctx context.Context, hh *health.Handler) (repository.CartRepository, error) {
	switch a.cfg.Store {
	case config.StorePostgres:
		pgCfg := a.cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
		if err != nil {
			return nil, err
		}
		a.onClose("postgres", func(context.Context) error { pool.Close(); return nil })

		if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, "cart"); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		hh.RegisterCritical("postgres", pool.Ping)

		a.logger.Info("connected to PostgreSQL",
			slog.String("host", pgCfg.Host),
			slog.String("db", pgCfg.DBName),
		)
		return pgrepo.NewCartRepository(pool), nil

	default:
		redisCfg := a.cfg.Redis()
		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.onClose("redis", func(context.Context) error { return rdb.Close() })
		hh.RegisterCritical("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})

		a.logger.Info("connected to Redis",
			slog.String("addr", redisCfg.Addr()),
			slog.Int("db", redisCfg.DB),
			slog.Duration("ttl", a.cfg.TTL()),
		)
		return redisrepo.NewCartRepository(rdb, a.cfg.TTL()), nil
	}
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, namedCloser{name: name, close: fn})
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("store", a.cfg.Store),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}

	a.closeAll(shutdownCtx)

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeAll(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(ctx); err != nil {
			a.logger.Error(c.name+" close error", slog.String("error", err.Error()))
		}
	}
	a.closers = nil
}
