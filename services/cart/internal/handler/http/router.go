package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xmenbro/AutoRepairCenter/pkg/health"
	"github.com/xmenbro/AutoRepairCenter/pkg/middleware"
)

// RouterConfig carries the cross-cutting settings of the router.
type RouterConfig struct {
	CORS        middleware.CORSConfig
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
	// MaxBodyBytes caps request bodies; 0 means 1 MiB.
	MaxBodyBytes int64
}

// NewRouter creates a chi router with the cart endpoint contract registered.
func NewRouter(
	cartService CartService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("cart"))
	r.Use(middleware.Tracing("cart"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	cartHandler := NewCartHandler(cartService, logger)

	r.Route("/cart", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		r.Use(chimw.RequestSize(maxBody))
		r.Use(ContentTypeJSON)

		r.Post("/", cartHandler.LoadCart)
		r.Post("/save", cartHandler.SaveCart)
	})

	return r
}
