package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/xmenbro/AutoRepairCenter/pkg/config"
	"github.com/xmenbro/AutoRepairCenter/pkg/httpclient"
	"github.com/xmenbro/AutoRepairCenter/pkg/tracing"
)

// Config holds all configuration for the storefront cart client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`

	// Device-local storage
	DBPath  string `env:"STOREFRONT_DB_PATH" envDefault:"storefront.db"`
	CartKey string `env:"CART_STORAGE_KEY" envDefault:"autoRepairCart"`
	UserKey string `env:"USER_STORAGE_KEY" envDefault:"user"`

	// Remote cart endpoint
	CartAPIURL    string        `env:"CART_API_URL" envDefault:"http://localhost:3000"`
	RemoteTimeout time.Duration `env:"CART_REMOTE_TIMEOUT" envDefault:"10s"`
	RemoteRetries int           `env:"CART_REMOTE_RETRIES" envDefault:"0"`

	// Circuit breaker around the remote endpoint
	BreakerTimeout      time.Duration `env:"CART_BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerFailureRatio float64       `env:"CART_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerMinRequests  uint32        `env:"CART_BREAKER_MIN_REQUESTS" envDefault:"5"`

	// Catalog: CATALOG_URL when set, CATALOG_PATH otherwise.
	CatalogPath string `env:"CATALOG_PATH" envDefault:"products.json"`
	CatalogURL  string `env:"CATALOG_URL"`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return load()
}

func load(opts ...pkgconfig.Option) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, opts...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("STOREFRONT_DB_PATH is required")
	}
	if c.CartKey == "" || c.UserKey == "" {
		return fmt.Errorf("storage keys must not be empty")
	}
	if c.CartKey == c.UserKey {
		return fmt.Errorf("cart and user storage keys must differ: %q", c.CartKey)
	}
	if u, err := url.Parse(c.CartAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid CART_API_URL: %q", c.CartAPIURL)
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("CART_REMOTE_TIMEOUT must be positive, got %s", c.RemoteTimeout)
	}
	if c.RemoteRetries < 0 {
		return fmt.Errorf("CART_REMOTE_RETRIES must not be negative, got %d", c.RemoteRetries)
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		return fmt.Errorf("CART_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.BreakerFailureRatio)
	}
	return nil
}

// HTTPClient returns the HTTP client settings for the remote endpoint.
func (c *Config) HTTPClient() httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = c.RemoteTimeout
	hc.MaxRetries = c.RemoteRetries
	return hc
}

// Breaker returns the circuit breaker settings for the remote endpoint.
func (c *Config) Breaker() httpclient.CircuitBreakerConfig {
	cb := httpclient.DefaultCircuitBreakerConfig("cart-api")
	cb.Timeout = c.BreakerTimeout
	cb.FailureRatio = c.BreakerFailureRatio
	cb.MinRequests = c.BreakerMinRequests
	return cb
}

// Tracing returns the tracer settings.
func (c *Config) Tracing() tracing.Config {
	tc := tracing.DefaultConfig("storefront")
	tc.Environment = c.Environment
	tc.Enabled = c.OTelEnabled
	tc.OTLPEndpoint = c.OTelEndpoint
	tc.SampleRate = c.OTelSampleRate
	return tc
}
