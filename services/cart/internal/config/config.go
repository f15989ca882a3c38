package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/xmenbro/AutoRepairCenter/pkg/config"
	"github.com/xmenbro/AutoRepairCenter/pkg/database"
	"github.com/xmenbro/AutoRepairCenter/pkg/middleware"
	"github.com/xmenbro/AutoRepairCenter/pkg/tracing"
)

// Storage backends for saved carts.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds all configuration for the cart server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"CART_HTTP_PORT" envDefault:"3000"`

	Store string `env:"CART_STORE" envDefault:"redis"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"autorepair"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"autorepair"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"autorepair"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Cart TTL in hours; 0 keeps carts forever. Redis only.
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"0"`

	// Kafka; no brokers disables cart events.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// HTTP edge
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"100"`

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
		return nil, fmt.Errorf("load cart config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.Store != StoreRedis && c.Store != StorePostgres {
		return fmt.Errorf("CART_STORE must be %q or %q, got %q", StoreRedis, StorePostgres, c.Store)
	}
	if c.CartTTL < 0 {
		return fmt.Errorf("CART_TTL_HOURS must not be negative, got %d", c.CartTTL)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	return nil
}

// TTL returns the Redis expiry for saved carts.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}

// Redis returns the Redis connection settings.
func (c *Config) Redis() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	rc.Password = c.RedisPassword
	rc.DB = c.RedisDB
	return rc
}

// Postgres returns the PostgreSQL pool settings.
func (c *Config) Postgres() database.PostgresConfig {
	pc := database.DefaultPostgresConfig()
	pc.Host = c.PostgresHost
	pc.Port = c.PostgresPort
	pc.User = c.PostgresUser
	pc.Password = c.PostgresPassword
	pc.DBName = c.PostgresDB
	pc.SSLMode = c.PostgresSSLMode
	return pc
}

// CORS returns the CORS settings of the router.
func (c *Config) CORS() middleware.CORSConfig {
	cc := middleware.DefaultCORSConfig()
	cc.AllowedOrigins = c.CORSAllowedOrigins
	return cc
}

// RateLimitEnabled reports whether requests are rate limited.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitRPS > 0 && c.RateLimitBurst > 0
}

// Tracing returns the tracer settings.
func (c *Config) Tracing() tracing.Config {
	tc := tracing.DefaultConfig("cart")
	tc.Environment = c.Environment
	tc.Enabled = c.OTelEnabled
	tc.OTLPEndpoint = c.OTelEndpoint
	tc.SampleRate = c.OTelSampleRate
	return tc
}
