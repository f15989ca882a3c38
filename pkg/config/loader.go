package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Option customizes how Load resolves environment variables.
type Option func(*env.Options)

// WithPrefix makes Load look up every tagged variable under prefix
// (e.g. "STOREFRONT_" turns `env:"LOG_LEVEL"` into STOREFRONT_LOG_LEVEL).
func WithPrefix(prefix string) Option {
	return func(o *env.Options) {
		o.Prefix = prefix
	}
}

// WithEnvironment replaces the process environment with the given map.
// Used by tests and by the CLI when it layers flags over the environment.
func WithEnvironment(vars map[string]string) Option {
	return func(o *env.Options) {
		o.Environment = vars
	}
}

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"CART_HTTP_PORT" envDefault:"3000"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any, opts ...Option) error {
	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}
	if err := env.ParseWithOptions(cfg, o); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
