package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/xmenbro/AutoRepairCenter/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(pkgconfig.WithEnvironment(map[string]string{}))

	require.NoError(t, err)
	assert.Equal(t, "storefront.db", cfg.DBPath)
	assert.Equal(t, "autoRepairCart", cfg.CartKey)
	assert.Equal(t, "user", cfg.UserKey)
	assert.Equal(t, "http://localhost:3000", cfg.CartAPIURL)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
	assert.Zero(t, cfg.RemoteRetries)
	assert.False(t, cfg.OTelEnabled)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CART_API_URL", "https://shop.example.com/api")
	t.Setenv("CART_REMOTE_TIMEOUT", "3s")
	t.Setenv("CART_REMOTE_RETRIES", "2")
	t.Setenv("STOREFRONT_DB_PATH", "/tmp/sf.db")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/api", cfg.CartAPIURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPClient().Timeout)
	assert.Equal(t, 2, cfg.HTTPClient().MaxRetries)
	assert.Equal(t, "/tmp/sf.db", cfg.DBPath)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad url":         {"CART_API_URL": "localhost"},
		"zero timeout":    {"CART_REMOTE_TIMEOUT": "0s"},
		"negative retry":  {"CART_REMOTE_RETRIES": "-1"},
		"same keys":       {"CART_STORAGE_KEY": "slot", "USER_STORAGE_KEY": "slot"},
		"ratio too large": {"CART_BREAKER_FAILURE_RATIO": "1.5"},
		"not a duration":  {"CART_REMOTE_TIMEOUT": "soon"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := load(pkgconfig.WithEnvironment(env))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestConfig_Breaker(t *testing.T) {
	cfg, err := load(pkgconfig.WithEnvironment(map[string]string{
		"CART_BREAKER_TIMEOUT":       "5s",
		"CART_BREAKER_MIN_REQUESTS":  "3",
		"CART_BREAKER_FAILURE_RATIO": "0.25",
	}))
	require.NoError(t, err)

	cb := cfg.Breaker()
	assert.Equal(t, "cart-api", cb.Name)
	assert.Equal(t, 5*time.Second, cb.Timeout)
	assert.Equal(t, uint32(3), cb.MinRequests)
	assert.Equal(t, 0.25, cb.FailureRatio)
}

func TestConfig_Tracing(t *testing.T) {
	cfg, err := load(pkgconfig.WithEnvironment(map[string]string{"OTEL_ENABLED": "true", "ENVIRONMENT": "production"}))
	require.NoError(t, err)

	tc := cfg.Tracing()
	assert.True(t, tc.Enabled)
	assert.Equal(t, "storefront", tc.ServiceName)
	assert.Equal(t, "production", tc.Environment)
}
