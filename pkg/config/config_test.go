package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int           `env:"TEST_CFG_PORT" envDefault:"3000"`
	APIURL   string        `env:"TEST_CFG_API_URL" envDefault:"http://localhost:3000"`
	Timeout  time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"10s"`
	Brokers  []string      `env:"TEST_CFG_BROKERS" envSeparator:","`
	Insecure bool          `env:"TEST_CFG_INSECURE" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "http://localhost:3000", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.Brokers)
	assert.False(t, cfg.Insecure)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_TIMEOUT", "250ms")
	t.Setenv("TEST_CFG_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("TEST_CFG_INSECURE", "true")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.True(t, cfg.Insecure)
}

func TestLoad_WithPrefix(t *testing.T) {
	t.Setenv("SF_TEST_CFG_PORT", "4000")

	var cfg testConfig
	err := Load(&cfg, WithPrefix("SF_"))

	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
}

func TestLoad_WithEnvironment_IgnoresProcessEnv(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9999")

	var cfg testConfig
	err := Load(&cfg, WithEnvironment(map[string]string{"TEST_CFG_API_URL": "http://cart.local"}))

	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "http://cart.local", cfg.APIURL)
}

type requiredConfig struct {
	APIKey string `env:"TEST_CFG_API_KEY,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_TIMEOUT", "ten seconds")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
