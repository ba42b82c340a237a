package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeConfig struct {
	Port     int           `env:"STORE_CFG_PORT" envDefault:"8080"`
	Host     string        `env:"STORE_CFG_HOST" envDefault:"localhost"`
	LogLevel string        `env:"STORE_CFG_LOG_LEVEL" envDefault:"info"`
	Debug    bool          `env:"STORE_CFG_DEBUG" envDefault:"false"`
	CartTTL  time.Duration `env:"STORE_CFG_CART_TTL" envDefault:"168h"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg storeConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 168*time.Hour, cfg.CartTTL)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("STORE_CFG_PORT", "9090")
	t.Setenv("STORE_CFG_HOST", "0.0.0.0")
	t.Setenv("STORE_CFG_LOG_LEVEL", "debug")
	t.Setenv("STORE_CFG_DEBUG", "true")
	t.Setenv("STORE_CFG_CART_TTL", "24h")

	var cfg storeConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 24*time.Hour, cfg.CartTTL)
}

func TestLoad_RequiredField(t *testing.T) {
	type secretConfig struct {
		JWTSecret string `env:"STORE_CFG_JWT_SECRET,required"`
	}

	var cfg secretConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	t.Setenv("STORE_CFG_JWT_SECRET", "secret-123")
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "secret-123", cfg.JWTSecret)
}

func TestLoad_UnparsableValue(t *testing.T) {
	t.Setenv("STORE_CFG_PORT", "not-a-number")

	var cfg storeConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
