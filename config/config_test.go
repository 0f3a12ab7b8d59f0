package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backflowdir/discovery/config"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/discovery_test")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 20, cfg.GeocodeBudget)
	assert.Equal(t, 30, cfg.ReverseBudget)
	assert.Equal(t, 10, cfg.SuggestBudget)
	assert.Equal(t, 5*time.Second, cfg.GeocoderTimeout)
	assert.Empty(t, cfg.RedisAddr)
}

func TestParseRequiresDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := config.Parse()
	assert.Error(t, err)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/discovery_test")
	t.Setenv("ADDR", ":9999")
	t.Setenv("GEOCODE_BUDGET", "5")
	t.Setenv("GEOCODER_TIMEOUT", "2s")
	t.Setenv("REVERSE_BUDGET", "not-a-number")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 5, cfg.GeocodeBudget)
	assert.Equal(t, 2*time.Second, cfg.GeocoderTimeout)
	assert.Equal(t, 30, cfg.ReverseBudget, "garbage degrades to the default")
}
