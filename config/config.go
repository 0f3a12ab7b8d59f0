// Package config holds startup configuration and the dynamic per-key
// configuration service backed by the system_config table.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the process startup configuration, read once from the
// environment in main.
type Config struct {
	Addr string
	Dsn  string

	RedisAddr     string // empty disables the geocode cache
	RedisPassword string

	GeocoderBaseURL   string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration

	// Per-client fixed-window budgets, requests per minute.
	GeocodeBudget   int
	ReverseBudget   int
	SuggestBudget   int
}

// Parse reads the environment with defaults suitable for local development.
// DSN is the only required value.
func Parse() (*Config, error) {
	cfg := &Config{
		Addr:              envOr("ADDR", ":8080"),
		Dsn:               os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		GeocoderBaseURL:   envOr("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: envOr("GEOCODER_USER_AGENT", "backflowdir-discovery/1.0"),
		GeocoderTimeout:   envDurationOr("GEOCODER_TIMEOUT", 5*time.Second),
		GeocodeBudget:     envIntOr("GEOCODE_BUDGET", 20),
		ReverseBudget:     envIntOr("REVERSE_BUDGET", 30),
		SuggestBudget:     envIntOr("SUGGEST_BUDGET", 10),
	}

	if cfg.Dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}

	return d
}
