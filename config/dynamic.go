package config

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Dynamic configuration keys tuned by operators without a deploy.
const (
	KeySearchRadiusMiles    = "discovery.search_radius_miles"
	KeyPromotionRadiusMiles = "discovery.promotion_radius_miles"
	KeyResultCap            = "discovery.result_cap"
)

const cacheTTL = time.Minute

// Service provides access to dynamic configuration values stored in the
// system_config table. Environment variables override DB values when
// present; the env var name is the key uppercased with dots replaced by
// underscores. Values are cached briefly so hot paths do not hit the table
// per request.
type Service struct {
	db    *sql.DB
	mu    sync.RWMutex
	cache map[string]cachedEntry
}

type cachedEntry struct {
	value     string
	expiresAt time.Time
}

// NewService creates a dynamic config service on an existing handle.
func NewService(db *sql.DB) *Service {
	return &Service{db: db, cache: make(map[string]cachedEntry)}
}

// GetInt returns an integer config value, falling back to defaultValue when
// the key is absent or unparsable.
func (s *Service) GetInt(ctx context.Context, key string, defaultValue int) (int, error) {
	raw, found, err := s.lookup(ctx, key)
	if err != nil {
		return 0, err
	}

	if !found {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue, nil
	}

	return parsed, nil
}

// GetFloat returns a float64 config value.
func (s *Service) GetFloat(ctx context.Context, key string, defaultValue float64) (float64, error) {
	raw, found, err := s.lookup(ctx, key)
	if err != nil {
		return 0, err
	}

	if !found {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return defaultValue, nil
	}

	return parsed, nil
}

// lookup resolves a key through env override, cache, then the table.
func (s *Service) lookup(ctx context.Context, key string) (string, bool, error) {
	envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if v := os.Getenv(envKey); v != "" {
		return v, true, nil
	}

	if v, ok := s.fromCache(key); ok {
		return v, true, nil
	}

	const q = `SELECT value FROM system_config WHERE key = $1 LIMIT 1`

	var v string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}

		return "", false, err
	}

	s.putCache(key, v)

	return v, true, nil
}

func (s *Service) fromCache(key string) (string, bool) {
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}

	return entry.value, true
}

func (s *Service) putCache(key, value string) {
	s.mu.Lock()
	s.cache[key] = cachedEntry{value: value, expiresAt: time.Now().Add(cacheTTL)}
	s.mu.Unlock()
}
