// Package geocoder wraps the external geocoding provider. All calls carry an
// explicit timeout and are paced so the process stays inside the provider's
// usage policy regardless of inbound traffic.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrNotFound means the provider answered but knows no such place.
	ErrNotFound = errors.New("location not found")
)

const (
	defaultTimeout  = 5 * time.Second
	cacheTTL        = 24 * time.Hour
	defaultPaceRPS  = 1
	maxSuggestions  = 5
	suggestMinChars = 3
)

// Result is the provider's answer for a forward or reverse lookup.
type Result struct {
	Name      string  `json:"name"`
	StateCode string  `json:"state_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Config holds client settings.
type Config struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	RequestsPerSec int
}

// Client talks to a Nominatim-compatible endpoint. A nil redis client
// disables caching; every other behavior is unchanged.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cache   *redis.Client
	log     *zap.Logger
}

// New creates a geocoding client.
func New(cfg Config, cache *redis.Client, log *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSec == 0 {
		cfg.RequestsPerSec = defaultPaceRPS
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		cache:   cache,
		log:     log,
	}
}

// Geocode resolves free text to coordinates. Returns ErrNotFound for a clean
// miss; transport and provider failures come back as ordinary errors and the
// caller treats the location as unresolved.
func (c *Client) Geocode(ctx context.Context, query string) (Result, error) {
	cacheKey := "geocode:" + query
	if res, ok := c.fromCache(ctx, cacheKey); ok {
		return res, nil
	}

	params := url.Values{
		"q":              {query},
		"format":         {"json"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}

	var raw []nominatimPlace
	if err := c.get(ctx, "/search", params, &raw); err != nil {
		return Result{}, err
	}

	if len(raw) == 0 {
		return Result{}, ErrNotFound
	}

	res, err := raw[0].toResult()
	if err != nil {
		return Result{}, err
	}

	c.putCache(ctx, cacheKey, res)

	return res, nil
}

// Reverse resolves coordinates to the nearest known locality.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Result, error) {
	cacheKey := fmt.Sprintf("reverse:%.4f:%.4f", lat, lon)
	if res, ok := c.fromCache(ctx, cacheKey); ok {
		return res, nil
	}

	params := url.Values{
		"lat":            {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(lon, 'f', -1, 64)},
		"format":         {"json"},
		"addressdetails": {"1"},
	}

	var raw nominatimPlace
	if err := c.get(ctx, "/reverse", params, &raw); err != nil {
		return Result{}, err
	}

	if raw.Lat == "" {
		return Result{}, ErrNotFound
	}

	res, err := raw.toResult()
	if err != nil {
		return Result{}, err
	}

	c.putCache(ctx, cacheKey, res)

	return res, nil
}

// Suggest returns up to five completion candidates for a partial location
// string. Short prefixes are rejected locally without spending budget.
func (c *Client) Suggest(ctx context.Context, prefix string) ([]Result, error) {
	if len(prefix) < suggestMinChars {
		return nil, nil
	}

	params := url.Values{
		"q":              {prefix},
		"format":         {"json"},
		"limit":          {strconv.Itoa(maxSuggestions)},
		"addressdetails": {"1"},
	}

	var raw []nominatimPlace
	if err := c.get(ctx, "/search", params, &raw); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(raw))
	for _, p := range raw {
		res, err := p.toResult()
		if err != nil {
			continue
		}
		out = append(out, res)
	}

	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("geocoder pacing: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("geocoder request failed", zap.String("path", path), zap.Error(err))

		return fmt.Errorf("geocoder request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("geocoder bad status", zap.String("path", path), zap.Int("status", resp.StatusCode))

		return fmt.Errorf("geocoder status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) fromCache(ctx context.Context, key string) (Result, bool) {
	if c.cache == nil {
		return Result{}, false
	}

	data, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		return Result{}, false
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Result{}, false
	}

	return res, true
}

func (c *Client) putCache(ctx context.Context, key string, res Result) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(res)
	if err != nil {
		return
	}

	if err := c.cache.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		c.log.Debug("geocoder cache write failed", zap.Error(err))
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City      string `json:"city"`
		Town      string `json:"town"`
		Village   string `json:"village"`
		State     string `json:"state"`
		StateCode string `json:"ISO3166-2-lvl4"`
	} `json:"address"`
}

func (p nominatimPlace) toResult() (Result, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("geocoder latitude %q: %w", p.Lat, err)
	}

	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("geocoder longitude %q: %w", p.Lon, err)
	}

	name := p.Address.City
	if name == "" {
		name = p.Address.Town
	}
	if name == "" {
		name = p.Address.Village
	}
	if name == "" {
		name = p.DisplayName
	}

	// ISO3166-2-lvl4 looks like "US-FL"; keep the part after the dash.
	code := p.Address.StateCode
	if len(code) == 5 && code[2] == '-' {
		code = code[3:]
	}

	return Result{
		Name:      name,
		StateCode: code,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
