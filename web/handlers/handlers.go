package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/backflowdir/discovery/geocoder"
	"github.com/backflowdir/discovery/ratelimit"
	"github.com/backflowdir/discovery/web"
)

// SearchService is the minimal interface handlers need to run a discovery
// page request.
type SearchService interface {
	Search(ctx context.Context, req web.SearchRequest) (web.SearchResult, error)
}

// GeoClient exposes the forward, reverse, and completion lookups of the
// external geocoding provider.
type GeoClient interface {
	Geocode(ctx context.Context, query string) (geocoder.Result, error)
	Reverse(ctx context.Context, lat, lon float64) (geocoder.Result, error)
	Suggest(ctx context.Context, prefix string) ([]geocoder.Result, error)
}

// Pinger is satisfied by *sql.DB and backs the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RateLimits holds the per-endpoint fixed-window limiters. Each endpoint
// spends from its own budget.
type RateLimits struct {
	Geocode ratelimit.Limiter
	Reverse ratelimit.Limiter
	Suggest ratelimit.Limiter
}

// Dependencies aggregates shared services used by handlers.
type Dependencies struct {
	Logger *zap.Logger
	Search SearchService
	Geo    GeoClient
	DB     Pinger
	Limits RateLimits
}

// HandlerGroup groups all handler categories for routing setup.
type HandlerGroup struct {
	Search *SearchHandlers
	Geo    *GeoHandlers
}

// NewHandlerGroup constructs a HandlerGroup with initialized handlers.
func NewHandlerGroup(deps Dependencies) *HandlerGroup {
	return &HandlerGroup{
		Search: &SearchHandlers{Deps: deps},
		Geo:    &GeoHandlers{Deps: deps},
	}
}

// SearchHandlers contains routes for the listing discovery API.
type SearchHandlers struct{ Deps Dependencies }

// GeoHandlers contains routes proxying the geocoding provider.
type GeoHandlers struct{ Deps Dependencies }

func renderJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// clientIP extracts the caller's address for rate limiting, trusting the
// leftmost X-Forwarded-For entry when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			fwd = fwd[:idx]
		}

		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
