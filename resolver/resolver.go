// Package resolver turns a human-entered location into a canonical
// (name, coordinates, region) triple. Tiers are tried in order: the embedded
// static dataset, the cities table, then the external geocoder. An
// unresolvable location is an ordinary outcome, not an error condition the
// caller should surface as a failure page.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/backflowdir/discovery/geocoder"
	"github.com/backflowdir/discovery/models"
	"github.com/backflowdir/discovery/postgres"
	"github.com/backflowdir/discovery/ratelimit"
	"github.com/backflowdir/discovery/staticgeo"
	"github.com/backflowdir/discovery/utils"
)

var (
	// ErrUnresolved means no tier could resolve the input. Callers render a
	// degraded page.
	ErrUnresolved = errors.New("location unresolved")

	// ErrRateLimited means the geocoding budget for this client is spent.
	ErrRateLimited = errors.New("geocoding rate limited")

	// errNoMatch is the internal "try the next tier" signal.
	errNoMatch = errors.New("no match")
)

// Source names, recorded on the resolved location.
const (
	SourceStatic   = "static"
	SourceDatabase = "database"
	SourceGeocoder = "geocoder"
)

// Query is the parsed location input for one request.
type Query struct {
	Raw       string
	CitySlug  string
	StateCode string
	ClientID  string // originating network address, for rate limiting
}

// ParseQuery normalizes raw user input into a Query. Accepts "Tampa, FL",
// "tampa-fl", and plain free text; the slug and state stay empty when the
// input has no recognizable structure.
func ParseQuery(raw string) Query {
	q := Query{Raw: strings.TrimSpace(raw)}

	if i := strings.LastIndex(q.Raw, ","); i >= 0 {
		if state := utils.NormalizeStateCode(q.Raw[i+1:]); state != "" {
			q.CitySlug = utils.Slugify(q.Raw[:i])
			q.StateCode = state

			return q
		}
	}

	slug := utils.Slugify(q.Raw)
	if n := len(slug); n > 3 && slug[n-3] == '-' {
		if state := utils.NormalizeStateCode(slug[n-2:]); state != "" {
			q.CitySlug = slug[:n-3]
			q.StateCode = state
		}
	}

	return q
}

// Source is one resolution tier.
type Source interface {
	Name() string
	Resolve(ctx context.Context, q Query) (models.Location, error)
}

// Chain tries sources in order, first success wins.
type Chain struct {
	sources []Source
	log     *zap.Logger
}

// NewChain builds a resolver over the given sources.
func NewChain(log *zap.Logger, sources ...Source) *Chain {
	return &Chain{sources: sources, log: log}
}

// Default assembles the production three-tier chain.
func Default(ds *staticgeo.Dataset, cities CityStore, geo *geocoder.Client, limiter ratelimit.Limiter, log *zap.Logger) *Chain {
	return NewChain(log,
		&StaticSource{Dataset: ds},
		&DatabaseSource{Cities: cities},
		&GeocoderSource{Client: geo, Limiter: limiter},
	)
}

// Resolve walks the chain. Returns ErrUnresolved when every tier misses,
// and ErrRateLimited when the final tier was blocked by budget.
func (c *Chain) Resolve(ctx context.Context, q Query) (models.Location, error) {
	rateLimited := false

	for _, src := range c.sources {
		loc, err := src.Resolve(ctx, q)
		if err == nil {
			loc.RawInput = q.Raw
			loc.Source = src.Name()

			return loc, nil
		}

		switch {
		case errors.Is(err, errNoMatch):
			// try next tier
		case errors.Is(err, ErrRateLimited):
			rateLimited = true
		default:
			// Upstream failure: logged, not retried, resolution continues
			// to the unresolved outcome.
			c.log.Warn("resolver tier failed",
				zap.String("tier", src.Name()),
				zap.String("raw", q.Raw),
				zap.Error(err))
		}
	}

	if rateLimited {
		return models.Location{}, fmt.Errorf("%w: %w", ErrUnresolved, ErrRateLimited)
	}

	return models.Location{}, ErrUnresolved
}

// StaticSource answers from the embedded city dataset. O(1), never fails.
type StaticSource struct {
	Dataset *staticgeo.Dataset
}

func (s *StaticSource) Name() string { return SourceStatic }

func (s *StaticSource) Resolve(_ context.Context, q Query) (models.Location, error) {
	if q.CitySlug == "" || q.StateCode == "" {
		return models.Location{}, errNoMatch
	}

	city, ok := s.Dataset.Lookup(q.CitySlug, q.StateCode)
	if !ok {
		return models.Location{}, errNoMatch
	}

	return fromCity(city), nil
}

// CityStore is the subset of the postgres store the resolver needs.
type CityStore interface {
	GetCity(ctx context.Context, citySlug, stateCode string) (models.City, error)
}

// DatabaseSource answers from the cities table, covering small or recently
// added localities the static dataset omits.
type DatabaseSource struct {
	Cities CityStore
}

func (s *DatabaseSource) Name() string { return SourceDatabase }

func (s *DatabaseSource) Resolve(ctx context.Context, q Query) (models.Location, error) {
	if q.CitySlug == "" || q.StateCode == "" {
		return models.Location{}, errNoMatch
	}

	city, err := s.Cities.GetCity(ctx, q.CitySlug, q.StateCode)
	if err != nil {
		if errors.Is(err, postgres.ErrCityNotFound) {
			return models.Location{}, errNoMatch
		}

		return models.Location{}, err
	}

	return fromCity(city), nil
}

// GeocoderSource is the last tier: one outbound network call, gated by the
// per-client rate limiter.
type GeocoderSource struct {
	Client  *geocoder.Client
	Limiter ratelimit.Limiter
}

func (s *GeocoderSource) Name() string { return SourceGeocoder }

func (s *GeocoderSource) Resolve(ctx context.Context, q Query) (models.Location, error) {
	if q.Raw == "" {
		return models.Location{}, errNoMatch
	}

	if !s.Limiter.Allow(q.ClientID) {
		return models.Location{}, ErrRateLimited
	}

	res, err := s.Client.Geocode(ctx, q.Raw)
	if err != nil {
		if errors.Is(err, geocoder.ErrNotFound) {
			return models.Location{}, errNoMatch
		}

		return models.Location{}, err
	}

	return models.Location{
		Name:      res.Name,
		Slug:      utils.Slugify(res.Name),
		StateCode: res.StateCode,
		Latitude:  res.Latitude,
		Longitude: res.Longitude,
	}, nil
}

func fromCity(city models.City) models.Location {
	return models.Location{
		Name:      city.Name,
		Slug:      city.Slug,
		StateCode: city.StateCode,
		Latitude:  city.Latitude,
		Longitude: city.Longitude,
	}
}
