package web

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/backflowdir/discovery/config"
	"github.com/backflowdir/discovery/content"
	"github.com/backflowdir/discovery/models"
	"github.com/backflowdir/discovery/paging"
	"github.com/backflowdir/discovery/proximity"
	"github.com/backflowdir/discovery/ranking"
	"github.com/backflowdir/discovery/resolver"
)

const (
	nearbyCityCount   = 6
	contentBlockCount = 5
)

// defaultContentPool is the pool of explanatory Q&A blocks the selector
// draws from. The rendering layer maps identifiers to copy.
var defaultContentPool = []string{
	"faq-what-is-backflow",
	"faq-why-annual-testing",
	"faq-test-cost",
	"faq-test-duration",
	"faq-rpz-vs-dcva",
	"faq-who-can-test",
	"faq-failed-test",
	"faq-city-requirements",
	"faq-residential-needs",
	"faq-certification-filing",
}

// CityStore is the city read surface the service needs beyond resolution.
type CityStore interface {
	NearbyCities(ctx context.Context, lat, lon float64, stateCode string, limit int) ([]models.City, error)
}

// Resolver resolves raw location input; satisfied by resolver.Chain.
type Resolver interface {
	Resolve(ctx context.Context, q resolver.Query) (models.Location, error)
}

// Searcher runs proximity searches; satisfied by proximity.Searcher.
type Searcher interface {
	Search(ctx context.Context, params proximity.Params) ([]models.Candidate, error)
}

// Promoter annotates candidates; satisfied by promotion.Engine.
type Promoter interface {
	Annotate(ctx context.Context, candidates []models.Candidate) error
}

// DynamicConfig is the tunable-value surface; satisfied by config.Service.
type DynamicConfig interface {
	GetInt(ctx context.Context, key string, defaultValue int) (int, error)
	GetFloat(ctx context.Context, key string, defaultValue float64) (float64, error)
}

// Service orchestrates one discovery request: resolve, retrieve, annotate,
// filter, sort, paginate, select content. Stateless and request-scoped.
type Service struct {
	resolver Resolver
	searcher Searcher
	promoter Promoter
	cities   CityStore
	dyncfg   DynamicConfig
	pool     []string
	log      *zap.Logger
}

// NewService wires the discovery pipeline.
func NewService(res Resolver, searcher Searcher, promoter Promoter, cities CityStore, dyncfg DynamicConfig, log *zap.Logger) *Service {
	return &Service{
		resolver: res,
		searcher: searcher,
		promoter: promoter,
		cities:   cities,
		dyncfg:   dyncfg,
		pool:     defaultContentPool,
		log:      log,
	}
}

// SearchRequest is one inbound page request, already split from the HTTP
// layer. Query carries the raw parameters; malformed values degrade to
// defaults rather than erroring.
type SearchRequest struct {
	Location string
	ClientID string
	BasePath string
	Query    url.Values
}

// Resolution is the outcome of location resolution. Unresolved is a
// first-class result: the caller renders a degraded, non-indexed page.
type Resolution struct {
	Resolved    bool
	RateLimited bool
	Location    models.Location
}

// SearchResult is everything the rendering layer needs for one page.
type SearchResult struct {
	Resolution   Resolution
	Page         paging.Result
	Listings     []models.Candidate
	NearbyCities []models.City
	ContentIDs   []string
}

// Search runs the pipeline. Errors are infrastructure failures only; every
// user-input problem comes back inside the result.
func (s *Service) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	var result SearchResult

	q := resolver.ParseQuery(req.Location)
	q.ClientID = req.ClientID

	loc, err := s.resolver.Resolve(ctx, q)
	switch {
	case err == nil:
		result.Resolution = Resolution{Resolved: true, Location: loc}
	case errors.Is(err, resolver.ErrUnresolved):
		result.Resolution = Resolution{RateLimited: errors.Is(err, resolver.ErrRateLimited)}
	default:
		return result, err
	}

	legacy := req.Query.Get("mode") == "box"

	candidates, err := s.retrieve(ctx, result.Resolution, legacy)
	if err != nil {
		return result, err
	}

	if !legacy && len(candidates) > 0 {
		if err := s.promoter.Annotate(ctx, candidates); err != nil {
			return result, err
		}
	}

	candidates = ranking.Apply(candidates, parseFilters(req.Query))
	ranking.Sort(candidates, ranking.ParseSortMode(req.Query.Get("sort")), !legacy)

	result.Page = paging.Paginate(paging.Params{
		BasePath: req.BasePath,
		Query:    req.Query,
		Total:    len(candidates),
	})

	if result.Page.State == paging.StatePage {
		result.Listings = candidates[result.Page.Start:result.Page.End]
	}

	if result.Resolution.Resolved {
		loc := result.Resolution.Location

		result.ContentIDs = content.Pick(contentIdentity(loc), s.pool, contentBlockCount)

		cities, err := s.cities.NearbyCities(ctx, loc.Latitude, loc.Longitude, loc.StateCode, nearbyCityCount+1)
		if err != nil {
			// Suggestions are decorative; the page renders without them.
			s.log.Warn("nearby cities lookup failed", zap.Error(err))
		} else {
			result.NearbyCities = withoutSelf(cities, loc.Slug, nearbyCityCount)
		}
	}

	return result, nil
}

// retrieve runs proximity search, or returns the empty candidate set when
// the center is unresolved.
func (s *Service) retrieve(ctx context.Context, res Resolution, legacy bool) ([]models.Candidate, error) {
	if !res.Resolved {
		return nil, nil
	}

	radius, err := s.dyncfg.GetFloat(ctx, config.KeySearchRadiusMiles, proximity.DefaultRadiusMiles)
	if err != nil {
		return nil, err
	}

	limit, err := s.dyncfg.GetInt(ctx, config.KeyResultCap, proximity.DefaultLimit)
	if err != nil {
		return nil, err
	}

	mode := proximity.ModeRadius
	if legacy {
		mode = proximity.ModeBoundingBox
	}

	return s.searcher.Search(ctx, proximity.Params{
		Center:      res.Location,
		RadiusMiles: radius,
		Mode:        mode,
		Limit:       limit,
	})
}

// parseFilters reads the filter parameters, degrading malformed values to
// "no filter".
func parseFilters(query url.Values) ranking.Filters {
	var f ranking.Filters

	if v, err := strconv.ParseFloat(query.Get("min_rating"), 64); err == nil && v > 0 {
		f.MinRating = v
	}

	if v, err := strconv.Atoi(query.Get("min_reviews")); err == nil && v > 0 {
		f.MinReviews = v
	}

	f.Tier = query.Get("tier")

	for _, tag := range models.CanonicalTags {
		if v := query.Get(tag); v == "1" || strings.EqualFold(v, "true") {
			f.RequiredTags = append(f.RequiredTags, tag)
		}
	}

	return f
}

// contentIdentity seeds content selection with the page's identity, so the
// same location always shows the same blocks.
func contentIdentity(loc models.Location) string {
	return loc.Slug + "-" + strings.ToLower(loc.StateCode)
}

func withoutSelf(cities []models.City, selfSlug string, limit int) []models.City {
	out := make([]models.City, 0, limit)

	for _, city := range cities {
		if city.Slug == selfSlug {
			continue
		}

		if len(out) == limit {
			break
		}

		out = append(out, city)
	}

	return out
}
