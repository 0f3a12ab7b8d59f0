// Package proximity retrieves candidate listings around a resolved center.
package proximity

import (
	"context"

	"go.uber.org/zap"

	"github.com/backflowdir/discovery/models"
	"github.com/backflowdir/discovery/utils"
)

// Search modes. Radius is the canonical path; the bounding-box mode exists
// for the legacy call sites that approximated "nearby" with a ±0.75° box.
type Mode int

const (
	ModeRadius Mode = iota
	ModeBoundingBox
)

const (
	// DefaultRadiusMiles is the operational service radius.
	DefaultRadiusMiles = 20.0

	// DefaultLimit caps the candidate set size.
	DefaultLimit = 200

	// legacyBoxDelta is the historical bounding-box half-width in degrees.
	legacyBoxDelta = 0.75
)

// Params describes one proximity search.
type Params struct {
	Center      models.Location
	RadiusMiles float64
	Mode        Mode
	Limit       int
}

// ListingStore is the slice of the postgres store this package needs.
type ListingStore interface {
	ListingsInBoundingBox(ctx context.Context, box utils.BoundingBox, stateCode string, limit int) ([]models.Listing, error)
}

// Searcher runs proximity searches against the store.
type Searcher struct {
	store ListingStore
	log   *zap.Logger
}

// NewSearcher creates a Searcher.
func NewSearcher(store ListingStore, log *zap.Logger) *Searcher {
	return &Searcher{store: store, log: log}
}

// Search returns candidates with precomputed distance from the center,
// within the radius (or box), same region, cap respected. Listings without
// coordinates never appear. Order follows the store's stable ordering so
// identical requests see identical candidate sets.
func (s *Searcher) Search(ctx context.Context, params Params) ([]models.Candidate, error) {
	if params.RadiusMiles <= 0 {
		params.RadiusMiles = DefaultRadiusMiles
	}
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}

	center := params.Center

	var box utils.BoundingBox
	if params.Mode == ModeBoundingBox {
		box = utils.BoxAround(center.Latitude, center.Longitude, legacyBoxDelta)
	} else {
		box = utils.BoxForRadius(center.Latitude, center.Longitude, params.RadiusMiles)
	}

	listings, err := s.store.ListingsInBoundingBox(ctx, box, center.StateCode, params.Limit)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(listings))

	for _, listing := range listings {
		if !listing.HasCoordinates() {
			continue
		}

		dist := utils.DistanceMiles(center.Latitude, center.Longitude, *listing.Latitude, *listing.Longitude)

		// The box prefilter over-selects at the corners; enforce the true
		// radius here. Legacy mode keeps everything the box returned.
		if params.Mode == ModeRadius && dist > params.RadiusMiles {
			continue
		}

		candidates = append(candidates, models.Candidate{Listing: listing, DistanceMiles: dist})
	}

	s.log.Debug("proximity search",
		zap.String("city", center.Slug),
		zap.String("state", center.StateCode),
		zap.Int("retrieved", len(listings)),
		zap.Int("candidates", len(candidates)))

	return candidates, nil
}
