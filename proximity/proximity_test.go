package proximity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/backflowdir/discovery/models"
	"github.com/backflowdir/discovery/proximity"
	"github.com/backflowdir/discovery/utils"
)

type fakeListingStore struct {
	listings []models.Listing
	lastBox  utils.BoundingBox
	lastCap  int
}

func (f *fakeListingStore) ListingsInBoundingBox(_ context.Context, box utils.BoundingBox, _ string, limit int) ([]models.Listing, error) {
	f.lastBox = box
	f.lastCap = limit

	var out []models.Listing
	for _, l := range f.listings {
		if len(out) == limit {
			break
		}
		if l.HasCoordinates() && box.Contains(*l.Latitude, *l.Longitude) {
			out = append(out, l)
		}
	}

	return out, nil
}

func ptr(f float64) *float64 { return &f }

var tampa = models.Location{Name: "Tampa", Slug: "tampa", StateCode: "FL", Latitude: 27.9506, Longitude: -82.4572}

func listingAt(id string, lat, lon float64) models.Listing {
	return models.Listing{ID: id, StateCode: "FL", Latitude: ptr(lat), Longitude: ptr(lon)}
}

func TestSearchRadiusCut(t *testing.T) {
	store := &fakeListingStore{listings: []models.Listing{
		listingAt("downtown", 27.9506, -82.4572),   // 0 mi
		listingAt("brandon", 27.9378, -82.2859),    // ~10 mi
		listingAt("clearwater", 27.9659, -82.8001), // ~21 mi, outside
		{ID: "no-coords", StateCode: "FL"},
		listingAt("orlando", 28.5383, -81.3792), // ~70 mi
	}}

	searcher := proximity.NewSearcher(store, zap.NewNop())

	candidates, err := searcher.Search(context.Background(), proximity.Params{Center: tampa, RadiusMiles: 20})
	require.NoError(t, err)

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
		assert.LessOrEqual(t, c.DistanceMiles, 20.0)
	}

	assert.Equal(t, []string{"downtown", "brandon"}, ids)
}

func TestSearchDistancePrecomputed(t *testing.T) {
	store := &fakeListingStore{listings: []models.Listing{
		listingAt("downtown", 27.9506, -82.4572),
	}}

	searcher := proximity.NewSearcher(store, zap.NewNop())

	candidates, err := searcher.Search(context.Background(), proximity.Params{Center: tampa})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.InDelta(t, 0, candidates[0].DistanceMiles, 0.001)
}

func TestSearchBoundingBoxModeKeepsBoxResults(t *testing.T) {
	// ~35 miles from center: outside the 20 mile radius but inside the
	// legacy 0.75 degree box.
	store := &fakeListingStore{listings: []models.Listing{
		listingAt("far-but-boxed", 28.4500, -82.4572),
	}}

	searcher := proximity.NewSearcher(store, zap.NewNop())

	radiusHits, err := searcher.Search(context.Background(), proximity.Params{Center: tampa, Mode: proximity.ModeRadius})
	require.NoError(t, err)
	assert.Empty(t, radiusHits)

	boxHits, err := searcher.Search(context.Background(), proximity.Params{Center: tampa, Mode: proximity.ModeBoundingBox})
	require.NoError(t, err)
	require.Len(t, boxHits, 1)
	assert.Greater(t, boxHits[0].DistanceMiles, 20.0)
}

func TestSearchDefaults(t *testing.T) {
	store := &fakeListingStore{}
	searcher := proximity.NewSearcher(store, zap.NewNop())

	_, err := searcher.Search(context.Background(), proximity.Params{Center: tampa})
	require.NoError(t, err)

	assert.Equal(t, proximity.DefaultLimit, store.lastCap)
	assert.True(t, store.lastBox.Contains(tampa.Latitude, tampa.Longitude))
}

func TestSearchCap(t *testing.T) {
	var listings []models.Listing
	for i := 0; i < 10; i++ {
		listings = append(listings, listingAt(string(rune('a'+i)), 27.9506, -82.4572))
	}

	store := &fakeListingStore{listings: listings}
	searcher := proximity.NewSearcher(store, zap.NewNop())

	candidates, err := searcher.Search(context.Background(), proximity.Params{Center: tampa, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, candidates, 3)
}
