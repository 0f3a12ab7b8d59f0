package staticgeo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backflowdir/discovery/staticgeo"
)

func TestLoad(t *testing.T) {
	ds, err := staticgeo.Load()
	require.NoError(t, err)
	assert.Greater(t, ds.Len(), 50)
}

func TestLookup(t *testing.T) {
	ds, err := staticgeo.Load()
	require.NoError(t, err)

	tests := []struct {
		name      string
		slug      string
		state     string
		wantHit   bool
		wantCity  string
		wantState string
	}{
		{name: "known city", slug: "tampa", state: "FL", wantHit: true, wantCity: "Tampa", wantState: "FL"},
		{name: "lower-case state", slug: "miami", state: "fl", wantHit: true, wantCity: "Miami", wantState: "FL"},
		{name: "slug in wrong state", slug: "tampa", state: "TX", wantHit: false},
		{name: "unknown slug", slug: "springfield-xyz", state: "IL", wantHit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, ok := ds.Lookup(tt.slug, tt.state)
			require.Equal(t, tt.wantHit, ok)

			if tt.wantHit {
				assert.Equal(t, tt.wantCity, city.Name)
				assert.Equal(t, tt.wantState, city.StateCode)
				assert.NotZero(t, city.Latitude)
				assert.NotZero(t, city.Longitude)
			}
		})
	}
}
