package ranking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backflowdir/discovery/models"
	"github.com/backflowdir/discovery/ranking"
)

func ptr(f float64) *float64 { return &f }

func c(id string, opts func(*models.Candidate)) models.Candidate {
	cand := models.Candidate{Listing: models.Listing{ID: id}}
	if opts != nil {
		opts(&cand)
	}

	return cand
}

func ids(candidates []models.Candidate) []string {
	out := make([]string, len(candidates))
	for i, cand := range candidates {
		out[i] = cand.ID
	}

	return out
}

func TestParseSortMode(t *testing.T) {
	assert.Equal(t, ranking.SortRating, ranking.ParseSortMode("rating"))
	assert.Equal(t, ranking.SortScore, ranking.ParseSortMode("score"))
	assert.Equal(t, ranking.SortReviews, ranking.ParseSortMode("reviews"))
	assert.Equal(t, ranking.SortNearest, ranking.ParseSortMode("nearest"))
	assert.Equal(t, ranking.SortNearest, ranking.ParseSortMode(""))
	assert.Equal(t, ranking.SortNearest, ranking.ParseSortMode("bogus"))
}

func TestApplyFilters(t *testing.T) {
	candidates := []models.Candidate{
		c("high", func(x *models.Candidate) {
			x.Rating = ptr(4.8)
			x.ReviewCount = 120
			x.Tier = "verified"
			x.Tags = []string{"backflow_testing", "rpz_testing", "commercial"}
		}),
		c("mid", func(x *models.Candidate) {
			x.Rating = ptr(4.0)
			x.ReviewCount = 15
			x.Tier = "standard"
			x.Tags = []string{"backflow_testing"}
		}),
		c("unrated", func(x *models.Candidate) {
			x.Tier = "standard"
		}),
	}

	tests := []struct {
		name     string
		filters  ranking.Filters
		expected []string
	}{
		{name: "no filters keeps all", filters: ranking.Filters{}, expected: []string{"high", "mid", "unrated"}},
		{name: "min rating drops unrated", filters: ranking.Filters{MinRating: 3.5}, expected: []string{"high", "mid"}},
		{name: "min rating strict", filters: ranking.Filters{MinRating: 4.5}, expected: []string{"high"}},
		{name: "min reviews", filters: ranking.Filters{MinReviews: 50}, expected: []string{"high"}},
		{name: "tier equality", filters: ranking.Filters{Tier: "standard"}, expected: []string{"mid", "unrated"}},
		{
			name:     "tags require superset not intersection",
			filters:  ranking.Filters{RequiredTags: []string{"backflow_testing", "rpz_testing"}},
			expected: []string{"high"},
		},
		{
			name:     "combined filters AND together",
			filters:  ranking.Filters{MinRating: 3.5, MinReviews: 10, RequiredTags: []string{"backflow_testing"}},
			expected: []string{"high", "mid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ranking.Apply(candidates, tt.filters)
			assert.Equal(t, tt.expected, ids(got))
		})
	}
}

// Removing a tag from the filter never removes a previously passing listing.
func TestTagFilterMonotone(t *testing.T) {
	candidates := []models.Candidate{
		c("a", func(x *models.Candidate) { x.Tags = []string{"backflow_testing", "rpz_testing"} }),
		c("b", func(x *models.Candidate) { x.Tags = []string{"backflow_testing"} }),
	}

	wide := ranking.Apply(candidates, ranking.Filters{RequiredTags: []string{"backflow_testing"}})
	narrow := ranking.Apply(candidates, ranking.Filters{RequiredTags: []string{"backflow_testing", "rpz_testing"}})

	require.Equal(t, []string{"a", "b"}, ids(wide))
	require.Equal(t, []string{"a"}, ids(narrow))

	for _, id := range ids(narrow) {
		assert.Contains(t, ids(wide), id)
	}
}

func TestSortPromotedFirst(t *testing.T) {
	candidates := []models.Candidate{
		c("near-organic", func(x *models.Candidate) { x.DistanceMiles = 0.5 }),
		c("promoted-far", func(x *models.Candidate) { x.DistanceMiles = 15; x.Promoted = true }),
	}

	ranking.Sort(candidates, ranking.SortNearest, true)
	assert.Equal(t, []string{"promoted-far", "near-organic"}, ids(candidates))

	// Legacy mode has no promotion key: pure distance order.
	ranking.Sort(candidates, ranking.SortNearest, false)
	assert.Equal(t, []string{"near-organic", "promoted-far"}, ids(candidates))
}

func TestSortPromotionRankTieBreak(t *testing.T) {
	candidates := []models.Candidate{
		c("rank1", func(x *models.Candidate) { x.Promoted = true; x.PromotionRank = 1; x.DistanceMiles = 1 }),
		c("rank9", func(x *models.Candidate) { x.Promoted = true; x.PromotionRank = 9; x.DistanceMiles = 9 }),
	}

	ranking.Sort(candidates, ranking.SortNearest, true)
	assert.Equal(t, []string{"rank9", "rank1"}, ids(candidates))
}

func TestSortModes(t *testing.T) {
	build := func() []models.Candidate {
		return []models.Candidate{
			c("a", func(x *models.Candidate) {
				x.Rating = ptr(4.2)
				x.ReviewCount = 200
				x.QualityScore = 55
				x.DistanceMiles = 12
			}),
			c("b", func(x *models.Candidate) {
				x.Rating = ptr(4.9)
				x.ReviewCount = 40
				x.QualityScore = 80
				x.DistanceMiles = 3
			}),
			c("c", func(x *models.Candidate) {
				x.ReviewCount = 0
				x.QualityScore = 10
				x.DistanceMiles = 0.2
			}),
		}
	}

	tests := []struct {
		mode     ranking.SortMode
		expected []string
	}{
		{mode: ranking.SortRating, expected: []string{"b", "a", "c"}},
		{mode: ranking.SortScore, expected: []string{"b", "a", "c"}},
		{mode: ranking.SortReviews, expected: []string{"a", "b", "c"}},
		{mode: ranking.SortNearest, expected: []string{"c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			candidates := build()
			ranking.Sort(candidates, tt.mode, false)
			assert.Equal(t, tt.expected, ids(candidates))
		})
	}
}

func TestSortRatingTieBrokenByReviews(t *testing.T) {
	candidates := []models.Candidate{
		c("few", func(x *models.Candidate) { x.Rating = ptr(4.5); x.ReviewCount = 10 }),
		c("many", func(x *models.Candidate) { x.Rating = ptr(4.5); x.ReviewCount = 99 }),
	}

	ranking.Sort(candidates, ranking.SortRating, false)
	assert.Equal(t, []string{"many", "few"}, ids(candidates))
}

func TestSortStable(t *testing.T) {
	build := func() []models.Candidate {
		// Four listings with fully identical keys in input order.
		var out []models.Candidate
		for _, id := range []string{"w", "x", "y", "z"} {
			out = append(out, c(id, func(cand *models.Candidate) {
				cand.Rating = ptr(4.0)
				cand.ReviewCount = 10
				cand.DistanceMiles = 5
			}))
		}

		return out
	}

	first := build()
	ranking.Sort(first, ranking.SortRating, true)

	second := build()
	ranking.Sort(second, ranking.SortRating, true)

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, []string{"w", "x", "y", "z"}, ids(first), "equal keys keep candidate-set order")
}
