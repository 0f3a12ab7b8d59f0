// Package ranking applies user-selected filters to a candidate set and
// produces the deterministic display order.
package ranking

import (
	"sort"

	"github.com/backflowdir/discovery/models"
)

// SortMode selects the user-facing ordering.
type SortMode string

const (
	SortNearest SortMode = "nearest"
	SortRating  SortMode = "rating"
	SortScore   SortMode = "score"
	SortReviews SortMode = "reviews"
)

// ParseSortMode maps a query parameter to a SortMode; anything unrecognized
// falls back to nearest.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortRating, SortScore, SortReviews, SortNearest:
		return SortMode(s)
	default:
		return SortNearest
	}
}

// Filters are independent AND-combined inclusion predicates.
type Filters struct {
	MinRating    float64
	MinReviews   int
	Tier         string   // exact match on the ingestion tier label
	RequiredTags []string // listing passes only if its tags are a superset
}

// Apply returns the candidates passing every filter, preserving input order.
func Apply(candidates []models.Candidate, f Filters) []models.Candidate {
	out := make([]models.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if f.MinRating > 0 && (c.Rating == nil || *c.Rating < f.MinRating) {
			continue
		}

		if f.MinReviews > 0 && c.ReviewCount < f.MinReviews {
			continue
		}

		if f.Tier != "" && c.Tier != f.Tier {
			continue
		}

		if !c.HasAllTags(f.RequiredTags) {
			continue
		}

		out = append(out, c)
	}

	return out
}

// Sort orders candidates in place. The comparator chain, most significant
// first: promotion flag (promoted first; only when withPromotion — the
// legacy ranking modes have no promotion key), curated promotion rank
// (higher first), then the selected mode's keys. The sort is stable, so
// listings with fully equal keys keep their candidate-set order across
// requests.
func Sort(candidates []models.Candidate, mode SortMode, withPromotion bool) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]

		if withPromotion && a.Promoted != b.Promoted {
			return a.Promoted
		}

		if a.PromotionRank != b.PromotionRank {
			return a.PromotionRank > b.PromotionRank
		}

		switch mode {
		case SortRating:
			if ra, rb := ratingOf(a), ratingOf(b); ra != rb {
				return ra > rb
			}

			return a.ReviewCount > b.ReviewCount
		case SortScore:
			if a.QualityScore != b.QualityScore {
				return a.QualityScore > b.QualityScore
			}

			return a.ReviewCount > b.ReviewCount
		case SortReviews:
			return a.ReviewCount > b.ReviewCount
		default:
			return a.DistanceMiles < b.DistanceMiles
		}
	})
}

// ratingOf treats an unrated listing as below every rated one.
func ratingOf(c *models.Candidate) float64 {
	if c.Rating == nil {
		return -1
	}

	return *c.Rating
}
