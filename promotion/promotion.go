// Package promotion decides, per query, which candidates receive the paid
// visibility boost. Eligibility is a function of (listing, query center) and
// is never cached on the listing: a listing promoted on one city's page may
// not be promoted on another's.
package promotion

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/backflowdir/discovery/models"
)

// DefaultRadiusMiles is how far from the query center a paid listing still
// counts as local enough to promote.
const DefaultRadiusMiles = 20.0

// Store is the slice of the postgres store this package needs. Both lookups
// are bulk: two round-trips for the whole candidate set, never one per
// listing.
type Store interface {
	SubscriptionsByListingIDs(ctx context.Context, listingIDs []string) (map[string]models.Subscription, error)
	VerifiedOwnershipByListingIDs(ctx context.Context, listingIDs []string) (map[string]models.Ownership, error)
}

// Engine computes promotion eligibility.
type Engine struct {
	store       Store
	radiusMiles float64
	log         *zap.Logger
}

// NewEngine creates an Engine with the given promotion radius; zero means
// DefaultRadiusMiles.
func NewEngine(store Store, radiusMiles float64, log *zap.Logger) *Engine {
	if radiusMiles <= 0 {
		radiusMiles = DefaultRadiusMiles
	}

	return &Engine{store: store, radiusMiles: radiusMiles, log: log}
}

// Annotate sets Promoted on each candidate. A listing is promoted iff it is
// within the promotion radius, has an active premium or pro subscription,
// and has verified ownership. The two record fetches run concurrently; both
// are read-only and independent.
func (e *Engine) Annotate(ctx context.Context, candidates []models.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	ids := make([]string, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}

	var (
		subs map[string]models.Subscription
		owns map[string]models.Ownership
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		subs, err = e.store.SubscriptionsByListingIDs(gctx, ids)

		return err
	})

	g.Go(func() error {
		var err error
		owns, err = e.store.VerifiedOwnershipByListingIDs(gctx, ids)

		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	promoted := 0

	for i := range candidates {
		c := &candidates[i]

		sub, hasSub := subs[c.ID]
		own, hasOwn := owns[c.ID]

		c.Promoted = c.DistanceMiles <= e.radiusMiles &&
			hasSub && sub.QualifiesForPromotion() &&
			hasOwn && own.Verified

		if c.Promoted {
			promoted++
		}
	}

	e.log.Debug("promotion annotated",
		zap.Int("candidates", len(candidates)),
		zap.Int("promoted", promoted))

	return nil
}
