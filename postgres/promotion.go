package postgres

import (
	"context"
	"time"

	"github.com/backflowdir/discovery/models"
)

// SubscriptionsByListingIDs bulk-fetches the current subscription per
// listing. One round-trip for the whole candidate set.
func (s *Store) SubscriptionsByListingIDs(ctx context.Context, listingIDs []string) (map[string]models.Subscription, error) {
	if len(listingIDs) == 0 {
		return map[string]models.Subscription{}, nil
	}

	const q = `SELECT DISTINCT ON (place_id) place_id, tier, status, COALESCE(current_period_end, NOW())
	           FROM subscriptions
	           WHERE place_id = ANY($1)
	           ORDER BY place_id, created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, listingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.Subscription, len(listingIDs))

	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.ListingID, &sub.Tier, &sub.Status, &sub.ExpiresAt); err != nil {
			return nil, err
		}

		out[sub.ListingID] = sub
	}

	return out, rows.Err()
}

// VerifiedOwnershipByListingIDs bulk-fetches ownership verification records.
// Only verified rows are returned; absence means not verified.
func (s *Store) VerifiedOwnershipByListingIDs(ctx context.Context, listingIDs []string) (map[string]models.Ownership, error) {
	if len(listingIDs) == 0 {
		return map[string]models.Ownership{}, nil
	}

	const q = `SELECT place_id, verified, COALESCE(verified_at, NOW())
	           FROM ownership_verifications
	           WHERE place_id = ANY($1) AND verified = true`

	rows, err := s.db.QueryContext(ctx, q, listingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.Ownership, len(listingIDs))

	for rows.Next() {
		var (
			own models.Ownership
			at  time.Time
		)

		if err := rows.Scan(&own.ListingID, &own.Verified, &at); err != nil {
			return nil, err
		}

		own.VerifiedAt = at
		out[own.ListingID] = own
	}

	return out, rows.Err()
}
