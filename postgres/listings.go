package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"

	"github.com/backflowdir/discovery/models"
	"github.com/backflowdir/discovery/utils"
)

// listingColumns resolves owner-edited override fields on top of the base
// record, so callers always see effective values.
const listingColumns = `
	p.place_id,
	p.provider_slug,
	COALESCE(o.name, p.name),
	COALESCE(o.phone, p.phone, ''),
	COALESCE(o.website, p.website, ''),
	p.city,
	p.city_slug,
	p.state_code,
	COALESCE(p.postal_code, ''),
	p.latitude,
	p.longitude,
	p.rating,
	COALESCE(p.reviews, 0),
	COALESCE(p.backflow_score, 0),
	COALESCE(p.tier, 'standard'),
	COALESCE(p.verified, false),
	COALESCE(p.promotion_rank, 0),
	ps.services_json`

// ListingsInBoundingBox returns listings inside the box with coordinates
// set, in the given region, capped at limit. Ordering is by place_id so the
// candidate set is identical across requests against the same snapshot.
func (s *Store) ListingsInBoundingBox(ctx context.Context, box utils.BoundingBox, stateCode string, limit int) ([]models.Listing, error) {
	const q = `SELECT ` + listingColumns + `
	           FROM providers p
	           LEFT JOIN provider_overrides o ON o.place_id = p.place_id
	           LEFT JOIN provider_services ps ON ps.place_id = p.place_id
	           WHERE p.latitude IS NOT NULL AND p.longitude IS NOT NULL
	             AND p.latitude BETWEEN $1 AND $2
	             AND p.longitude BETWEEN $3 AND $4
	             AND p.state_code = $5
	           ORDER BY p.place_id
	           LIMIT $6`

	rows, err := s.db.QueryContext(ctx, q, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, stateCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing

	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}

		listings = append(listings, listing)
	}

	return listings, rows.Err()
}

func scanListing(rows *sql.Rows) (models.Listing, error) {
	var (
		l            models.Listing
		lat, lon     sql.NullFloat64
		rating       sql.NullFloat64
		servicesJSON []byte
	)

	err := rows.Scan(&l.ID, &l.Slug, &l.Name, &l.Phone, &l.Website, &l.City, &l.CitySlug,
		&l.StateCode, &l.PostalCode, &lat, &lon, &rating, &l.ReviewCount,
		&l.QualityScore, &l.Tier, &l.Verified, &l.PromotionRank, &servicesJSON)
	if err != nil {
		return models.Listing{}, err
	}

	if lat.Valid && lon.Valid {
		l.Latitude = &lat.Float64
		l.Longitude = &lon.Float64
	}

	if rating.Valid {
		l.Rating = &rating.Float64
	}

	if servicesJSON != nil {
		tags, err := parseServiceTags(servicesJSON)
		if err != nil {
			return models.Listing{}, err
		}

		l.Tags = tags
	}

	return l, nil
}

// parseServiceTags turns the services_json column (a map of canonical tag to
// boolean) into the sorted list of tags the listing actually offers.
func parseServiceTags(data []byte) ([]string, error) {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(raw))
	for tag, offered := range raw {
		if offered {
			tags = append(tags, tag)
		}
	}

	sort.Strings(tags)

	return tags, nil
}
