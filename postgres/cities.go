package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/backflowdir/discovery/models"
)

// ErrCityNotFound is returned when no city row matches the lookup key.
var ErrCityNotFound = errors.New("city not found")

// GetCity retrieves a city by (citySlug, stateCode). Used as the second
// resolution tier, for localities the static dataset omits.
func (s *Store) GetCity(ctx context.Context, citySlug, stateCode string) (models.City, error) {
	const q = `SELECT city, city_slug, state_code, latitude, longitude, COALESCE(provider_count, 0)
	           FROM cities
	           WHERE city_slug = $1 AND state_code = $2
	           LIMIT 1`

	row := s.db.QueryRowContext(ctx, q, citySlug, stateCode)

	var city models.City
	err := row.Scan(&city.Name, &city.Slug, &city.StateCode, &city.Latitude, &city.Longitude, &city.ProviderCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.City{}, ErrCityNotFound
		}

		return models.City{}, err
	}

	return city, nil
}

// NearbyCities returns the closest cities to a point within the same region
// that have at least one provider. Shown as alternatives on degraded pages.
func (s *Store) NearbyCities(ctx context.Context, lat, lon float64, stateCode string, limit int) ([]models.City, error) {
	const q = `SELECT city, city_slug, state_code, latitude, longitude, COALESCE(provider_count, 0)
	           FROM cities
	           WHERE state_code = $1 AND COALESCE(provider_count, 0) > 0
	           ORDER BY (latitude - $2) * (latitude - $2) + (longitude - $3) * (longitude - $3)
	           LIMIT $4`

	rows, err := s.db.QueryContext(ctx, q, stateCode, lat, lon, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []models.City

	for rows.Next() {
		var city models.City
		if err := rows.Scan(&city.Name, &city.Slug, &city.StateCode, &city.Latitude, &city.Longitude, &city.ProviderCount); err != nil {
			return nil, err
		}

		cities = append(cities, city)
	}

	return cities, rows.Err()
}
