// Package staticgeo holds the in-memory table of well-known cities consulted
// before any database or network lookup. Loaded once at process start from an
// embedded dataset; read-only afterwards.
package staticgeo

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/backflowdir/discovery/models"
)

//go:embed cities.csv
var citiesCSV string

// Dataset is an immutable lookup table keyed by (citySlug, stateCode).
type Dataset struct {
	byKey map[string]models.City
}

// Load parses the embedded dataset. Called once from main.
func Load() (*Dataset, error) {
	return parse(citiesCSV)
}

func parse(data string) (*Dataset, error) {
	r := csv.NewReader(strings.NewReader(data))
	r.FieldsPerRecord = 5

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("static city dataset: %w", err)
	}

	ds := &Dataset{byKey: make(map[string]models.City, len(rows))}

	for i, row := range rows {
		if i == 0 && row[0] == "name" {
			continue // header
		}

		lat, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("static city dataset row %d: %w", i, err)
		}

		lon, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("static city dataset row %d: %w", i, err)
		}

		city := models.City{
			Name:      row[0],
			Slug:      row[1],
			StateCode: strings.ToUpper(row[2]),
			Latitude:  lat,
			Longitude: lon,
		}
		ds.byKey[key(city.Slug, city.StateCode)] = city
	}

	return ds, nil
}

// Lookup returns the city for (citySlug, stateCode), if known.
func (d *Dataset) Lookup(citySlug, stateCode string) (models.City, bool) {
	city, ok := d.byKey[key(citySlug, strings.ToUpper(stateCode))]
	return city, ok
}

// Len reports the number of cities in the dataset.
func (d *Dataset) Len() int { return len(d.byKey) }

func key(slug, state string) string { return slug + "|" + state }
