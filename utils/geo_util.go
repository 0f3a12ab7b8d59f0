package utils

import "math"

// EarthRadiusMiles is the mean Earth radius used by the haversine formula.
const EarthRadiusMiles = 3958.8

// DistanceMiles computes the great-circle distance in miles between two
// coordinates given in degrees. Symmetric, zero for identical points. NaN
// inputs propagate to the result; callers are expected to have excluded
// listings without coordinates before getting here.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// BoundingBox is a rectangular lat/lon region.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// BoxAround returns a bounding box of delta degrees around a center point.
// The historical call sites use delta=0.75, roughly a 50 mile box at
// mid-latitudes. Used both as the legacy search mode and as the SQL
// prefilter for true radius search.
func BoxAround(lat, lon, delta float64) BoundingBox {
	return BoundingBox{
		MinLat: lat - delta,
		MaxLat: lat + delta,
		MinLon: lon - delta,
		MaxLon: lon + delta,
	}
}

// BoxForRadius returns a bounding box that fully contains a circle of
// radiusMiles around the center. Longitude span widens with latitude so the
// box stays conservative near the poles.
func BoxForRadius(lat, lon, radiusMiles float64) BoundingBox {
	latDelta := radiusMiles / 69.0 // miles per degree latitude
	lonDelta := latDelta
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 0.01 {
		lonDelta = latDelta / cosLat
	}

	return BoundingBox{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLon: lon - lonDelta,
		MaxLon: lon + lonDelta,
	}
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
