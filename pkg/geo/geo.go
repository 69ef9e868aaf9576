package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used for haversine distances.
// All distances in this package are in miles.
const EarthRadiusMiles = 3958.8

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the great-circle distance in miles between two points
// using the haversine formula. Identical points return exactly 0.
func Distance(a, b Point) float64 {
	if a == b {
		return 0
	}

	latA := toRadians(a.Lat)
	latB := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(latA)*math.Cos(latB)*math.Pow(math.Sin(dLng/2), 2)

	// Clamp to [0,1] so antipodal rounding errors never feed Asin a value >1.
	if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
