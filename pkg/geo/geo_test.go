package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceIdenticalPoints(t *testing.T) {
	points := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 37.5665, Lng: 126.978},
		{Lat: -89.9, Lng: 179.9},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, Distance(p, p))
	}
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][2]Point{
		{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}},
		{{Lat: 40.7128, Lng: -74.0060}, {Lat: 34.0522, Lng: -118.2437}},
		{{Lat: -33.8688, Lng: 151.2093}, {Lat: 51.5074, Lng: -0.1278}},
	}
	for _, pair := range pairs {
		assert.InDelta(t, Distance(pair[0], pair[1]), Distance(pair[1], pair[0]), 1e-9)
	}
}

func TestDistanceOneDegreeAtEquator(t *testing.T) {
	// One degree of longitude at the equator is R * pi/180 ≈ 69.09 miles.
	d := Distance(Point{Lat: 0, Lng: 0}, Point{Lat: 0, Lng: 1})
	assert.InDelta(t, 69.09, d, 0.05)
}

func TestDistanceCloserPointRanksLower(t *testing.T) {
	origin := Point{Lat: 0, Lng: 0}
	near := Point{Lat: 0, Lng: 0.5}
	far := Point{Lat: 1, Lng: 1}
	assert.Less(t, Distance(origin, near), Distance(origin, far))
}

func TestDistanceAntipodal(t *testing.T) {
	// Antipodal points are half the circumference away; Asin input must stay
	// clamped so this never returns NaN.
	d := Distance(Point{Lat: 0, Lng: 0}, Point{Lat: 0, Lng: 180})
	assert.False(t, d != d, "distance must not be NaN")
	assert.InDelta(t, EarthRadiusMiles*3.14159265, d, 1.0)
}
