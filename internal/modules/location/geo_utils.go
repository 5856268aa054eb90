// Package location holds great-circle distance helpers and district resolution.
package location

import (
	"math"
	"slices"

	"kavach/internal/types"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the haversine distance in kilometres between two
// points. Inputs are not validated; NaN propagates.
func DistanceKm(a, b types.Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	halfLat := radians(b.Lat-a.Lat) / 2
	halfLng := radians(b.Lng-a.Lng) / 2

	h := math.Sin(halfLat)*math.Sin(halfLat) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(halfLng)*math.Sin(halfLng)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RoundKm rounds a distance to two decimals for display.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// SortByDistance orders items nearest first. Equal distances keep their input order.
func SortByDistance[T any](items []T, dist func(T) float64) {
	slices.SortStableFunc(items, func(x, y T) int {
		dx, dy := dist(x), dist(y)
		switch {
		case dx < dy:
			return -1
		case dx > dy:
			return 1
		}
		return 0
	})
}
