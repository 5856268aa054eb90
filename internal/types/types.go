// README: Common value objects shared across modules.
package types

// ID is an opaque record identifier (station, report, user).
type ID string

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}
