// README: Coordinate validation and geocoding result types.
package location

import (
	"errors"
	"math"

	"kavach/internal/types"
)

// UnknownDistrict is used when reverse geocoding yields nothing usable.
const UnknownDistrict = "Unknown"

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Place is the administrative context of a coordinate.
type Place struct {
	District         string `json:"district"`
	FormattedAddress string `json:"formattedAddress"`
}

func unknownPlace() Place {
	return Place{District: UnknownDistrict, FormattedAddress: "Unknown location"}
}

// Validate rejects NaN/Inf and out-of-range latitude/longitude.
func Validate(p types.Point) error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return ErrInvalidCoordinate
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}
