// README: Nearest-station selection strategies.
package station

import (
	"kavach/internal/modules/location"
	"kavach/internal/types"
)

// Finder picks the closest candidate to p. ok is false when candidates is empty.
type Finder interface {
	Nearest(p types.Point, candidates []Station) (best Station, distanceKm float64, ok bool)
}

// LinearScan measures every candidate. Equal distances resolve to the
// lexicographically smallest station ID so the result does not depend on
// repository ordering.
type LinearScan struct{}

func (LinearScan) Nearest(p types.Point, candidates []Station) (Station, float64, bool) {
	if len(candidates) == 0 {
		return Station{}, 0, false
	}
	best := candidates[0]
	bestDist := location.DistanceKm(p, best.Location)
	for _, c := range candidates[1:] {
		d := location.DistanceKm(p, c.Location)
		if d < bestDist || (d == bestDist && c.ID < best.ID) {
			best, bestDist = c, d
		}
	}
	return best, bestDist, true
}
