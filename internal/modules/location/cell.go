// README: H3 cell indexing used for geocode cache keys and heatmap buckets.
package location

import (
	"fmt"

	"github.com/uber/h3-go/v4"

	"kavach/internal/types"
)

// Cell is an H3 cell at some resolution.
type Cell = h3.Cell

// CellAt returns the H3 cell containing p at the given resolution.
func CellAt(p types.Point, res int) (Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("h3 cell for %v: %w", p, err)
	}
	return cell, nil
}

// CellOf returns the hex id of the H3 cell containing p.
func CellOf(p types.Point, res int) (string, error) {
	cell, err := CellAt(p, res)
	if err != nil {
		return "", err
	}
	return cell.String(), nil
}

// CellCenter returns the centroid of an H3 cell.
func CellCenter(cell Cell) (types.Point, error) {
	ll, err := h3.CellToLatLng(cell)
	if err != nil {
		return types.Point{}, fmt.Errorf("h3 cell center %s: %w", cell.String(), err)
	}
	return types.Point{Lat: ll.Lat, Lng: ll.Lng}, nil
}
