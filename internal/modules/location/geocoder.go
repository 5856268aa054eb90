// README: Reverse geocoding via the Google Maps Geocoding API.
package location

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"kavach/internal/types"
)

// Geocoder resolves a coordinate to its administrative district.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, p types.Point) (Place, error)
}

// districtTypes lists address component types in order of preference.
// In India administrative_area_level_2 is the revenue district.
var districtTypes = []string{
	"administrative_area_level_2",
	"locality",
	"sublocality",
	"administrative_area_level_3",
}

// GoogleGeocoder handles interactions with the Google Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder creates a GoogleGeocoder with the given API key.
// Extra options (e.g. maps.WithBaseURL) are appended after the key.
func NewGoogleGeocoder(apiKey string, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, p types.Point) (Place, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
	})
	if err != nil {
		return Place{}, fmt.Errorf("reverse geocode %v: %w", p, err)
	}
	return placeFromResults(results), nil
}

func placeFromResults(results []maps.GeocodingResult) Place {
	place := unknownPlace()
	if len(results) == 0 {
		return place
	}
	if results[0].FormattedAddress != "" {
		place.FormattedAddress = results[0].FormattedAddress
	}
	for _, want := range districtTypes {
		for _, r := range results {
			for _, c := range r.AddressComponents {
				if hasType(c.Types, want) && c.LongName != "" {
					place.District = c.LongName
					return place
				}
			}
		}
	}
	return place
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
