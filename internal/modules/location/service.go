// README: Location service resolves districts with a cell-keyed cache in front of the geocoder.
package location

import (
	"context"
	"log/slog"

	"kavach/internal/metrics"
	"kavach/internal/types"
)

// PlaceCache is the subset of Store used by the service.
type PlaceCache interface {
	Get(ctx context.Context, cell string) (Place, bool, error)
	Set(ctx context.Context, cell string, p Place) error
}

type Service struct {
	geocoder Geocoder
	cache    PlaceCache
	cellRes  int
	logger   *slog.Logger
}

// NewService wires the resolver. geocoder and cache may be nil; without a
// geocoder every lookup resolves to UnknownDistrict.
func NewService(geocoder Geocoder, cache PlaceCache, cellRes int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{geocoder: geocoder, cache: cache, cellRes: cellRes, logger: logger}
}

// ResolveDistrict never fails: lookup errors degrade to UnknownDistrict so
// report creation can fall back to a global station search.
func (s *Service) ResolveDistrict(ctx context.Context, p types.Point) Place {
	if s.geocoder == nil {
		return unknownPlace()
	}

	var cell string
	if s.cache != nil {
		if c, err := CellOf(p, s.cellRes); err == nil {
			cell = c
			if place, ok, err := s.cache.Get(ctx, cell); err != nil {
				s.logger.Warn("geocode cache get failed", slog.String("cell", cell), slog.Any("error", err))
			} else if ok {
				metrics.GeocodeRequestsTotal.WithLabelValues("cache").Inc()
				return place
			}
		}
	}

	place, err := s.geocoder.ReverseGeocode(ctx, p)
	if err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Error("reverse geocode failed",
			slog.Float64("lat", p.Lat),
			slog.Float64("lng", p.Lng),
			slog.Any("error", err),
		)
		return unknownPlace()
	}
	metrics.GeocodeRequestsTotal.WithLabelValues("remote").Inc()

	if cell != "" && place.District != UnknownDistrict {
		if err := s.cache.Set(ctx, cell, place); err != nil {
			s.logger.Warn("geocode cache set failed", slog.String("cell", cell), slog.Any("error", err))
		}
	}
	return place
}
