// README: Geocode cache backed by Redis, keyed by H3 cell.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const geocodeKeyPrefix = "geocode:"

type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(redis *redis.Client, ttl time.Duration) *Store {
	return &Store{redis: redis, ttl: ttl}
}

// Get returns the cached place for a cell; ok is false on a miss.
func (s *Store) Get(ctx context.Context, cell string) (Place, bool, error) {
	data, err := s.redis.Get(ctx, geocodeKeyPrefix+cell).Bytes()
	if errors.Is(err, redis.Nil) {
		return Place{}, false, nil
	}
	if err != nil {
		return Place{}, false, err
	}
	var p Place
	if err := json.Unmarshal(data, &p); err != nil {
		return Place{}, false, err
	}
	return p, true, nil
}

func (s *Store) Set(ctx context.Context, cell string, p Place) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, geocodeKeyPrefix+cell, b, s.ttl).Err()
}
