// README: Redis read-through cache for the active station list.
package station

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"kavach/internal/types"
)

const (
	activeStationsKey = "stations:active"
	// stationsGenKey is bumped on every write; snapshots from an older
	// generation are ignored.
	stationsGenKey = "stations:active:gen"
)

type stationSnapshot struct {
	Gen      int64     `json:"gen"`
	Stations []Station `json:"stations"`
}

// CachedRepository caches every active station under one key and filters by
// district in memory. Mutations go to the wrapped repository and then advance
// the generation, so a load racing with a write can never be served afterwards.
type CachedRepository struct {
	Repository
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedRepository(next Repository, redis *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRepository{Repository: next, redis: redis, ttl: ttl, logger: logger}
}

func (c *CachedRepository) ListActive(ctx context.Context, district string) ([]Station, error) {
	all, err := c.activeStations(ctx)
	if err != nil {
		return nil, err
	}
	if district == "" {
		return all, nil
	}
	out := []Station{}
	for _, st := range all {
		if st.District == district {
			out = append(out, st)
		}
	}
	return out, nil
}

func (c *CachedRepository) Create(ctx context.Context, st *Station) error {
	if err := c.Repository.Create(ctx, st); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedRepository) Update(ctx context.Context, st *Station) error {
	if err := c.Repository.Update(ctx, st); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedRepository) Delete(ctx context.Context, id types.ID) error {
	if err := c.Repository.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedRepository) activeStations(ctx context.Context) ([]Station, error) {
	gen, snap, cacheOK := c.load(ctx)
	if snap != nil && snap.Gen == gen {
		return snap.Stations, nil
	}

	all, err := c.Repository.ListActive(ctx, "")
	if err != nil {
		return nil, err
	}
	if !cacheOK {
		return all, nil
	}
	b, err := json.Marshal(stationSnapshot{Gen: gen, Stations: all})
	if err != nil {
		return all, nil
	}
	if err := c.redis.Set(ctx, activeStationsKey, b, c.ttl).Err(); err != nil {
		c.logger.Warn("station cache set failed", slog.Any("error", err))
	}
	return all, nil
}

// load reads the current generation and the cached snapshot in one round
// trip. ok is false when Redis could not be read.
func (c *CachedRepository) load(ctx context.Context) (gen int64, snap *stationSnapshot, ok bool) {
	vals, err := c.redis.MGet(ctx, stationsGenKey, activeStationsKey).Result()
	if err != nil {
		c.logger.Warn("station cache get failed", slog.Any("error", err))
		return 0, nil, false
	}
	if raw, isStr := vals[0].(string); isStr {
		gen, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.logger.Warn("station cache generation corrupt", slog.String("value", raw))
			return 0, nil, false
		}
	}
	raw, isStr := vals[1].(string)
	if !isStr {
		return gen, nil, true
	}
	var cached stationSnapshot
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		c.logger.Warn("station cache corrupt, reloading")
		return gen, nil, true
	}
	return gen, &cached, true
}

// invalidate advances the generation before dropping the snapshot so loads
// that started earlier cannot repopulate it.
func (c *CachedRepository) invalidate(ctx context.Context) {
	_, err := c.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, stationsGenKey)
		p.Del(ctx, activeStationsKey)
		return nil
	})
	if err != nil {
		c.logger.Warn("station cache invalidate failed", slog.Any("error", err))
	}
}
