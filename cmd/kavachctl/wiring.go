package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"kavach/internal/config"
	"kavach/internal/infra"
	"kavach/internal/modules/location"
	"kavach/internal/modules/station"
)

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, infra.NewLogger(cfg.Log.Level, cfg.Log.Format), nil
}

// openStationRepo connects to the configured backend and wraps it with the
// shared station cache so writes from here invalidate what the API serves.
// Without Redis the store is used directly.
func openStationRepo(ctx context.Context, cfg config.Config, logger *slog.Logger) (station.Repository, io.Closer, error) {
	repo, closer, err := openStationStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	client, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("redis unavailable, API station cache will not be invalidated", slog.Any("error", err))
		return repo, closer, nil
	}
	cached := station.NewCachedRepository(repo, client, cfg.Cache.StationTTL, logger)
	return cached, closerFunc(func() {
		_ = client.Close()
		_ = closer.Close()
	}), nil
}

func openStationStore(ctx context.Context, cfg config.Config) (station.Repository, io.Closer, error) {
	switch cfg.Store.Backend {
	case config.StoreFirestore:
		fb, err := infra.NewFirebase(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		fs, err := fb.Firestore(ctx)
		if err != nil {
			return nil, nil, err
		}
		return station.NewFirestoreStore(fs), fs, nil
	default:
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, nil, err
		}
		return station.NewPGStore(pool), closerFunc(pool.Close), nil
	}
}

// newLocationService builds a resolver without the Redis cache.
func newLocationService(cfg config.Config, logger *slog.Logger) (*location.Service, error) {
	if cfg.Maps.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required")
	}
	g, err := location.NewGoogleGeocoder(cfg.Maps.APIKey)
	if err != nil {
		return nil, err
	}
	return location.NewService(g, nil, cfg.Cache.GeocodeCell, logger), nil
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
