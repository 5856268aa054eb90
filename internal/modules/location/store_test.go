package location

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestStore_RoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	store := NewStore(client, time.Minute)
	ctx := context.Background()
	cell := "test-" + t.Name()
	t.Cleanup(func() { client.Del(ctx, geocodeKeyPrefix+cell) })

	_, ok, err := store.Get(ctx, cell)
	require.NoError(t, err)
	assert.False(t, ok)

	want := Place{District: "Ahmedabad", FormattedAddress: "Ahmedabad, Gujarat"}
	require.NoError(t, store.Set(ctx, cell, want))

	got, ok, err := store.Get(ctx, cell)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	ttl, err := client.TTL(ctx, geocodeKeyPrefix+cell).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
