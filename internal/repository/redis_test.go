package repository

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCache(t *testing.T) (*miniredis.Miniredis, *RedisSearchCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisSearchCache(client, 5*time.Minute)
}

func TestRedisSearchCacheSetGet(t *testing.T) {
	_, cache := setupRedisCache(t)
	ctx := context.Background()

	items := []*models.Item{{ID: 1, Name: "Дрель", Available: true}}
	require.NoError(t, cache.SetSearch(ctx, "дрель", items))

	got, ok, err := cache.GetSearch(ctx, "дрель")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "Дрель", got[0].Name)
}

func TestRedisSearchCacheMiss(t *testing.T) {
	_, cache := setupRedisCache(t)

	got, ok, err := cache.GetSearch(context.Background(), "нет такого")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedisSearchCacheTTL(t *testing.T) {
	mr, cache := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetSearch(ctx, "дрель", []*models.Item{{ID: 1}}))

	mr.FastForward(6 * time.Minute)

	_, ok, err := cache.GetSearch(ctx, "дрель")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSearchCacheInvalidate(t *testing.T) {
	_, cache := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetSearch(ctx, "дрель", []*models.Item{{ID: 1}}))
	require.NoError(t, cache.SetSearch(ctx, "пила", []*models.Item{{ID: 2}}))

	require.NoError(t, cache.InvalidateSearch(ctx))

	_, ok, err := cache.GetSearch(ctx, "дрель")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = cache.GetSearch(ctx, "пила")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	assert.NoError(t, Ping(context.Background(), client))
	assert.Error(t, Ping(context.Background(), nil))
}
