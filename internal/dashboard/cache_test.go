package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheVersionedKeys(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	account := uuid.New()

	key, err := cache.BuildKey(ctx, account, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, "dashboard:"+account.String()+":2026-03-14:v1", key)

	require.NoError(t, cache.Bump(ctx, account))
	bumped, err := cache.BuildKey(ctx, account, "2026-03-14")
	require.NoError(t, err)
	assert.NotEqual(t, key, bumped)

	other, err := cache.BuildKey(ctx, uuid.New(), "2026-03-14")
	require.NoError(t, err)
	assert.Contains(t, other, ":v1")
}

func TestCacheFetchJSON(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]int{"orders": 3}, nil
	}

	var first, second map[string]int
	require.NoError(t, cache.FetchJSON(ctx, "k", &first, loader))
	require.NoError(t, cache.FetchJSON(ctx, "k", &second, loader))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, second["orders"])

	mr.FastForward(2 * time.Minute)
	require.NoError(t, cache.FetchJSON(ctx, "k", &second, loader))
	assert.Equal(t, 2, calls)

	err := cache.FetchJSON(ctx, "other", &second, func(context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)
	assert.False(t, mr.Exists("other"))
}

func TestNilCacheCallsLoader(t *testing.T) {
	var cache *Cache
	var out []int
	require.NoError(t, cache.FetchJSON(context.Background(), "k", &out, func(context.Context) (any, error) {
		return []int{1, 2}, nil
	}))
	assert.Equal(t, []int{1, 2}, out)
	assert.NoError(t, cache.Bump(context.Background(), uuid.New()))
}
