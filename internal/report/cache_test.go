package report

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func cacheFixture(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache, _ := cacheFixture(t)
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return KPISummary{Total: 42}, nil
	}

	key, err := cache.BuildKey(ctx, "report", "kpi", "test")
	require.NoError(t, err)

	var first KPISummary
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	require.InDelta(t, 42, first.Total, 0.001)

	var second KPISummary
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))
	require.Equal(t, 1, calls)
	require.Equal(t, first, second)
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache, _ := cacheFixture(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "report", "kpi", "x")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.BuildKey(ctx, "report", "kpi", "x")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestCacheNilDegradesToPassThrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	require.Equal(t, "a:b", key)

	var out KPISummary
	require.NoError(t, cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return KPISummary{Total: 7}, nil
	}))
	require.InDelta(t, 7, out.Total, 0.001)
	require.NoError(t, cache.Bump(ctx))
}

func TestCacheLoaderRequired(t *testing.T) {
	cache, _ := cacheFixture(t)
	require.Error(t, cache.FetchJSON(context.Background(), "k", nil, nil))
}
