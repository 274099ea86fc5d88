package api

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheVersionInitialises(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, ver)

	key, err := cache.BuildKey(ctx, "reports", "abc", "bundle")
	require.NoError(t, err)
	require.Equal(t, "reports:abc:bundle:1", key)
}

func TestFetchJSONCallsLoaderOnce(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Value string `json:"value"`
	}
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Value: "cached"}, nil
	}

	key, err := cache.BuildKey(ctx, "reports", "abc")
	require.NoError(t, err)

	var first, second payload
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))
	require.Equal(t, 1, calls)
	require.Equal(t, "cached", second.Value)
}

func TestBumpRetiresCachedKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Value int `json:"value"`
	}
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Value: calls}, nil
	}

	key, err := cache.BuildKey(ctx, "reports", "abc")
	require.NoError(t, err)
	var out payload
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 1, out.Value)

	require.NoError(t, cache.Bump(ctx))

	bumped, err := cache.BuildKey(ctx, "reports", "abc")
	require.NoError(t, err)
	require.NotEqual(t, key, bumped)
	require.NoError(t, cache.FetchJSON(ctx, bumped, &out, loader))
	require.Equal(t, 2, out.Value)
}

func TestNilClientPassesThrough(t *testing.T) {
	cache := NewCache(nil, 0)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "reports", "abc")
	require.NoError(t, err)
	require.Equal(t, "reports:abc", key)

	type payload struct {
		Value string `json:"value"`
	}
	calls := 0
	var out payload
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Value: "direct"}, nil
	}
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 2, calls)
	require.Equal(t, "direct", out.Value)
}
