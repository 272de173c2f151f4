package redis_adapter_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/fieldstock-be/internal/adapters/redis_adapter"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
	"github.com/ammerola/fieldstock-be/test/helpers"
)

type dashboardEntry struct {
	Count         int `json:"count"`
	TotalQuantity int `json:"totalQuantity"`
}

func newCache(t *testing.T) (*redis_adapter.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis_adapter.NewCache(client, 5*time.Minute, helpers.TestLogger()), mr
}

func TestCache_Get(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t)

	require.NoError(t, mr.Set("repair_dash:all", `{"under_repair":{"count":2,"totalQuantity":7}}`))

	var got map[string]dashboardEntry
	require.NoError(t, cache.Get(ctx, "repair_dash:all", &got))
	assert.Equal(t, map[string]dashboardEntry{"under_repair": {Count: 2, TotalQuantity: 7}}, got)

	var miss string
	assert.ErrorIs(t, cache.Get(ctx, "absent", &miss), ports.ErrCacheMiss)
}

func TestCache_GetOrSet_TTL(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t)
	fetch := func() (interface{}, error) { return "v", nil }

	var got string
	require.NoError(t, cache.GetOrSet(ctx, "short", &got, fetch, time.Second))
	assert.Equal(t, time.Second, mr.TTL("short"))

	require.NoError(t, cache.GetOrSet(ctx, "default", &got, fetch, 0))
	assert.Equal(t, 5*time.Minute, mr.TTL("default"))

	mr.FastForward(2 * time.Second)
	assert.ErrorIs(t, cache.Get(ctx, "short", &got), ports.ErrCacheMiss)
}

func TestCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t)

	keys := []string{
		ports.BuildCacheKey(ports.PrefixRepairDashboard, "all"),
		ports.BuildCacheKey(ports.PrefixRepairDashboard, "center-1"),
		ports.BuildCacheKey(ports.PrefixUnderRepair, "all"),
	}
	for _, k := range keys {
		require.NoError(t, mr.Set(k, "1"))
	}

	require.NoError(t, cache.DeletePattern(ctx, string(ports.PrefixRepairDashboard)+":*"))

	assert.False(t, mr.Exists(keys[0]))
	assert.False(t, mr.Exists(keys[1]))
	assert.True(t, mr.Exists(keys[2]))

	// nothing left to match
	require.NoError(t, cache.DeletePattern(ctx, string(ports.PrefixRepairDashboard)+":*"))
}

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return map[string]dashboardEntry{"repaired": {Count: 1, TotalQuantity: 3}}, nil
	}

	tests := []struct {
		name      string
		wantCalls int
	}{
		{name: "miss_fetches_and_stores", wantCalls: 1},
		{name: "hit_skips_fetch", wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]dashboardEntry
			require.NoError(t, cache.GetOrSet(ctx, "repair_dash:x", &got, fetch, time.Minute))
			assert.Equal(t, 3, got["repaired"].TotalQuantity)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestCache_GetOrSet_FetchError(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t)

	boom := errors.New("db down")
	var got int
	err := cache.GetOrSet(ctx, "k", &got, func() (interface{}, error) { return nil, boom }, time.Minute)

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestCache_DeletePattern_ManyPages(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t)

	for i := 0; i < 1200; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("under_repair:%d", i), "1"))
	}
	require.NoError(t, mr.Set("repair_dash:all", "1"))

	require.NoError(t, cache.DeletePattern(ctx, "under_repair:*"))

	assert.Equal(t, []string{"repair_dash:all"}, mr.Keys())
}

func TestCache_GetOrSet_ConcurrentMissFetchesOnce(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func() (interface{}, error) {
		calls.Add(1)
		<-release
		return dashboardEntry{Count: 4}, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]dashboardEntry, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, cache.GetOrSet(ctx, "repair_dash:c", &results[i], fetch, time.Minute))
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 4, r.Count)
	}
}

func TestCache_GetOrSet_RedisDown(t *testing.T) {
	cache, mr := newCache(t)
	mr.Close()

	var got dashboardEntry
	err := cache.GetOrSet(context.Background(), "k", &got, func() (interface{}, error) {
		return dashboardEntry{Count: 2}, nil
	}, time.Minute)

	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
}
