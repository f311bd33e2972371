package sharepoint_test

import (
	"context"
	"testing"
	"time"

	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := sharepoint.NewMemoryCache(10)

	entry := &sharepoint.CacheEntry{
		Data:      []byte(`{"Title":"Tasks"}`),
		ExpiresAt: time.Now().Add(time.Minute),
	}

	require.NoError(t, cache.Set(ctx, "GET:/_api/web/lists/getbytitle('Tasks')", entry))
	assert.True(t, cache.Has(ctx, "GET:/_api/web/lists/getbytitle('Tasks')"))

	got, err := cache.Get(ctx, "GET:/_api/web/lists/getbytitle('Tasks')")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, got.Data)

	require.NoError(t, cache.Delete(ctx, "GET:/_api/web/lists/getbytitle('Tasks')"))
	assert.False(t, cache.Has(ctx, "GET:/_api/web/lists/getbytitle('Tasks')"))
}

func TestMemoryCache_MissingKey(t *testing.T) {
	cache := sharepoint.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "absent")
	require.ErrorIs(t, err, sharepoint.ErrCacheKeyNotFound)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := sharepoint.NewMemoryCache(10)

	entry := &sharepoint.CacheEntry{
		Data:      []byte("stale"),
		ExpiresAt: time.Now().Add(-time.Second),
	}
	require.NoError(t, cache.Set(ctx, "stale-key", entry))

	_, err := cache.Get(ctx, "stale-key")
	require.ErrorIs(t, err, sharepoint.ErrCacheEntryExpired)
	assert.False(t, cache.Has(ctx, "stale-key"))
}

func TestMemoryCache_EvictsOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	cache := sharepoint.NewMemoryCache(2)

	oldest := &sharepoint.CacheEntry{Data: []byte("a"), ExpiresAt: time.Now().Add(time.Minute)}
	newer := &sharepoint.CacheEntry{Data: []byte("b"), ExpiresAt: time.Now().Add(2 * time.Minute)}

	require.NoError(t, cache.Set(ctx, "a", oldest))
	require.NoError(t, cache.Set(ctx, "b", newer))
	require.NoError(t, cache.Set(ctx, "c", &sharepoint.CacheEntry{
		Data:      []byte("c"),
		ExpiresAt: time.Now().Add(3 * time.Minute),
	}))

	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))
	assert.True(t, cache.Has(ctx, "c"))
}

func TestMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	cache := sharepoint.NewMemoryCache(10)

	require.NoError(t, cache.Set(ctx, "a", &sharepoint.CacheEntry{Data: []byte("a")}))
	require.NoError(t, cache.Clear(ctx))
	assert.False(t, cache.Has(ctx, "a"))
}

func TestCacheManager(t *testing.T) {
	ctx := context.Background()
	manager := sharepoint.NewCacheManager(sharepoint.NewMemoryCache(10), nil)

	key := manager.GetCacheKey("GET", "/_api/web/lists", nil)

	_, err := manager.Get(ctx, key)
	require.Error(t, err)

	require.NoError(t, manager.Set(ctx, key, []byte("payload"), time.Minute))

	data, err := manager.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	stats := manager.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.InEpsilon(t, 0.5, stats.GetHitRate(), 0.001)

	require.NoError(t, manager.Invalidate(ctx, key))

	_, err = manager.Get(ctx, key)
	require.Error(t, err)
}

func TestCacheManager_GetCacheKey(t *testing.T) {
	manager := sharepoint.NewCacheManager(sharepoint.NewMemoryCache(10), nil)

	plain := manager.GetCacheKey("GET", "/_api/web/lists", nil)
	assert.Equal(t, "GET:/_api/web/lists", plain)

	// Params are sorted so key generation is deterministic.
	first := manager.GetCacheKey("GET", "/_api/web/lists", map[string]string{
		"$top": "10", "$filter": "Hidden eq false",
	})
	second := manager.GetCacheKey("GET", "/_api/web/lists", map[string]string{
		"$filter": "Hidden eq false", "$top": "10",
	})
	assert.Equal(t, first, second)
	assert.Equal(t, "GET:/_api/web/lists:$filter=Hidden eq false&$top=10", first)
}

func TestCachingPolicy(t *testing.T) {
	policy := sharepoint.DefaultCachingPolicy()

	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
		want       bool
	}{
		{"list metadata GET", "GET", "/_api/web/lists/getbytitle('Tasks')", 200, true},
		{"field schema GET", "GET", "/_api/web/lists/getbytitle('Tasks')/fields", 200, true},
		{"items excluded", "GET", "/_api/web/lists/getbytitle('Tasks')/items", 200, false},
		{"attachments excluded", "GET", "/_api/web/lists/getbytitle('Tasks')/items(1)/AttachmentFiles", 200, false},
		{"POST never cached", "POST", "/_api/web/lists", 201, false},
		{"errors not cached", "GET", "/_api/web/lists/getbytitle('Nope')", 404, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, policy.ShouldCache(testCase.method, testCase.path, testCase.statusCode))
		})
	}
}

func TestCachingPolicy_IncludePaths(t *testing.T) {
	policy := &sharepoint.CachingPolicy{
		CacheGET:     true,
		IncludePaths: []string{"/fields"},
	}

	assert.True(t, policy.ShouldCache("GET", "/_api/web/lists/getbytitle('Tasks')/fields", 200))
	assert.False(t, policy.ShouldCache("GET", "/_api/web/lists", 200))
}
