package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"cabino/internal/catalog"
	"cabino/pkg/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryCache keeps values and TTLs in maps. expireWindow drops every key
// that carries a TTL, as if its window had passed.
type memoryCache struct {
	mu          sync.Mutex
	values      map[string][]byte
	counters    map[string]int64
	ttls        map[string]time.Duration
	failExpires int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		values:   make(map[string][]byte),
		counters: make(map[string]int64),
		ttls:     make(map[string]time.Duration),
	}
}

func (m *memoryCache) GetJSON(_ context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.values[key]
	if !ok {
		return redis.ErrNotFound
	}
	return json.Unmarshal(data, v)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, v any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.values[key] = data
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.values, key)
		delete(m.counters, key)
		delete(m.ttls, key)
	}
	return nil
}

func (m *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[key]++
	return m.counters[key], nil
}

func (m *memoryCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failExpires > 0 {
		m.failExpires--
		return false, errors.New("i/o timeout")
	}
	m.ttls[key] = expiration
	return true, nil
}

func (m *memoryCache) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, isCounter := m.counters[key]
	_, isValue := m.values[key]
	if !isCounter && !isValue {
		return -2, nil
	}
	ttl, ok := m.ttls[key]
	if !ok {
		return -1, nil
	}
	return ttl, nil
}

func (m *memoryCache) GetInt(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.counters[key], nil
}

func (m *memoryCache) expireWindow() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.ttls {
		delete(m.values, key)
		delete(m.counters, key)
		delete(m.ttls, key)
	}
}

func newCacheOnlyStorage(cache *memoryCache, query func(context.Context) (catalog.Catalog, error)) *PostgresStorage {
	return &PostgresStorage{
		cache:        cache,
		logger:       zap.NewNop(),
		queryCatalog: query,
	}
}

func customCatalog() catalog.Catalog {
	return catalog.Catalog{
		CabinetTypes: []catalog.Option{{ID: "shaker", Title: "شیکر", Multiplier: 1.3, Position: 1}},
		Materials:    []catalog.Option{{ID: "acrylic", Title: "اکریلیک", Multiplier: 1.4, Position: 1}},
	}
}

func TestGetCatalog_QueriesOnceThenServesCache(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	queries := 0
	s := newCacheOnlyStorage(cache, func(context.Context) (catalog.Catalog, error) {
		queries++
		return customCatalog(), nil
	})

	first, err := s.GetCatalog(ctx)
	require.NoError(t, err)
	second, err := s.GetCatalog(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, queries)
	assert.Equal(t, "shaker", first.CabinetTypes[0].ID)
	assert.Equal(t, first.CabinetTypes[0].ID, second.CabinetTypes[0].ID)
	assert.Equal(t, first.Materials[0].Multiplier, second.Materials[0].Multiplier)
	assert.Equal(t, catalogCacheTTL, cache.ttls[catalogCacheKey])
}

func TestGetCatalog_EmptyTablesFallBackToDefault(t *testing.T) {
	cache := newMemoryCache()
	s := newCacheOnlyStorage(cache, func(context.Context) (catalog.Catalog, error) {
		return catalog.Catalog{}, nil
	})

	c, err := s.GetCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.Default(), c)

	// the fallback is not cached, so filled tables are picked up later
	_, cached := cache.values[catalogCacheKey]
	assert.False(t, cached)
}

func TestGetCatalog_QueryError(t *testing.T) {
	s := newCacheOnlyStorage(newMemoryCache(), func(context.Context) (catalog.Catalog, error) {
		return catalog.Catalog{}, errors.New("relation \"materials\" does not exist")
	})

	_, err := s.GetCatalog(context.Background())
	assert.ErrorContains(t, err, "storage.GetCatalog")
}

func TestEstimateCounter(t *testing.T) {
	ctx := context.Background()
	s := newCacheOnlyStorage(newMemoryCache(), nil)

	n, err := s.EstimateCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.CountEstimate(ctx))
	require.NoError(t, s.CountEstimate(ctx))

	n, err = s.EstimateCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCheckRateLimit(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	s := newCacheOnlyStorage(cache, nil)

	for i := 1; i <= 3; i++ {
		exceeded, err := s.CheckRateLimit(ctx, 7, "message", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, exceeded, "call %d", i)
	}

	exceeded, err := s.CheckRateLimit(ctx, 7, "message", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, exceeded)

	cache.expireWindow()
	exceeded, err = s.CheckRateLimit(ctx, 7, "message", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestCheckRateLimit_RecoversFromLostWindow(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	cache.failExpires = 1
	s := newCacheOnlyStorage(cache, nil)

	_, err := s.CheckRateLimit(ctx, 7, "message", 3, time.Minute)
	require.Error(t, err)

	for i := 2; i <= 6; i++ {
		exceeded, err := s.CheckRateLimit(ctx, 7, "message", 3, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i > 3, exceeded, "call %d", i)
	}

	ttl, err := cache.TTL(ctx, "ratelimit:7:message")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	cache.expireWindow()
	exceeded, err := s.CheckRateLimit(ctx, 7, "message", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, exceeded)
}
