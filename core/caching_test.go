package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/iocache"
	"github.com/signalvane/signalvane/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func cacheTestConfig() *contract.Config {
	return &contract.Config{
		FetchTTL:       time.Hour,
		Lookback:       14 * 24 * time.Hour,
		RedditLookback: 7 * 24 * time.Hour,
		GitHubQuery:    "solana",
		Subreddits:     []string{"solana", "SolanaDevs"},
	}
}

func managerWith(store contract.CacheStore) *iocache.MockCacheManager {
	mgr := new(iocache.MockCacheManager)
	mgr.On("GetFetchStore").Return(store)
	return mgr
}

func TestCachedFetch_NoStore(t *testing.T) {
	cfg := cacheTestConfig()
	fetcher := &fakeFetcher{source: schema.GitHubSource, signals: []schema.Signal{{Name: "repo"}}}

	got, err := cachedFetch(context.Background(), cfg, fetcher, nil, t0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	mgr := new(iocache.MockCacheManager)
	mgr.On("GetFetchStore").Return(nil)
	got, err = cachedFetch(context.Background(), cfg, fetcher, mgr, t0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, fetcher.calls)
}

func TestCachedFetch_Hit(t *testing.T) {
	cfg := cacheTestConfig()
	fetcher := &fakeFetcher{source: schema.GitHubSource}
	cached, err := json.Marshal([]schema.Signal{{Source: schema.GitHubSource, Name: "cached-repo", Score: 9}})
	require.NoError(t, err)

	store := new(iocache.MockCacheStore)
	key := generateCacheKey(cfg, schema.GitHubSource, cfg.Lookback, t0)
	store.On("Get", key).Return(cached, currentCacheVersion, t0.Add(-30*time.Minute).Unix(), nil)

	got, err := cachedFetch(context.Background(), cfg, fetcher, managerWith(store), t0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cached-repo", got[0].Name)
	assert.Zero(t, fetcher.calls)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedFetch_MissStores(t *testing.T) {
	tests := []struct {
		name    string
		version int
		age     time.Duration
		data    []byte
		err     error
	}{
		{"absent", 0, 0, nil, errors.New("sql: no rows in result set")},
		{"stale", currentCacheVersion, 2 * time.Hour, []byte(`[]`), nil},
		{"version mismatch", currentCacheVersion + 1, time.Minute, []byte(`[]`), nil},
		{"corrupt payload", currentCacheVersion, time.Minute, []byte(`{`), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := cacheTestConfig()
			fetcher := &fakeFetcher{source: schema.RedditSource, signals: []schema.Signal{{Name: "fresh"}}}
			key := generateCacheKey(cfg, schema.RedditSource, cfg.RedditLookback, t0)

			store := new(iocache.MockCacheStore)
			store.On("Get", key).Return(tt.data, tt.version, t0.Add(-tt.age).Unix(), tt.err)
			store.On("Set", key, mock.Anything, currentCacheVersion, t0.Unix()).Return(nil)

			got, err := cachedFetch(context.Background(), cfg, fetcher, managerWith(store), t0)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "fresh", got[0].Name)
			assert.Equal(t, 1, fetcher.calls)
			store.AssertExpectations(t)
		})
	}
}

func TestCachedFetch_ForceSkipsRead(t *testing.T) {
	cfg := cacheTestConfig()
	cfg.Force = true
	fetcher := &fakeFetcher{source: schema.GitHubSource, signals: []schema.Signal{{Name: "fresh"}}}

	store := new(iocache.MockCacheStore)
	store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, t0.Unix()).Return(nil)

	_, err := cachedFetch(context.Background(), cfg, fetcher, managerWith(store), t0)
	require.NoError(t, err)
	store.AssertNotCalled(t, "Get", mock.Anything)
	store.AssertExpectations(t)
}

func TestCachedFetch_Errors(t *testing.T) {
	cfg := cacheTestConfig()
	cfg.Force = true

	t.Run("set failure only warns", func(t *testing.T) {
		fetcher := &fakeFetcher{source: schema.GitHubSource, signals: []schema.Signal{{Name: "fresh"}}}
		store := new(iocache.MockCacheStore)
		store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("read-only"))

		got, err := cachedFetch(context.Background(), cfg, fetcher, managerWith(store), t0)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("fetch failure is not cached", func(t *testing.T) {
		fetcher := &fakeFetcher{source: schema.GitHubSource, err: errors.New("502")}
		store := new(iocache.MockCacheStore)

		_, err := cachedFetch(context.Background(), cfg, fetcher, managerWith(store), t0)
		require.Error(t, err)
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGenerateCacheKey(t *testing.T) {
	cfg := cacheTestConfig()
	base := generateCacheKey(cfg, schema.GitHubSource, cfg.Lookback, t0)

	assert.Len(t, base, 64)
	assert.Equal(t, base, generateCacheKey(cfg, schema.GitHubSource, cfg.Lookback, t0.Add(59*time.Minute)), "same hour bucket")
	assert.NotEqual(t, base, generateCacheKey(cfg, schema.GitHubSource, cfg.Lookback, t0.Add(time.Hour)))
	assert.NotEqual(t, base, generateCacheKey(cfg, schema.RedditSource, cfg.Lookback, t0))
	assert.NotEqual(t, base, generateCacheKey(cfg, schema.GitHubSource, time.Hour, t0))

	other := cacheTestConfig()
	other.GitHubQuery = "ethereum"
	assert.NotEqual(t, base, generateCacheKey(other, schema.GitHubSource, cfg.Lookback, t0))
}

func TestLookbackFor(t *testing.T) {
	cfg := cacheTestConfig()
	assert.Equal(t, cfg.Lookback, lookbackFor(cfg, schema.GitHubSource))
	assert.Equal(t, cfg.RedditLookback, lookbackFor(cfg, schema.RedditSource))
	assert.Equal(t, cfg.Lookback, lookbackFor(cfg, schema.OnchainSource))
}
