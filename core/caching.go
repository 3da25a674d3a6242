package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/metrics"
	"github.com/signalvane/signalvane/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cachedFetch runs fetcher through the fetch cache when one is configured.
// A forced refresh skips the read but still stores the fresh result.
func cachedFetch(ctx context.Context, cfg *contract.Config, fetcher contract.SignalFetcher, mgr contract.CacheManager, now time.Time) ([]schema.Signal, error) {
	lookback := lookbackFor(cfg, fetcher.Source())

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetFetchStore()
	}
	if store == nil {
		// Fallback to direct fetch
		return fetcher.Fetch(ctx, lookback)
	}

	key := generateCacheKey(cfg, fetcher.Source(), lookback, now)

	if !cfg.Force {
		if result := checkCacheHit(store, key, now, cfg.FetchTTL); result != nil {
			metrics.ObserveFetchCache(string(fetcher.Source()), true)
			return result, nil
		}
	}
	metrics.ObserveFetchCache(string(fetcher.Source()), false)

	return computeAndStore(ctx, fetcher, lookback, store, key, now)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string, now time.Time, ttl time.Duration) []schema.Signal {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if now.Sub(entryTimestamp) <= ttl {
			var result []schema.Signal
			if err := json.Unmarshal(data, &result); err == nil {
				return result // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// computeAndStore fetches the signals and stores them in cache
func computeAndStore(ctx context.Context, fetcher contract.SignalFetcher, lookback time.Duration, store contract.CacheStore, key string, now time.Time) ([]schema.Signal, error) {
	result, err := fetcher.Fetch(ctx, lookback)
	if err != nil {
		return nil, err
	}

	// Store in cache
	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, now.Unix()); err != nil {
			contract.LogWarn("Failed to cache "+string(fetcher.Source())+" signals", err)
		}
	}

	return result, nil
}

// generateCacheKey creates a unique key based on fetch parameters
func generateCacheKey(cfg *contract.Config, source schema.SignalSource, lookback time.Duration, now time.Time) string {
	// Requests inside the same hour share an entry
	bucket := now.UTC().Truncate(contract.CacheGranularity)

	key := fmt.Sprintf("%s:%s:%s:%s:%d",
		source,
		cfg.GitHubQuery,
		strings.Join(cfg.Subreddits, ","),
		lookback,
		bucket.Unix(),
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

// lookbackFor returns the window a source is queried with.
func lookbackFor(cfg *contract.Config, source schema.SignalSource) time.Duration {
	if source == schema.RedditSource {
		return cfg.RedditLookback
	}
	return cfg.Lookback
}
