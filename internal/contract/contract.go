// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/signalvane/signalvane/schema"
)

// SignalFetcher gathers raw signals from one upstream source.
// This allows the refresh pipeline to be tested without network access.
type SignalFetcher interface {
	// Source identifies the upstream, and doubles as part of the fetch cache key.
	Source() schema.SignalSource

	// Fetch returns the signals observed within the lookback window.
	Fetch(ctx context.Context, lookback time.Duration) ([]schema.Signal, error)
}

// Synthesizer turns signals into narratives and narratives into ideas.
type Synthesizer interface {
	// Name identifies the synthesizer in logs and archive params.
	Name() string

	// Narratives returns the narratives detected in the bundle.
	Narratives(ctx context.Context, bundle schema.SignalBundle) ([]schema.Narrative, error)

	// Ideas returns buildable ideas for one narrative.
	Ideas(ctx context.Context, narrative schema.Narrative) (schema.IdeaSet, error)

	// Sentiment rates the market mood and momentum of one narrative.
	Sentiment(ctx context.Context, narrative schema.Narrative) (schema.SentimentResult, error)
}

// HistoryReader exposes the per-entity projection of the snapshot log.
type HistoryReader interface {
	EntityHistory(name string) ([]schema.Point, error)
}

// SnapshotStore is the bounded snapshot log used by the refresh pipeline.
type SnapshotStore interface {
	HistoryReader
	Load() ([]schema.Snapshot, error)
	Append(entities []schema.Entity, metrics map[string]any) (schema.Snapshot, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetFetchStore() CacheStore
	GetArchiveStore() ArchiveStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// ArchiveStore defines the interface for keeping refresh runs and narrative scores
// beyond the bounded snapshot window.
type ArchiveStore interface {
	// BeginRun creates a new refresh run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the refresh run with completion data
	EndRun(runID int64, endTime time.Time, totalSignals, totalNarratives int) error

	// RecordNarrativeScore stores one narrative observation for a run
	RecordNarrativeScore(runID int64, name string, score schema.NarrativeScore) error

	// GetStatus returns status information about the archive store
	GetStatus() (schema.ArchiveStatus, error)

	// GetAllRuns returns every recorded refresh run
	GetAllRuns() ([]schema.RefreshRunRecord, error)

	// GetAllNarrativeScores returns every recorded narrative observation
	GetAllNarrativeScores() ([]schema.NarrativeScoreRecord, error)

	// Close closes the underlying connection
	Close() error
}
