// Package schema has models and constants shared by all parts of signalvane.
package schema

import "time"

// Entity is a named score captured inside a snapshot.
type Entity struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Snapshot is one timestamped observation of every tracked entity.
// Snapshots are never mutated after they are appended to the history log.
type Snapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	Entities  []Entity       `json:"entities"`
	Metrics   map[string]any `json:"metrics"`
}

// Point is a single (timestamp, score) observation for one entity.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
}

// TrendRow is the presentation model for one entity of the latest snapshot.
type TrendRow struct {
	Name         string   `json:"name"`
	Score        float64  `json:"score"`
	Previous     *float64 `json:"previous_score,omitempty"`
	Delta        float64  `json:"delta"`
	Trend        Trend    `json:"trend"`
	Observations int      `json:"observations"`
}

// EntityHistory is the presentation model for the full history of one entity.
type EntityHistory struct {
	Name   string  `json:"name"`
	Trend  Trend   `json:"trend"`
	Points []Point `json:"points"`
}

// RefreshState is the coordinator's view of the last successful refresh.
// Known is false until the first refresh succeeds.
type RefreshState struct {
	LastRefresh time.Time `json:"last_refresh"`
	Known       bool      `json:"known"`
}

// HealthReport summarizes data freshness for health probes.
type HealthReport struct {
	Status         string     `json:"status"`
	Timestamp      time.Time  `json:"timestamp"`
	LastRefresh    *time.Time `json:"last_refresh,omitempty"`
	DataAgeMinutes *float64   `json:"data_age_minutes"`
	DataFresh      bool       `json:"data_fresh"`
	Snapshots      int        `json:"snapshots"`
}

// RefreshOutcome describes what a refresh pipeline run did.
type RefreshOutcome struct {
	Refreshed      bool           `json:"refreshed"`
	Reason         string         `json:"reason"`
	State          RefreshState   `json:"state"`
	Narratives     int            `json:"narratives"`
	Signals        int            `json:"signals"`
	SourceCounts   map[string]int `json:"source_counts,omitempty"`
	SkippedSources []string       `json:"skipped_sources,omitempty"`
	Snapshot       *Snapshot      `json:"snapshot,omitempty"`
	Duration       time.Duration  `json:"duration"`
}
