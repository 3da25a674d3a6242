package schema

import "time"

// NarrativeScore is one narrative observation recorded into the archive.
type NarrativeScore struct {
	ObservedAt   time.Time
	NoveltyScore float64
	Trend        Trend
	Sentiment    Sentiment
	Explanation  string
}

// RefreshRunRecord represents a row from the signalvane_refresh_runs table.
type RefreshRunRecord struct {
	RunID           int64
	StartTime       time.Time
	EndTime         *time.Time
	RunDurationMs   *int32
	TotalSignals    int32
	TotalNarratives int32
	ConfigParams    *string
}

// NarrativeScoreRecord represents a row from the signalvane_narrative_scores table.
type NarrativeScoreRecord struct {
	RunID         int64
	NarrativeName string
	ObservedAt    time.Time
	NoveltyScore  float64
	Trend         string
	Sentiment     *string
	Explanation   *string
}
