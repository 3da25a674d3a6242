package schema

import "time"

// Evidence groups the supporting material behind a narrative by source.
type Evidence struct {
	GitHub      []string `json:"github"`
	Onchain     []string `json:"onchain"`
	MarketIntel []string `json:"market_intel"`
}

// SentimentResult is the market mood derived for a narrative.
type SentimentResult struct {
	Sentiment     Sentiment `json:"sentiment"`
	Confidence    float64   `json:"confidence"`
	Reasoning     string    `json:"reasoning"`
	MomentumScore float64   `json:"momentum_score"`
}

// Narrative is an emerging theme synthesized from upstream signals.
type Narrative struct {
	Name         string           `json:"narrative_name"`
	Explanation  string           `json:"explanation"`
	Evidence     Evidence         `json:"evidence"`
	NoveltyScore float64          `json:"novelty_score"`
	Sentiment    *SentimentResult `json:"sentiment,omitempty"`
	Trend        Trend            `json:"trend,omitempty"`
}

// Idea is a buildable product idea derived from a narrative.
type Idea struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TechStack   []string `json:"tech_stack"`
	TargetUser  string   `json:"target_user"`
	Feasibility string   `json:"feasibility"`
}

// IdeaSet groups the ideas generated for one narrative.
type IdeaSet struct {
	NarrativeName string `json:"narrative_name"`
	Ideas         []Idea `json:"ideas"`
}

// Signal is one observation produced by an upstream fetcher.
type Signal struct {
	Source      SignalSource      `json:"source"`
	Name        string            `json:"name"`
	Score       float64           `json:"score"`
	URL         string            `json:"url,omitempty"`
	Description string            `json:"description,omitempty"`
	Language    string            `json:"language,omitempty"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// SignalBundle is the full set of signals gathered for one refresh.
type SignalBundle struct {
	Timestamp time.Time                 `json:"timestamp"`
	Sources   map[SignalSource][]Signal `json:"sources"`
}

// Count returns the number of signals across every source.
func (b SignalBundle) Count() int {
	total := 0
	for _, signals := range b.Sources {
		total += len(signals)
	}
	return total
}

// BySource returns the signals for one source, or nil.
func (b SignalBundle) BySource(source SignalSource) []Signal {
	if b.Sources == nil {
		return nil
	}
	return b.Sources[source]
}

// SignalReport is the metadata artifact written next to the narratives after a refresh.
type SignalReport struct {
	Timestamp        time.Time      `json:"timestamp"`
	SignalCounts     map[string]int `json:"signal_counts"`
	NarrativesCount  int            `json:"narratives_count"`
	GenerationMethod string         `json:"generation_method"`
	SkippedSources   []string       `json:"skipped_sources,omitempty"`
	Signals          SignalBundle   `json:"signals"`
}
