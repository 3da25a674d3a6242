// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRefresh prints the outcome of a refresh check using the configured output format.
func (ow *OutWriter) WriteRefresh(outcome schema.RefreshOutcome, cfg *contract.Config) error {
	return WriteRefreshOutcome(outcome, cfg)
}

// WriteTrends prints trend rows using the configured output format.
func (ow *OutWriter) WriteTrends(rows []schema.TrendRow, cfg *contract.Config, duration time.Duration) error {
	return WriteTrendRows(rows, cfg, duration)
}

// WriteHistory prints the history of one entity using the configured output format.
func (ow *OutWriter) WriteHistory(result schema.EntityHistory, cfg *contract.Config, duration time.Duration) error {
	return WriteEntityHistory(result, cfg, duration)
}

// WriteNarratives prints narratives using the configured output format.
func (ow *OutWriter) WriteNarratives(narratives []schema.Narrative, cfg *contract.Config, duration time.Duration) error {
	return WriteNarrativeResults(narratives, cfg, duration)
}

// WriteIdeas prints idea sets using the configured output format.
func (ow *OutWriter) WriteIdeas(sets []schema.IdeaSet, cfg *contract.Config, duration time.Duration) error {
	return WriteIdeaSets(sets, cfg, duration)
}

// WriteHealth prints a health report using the configured output format.
func (ow *OutWriter) WriteHealth(report schema.HealthReport, cfg *contract.Config) error {
	return WriteHealthReport(report, cfg)
}

// GetMaxTableTextWidth calculates the maximum width for free-text columns
// (narrative names, explanations) based on terminal width.
func GetMaxTableTextWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Conservative default for narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Novelty + Trend + Sentiment with borders/padding
	baseWidth := 45

	// Reserve space for table borders, separators, and padding
	baseWidth += 20

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}

// trendLabel returns the colored or plain label depending on cfg.
func trendLabel(t schema.Trend, cfg *contract.Config) string {
	if t == "" {
		return "-"
	}
	if cfg.UseColors {
		return contract.GetColorLabel(t)
	}
	return contract.GetPlainLabel(t)
}
