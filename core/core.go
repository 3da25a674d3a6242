// Package core has core logic for trend classification, refresh coordination
// and the refresh pipeline.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/history"
	"github.com/signalvane/signalvane/internal/outwriter"
	"github.com/signalvane/signalvane/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteRefresh runs the refresh pipeline and prints the outcome.
func ExecuteRefresh(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	outcome, err := GetRefreshResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRefresh(outcome, cfg)
}

// GetRefreshResults runs the refresh pipeline with production collaborators.
func GetRefreshResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.RefreshOutcome, error) {
	deps, err := NewRefreshDeps(ctx, cfg, mgr)
	if err != nil {
		return schema.RefreshOutcome{}, err
	}
	return RunRefresh(ctx, cfg, deps)
}

// ExecuteTrends prints the trend of every narrative in the latest snapshot.
func ExecuteTrends(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	rows, duration, err := GetTrendsResults(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteTrends(rows, cfg, duration)
}

// GetTrendsResults loads the snapshot log and builds filtered, sorted and limited trend rows.
func GetTrendsResults(_ context.Context, cfg *contract.Config) ([]schema.TrendRow, time.Duration, error) {
	start := time.Now()
	snaps, err := historyStore(cfg).Load()
	if err != nil {
		return nil, 0, err
	}
	if len(snaps) == 0 {
		return nil, 0, ErrNoSnapshots
	}

	rows := FilterTrendRows(BuildTrendRows(snaps), cfg.TrendFilter)
	SortTrendRows(rows, cfg.Sort)
	return limit(rows, cfg.ResultLimit), time.Since(start), nil
}

// ExecuteHistory prints the observations recorded for one entity.
func ExecuteHistory(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	result, duration, err := GetHistoryResults(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteHistory(result, cfg, duration)
}

// GetHistoryResults returns the history and trend of cfg.EntityName.
func GetHistoryResults(_ context.Context, cfg *contract.Config) (schema.EntityHistory, time.Duration, error) {
	start := time.Now()
	if cfg.EntityName == "" {
		return schema.EntityHistory{}, 0, errors.New("a narrative name is required")
	}
	points, err := historyStore(cfg).EntityHistory(cfg.EntityName)
	if err != nil {
		return schema.EntityHistory{}, 0, err
	}
	if len(points) == 0 {
		return schema.EntityHistory{}, 0, fmt.Errorf("%w: no history for %q", ErrNotFound, cfg.EntityName)
	}
	return schema.EntityHistory{
		Name:   cfg.EntityName,
		Trend:  Classify(points),
		Points: points,
	}, time.Since(start), nil
}

// ExecuteNarratives prints the narratives of the last refresh with their trends.
func ExecuteNarratives(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	narratives, duration, err := GetNarrativesResults(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteNarratives(narratives, cfg, duration)
}

// GetNarrativesResults loads narratives, labels them with trends, then filters, sorts and limits them.
// A narrative filter selects a single narrative by name, ignoring case.
func GetNarrativesResults(_ context.Context, cfg *contract.Config) ([]schema.Narrative, time.Duration, error) {
	start := time.Now()
	narratives, err := LoadNarratives(cfg)
	if err != nil {
		return nil, 0, err
	}
	snaps, err := historyStore(cfg).Load()
	if err != nil {
		return nil, 0, err
	}
	ApplyTrends(narratives, TrendsFromSnapshots(snaps))

	if cfg.NarrativeFilter != "" {
		n, ok := FindNarrative(narratives, cfg.NarrativeFilter)
		if !ok {
			return nil, 0, fmt.Errorf("%w: narrative %q", ErrNotFound, cfg.NarrativeFilter)
		}
		return []schema.Narrative{n}, time.Since(start), nil
	}

	if cfg.TrendFilter != "" {
		filtered := []schema.Narrative{}
		for _, n := range narratives {
			if n.Trend == cfg.TrendFilter {
				filtered = append(filtered, n)
			}
		}
		narratives = filtered
	}
	SortNarratives(narratives, cfg.Sort)
	return limit(narratives, cfg.ResultLimit), time.Since(start), nil
}

// ExecuteIdeas prints the build ideas of the last refresh that generated them.
func ExecuteIdeas(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	sets, duration, err := GetIdeasResults(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteIdeas(sets, cfg, duration)
}

// GetIdeasResults loads idea sets, optionally restricted to cfg.NarrativeFilter.
func GetIdeasResults(_ context.Context, cfg *contract.Config) ([]schema.IdeaSet, time.Duration, error) {
	start := time.Now()
	sets, err := LoadIdeas(cfg)
	if err != nil {
		return nil, 0, err
	}
	filtered := FilterIdeas(sets, cfg.NarrativeFilter)
	if cfg.NarrativeFilter != "" && len(filtered) == 0 {
		return nil, 0, fmt.Errorf("%w: ideas for %q", ErrNotFound, cfg.NarrativeFilter)
	}
	return filtered, time.Since(start), nil
}

// ExecuteHealth prints data freshness.
func ExecuteHealth(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	report, err := GetHealthResults(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteHealth(report, cfg)
}

// GetHealthResults reports data freshness and the number of retained snapshots.
func GetHealthResults(_ context.Context, cfg *contract.Config) (schema.HealthReport, error) {
	snaps, err := historyStore(cfg).Load()
	if err != nil {
		return schema.HealthReport{}, err
	}
	return NewCoordinator(cfg.MarkerPath(), time.Now).Health(cfg.FreshWindow, len(snaps))
}

// ExecuteSeed back-fills the history log from the current narratives.
func ExecuteSeed(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	narratives, err := LoadNarratives(cfg)
	if err != nil {
		return err
	}
	snaps, err := SeedHistory(cfg, narratives, time.Now())
	if err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		for i, snap := range snaps {
			fmt.Printf("✅ Added snapshot for %d days ago (%s)\n", seedDaysAgo[i], snap.Timestamp.Format(contract.DateTimeFormat))
		}
		fmt.Println("🎉 Historical data initialized; trends will now show up")
	}
	return nil
}

func historyStore(cfg *contract.Config) *history.Store {
	return history.NewStore(cfg.HistoryPath(), history.WithRetention(cfg.Retention))
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
