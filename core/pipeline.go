package core

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/history"
	"github.com/signalvane/signalvane/internal/llm"
	"github.com/signalvane/signalvane/internal/metrics"
	"github.com/signalvane/signalvane/internal/signals"
	"github.com/signalvane/signalvane/schema"
	"golang.org/x/sync/errgroup"
)

// requiredSources fail the whole refresh when their fetch fails.
// Every other source degrades to a warning.
var requiredSources = map[schema.SignalSource]struct{}{
	schema.GitHubSource: {},
}

// RefreshDeps are the collaborators of the refresh pipeline.
type RefreshDeps struct {
	Store       contract.SnapshotStore
	Coordinator *Coordinator
	Fetchers    []contract.SignalFetcher
	Synthesizer contract.Synthesizer
	Manager     contract.CacheManager
}

// NewRefreshDeps wires the production fetchers and synthesizer for cfg.
func NewRefreshDeps(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*RefreshDeps, error) {
	synth, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &RefreshDeps{
		Store:       history.NewStore(cfg.HistoryPath(), history.WithRetention(cfg.Retention)),
		Coordinator: NewCoordinator(cfg.MarkerPath(), time.Now),
		Fetchers:    signals.NewFetchers(cfg),
		Synthesizer: synth,
		Manager:     mgr,
	}, nil
}

// RunRefresh checks the refresh coordinator and, when a refresh is due, runs the
// full pipeline: fetch, synthesize, write artifacts, append a snapshot, archive,
// and finally record success. Any failure before the snapshot is appended
// returns an error and leaves the refresh marker untouched.
func RunRefresh(ctx context.Context, cfg *contract.Config, deps *RefreshDeps) (outcome schema.RefreshOutcome, err error) {
	start := deps.Coordinator.Now()
	defer func() {
		switch {
		case err != nil:
			metrics.ObserveRefresh(deps.Coordinator.Now().Sub(start), metrics.OutcomeError)
		case outcome.Refreshed:
			metrics.ObserveRefresh(outcome.Duration, metrics.OutcomeRefreshed)
		default:
			metrics.ObserveRefresh(0, metrics.OutcomeCached)
		}
	}()

	due, state, err := deps.Coordinator.ShouldRefresh(cfg.Force, cfg.CacheWindow)
	if err != nil {
		return schema.RefreshOutcome{}, err
	}
	if !due {
		minutes, _ := MinutesSince(state, start)
		return schema.RefreshOutcome{
			Refreshed: false,
			Reason:    fmt.Sprintf("using cached data (last refresh %s)", contract.FormatAge(minutes)),
			State:     state,
		}, nil
	}

	if !shouldSuppressHeader(ctx) {
		logRefreshHeader(cfg, deps)
	}

	// --- 1. Fetch ---
	bundle, skipped, err := gatherSignals(ctx, cfg, deps, start)
	if err != nil {
		return schema.RefreshOutcome{}, err
	}

	// --- 2. Synthesize ---
	narratives, err := deps.Synthesizer.Narratives(ctx, bundle)
	if err != nil {
		return schema.RefreshOutcome{}, fmt.Errorf("narrative synthesis failed: %w", err)
	}
	narratives = normalizeNarratives(narratives)
	if len(narratives) == 0 {
		return schema.RefreshOutcome{}, ErrNoNarratives
	}
	attachSentiment(ctx, deps.Synthesizer, narratives)

	var ideas []schema.IdeaSet
	if cfg.GenerateIdeas {
		ideas = generateIdeas(ctx, deps.Synthesizer, narratives)
	}

	// --- 3. Report ---
	counts := sourceCounts(bundle)
	report := schema.SignalReport{
		Timestamp:        start.UTC(),
		SignalCounts:     counts,
		NarrativesCount:  len(narratives),
		GenerationMethod: deps.Synthesizer.Name(),
		SkippedSources:   skipped,
		Signals:          bundle,
	}
	if err := contract.EnsureDataDir(cfg); err != nil {
		return schema.RefreshOutcome{}, err
	}

	// --- 4. Snapshot ---
	// Artifacts are only replaced once the snapshot is recorded.
	snap, err := deps.Store.Append(narrativeEntities(narratives), snapshotMetrics(counts, len(narratives), deps.Synthesizer.Name()))
	if err != nil {
		return schema.RefreshOutcome{}, err
	}
	if err := writeArtifacts(cfg, narratives, ideas, report); err != nil {
		return schema.RefreshOutcome{}, err
	}

	// --- 5. Archive (best effort) ---
	if ctx, runID := beginArchiveRun(ctx, cfg, deps, start); runID > 0 {
		finishArchiveRun(ctx, deps, snap, narratives, bundle.Count())
	}

	// --- 6. Record success ---
	prev := state
	state, err = deps.Coordinator.RecordRefreshSuccess(deps.Coordinator.Now())
	if err != nil {
		return schema.RefreshOutcome{}, err
	}
	metrics.SetNarratives(len(narratives))

	return schema.RefreshOutcome{
		Refreshed:      true,
		Reason:         refreshReason(cfg.Force, prev),
		State:          state,
		Narratives:     len(narratives),
		Signals:        bundle.Count(),
		SourceCounts:   counts,
		SkippedSources: skipped,
		Snapshot:       &snap,
		Duration:       deps.Coordinator.Now().Sub(start),
	}, nil
}

// gatherSignals runs every fetcher concurrently through the fetch cache.
func gatherSignals(ctx context.Context, cfg *contract.Config, deps *RefreshDeps, now time.Time) (schema.SignalBundle, []string, error) {
	results := make([][]schema.Signal, len(deps.Fetchers))
	failed := make([]bool, len(deps.Fetchers))

	g, gctx := errgroup.WithContext(ctx)
	for i, fetcher := range deps.Fetchers {
		g.Go(func() error {
			fetched, err := cachedFetch(gctx, cfg, fetcher, deps.Manager, now)
			if err != nil {
				metrics.ObserveSourceFailure(string(fetcher.Source()))
				if _, required := requiredSources[fetcher.Source()]; required {
					return fmt.Errorf("failed to fetch %s signals: %w", fetcher.Source(), err)
				}
				contract.LogWarn("Skipping "+string(fetcher.Source())+" signals", err)
				failed[i] = true
				return nil
			}
			results[i] = fetched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return schema.SignalBundle{}, nil, err
	}

	bundle := schema.SignalBundle{Timestamp: now.UTC(), Sources: map[schema.SignalSource][]schema.Signal{}}
	var skipped []string
	for i, fetcher := range deps.Fetchers {
		if failed[i] {
			skipped = append(skipped, string(fetcher.Source()))
			continue
		}
		bundle.Sources[fetcher.Source()] = append(bundle.Sources[fetcher.Source()], results[i]...)
	}
	return bundle, skipped, nil
}

// normalizeNarratives trims names, drops unnamed entries and duplicates,
// and clamps novelty scores to the 0-10 scale.
func normalizeNarratives(narratives []schema.Narrative) []schema.Narrative {
	out := make([]schema.Narrative, 0, len(narratives))
	seen := map[string]struct{}{}
	for _, n := range narratives {
		n.Name = strings.TrimSpace(n.Name)
		if n.Name == "" {
			continue
		}
		if _, dup := seen[n.Name]; dup {
			continue
		}
		seen[n.Name] = struct{}{}
		if math.IsNaN(n.NoveltyScore) {
			n.NoveltyScore = 0
		}
		n.NoveltyScore = min(max(n.NoveltyScore, 0), 10)
		n.Trend = ""
		out = append(out, n)
	}
	return out
}

// attachSentiment rates each narrative, falling back to the novelty heuristic.
func attachSentiment(ctx context.Context, synth contract.Synthesizer, narratives []schema.Narrative) {
	for i := range narratives {
		result, err := synth.Sentiment(ctx, narratives[i])
		if err != nil {
			contract.LogWarn("Sentiment analysis failed for '"+narratives[i].Name+"'", err)
			result = llm.HeuristicSentiment(narratives[i])
		}
		narratives[i].Sentiment = &result
	}
}

// generateIdeas asks for ideas per narrative. A failed narrative yields an empty set.
func generateIdeas(ctx context.Context, synth contract.Synthesizer, narratives []schema.Narrative) []schema.IdeaSet {
	sets := make([]schema.IdeaSet, 0, len(narratives))
	for _, n := range narratives {
		set, err := synth.Ideas(ctx, n)
		if err != nil {
			contract.LogWarn("Idea generation failed for '"+n.Name+"'", err)
			set = schema.IdeaSet{NarrativeName: n.Name, Ideas: []schema.Idea{}}
		}
		if set.NarrativeName == "" {
			set.NarrativeName = n.Name
		}
		if set.Ideas == nil {
			set.Ideas = []schema.Idea{}
		}
		sets = append(sets, set)
	}
	return sets
}

func narrativeEntities(narratives []schema.Narrative) []schema.Entity {
	entities := make([]schema.Entity, 0, len(narratives))
	for _, n := range narratives {
		entities = append(entities, schema.Entity{Name: n.Name, Score: n.NoveltyScore})
	}
	return entities
}

func sourceCounts(bundle schema.SignalBundle) map[string]int {
	counts := make(map[string]int, len(bundle.Sources))
	for source, signals := range bundle.Sources {
		counts[string(source)] = len(signals)
	}
	return counts
}

func snapshotMetrics(counts map[string]int, narratives int, method string) map[string]any {
	m := map[string]any{
		"narratives_count":  narratives,
		"generation_method": method,
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		m[k+"_signals"] = counts[k]
	}
	return m
}

func refreshReason(force bool, prev schema.RefreshState) string {
	switch {
	case force:
		return "forced refresh"
	case !prev.Known:
		return "first refresh"
	default:
		return "cache window elapsed"
	}
}

// beginArchiveRun opens an archive run when an archive store is configured.
func beginArchiveRun(ctx context.Context, cfg *contract.Config, deps *RefreshDeps, start time.Time) (context.Context, int64) {
	if deps.Manager == nil {
		return ctx, 0
	}
	archive := deps.Manager.GetArchiveStore()
	if archive == nil {
		return ctx, 0
	}
	params := map[string]any{
		"query":           cfg.GitHubQuery,
		"lookback":        cfg.Lookback.String(),
		"reddit_lookback": cfg.RedditLookback.String(),
		"subreddits":      cfg.Subreddits,
		"force":           cfg.Force,
		"ideas":           cfg.GenerateIdeas,
		"synthesizer":     deps.Synthesizer.Name(),
	}
	runID, err := archive.BeginRun(start, params)
	if err != nil {
		contract.LogWarn("Archive run initialization failed", err)
		return ctx, 0
	}
	return withRunID(ctx, runID), runID
}

// finishArchiveRun stores the narrative scores of snap and closes the run.
func finishArchiveRun(ctx context.Context, deps *RefreshDeps, snap schema.Snapshot, narratives []schema.Narrative, totalSignals int) {
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}
	archive := deps.Manager.GetArchiveStore()

	trends := map[string]schema.Trend{}
	if snaps, err := deps.Store.Load(); err == nil {
		trends = TrendsFromSnapshots(snaps)
	}

	for _, n := range narratives {
		score := schema.NarrativeScore{
			ObservedAt:   snap.Timestamp,
			NoveltyScore: n.NoveltyScore,
			Trend:        trends[n.Name],
			Explanation:  n.Explanation,
		}
		if n.Sentiment != nil {
			score.Sentiment = n.Sentiment.Sentiment
		}
		if err := archive.RecordNarrativeScore(runID, n.Name, score); err != nil {
			contract.LogWarn("Failed to archive narrative "+n.Name, err)
		}
	}
	if err := archive.EndRun(runID, deps.Coordinator.Now(), totalSignals, len(narratives)); err != nil {
		contract.LogWarn("Failed to finalize archive run", err)
	}
}

// logRefreshHeader prints what the refresh is about to do.
func logRefreshHeader(cfg *contract.Config, deps *RefreshDeps) {
	sources := make([]string, 0, len(deps.Fetchers))
	for _, f := range deps.Fetchers {
		sources = append(sources, string(f.Source()))
	}
	fmt.Printf("🔄 Refreshing signals for %q from %s\n", cfg.GitHubQuery, strings.Join(sources, ", "))
	fmt.Printf("🔎 Lookback: %s (reddit %s), synthesizer: %s\n", cfg.Lookback, cfg.RedditLookback, deps.Synthesizer.Name())
}
