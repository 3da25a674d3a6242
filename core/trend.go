package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/history"
	"github.com/signalvane/signalvane/schema"
)

// TrendThreshold is the score change that must be exceeded, strictly, before a
// narrative counts as rising or falling.
const TrendThreshold = 1.0

// Classify labels an entity history by comparing its last two scores.
// Fewer than two observations is always new.
func Classify(points []schema.Point) schema.Trend {
	if len(points) < 2 {
		return schema.TrendNew
	}
	current := points[len(points)-1].Score
	previous := points[len(points)-2].Score
	switch {
	case current > previous+TrendThreshold:
		return schema.TrendRising
	case current < previous-TrendThreshold:
		return schema.TrendFalling
	default:
		return schema.TrendStable
	}
}

// ClassifyAll labels every entity of the latest snapshot using the histories
// kept by reader. Entities that only appear in older snapshots are ignored.
func ClassifyAll(latest []schema.Entity, reader contract.HistoryReader) (map[string]schema.Trend, error) {
	trends := make(map[string]schema.Trend, len(latest))
	for _, e := range latest {
		if _, seen := trends[e.Name]; seen {
			continue
		}
		points, err := reader.EntityHistory(e.Name)
		if err != nil {
			return nil, err
		}
		trends[e.Name] = Classify(points)
	}
	return trends, nil
}

// TrendsFromSnapshots is ClassifyAll over an already loaded log.
func TrendsFromSnapshots(snaps []schema.Snapshot) map[string]schema.Trend {
	trends := map[string]schema.Trend{}
	if len(snaps) == 0 {
		return trends
	}
	for _, e := range snaps[len(snaps)-1].Entities {
		if _, seen := trends[e.Name]; seen {
			continue
		}
		trends[e.Name] = Classify(history.EntityHistory(snaps, e.Name))
	}
	return trends
}

// BuildTrendRows returns one row per entity of the latest snapshot, in snapshot order.
func BuildTrendRows(snaps []schema.Snapshot) []schema.TrendRow {
	rows := []schema.TrendRow{}
	if len(snaps) == 0 {
		return rows
	}
	seen := map[string]struct{}{}
	for _, e := range snaps[len(snaps)-1].Entities {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}

		points := history.EntityHistory(snaps, e.Name)
		row := schema.TrendRow{
			Name:         e.Name,
			Score:        points[len(points)-1].Score,
			Trend:        Classify(points),
			Observations: len(points),
		}
		if len(points) >= 2 {
			prev := points[len(points)-2].Score
			row.Previous = &prev
			row.Delta = row.Score - prev
		}
		rows = append(rows, row)
	}
	return rows
}

// SortTrendRows orders rows in place for presentation.
func SortTrendRows(rows []schema.TrendRow, mode schema.SortMode) {
	switch mode {
	case schema.SortAlphabetical:
		slices.SortStableFunc(rows, func(a, b schema.TrendRow) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case schema.SortTrend:
		slices.SortStableFunc(rows, func(a, b schema.TrendRow) int {
			if c := cmp.Compare(schema.TrendRank(a.Trend), schema.TrendRank(b.Trend)); c != 0 {
				return c
			}
			return cmp.Compare(b.Delta, a.Delta)
		})
	case schema.SortNovelty:
		slices.SortStableFunc(rows, func(a, b schema.TrendRow) int {
			return cmp.Compare(b.Score, a.Score)
		})
	}
}

// FilterTrendRows keeps only rows labelled trend. An empty trend keeps everything.
func FilterTrendRows(rows []schema.TrendRow, trend schema.Trend) []schema.TrendRow {
	if trend == "" {
		return rows
	}
	filtered := []schema.TrendRow{}
	for _, r := range rows {
		if r.Trend == trend {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ApplyTrends copies trend labels onto narratives. Unknown names are left untouched.
func ApplyTrends(narratives []schema.Narrative, trends map[string]schema.Trend) {
	for i := range narratives {
		if t, ok := trends[narratives[i].Name]; ok {
			narratives[i].Trend = t
		}
	}
}

// SortNarratives orders narratives in place the way the API's sort_by does.
func SortNarratives(narratives []schema.Narrative, mode schema.SortMode) {
	switch mode {
	case schema.SortNovelty:
		slices.SortStableFunc(narratives, func(a, b schema.Narrative) int {
			return cmp.Compare(b.NoveltyScore, a.NoveltyScore)
		})
	case schema.SortAlphabetical:
		slices.SortStableFunc(narratives, func(a, b schema.Narrative) int {
			return strings.Compare(a.Name, b.Name)
		})
	case schema.SortTrend:
		slices.SortStableFunc(narratives, func(a, b schema.Narrative) int {
			if c := cmp.Compare(schema.TrendRank(a.Trend), schema.TrendRank(b.Trend)); c != 0 {
				return c
			}
			return cmp.Compare(b.NoveltyScore, a.NoveltyScore)
		})
	}
}

// FindNarrative looks a narrative up by name, ignoring case.
func FindNarrative(narratives []schema.Narrative, name string) (schema.Narrative, bool) {
	for _, n := range narratives {
		if strings.EqualFold(n.Name, name) {
			return n, true
		}
	}
	return schema.Narrative{}, false
}

// FilterIdeas keeps the idea sets for one narrative, ignoring case.
// An empty name keeps everything.
func FilterIdeas(sets []schema.IdeaSet, narrative string) []schema.IdeaSet {
	if narrative == "" {
		return sets
	}
	filtered := []schema.IdeaSet{}
	for _, s := range sets {
		if strings.EqualFold(s.NarrativeName, narrative) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
