package core

import (
	"fmt"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/history"
	"github.com/signalvane/signalvane/schema"
)

// seedDaysAgo lists the back-dated observations written by SeedHistory, oldest first.
var seedDaysAgo = []int{7, 5, 3, 1, 0}

// seedStep is the per-day score offset used to shape seeded trends.
const seedStep = 1.5

// SeedHistory back-fills the empty history log from the current narratives so
// that trends show up before enough real refreshes have happened. Narratives
// cycle through rising, stable and falling shapes.
func SeedHistory(cfg *contract.Config, narratives []schema.Narrative, now time.Time) ([]schema.Snapshot, error) {
	if len(narratives) == 0 {
		return nil, ErrNoNarratives
	}

	existing, err := history.NewStore(cfg.HistoryPath()).Load()
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("history already has %d snapshots; seeding only applies to an empty log", len(existing))
	}

	var written []schema.Snapshot
	for _, daysAgo := range seedDaysAgo {
		stamp := now.AddDate(0, 0, -daysAgo)
		store := history.NewStore(cfg.HistoryPath(),
			history.WithRetention(cfg.Retention),
			history.WithClock(func() time.Time { return stamp }),
		)

		entities := make([]schema.Entity, 0, len(narratives))
		for i, n := range narratives {
			entities = append(entities, schema.Entity{Name: n.Name, Score: seedScore(i, n.NoveltyScore, daysAgo)})
		}
		snap, err := store.Append(entities, map[string]any{"simulated": true, "days_ago": daysAgo})
		if err != nil {
			return written, err
		}
		written = append(written, snap)
	}
	return written, nil
}

// seedScore shapes the score of the i-th narrative daysAgo days before now.
func seedScore(i int, score float64, daysAgo int) float64 {
	offset := seedStep * float64(daysAgo)
	switch i % 3 {
	case 0: // rising
		return max(score-offset, 0)
	case 2: // falling
		return min(score+offset, 10)
	default: // stable
		return score
	}
}
