package parquet

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/signalvane/signalvane/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []RefreshRun {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(42 * time.Second)
	duration := int32(42000)
	params := `{"query":"solana","force":false}`
	return []RefreshRun{
		{RunID: 1, StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalSignals: 27, TotalNarratives: 3, ConfigParams: &params},
		// A run that failed before it was closed
		{RunID: 2, StartTime: start.Add(time.Hour)},
	}
}

func sampleScores() []NarrativeScore {
	sentiment := "positive"
	explanation := "Agents paying for their own RPC"
	observed := time.Date(2026, 3, 1, 9, 0, 42, 0, time.UTC)
	return []NarrativeScore{
		{RunID: 1, NarrativeName: "AI Agents", ObservedAt: observed, NoveltyScore: 8.5, Trend: "rising", Sentiment: &sentiment, Explanation: &explanation},
		{RunID: 1, NarrativeName: "ZK Compression", ObservedAt: observed, NoveltyScore: 6, Trend: "new"},
	}
}

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"refresh runs", new(RefreshRun), []string{"run_id", "start_time", "end_time", "run_duration_ms", "total_signals", "total_narratives", "config_params"}},
		{"narrative scores", new(NarrativeScore), []string{"run_id", "narrative_name", "observed_at", "novelty_score", "trend", "sentiment", "explanation"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteRefreshRunsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.parquet")
	data := sampleRuns()
	require.NoError(t, WriteRefreshRunsParquet(data, path))

	got := readAll[RefreshRun](t, path)
	require.Len(t, got, len(data))

	assert.Equal(t, int64(1), got[0].RunID)
	assert.Equal(t, int32(27), got[0].TotalSignals)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].RunDurationMs)
	assert.Equal(t, int32(42000), *got[0].RunDurationMs)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, *data[0].ConfigParams, *got[0].ConfigParams)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteNarrativeScoresParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.parquet")
	data := sampleScores()
	require.NoError(t, WriteNarrativeScoresParquet(data, path))

	got := readAll[NarrativeScore](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "AI Agents", got[0].NarrativeName)
	assert.InDelta(t, 8.5, got[0].NoveltyScore, 0.001)
	require.NotNil(t, got[0].Sentiment)
	assert.Equal(t, "positive", *got[0].Sentiment)
	assert.Nil(t, got[1].Sentiment)
	assert.Nil(t, got[1].Explanation)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRefreshRunsParquet([]RefreshRun{}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "an empty file still carries the parquet footer")
}

func TestWriteParquet_BadPath(t *testing.T) {
	err := WriteNarrativeScoresParquet(sampleScores(), filepath.Join(t.TempDir(), "missing", "scores.parquet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestConvertRecords(t *testing.T) {
	end := time.Now()
	sentiment := "neutral"
	runs := ConvertRefreshRunRecords([]schema.RefreshRunRecord{{RunID: 7, EndTime: &end, TotalSignals: 3, TotalNarratives: 1}})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(7), runs[0].RunID)
	assert.Equal(t, &end, runs[0].EndTime)

	scores := ConvertNarrativeScoreRecords([]schema.NarrativeScoreRecord{{RunID: 7, NarrativeName: "Restaking", Trend: "stable", Sentiment: &sentiment}})
	require.Len(t, scores, 1)
	assert.Equal(t, "Restaking", scores[0].NarrativeName)
	assert.Equal(t, "neutral", *scores[0].Sentiment)

	assert.Empty(t, ConvertRefreshRunRecords(nil))
}
