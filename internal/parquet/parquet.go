// Package parquet exports archived signalvane refresh runs to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/signalvane/signalvane/schema"
)

// RefreshRun is one archived refresh run.
// This struct maps to the signalvane_refresh_runs database table.
type RefreshRun struct {
	// RunID is the unique identifier for this refresh run
	RunID int64 `parquet:"run_id,snappy"`

	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is null for runs that never finished
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalSignals    int32 `parquet:"total_signals,snappy"`
	TotalNarratives int32 `parquet:"total_narratives,snappy"`

	// ConfigParams contains the JSON-encoded refresh parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// NarrativeScore is one narrative observation of a refresh run.
// This struct maps to the signalvane_narrative_scores database table.
type NarrativeScore struct {
	RunID         int64     `parquet:"run_id,snappy"`
	NarrativeName string    `parquet:"narrative_name,snappy"`
	ObservedAt    time.Time `parquet:"observed_at,snappy"`
	NoveltyScore  float64   `parquet:"novelty_score,snappy"`
	Trend         string    `parquet:"trend,snappy"`
	Sentiment     *string   `parquet:"sentiment,optional,snappy"`
	Explanation   *string   `parquet:"explanation,optional,snappy"`
}

// WriteRefreshRunsParquet writes refresh runs to a Parquet file.
func WriteRefreshRunsParquet(data []RefreshRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteNarrativeScoresParquet writes narrative scores to a Parquet file.
func WriteNarrativeScoresParquet(data []NarrativeScore, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows with a schema inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close output file: %w", closeErr)
		}
	}()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRefreshRunRecords converts archive rows to their Parquet representation.
func ConvertRefreshRunRecords(records []schema.RefreshRunRecord) []RefreshRun {
	out := make([]RefreshRun, len(records))
	for i, r := range records {
		out[i] = RefreshRun{
			RunID:           r.RunID,
			StartTime:       r.StartTime,
			EndTime:         r.EndTime,
			RunDurationMs:   r.RunDurationMs,
			TotalSignals:    r.TotalSignals,
			TotalNarratives: r.TotalNarratives,
			ConfigParams:    r.ConfigParams,
		}
	}
	return out
}

// ConvertNarrativeScoreRecords converts archive rows to their Parquet representation.
func ConvertNarrativeScoreRecords(records []schema.NarrativeScoreRecord) []NarrativeScore {
	out := make([]NarrativeScore, len(records))
	for i, r := range records {
		out[i] = NarrativeScore{
			RunID:         r.RunID,
			NarrativeName: r.NarrativeName,
			ObservedAt:    r.ObservedAt,
			NoveltyScore:  r.NoveltyScore,
			Trend:         r.Trend,
			Sentiment:     r.Sentiment,
			Explanation:   r.Explanation,
		}
	}
	return out
}
