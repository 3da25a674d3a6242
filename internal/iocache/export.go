package iocache

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/parquet"
)

// ExecuteArchiveExport exports the archive of the global Manager to Parquet files.
func ExecuteArchiveExport(outputFile string) error {
	return ExportArchive(os.Stdout, Manager.GetArchiveStore(), outputFile)
}

// ExportArchive writes every archived run and narrative score next to outputFile,
// as <outputFile>.refresh_runs.parquet and <outputFile>.narrative_scores.parquet.
func ExportArchive(w io.Writer, store contract.ArchiveStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("archive store is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get archive status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no archived runs found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total refresh runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total narrative records: %d\n", status.TableSizes[narrativeScoresTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve refresh runs: %w", err)
	}
	scores, err := store.GetAllNarrativeScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve narrative scores: %w", err)
	}

	runsFile := outputFile + ".refresh_runs.parquet"
	parquetRuns := parquet.ConvertRefreshRunRecords(runs)
	if err := parquet.WriteRefreshRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write refresh runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d refresh runs to: %s\n", len(parquetRuns), runsFile)

	scoresFile := outputFile + ".narrative_scores.parquet"
	parquetScores := parquet.ConvertNarrativeScoreRecords(scores)
	if err := parquet.WriteNarrativeScoresParquet(parquetScores, scoresFile); err != nil {
		return fmt.Errorf("failed to write narrative scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d narrative scores to: %s\n", len(parquetScores), scoresFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with DuckDB, Pandas (via pyarrow) or Apache Spark.")
	return nil
}
