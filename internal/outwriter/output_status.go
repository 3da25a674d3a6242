package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
)

// WriteRefreshOutcome reports whether a refresh ran and what it produced.
func WriteRefreshOutcome(outcome schema.RefreshOutcome, cfg *contract.Config) error {
	return dispatch(cfg,
		func(w io.Writer) error { return writeJSON(w, outcome) },
		func(w io.Writer) error { return writeRefreshCSV(w, outcome) },
		func(w io.Writer) error { return writeRefreshText(w, outcome) },
	)
}

func writeRefreshCSV(w io.Writer, outcome schema.RefreshOutcome) error {
	header := []string{"refreshed", "reason", "last_refresh", "narratives", "signals", "duration_ms"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		lastRefresh := ""
		if outcome.State.Known {
			lastRefresh = outcome.State.LastRefresh.Format(contract.DateTimeFormat)
		}
		return cw.Write([]string{
			strconv.FormatBool(outcome.Refreshed),
			outcome.Reason,
			lastRefresh,
			strconv.Itoa(outcome.Narratives),
			strconv.Itoa(outcome.Signals),
			strconv.FormatInt(outcome.Duration.Milliseconds(), 10),
		})
	})
}

func writeRefreshText(w io.Writer, outcome schema.RefreshOutcome) error {
	if !outcome.Refreshed {
		_, err := fmt.Fprintf(w, "⏭️  Skipped refresh: %s\n", outcome.Reason)
		return err
	}

	if _, err := fmt.Fprintf(w, "✅ Refreshed %d narratives from %d signals (%s) in %v\n",
		outcome.Narratives, outcome.Signals, outcome.Reason, outcome.Duration); err != nil {
		return err
	}
	sources := make([]string, 0, len(outcome.SourceCounts))
	for source := range outcome.SourceCounts {
		sources = append(sources, source)
	}
	slices.Sort(sources)
	for _, source := range sources {
		if _, err := fmt.Fprintf(w, "   %-14s %d signals\n", source, outcome.SourceCounts[source]); err != nil {
			return err
		}
	}
	for _, source := range outcome.SkippedSources {
		if _, err := fmt.Fprintf(w, "   %-14s skipped\n", source); err != nil {
			return err
		}
	}
	if outcome.Snapshot != nil {
		if _, err := fmt.Fprintf(w, "📸 Snapshot recorded at %s\n", outcome.Snapshot.Timestamp.Format(contract.DateTimeFormat)); err != nil {
			return err
		}
	}
	return nil
}

// WriteHealthReport prints data freshness.
func WriteHealthReport(report schema.HealthReport, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return dispatch(cfg,
		func(w io.Writer) error { return writeJSON(w, report) },
		func(w io.Writer) error { return writeHealthCSV(w, report, fmtFloat) },
		func(w io.Writer) error { return writeHealthText(w, report) },
	)
}

func writeHealthCSV(w io.Writer, report schema.HealthReport, fmtFloat func(float64) string) error {
	header := []string{"status", "timestamp", "last_refresh", "data_age_minutes", "data_fresh", "snapshots"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		lastRefresh, age := "", ""
		if report.LastRefresh != nil {
			lastRefresh = report.LastRefresh.Format(contract.DateTimeFormat)
		}
		if report.DataAgeMinutes != nil {
			age = fmtFloat(*report.DataAgeMinutes)
		}
		return cw.Write([]string{
			report.Status,
			report.Timestamp.Format(contract.DateTimeFormat),
			lastRefresh,
			age,
			strconv.FormatBool(report.DataFresh),
			strconv.Itoa(report.Snapshots),
		})
	})
}

func writeHealthText(w io.Writer, report schema.HealthReport) error {
	lines := []string{
		fmt.Sprintf("Status:       %s", report.Status),
		fmt.Sprintf("Snapshots:    %d", report.Snapshots),
	}
	if report.LastRefresh == nil || report.DataAgeMinutes == nil {
		lines = append(lines, "Last refresh: never (run 'signalvane refresh')")
	} else {
		freshness := "stale"
		if report.DataFresh {
			freshness = "fresh"
		}
		lines = append(lines,
			fmt.Sprintf("Last refresh: %s (%s)", report.LastRefresh.Local().Format(contract.DateTimeFormat), contract.FormatAge(*report.DataAgeMinutes)),
			fmt.Sprintf("Data:         %s", freshness),
		)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
