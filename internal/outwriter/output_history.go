package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
)

// WriteEntityHistory outputs the observations of one entity, oldest first.
func WriteEntityHistory(result schema.EntityHistory, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return dispatch(cfg,
		func(w io.Writer) error { return writeJSON(w, result) },
		func(w io.Writer) error { return writeHistoryCSV(w, result, fmtFloat) },
		func(w io.Writer) error { return writeHistoryTable(w, result, cfg, fmtFloat, duration) },
	)
}

func writeHistoryCSV(w io.Writer, result schema.EntityHistory, fmtFloat func(float64) string) error {
	header := []string{"name", "timestamp", "score", "trend"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range result.Points {
			rec := []string{
				result.Name,
				p.Timestamp.Format(contract.DateTimeFormat),
				fmtFloat(p.Score),
				contract.GetPlainLabel(result.Trend),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeHistoryTable(w io.Writer, result schema.EntityHistory, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "%s %s  %s\n", contract.GetTrendArrow(result.Trend), result.Name, trendLabel(result.Trend, cfg)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Observed", "Score", "Delta"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, p := range result.Points {
		delta := "-"
		if i > 0 {
			delta = formatDelta(p.Score-result.Points[i-1].Score, cfg.Precision)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			p.Timestamp.Local().Format(contract.DateTimeFormat),
			fmtFloat(p.Score),
			delta,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d observations loaded in %v\n", len(result.Points), duration)
	return err
}
