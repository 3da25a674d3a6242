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

// WriteTrendRows outputs trend rows, dispatching based on the output format configured.
func WriteTrendRows(rows []schema.TrendRow, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return dispatch(cfg,
		func(w io.Writer) error { return writeTrendJSON(w, rows) },
		func(w io.Writer) error { return writeTrendCSV(w, rows, fmtFloat, intFmt) },
		func(w io.Writer) error { return writeTrendTable(w, rows, cfg, fmtFloat, duration) },
	)
}

// writeTrendJSON adds rank and label to each row.
func writeTrendJSON(w io.Writer, rows []schema.TrendRow) error {
	type jsonTrendRow struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.TrendRow
	}
	output := make([]jsonTrendRow, len(rows))
	for i, r := range rows {
		output[i] = jsonTrendRow{Rank: i + 1, Label: contract.GetPlainLabel(r.Trend), TrendRow: r}
	}
	return writeJSON(w, output)
}

func writeTrendCSV(w io.Writer, rows []schema.TrendRow, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"rank", "name", "score", "previous_score", "delta", "trend", "observations"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range rows {
			previous := ""
			if r.Previous != nil {
				previous = fmtFloat(*r.Previous)
			}
			rec := []string{
				strconv.Itoa(i + 1),
				r.Name,
				fmtFloat(r.Score),
				previous,
				fmtFloat(r.Delta),
				contract.GetPlainLabel(r.Trend),
				fmt.Sprintf(intFmt, r.Observations),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeTrendTable(w io.Writer, rows []schema.TrendRow, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Narrative", "Score", "Delta", "Trend", "Seen"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableTextWidth(cfg)
	var data [][]string
	counts := map[schema.Trend]int{}
	for i, r := range rows {
		delta := "-"
		if r.Previous != nil {
			delta = formatDelta(r.Delta, cfg.Precision)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(r.Name, nameWidth),
			fmtFloat(r.Score),
			delta,
			contract.GetTrendArrow(r.Trend) + " " + trendLabel(r.Trend, cfg),
			strconv.Itoa(r.Observations),
		})
		counts[r.Trend]++
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d narratives (rising: %d, new: %d, stable: %d, falling: %d)\n",
		len(rows), counts[schema.TrendRising], counts[schema.TrendNew], counts[schema.TrendStable], counts[schema.TrendFalling]); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Trends computed in %v\n", duration)
	return err
}
