package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
)

// WriteNarrativeResults outputs narratives, dispatching based on the output format configured.
func WriteNarrativeResults(narratives []schema.Narrative, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return dispatch(cfg,
		func(w io.Writer) error { return writeJSON(w, narratives) },
		func(w io.Writer) error { return writeNarrativeCSV(w, narratives, fmtFloat) },
		func(w io.Writer) error { return writeNarrativeTable(w, narratives, cfg, fmtFloat, duration) },
	)
}

func writeNarrativeCSV(w io.Writer, narratives []schema.Narrative, fmtFloat func(float64) string) error {
	header := []string{
		"rank",
		"narrative_name",
		"novelty_score",
		"trend",
		"sentiment",
		"momentum_score",
		"github_evidence",
		"onchain_evidence",
		"market_intel_evidence",
		"explanation",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, n := range narratives {
			sentiment, momentum := "", ""
			if n.Sentiment != nil {
				sentiment = string(n.Sentiment.Sentiment)
				momentum = fmtFloat(n.Sentiment.MomentumScore)
			}
			rec := []string{
				strconv.Itoa(i + 1),
				n.Name,
				fmtFloat(n.NoveltyScore),
				string(n.Trend),
				sentiment,
				momentum,
				strings.Join(n.Evidence.GitHub, "|"),
				strings.Join(n.Evidence.Onchain, "|"),
				strings.Join(n.Evidence.MarketIntel, "|"),
				n.Explanation,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeNarrativeTable(w io.Writer, narratives []schema.Narrative, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Narrative", "Novelty", "Trend", "Sentiment", "Evidence"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableTextWidth(cfg)
	var data [][]string
	for i, n := range narratives {
		sentiment := "-"
		if n.Sentiment != nil {
			sentiment = string(n.Sentiment.Sentiment)
		}
		evidence := len(n.Evidence.GitHub) + len(n.Evidence.Onchain) + len(n.Evidence.MarketIntel)
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(n.Name, nameWidth),
			fmtFloat(n.NoveltyScore),
			trendLabel(n.Trend, cfg),
			sentiment,
			strconv.Itoa(evidence),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// A single narrative also gets its explanation
	if len(narratives) == 1 && narratives[0].Explanation != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", narratives[0].Explanation); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Showing %d narratives, loaded in %v\n", len(narratives), duration)
	return err
}

// WriteIdeaSets outputs idea sets, dispatching based on the output format configured.
func WriteIdeaSets(sets []schema.IdeaSet, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg,
		func(w io.Writer) error { return writeJSON(w, sets) },
		func(w io.Writer) error { return writeIdeasCSV(w, sets) },
		func(w io.Writer) error { return writeIdeasText(w, sets, cfg, duration) },
	)
}

func writeIdeasCSV(w io.Writer, sets []schema.IdeaSet) error {
	header := []string{"narrative_name", "title", "feasibility", "target_user", "tech_stack", "description"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, set := range sets {
			for _, idea := range set.Ideas {
				rec := []string{
					set.NarrativeName,
					idea.Title,
					idea.Feasibility,
					idea.TargetUser,
					strings.Join(idea.TechStack, "|"),
					idea.Description,
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func writeIdeasText(w io.Writer, sets []schema.IdeaSet, cfg *contract.Config, duration time.Duration) error {
	textWidth := GetMaxTableTextWidth(cfg)
	total := 0
	for _, set := range sets {
		if _, err := fmt.Fprintf(w, "💡 %s\n", set.NarrativeName); err != nil {
			return err
		}
		if len(set.Ideas) == 0 {
			if _, err := fmt.Fprintln(w, "   (no ideas generated)"); err != nil {
				return err
			}
			continue
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Idea", "Feasibility", "Target User", "Tech Stack"})
		var data [][]string
		for _, idea := range set.Ideas {
			data = append(data, []string{
				contract.TruncateText(idea.Title, textWidth),
				idea.Feasibility,
				contract.TruncateText(idea.TargetUser, textWidth/2),
				contract.TruncateText(strings.Join(idea.TechStack, ", "), textWidth/2),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		total += len(set.Ideas)
	}
	_, err := fmt.Fprintf(w, "Showing %d ideas across %d narratives, loaded in %v\n", total, len(sets), duration)
	return err
}
