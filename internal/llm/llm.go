// Package llm turns upstream signals into narratives, ideas and sentiment.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
)

// New returns the Gemini synthesizer when an API key is configured and the
// rule-based synthesizer otherwise.
func New(ctx context.Context, cfg *contract.Config) (contract.Synthesizer, error) {
	if cfg.GeminiAPIKey == "" {
		return NewRuleSynthesizer(), nil
	}
	return NewGeminiSynthesizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
}

// HeuristicSentiment derives a sentiment from the novelty score alone.
func HeuristicSentiment(n schema.Narrative) schema.SentimentResult {
	sentiment := schema.SentimentNegative
	switch {
	case n.NoveltyScore >= 8:
		sentiment = schema.SentimentPositive
	case n.NoveltyScore >= 6:
		sentiment = schema.SentimentNeutral
	}
	return schema.SentimentResult{
		Sentiment:     sentiment,
		Confidence:    0.5,
		Reasoning:     "Fallback heuristic based on novelty score",
		MomentumScore: n.NoveltyScore,
	}
}

// formatSignals renders the bundle as the plain text context sent to the model.
func formatSignals(bundle schema.SignalBundle) string {
	var b strings.Builder

	b.WriteString("## GitHub Activity\n")
	for _, s := range head(bundle.BySource(schema.GitHubSource), 10) {
		lang := s.Language
		if lang == "" {
			lang = "Unknown"
		}
		desc := s.Description
		if desc == "" {
			desc = "No description"
		}
		fmt.Fprintf(&b, "- %s: %.0f stars, %s | %s\n", s.Name, s.Score, lang, contract.TruncateText(desc, 80))
	}

	b.WriteString("\n## On-chain Metrics\n")
	for _, s := range bundle.BySource(schema.OnchainSource) {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", s.Name, s.Metadata["value"], s.Metadata["change"])
	}

	b.WriteString("\n## Market Intelligence\n")
	for _, s := range head(bundle.BySource(schema.IntelSource), 5) {
		fmt.Fprintf(&b, "- %s: %s\n", s.Metadata["source"], s.Description)
	}
	keywords := 0
	for _, s := range bundle.BySource(schema.RedditSource) {
		if s.Metadata["kind"] != "keyword" || keywords == 5 {
			continue
		}
		fmt.Fprintf(&b, "- Reddit: %s mentioned %.0f times in discussions\n", s.Name, s.Score)
		keywords++
	}

	return b.String()
}

// formatNarrative renders one narrative for idea and sentiment prompts.
func formatNarrative(n schema.Narrative) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Narrative: %s\n\nExplanation: %s\n", n.Name, n.Explanation)
	writeList(&b, "GitHub Evidence", n.Evidence.GitHub)
	writeList(&b, "On-chain Evidence", n.Evidence.Onchain)
	writeList(&b, "Market Intelligence", n.Evidence.MarketIntel)
	fmt.Fprintf(&b, "\nNovelty Score: %.1f/10\n", n.NoveltyScore)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
