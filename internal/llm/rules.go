package llm

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/signalvane/signalvane/schema"
)

// theme is a narrative the rule synthesizer can recognize.
type theme struct {
	name        string
	explanation string
	keywords    []string
	stack       []string
}

// themes are matched case-insensitively against signal names and descriptions.
var themes = []theme{
	{
		name:        "ZK Compression",
		explanation: "Compressed state keeps proofs on-chain while moving storage off-chain, cutting account costs by orders of magnitude.",
		keywords:    []string{"zk", "compression", "compressed", "light protocol", "zero-knowledge"},
		stack:       []string{"Light Protocol", "Anchor", "Helius"},
	},
	{
		name:        "AI Agents",
		explanation: "Autonomous agents are starting to hold wallets, pay for services and transact on-chain.",
		keywords:    []string{"agent", "agents", "ai", "llm", "eliza"},
		stack:       []string{"Solana Agent Kit", "Anchor", "TypeScript"},
	},
	{
		name:        "SVM Rollups",
		explanation: "The Solana VM is being reused as a pluggable execution layer for app-specific chains and rollups.",
		keywords:    []string{"svm", "rollup", "rollups", "layer 2", "l2", "sonic", "eclipse"},
		stack:       []string{"SVM", "Rust", "Anchor"},
	},
	{
		name:        "DePIN",
		explanation: "Physical infrastructure networks use token incentives to coordinate real-world hardware.",
		keywords:    []string{"depin", "helium", "hivemapper", "render", "sensor"},
		stack:       []string{"Anchor", "Helius", "Rust"},
	},
	{
		name:        "Token Extensions",
		explanation: "Token-2022 features such as transfer hooks and confidential transfers enable compliant and programmable assets.",
		keywords:    []string{"token-2022", "token extensions", "transfer hook", "confidential"},
		stack:       []string{"Token-2022", "Anchor", "TypeScript"},
	},
	{
		name:        "Liquid Restaking",
		explanation: "Staked SOL is being reused to secure additional services, compounding yield for stakers.",
		keywords:    []string{"restaking", "restake", "jito", "liquid staking", "lst"},
		stack:       []string{"Jito", "Anchor", "Rust"},
	},
	{
		name:        "Onchain Payments",
		explanation: "Stablecoin rails and shareable transaction links make payments a first-class consumer use case.",
		keywords:    []string{"payment", "payments", "pay", "stablecoin", "usdc", "blinks", "actions"},
		stack:       []string{"Solana Pay", "Blinks", "TypeScript"},
	},
	{
		name:        "Developer Tooling",
		explanation: "New SDKs, frameworks and CLIs are lowering the barrier for teams shipping programs.",
		keywords:    []string{"sdk", "cli", "anchor", "framework", "tooling", "toolkit"},
		stack:       []string{"Anchor", "Rust", "TypeScript"},
	},
}

// maxRuleNarratives caps how many narratives the rule synthesizer reports.
const maxRuleNarratives = 3

// RuleSynthesizer is a deterministic synthesizer used when no model is configured.
type RuleSynthesizer struct{}

// NewRuleSynthesizer creates a rule-based synthesizer.
func NewRuleSynthesizer() *RuleSynthesizer {
	return &RuleSynthesizer{}
}

// Name returns the synthesizer name.
func (r *RuleSynthesizer) Name() string { return "rules" }

type themeMatch struct {
	theme    theme
	hits     int
	evidence schema.Evidence
	sources  map[schema.SignalSource]struct{}
}

// Narratives scores every theme against the bundle and keeps the strongest.
func (r *RuleSynthesizer) Narratives(_ context.Context, bundle schema.SignalBundle) ([]schema.Narrative, error) {
	var matches []themeMatch
	for _, t := range themes {
		m := themeMatch{theme: t, sources: map[schema.SignalSource]struct{}{}}
		for source, signals := range bundle.Sources {
			for _, s := range signals {
				if !matchesTheme(t, s) {
					continue
				}
				m.hits++
				m.sources[source] = struct{}{}
				addEvidence(&m.evidence, source, s)
			}
		}
		if m.hits > 0 {
			matches = append(matches, m)
		}
	}

	narratives := make([]schema.Narrative, 0, len(matches))
	for _, m := range matches {
		narratives = append(narratives, schema.Narrative{
			Name:         m.theme.name,
			Explanation:  m.theme.explanation,
			Evidence:     normalizeEvidence(m.evidence),
			NoveltyScore: ruleNovelty(m.hits, len(m.sources)),
		})
	}
	slices.SortStableFunc(narratives, func(a, b schema.Narrative) int {
		if c := cmp.Compare(b.NoveltyScore, a.NoveltyScore); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return head(narratives, maxRuleNarratives), nil
}

// Ideas returns template ideas for a narrative.
func (r *RuleSynthesizer) Ideas(_ context.Context, narrative schema.Narrative) (schema.IdeaSet, error) {
	stack := []string{"Anchor", "Helius", "TypeScript"}
	for _, t := range themes {
		if strings.EqualFold(t.name, narrative.Name) {
			stack = t.stack
			break
		}
	}
	name := narrative.Name
	return schema.IdeaSet{
		NarrativeName: name,
		Ideas: []schema.Idea{
			{
				Title:       name + " Pulse",
				Description: fmt.Sprintf("A dashboard tracking adoption metrics and top projects for %s.", name),
				TechStack:   slices.Clone(stack),
				TargetUser:  "Investors and ecosystem analysts",
				Feasibility: "Public RPC and indexer APIs already expose the required data.",
			},
			{
				Title:       name + " Starter Kit",
				Description: fmt.Sprintf("Templates and an SDK that let teams ship a %s integration in a weekend.", name),
				TechStack:   slices.Clone(stack),
				TargetUser:  "Hackathon teams and new protocol developers",
				Feasibility: "Builds on open source programs and documented interfaces.",
			},
			{
				Title:       name + " for Everyone",
				Description: fmt.Sprintf("A consumer app that hides the complexity of %s behind a simple mobile flow.", name),
				TechStack:   append(slices.Clone(stack), "Mobile Wallet Adapter"),
				TargetUser:  "Retail users new to the ecosystem",
				Feasibility: "Wallet adapters and embedded wallets make onboarding straightforward.",
			},
		},
	}, nil
}

// Sentiment applies the novelty heuristic.
func (r *RuleSynthesizer) Sentiment(_ context.Context, narrative schema.Narrative) (schema.SentimentResult, error) {
	return HeuristicSentiment(narrative), nil
}

func matchesTheme(t theme, s schema.Signal) bool {
	text := " " + strings.ToLower(s.Name+" "+s.Description) + " "
	for _, kw := range t.keywords {
		if containsWord(text, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether kw occurs in text delimited by non-alphanumerics.
func containsWord(text, kw string) bool {
	for offset := 0; ; {
		i := strings.Index(text[offset:], kw)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(kw)
		if !isAlnum(text[start-1]) && (end >= len(text) || !isAlnum(text[end])) {
			return true
		}
		offset = start + 1
	}
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

func addEvidence(e *schema.Evidence, source schema.SignalSource, s schema.Signal) {
	switch source {
	case schema.GitHubSource:
		e.GitHub = append(e.GitHub, fmt.Sprintf("%s (%.0f stars)", s.Name, s.Score))
	case schema.OnchainSource:
		e.Onchain = append(e.Onchain, fmt.Sprintf("%s: %s (%s)", s.Name, s.Metadata["value"], s.Metadata["change"]))
	case schema.RedditSource:
		if s.Metadata["kind"] == "keyword" {
			e.MarketIntel = append(e.MarketIntel, fmt.Sprintf("Reddit: %s mentioned %.0f times", s.Name, s.Score))
		} else {
			e.MarketIntel = append(e.MarketIntel, fmt.Sprintf("Reddit: '%s' (%.0f upvotes)", s.Name, s.Score))
		}
	default:
		e.MarketIntel = append(e.MarketIntel, fmt.Sprintf("%s: %s", s.Metadata["source"], s.Description))
	}
}

func normalizeEvidence(e schema.Evidence) schema.Evidence {
	fix := func(items []string) []string {
		if items == nil {
			return []string{}
		}
		return head(items, 5)
	}
	return schema.Evidence{GitHub: fix(e.GitHub), Onchain: fix(e.Onchain), MarketIntel: fix(e.MarketIntel)}
}

// ruleNovelty grows with the number of matching signals and the number of
// distinct sources backing them, capped at 10 and rounded to one decimal.
func ruleNovelty(hits, sources int) float64 {
	score := 3 + math.Log2(float64(1+hits)) + float64(sources)
	return math.Round(min(score, 10)*10) / 10
}
