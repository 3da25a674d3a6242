package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/signalvane/signalvane/schema"
)

// stripFences removes a surrounding markdown code fence, with or without a language tag.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// parseNarratives accepts a JSON array, or an object wrapping it under "narratives".
func parseNarratives(text string) ([]schema.Narrative, error) {
	body := stripFences(text)

	var narratives []schema.Narrative
	if err := json.Unmarshal([]byte(body), &narratives); err == nil {
		return narratives, nil
	}

	var wrapped struct {
		Narratives []schema.Narrative `json:"narratives"`
	}
	if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
		return nil, fmt.Errorf("invalid narratives response: %w", err)
	}
	if wrapped.Narratives == nil {
		return nil, errors.New("invalid narratives response: no narratives array")
	}
	return wrapped.Narratives, nil
}

type rawIdea struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	TechStack   json.RawMessage `json:"tech_stack"`
	TargetUser  string          `json:"target_user"`
	Feasibility string          `json:"feasibility"`
}

// parseIdeas decodes an idea set. tech_stack may be a list or a comma separated string.
func parseIdeas(text string) (schema.IdeaSet, error) {
	var raw struct {
		NarrativeName string    `json:"narrative_name"`
		Ideas         []rawIdea `json:"ideas"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return schema.IdeaSet{}, fmt.Errorf("invalid ideas response: %w", err)
	}

	set := schema.IdeaSet{NarrativeName: raw.NarrativeName, Ideas: make([]schema.Idea, 0, len(raw.Ideas))}
	for _, r := range raw.Ideas {
		set.Ideas = append(set.Ideas, schema.Idea{
			Title:       r.Title,
			Description: r.Description,
			TechStack:   parseTechStack(r.TechStack),
			TargetUser:  r.TargetUser,
			Feasibility: r.Feasibility,
		})
	}
	return set, nil
}

func parseTechStack(raw json.RawMessage) []string {
	stack := []string{}
	if len(raw) == 0 {
		return stack
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				stack = append(stack, item)
			}
		}
		return stack
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		for item := range strings.SplitSeq(joined, ",") {
			if item = strings.TrimSpace(item); item != "" {
				stack = append(stack, item)
			}
		}
	}
	return stack
}

// parseSentiment decodes and validates a sentiment rating.
func parseSentiment(text string) (schema.SentimentResult, error) {
	var result schema.SentimentResult
	if err := json.Unmarshal([]byte(stripFences(text)), &result); err != nil {
		return schema.SentimentResult{}, fmt.Errorf("invalid sentiment response: %w", err)
	}
	switch result.Sentiment {
	case schema.SentimentPositive, schema.SentimentNeutral, schema.SentimentNegative:
	default:
		return schema.SentimentResult{}, fmt.Errorf("invalid sentiment: %q", result.Sentiment)
	}
	result.Confidence = min(max(result.Confidence, 0), 1)
	result.MomentumScore = min(max(result.MomentumScore, 0), 10)
	return result, nil
}
