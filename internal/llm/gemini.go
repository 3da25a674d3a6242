package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
	"google.golang.org/genai"
)

// generator produces a text completion for a prompt.
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

// genaiGenerator calls the Gemini API.
type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

// GeminiSynthesizer asks a Gemini model for narratives, ideas and sentiment.
type GeminiSynthesizer struct {
	gen   generator
	model string
}

// NewGeminiSynthesizer creates a synthesizer backed by the Gemini API.
func NewGeminiSynthesizer(ctx context.Context, apiKey, model string) (*GeminiSynthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = contract.DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiSynthesizer{gen: &genaiGenerator{client: client, model: model}, model: model}, nil
}

// Name returns the synthesizer name.
func (s *GeminiSynthesizer) Name() string {
	return fmt.Sprintf("gemini:%s", s.model)
}

// Narratives extracts narratives from the bundle.
func (s *GeminiSynthesizer) Narratives(ctx context.Context, bundle schema.SignalBundle) ([]schema.Narrative, error) {
	prompt := fmt.Sprintf("%s\n\nHere is the signal data to analyze:\n\n%s\n%s", narrativePrompt, formatSignals(bundle), jsonOnly)
	text, err := s.gen.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseNarratives(text)
}

// Ideas generates build ideas for one narrative.
func (s *GeminiSynthesizer) Ideas(ctx context.Context, narrative schema.Narrative) (schema.IdeaSet, error) {
	prompt := fmt.Sprintf("%s\n\n%s\n%s", ideaPrompt, formatNarrative(narrative), jsonOnly)
	text, err := s.gen.generate(ctx, prompt)
	if err != nil {
		return schema.IdeaSet{}, err
	}
	set, err := parseIdeas(text)
	if err != nil {
		return schema.IdeaSet{}, err
	}
	if set.NarrativeName == "" {
		set.NarrativeName = narrative.Name
	}
	return set, nil
}

// Sentiment rates one narrative.
func (s *GeminiSynthesizer) Sentiment(ctx context.Context, narrative schema.Narrative) (schema.SentimentResult, error) {
	prompt := fmt.Sprintf("%s\n\n%s\n%s", sentimentPrompt, formatNarrative(narrative), jsonOnly)
	text, err := s.gen.generate(ctx, prompt)
	if err != nil {
		return schema.SentimentResult{}, err
	}
	return parseSentiment(text)
}
