package llm

const narrativePrompt = `You are the lead analyst for SignalVane. Extract 2-3 high-fidelity narratives from the signal snapshot below.

A narrative must:
1. Be backed by both hard data (GitHub or on-chain) and intelligence (reports or social discussion).
2. Be specific to the ecosystem rather than a generic crypto trend.
3. Come with a clear explanation of why it is emerging now.

Respond with a JSON array of objects:
[
  {
    "narrative_name": "Title",
    "explanation": "Why this matters",
    "evidence": {
      "github": ["repo links or stats"],
      "onchain": ["specific metrics"],
      "market_intel": ["quotes or report summaries"]
    },
    "novelty_score": 1-10
  }
]`

const ideaPrompt = `You are the ideator for SignalVane. Based on the narrative below, propose 3-5 concrete build ideas.

Each idea needs a catchy title, a one or two sentence description, the specific tools it builds on, who it is for, and why it is feasible now.

Respond with a JSON object:
{
  "narrative_name": "...",
  "ideas": [
    {
      "title": "...",
      "description": "...",
      "tech_stack": ["..."],
      "target_user": "...",
      "feasibility": "..."
    }
  ]
}`

const sentimentPrompt = `Rate the sentiment and momentum of this ecosystem narrative using the strength of its evidence, its potential impact, its momentum indicators and its novelty.

Respond with a JSON object:
{
  "sentiment": "positive|neutral|negative",
  "confidence": 0.0-1.0,
  "reasoning": "one or two sentences",
  "momentum_score": 0-10
}`

const jsonOnly = "Respond ONLY with valid JSON. No markdown, no explanations."
