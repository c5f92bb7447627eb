// Package claude implements risk.Classifier on top of the Anthropic API,
// asking the model for per-label toxicity probabilities as constrained JSON.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linnemanlabs/sentinel/internal/risk"
)

const responseTokens = 256

// labels is the fixed label set and the order predictions are returned in.
var labels = []string{"toxic", "severe_toxic", "obscene", "threat", "insult", "identity_hate"}

const systemPrompt = `You are a toxicity classifier. Given a piece of social media text, estimate the probability of each label:
toxic, severe_toxic, obscene, threat, insult, identity_hate.

Respond with ONLY a JSON object mapping each label to a probability between 0.0 and 1.0, for example:
{"toxic": 0.91, "severe_toxic": 0.12, "obscene": 0.40, "threat": 0.03, "insult": 0.85, "identity_hate": 0.02}

No prose, no code fences.`

// Classifier scores text via the Anthropic messages API.
type Classifier struct {
	client anthropic.Client
	model  string
}

// New creates a Classifier with the given API key and model name. Extra
// request options (base URL, HTTP client) are mainly for tests.
func New(apiKey, model string, opts ...option.RequestOption) *Classifier {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Classifier{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Classify implements risk.Classifier.
func (c *Classifier) Classify(ctx context.Context, text string) ([]risk.Prediction, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: responseTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude: classify: %w", err)
	}

	var raw string
	for _, block := range msg.Content {
		if block.Type == "text" {
			raw = block.Text
		}
	}
	return parsePredictions(raw)
}

// parsePredictions decodes the model's JSON label map into predictions in
// the fixed label order. Unknown labels are dropped, missing labels skipped.
func parsePredictions(raw string) ([]risk.Prediction, error) {
	raw = stripFences(raw)
	if raw == "" {
		return nil, fmt.Errorf("claude: empty classification response")
	}

	scores := make(map[string]float64)
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return nil, fmt.Errorf("claude: parse classification %q: %w", raw, err)
	}

	out := make([]risk.Prediction, 0, len(labels))
	for _, label := range labels {
		p, ok := scores[label]
		if !ok {
			continue
		}
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		out = append(out, risk.Prediction{Label: label, Score: p})
	}
	return out, nil
}

// stripFences tolerates a model that wraps the JSON in markdown fences
// despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
