// Package intent decides whether a message is a job search or general conversation.
package intent

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/prompts"
	"github.com/jonathan/job-finder/internal/schemas"
	"github.com/jonathan/job-finder/internal/types"
)

// Keywords is the fixed vocabulary used by the deterministic fallback
var Keywords = []string{
	"find", "search", "looking", "job", "position", "role",
	"career", "opportunity", "hiring", "vacancy", "work", "employment",
}

// Fallback confidences
const (
	confidenceParseHit = 0.7
	confidenceErrorHit = 0.5
	confidenceMiss     = 0.3
)

// Classifier turns a message into an IntentDecision. Implementations never fail.
type Classifier interface {
	Classify(ctx context.Context, message string) types.IntentDecision
}

// KeywordClassifier is the deterministic classifier used when no model is available.
type KeywordClassifier struct {
	// HitConfidence is reported when a keyword matches
	HitConfidence float64
	Source        types.DecisionSource
}

// Classify matches the message against Keywords
func (k KeywordClassifier) Classify(_ context.Context, message string) types.IntentDecision {
	hit := k.HitConfidence
	if hit == 0 {
		hit = confidenceParseHit
	}
	return keywordDecision(message, hit, k.Source)
}

// ContainsKeyword reports whether the lowercased message contains any fallback keyword
func ContainsKeyword(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, kw := range Keywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

func keywordDecision(message string, hitConfidence float64, source types.DecisionSource) types.IntentDecision {
	if kw, ok := ContainsKeyword(message); ok {
		return types.IntentDecision{
			IsJobSearch: true,
			Confidence:  hitConfidence,
			Reasoning:   "keyword match: " + kw,
			Source:      source,
		}
	}
	return types.IntentDecision{
		IsJobSearch: false,
		Confidence:  confidenceMiss,
		Reasoning:   "no job search keywords found",
		Source:      source,
	}
}

// ModelClassifier asks the model for a JSON decision and falls back to keywords
type ModelClassifier struct {
	client llm.Client
	logger zerolog.Logger
	system string
	schema string
}

// NewModelClassifier creates a classifier backed by client
func NewModelClassifier(client llm.Client, logger zerolog.Logger) *ModelClassifier {
	return &ModelClassifier{
		client: client,
		logger: logger.With().Str("stage", "intent").Logger(),
		system: prompts.MustGet("intent.json", "classify-intent"),
		schema: schemas.MustGet(schemas.Intent),
	}
}

// Classify never returns an error: parse failures and generation failures degrade to keyword matching
func (c *ModelClassifier) Classify(ctx context.Context, message string) types.IntentDecision {
	text, err := c.client.Generate(ctx, llm.Request{
		System:          c.system,
		Messages:        []llm.Message{llm.UserMessage(message)},
		Temperature:     0.3,
		MaxOutputTokens: 200,
		Tier:            llm.TierLite,
		JSON:            true,
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("kind", string(llm.KindOf(err))).Msg("intent generation failed, using keyword fallback")
		return keywordDecision(message, confidenceErrorHit, types.SourceKeywordErrorFallback)
	}

	decision, err := llm.DecodeJSON[types.IntentDecision](text, c.schema)
	if err != nil {
		c.logger.Warn().Err(err).Msg("intent output unparseable, using keyword fallback")
		return keywordDecision(message, confidenceParseHit, types.SourceKeywordParseFallback)
	}

	decision.Source = types.SourceModel
	return decision.Clamp()
}
