package intent

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/prompts"
	"github.com/jonathan/job-finder/internal/types"
)

// Responder produces a conversational reply. Implementations never fail.
type Responder interface {
	Respond(ctx context.Context, message string, history []types.ConversationTurn) string
}

// FallbackReply is returned whenever a conversational reply cannot be generated
func FallbackReply() string {
	return prompts.MustGet("intent.json", "conversation-fallback")
}

// CannedResponder always returns the fallback reply
type CannedResponder struct{}

// Respond returns FallbackReply
func (CannedResponder) Respond(context.Context, string, []types.ConversationTurn) string {
	return FallbackReply()
}

// ModelResponder replies using the last few turns of history
type ModelResponder struct {
	client llm.Client
	logger zerolog.Logger
	system string
}

// NewModelResponder creates a responder backed by client
func NewModelResponder(client llm.Client, logger zerolog.Logger) *ModelResponder {
	return &ModelResponder{
		client: client,
		logger: logger.With().Str("stage", "conversation").Logger(),
		system: prompts.MustGet("intent.json", "conversation"),
	}
}

// Respond generates a reply, returning FallbackReply on any failure
func (r *ModelResponder) Respond(ctx context.Context, message string, history []types.ConversationTurn) string {
	window := types.WindowHistory(history)
	messages := make([]llm.Message, 0, len(window)+1)
	for _, turn := range window {
		role := llm.RoleUser
		if turn.Role == string(llm.RoleAssistant) {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, llm.UserMessage(message))

	text, err := r.client.Generate(ctx, llm.Request{
		System:          r.system,
		Messages:        messages,
		Temperature:     0.7,
		MaxOutputTokens: 300,
		Tier:            llm.TierLite,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		r.logger.Warn().Err(err).Msg("conversational reply failed, using canned reply")
		return FallbackReply()
	}
	return strings.TrimSpace(text)
}

// Router combines a Classifier and a Responder into the routing contract
type Router struct {
	Classifier Classifier
	Responder  Responder
}

// NewRouter builds a model-backed router, or a keyword router when client is nil
func NewRouter(client llm.Client, logger zerolog.Logger) *Router {
	if client == nil {
		return &Router{
			Classifier: KeywordClassifier{Source: types.SourceKeyword},
			Responder:  CannedResponder{},
		}
	}
	return &Router{
		Classifier: NewModelClassifier(client, logger),
		Responder:  NewModelResponder(client, logger),
	}
}

// Decide classifies message without producing a reply
func (r *Router) Decide(ctx context.Context, message string) types.IntentDecision {
	return r.Classifier.Classify(ctx, message)
}

// Route classifies message and, for conversation, produces the reply.
// Response is nil exactly when ShouldSearch is true.
func (r *Router) Route(ctx context.Context, message string, history []types.ConversationTurn) types.RouteResult {
	decision := r.Decide(ctx, message)
	return r.Complete(ctx, decision, message, history)
}

// Complete turns an existing decision into a RouteResult
func (r *Router) Complete(ctx context.Context, decision types.IntentDecision, message string, history []types.ConversationTurn) types.RouteResult {
	if decision.ShouldSearch() {
		return types.RouteResult{
			Type:         types.RouteJobSearch,
			ShouldSearch: true,
			Reasoning:    decision.Reasoning,
		}
	}

	reply := r.Responder.Respond(ctx, message, history)
	return types.RouteResult{
		Type:         types.RouteConversation,
		Response:     &reply,
		ShouldSearch: false,
		Reasoning:    decision.Reasoning,
	}
}
