// Package profile acknowledges a user-supplied profile reference.
// The reference is never fetched; it only shapes the prompts of later stages.
package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/prompts"
	"github.com/jonathan/job-finder/internal/schemas"
	"github.com/jonathan/job-finder/internal/types"
)

// NoProfileMessage is the acknowledgment for an empty reference
const NoProfileMessage = "No profile provided. Searching on the query alone."

// Acknowledger turns a profile reference into a ProfileContext
type Acknowledger interface {
	Acknowledge(ctx context.Context, profileRef string) (types.ProfileContext, error)
}

// None returns the context used when no profile was supplied
func None() types.ProfileContext {
	return types.ProfileContext{ProfileProvided: false, Message: NoProfileMessage}
}

// StaticAcknowledger acknowledges references without a model call
type StaticAcknowledger struct{}

// Acknowledge implements Acknowledger
func (StaticAcknowledger) Acknowledge(_ context.Context, profileRef string) (types.ProfileContext, error) {
	profileRef = strings.TrimSpace(profileRef)
	if profileRef == "" {
		return None(), nil
	}
	return types.ProfileContext{
		ProfileProvided: true,
		Message:         "Profile received: " + profileRef,
		Guidance:        "Prefer roles that match the experience described in the profile.",
	}, nil
}

// ModelAcknowledger asks the model for a short acknowledgment
type ModelAcknowledger struct {
	client llm.Client
	logger zerolog.Logger
	schema string
}

// NewModelAcknowledger creates an acknowledger backed by client
func NewModelAcknowledger(client llm.Client, logger zerolog.Logger) *ModelAcknowledger {
	return &ModelAcknowledger{
		client: client,
		logger: logger.With().Str("stage", "profile").Logger(),
		schema: schemas.MustGet(schemas.Profile),
	}
}

// Acknowledge implements Acknowledger. Errors are returned for the caller to absorb.
func (a *ModelAcknowledger) Acknowledge(ctx context.Context, profileRef string) (types.ProfileContext, error) {
	profileRef = strings.TrimSpace(profileRef)
	if profileRef == "" {
		return None(), nil
	}

	text, err := a.client.Generate(ctx, llm.Request{
		Messages: []llm.Message{llm.UserMessage(prompts.Render("search.json", "acknowledge-profile", map[string]string{
			"ProfileRef": profileRef,
		}))},
		Temperature:     0.3,
		MaxOutputTokens: 200,
		Tier:            llm.TierLite,
		JSON:            true,
	})
	if err != nil {
		return types.ProfileContext{}, fmt.Errorf("profile acknowledgment failed: %w", err)
	}

	pc, err := llm.DecodeJSON[types.ProfileContext](text, a.schema)
	if err != nil {
		return types.ProfileContext{}, err
	}
	pc.ProfileProvided = true
	pc.Message = strings.TrimSpace(pc.Message)
	pc.Guidance = strings.TrimSpace(pc.Guidance)
	a.logger.Debug().Str("message", pc.Message).Msg("profile acknowledged")
	return pc, nil
}
