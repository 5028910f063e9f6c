// Package criteria extracts structured search criteria from a free-text job request.
package criteria

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/schemas"
	"github.com/jonathan/job-finder/internal/types"
)

// Extractor turns a message into SearchCriteria
type Extractor interface {
	Extract(ctx context.Context, message string, profile *types.ProfileContext) (types.SearchCriteria, error)
}

// rawCriteria mirrors the model's JSON, where optional fields may be null
type rawCriteria struct {
	JobTitle           string   `json:"job_title"`
	Keywords           []string `json:"keywords"`
	ExperienceLevel    *string  `json:"experience_level"`
	Location           *string  `json:"location"`
	AdditionalCriteria *string  `json:"additional_criteria"`
}

// ModelExtractor asks the model for the SearchCriteria JSON shape
type ModelExtractor struct {
	client llm.Client
	logger zerolog.Logger
	schema string
}

// NewModelExtractor creates an extractor backed by client
func NewModelExtractor(client llm.Client, logger zerolog.Logger) *ModelExtractor {
	return &ModelExtractor{
		client: client,
		logger: logger.With().Str("stage", "criteria").Logger(),
		schema: schemas.MustGet(schemas.Criteria),
	}
}

// Extract returns an error when generation or decoding fails; callers substitute Fallback.
func (e *ModelExtractor) Extract(ctx context.Context, message string, profile *types.ProfileContext) (types.SearchCriteria, error) {
	input := message
	if extra := profile.Prompt(); extra != "" {
		input = message + "\n\n" + extra
	}

	text, err := e.client.Generate(ctx, llm.Request{
		Messages:        []llm.Message{llm.UserMessage(llm.BuildExtractionPrompt(llm.SearchCriteriaSchema(), input))},
		Temperature:     0.1,
		MaxOutputTokens: 400,
		Tier:            llm.TierStandard,
		JSON:            true,
	})
	if err != nil {
		return types.SearchCriteria{}, fmt.Errorf("criteria generation failed: %w", err)
	}

	raw, err := llm.DecodeJSON[rawCriteria](text, e.schema)
	if err != nil {
		return types.SearchCriteria{}, err
	}

	c := normalize(raw)
	if c.JobTitle == "" && len(c.Keywords) == 0 {
		return types.SearchCriteria{}, &llm.ParseFailure{Raw: text, Cause: fmt.Errorf("no title or keywords extracted")}
	}
	e.logger.Debug().Str("job_title", c.JobTitle).Strs("keywords", c.Keywords).Msg("criteria extracted")
	return c, nil
}

func normalize(raw rawCriteria) types.SearchCriteria {
	c := types.SearchCriteria{
		JobTitle:           strings.TrimSpace(raw.JobTitle),
		Keywords:           DedupeKeywords(raw.Keywords),
		ExperienceLevel:    types.ParseExperienceLevel(deref(raw.ExperienceLevel)),
		Location:           strings.TrimSpace(deref(raw.Location)),
		AdditionalCriteria: strings.TrimSpace(deref(raw.AdditionalCriteria)),
	}
	if len(c.Keywords) == 0 && c.JobTitle != "" {
		c.Keywords = []string{c.JobTitle}
	}
	if c.JobTitle == "" && len(c.Keywords) > 0 {
		c.JobTitle = c.Keywords[0]
	}
	return c
}

// DedupeKeywords trims keywords and removes case-insensitive duplicates, keeping first occurrences
func DedupeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

// Fallback uses the raw message as both title and sole keyword
func Fallback(message string) types.SearchCriteria {
	message = strings.TrimSpace(message)
	return types.SearchCriteria{
		JobTitle:        message,
		Keywords:        []string{message},
		ExperienceLevel: types.ExperienceUnspecified,
	}
}

// PassthroughExtractor always returns Fallback; used when no model is configured
type PassthroughExtractor struct{}

// Extract returns Fallback(message)
func (PassthroughExtractor) Extract(_ context.Context, message string, _ *types.ProfileContext) (types.SearchCriteria, error) {
	return Fallback(message), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
