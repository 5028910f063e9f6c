// Package params maps search criteria onto the job board's parameter vocabulary.
package params

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/schemas"
	"github.com/jonathan/job-finder/internal/types"
)

// ExperienceCodes maps experience vocabulary onto the board's f_E codes
var ExperienceCodes = map[string]int{
	"internship": types.ExperienceCodeInternship,
	"entry":      types.ExperienceCodeEntry,
	"associate":  types.ExperienceCodeAssociate,
	"mid":        types.ExperienceCodeAssociate,
	"senior":     types.ExperienceCodeMidSenior,
	"director":   types.ExperienceCodeDirector,
	"executive":  types.ExperienceCodeExecutive,
}

// WorkTypeCodes maps work arrangements onto the board's f_WT codes
var WorkTypeCodes = map[string]int{
	"on-site": types.WorkTypeOnSite,
	"onsite":  types.WorkTypeOnSite,
	"remote":  types.WorkTypeRemote,
	"hybrid":  types.WorkTypeHybrid,
}

// ExperienceCode looks up level in ExperienceCodes
func ExperienceCode(level string) *int {
	if code, ok := ExperienceCodes[strings.ToLower(strings.TrimSpace(level))]; ok {
		return types.IntPtr(code)
	}
	return nil
}

// WorkTypeCode looks up a work arrangement in WorkTypeCodes
func WorkTypeCode(workType string) *int {
	if code, ok := WorkTypeCodes[strings.ToLower(strings.TrimSpace(workType))]; ok {
		return types.IntPtr(code)
	}
	return nil
}

// Normalizer produces SearchParameters. Implementations never fail.
type Normalizer interface {
	Normalize(ctx context.Context, criteria types.SearchCriteria, rawQuery string) types.SearchParameters
}

// Default is the parameter set used when normalization output cannot be parsed. Keywords is rawQuery verbatim.
func Default(rawQuery string) types.SearchParameters {
	return types.SearchParameters{Keywords: rawQuery}
}

// TableNormalizer maps criteria deterministically through the fixed tables
type TableNormalizer struct{}

// Normalize implements Normalizer
func (TableNormalizer) Normalize(_ context.Context, criteria types.SearchCriteria, rawQuery string) types.SearchParameters {
	return FromCriteria(criteria, rawQuery)
}

// FromCriteria builds parameters from criteria, detecting a work arrangement in the text
func FromCriteria(criteria types.SearchCriteria, rawQuery string) types.SearchParameters {
	keywords := criteria.KeywordString()
	if strings.TrimSpace(keywords) == "" {
		keywords = rawQuery
	}

	p := types.SearchParameters{
		Keywords:       keywords,
		Location:       criteria.Location,
		ExperienceCode: ExperienceCode(string(criteria.ExperienceLevel)),
		WorkTypeCode:   detectWorkType(rawQuery + " " + criteria.Location + " " + criteria.AdditionalCriteria),
	}
	if p.WorkTypeCode != nil && *p.WorkTypeCode == types.WorkTypeRemote && strings.EqualFold(strings.TrimSpace(p.Location), "remote") {
		p.Location = ""
	}
	return p.Sanitize()
}

func detectWorkType(text string) *int {
	lower := strings.ToLower(text)
	for _, key := range []string{"hybrid", "remote", "on-site", "onsite"} {
		if strings.Contains(lower, key) {
			return WorkTypeCode(key)
		}
	}
	return nil
}

// ModelNormalizer asks the model for the parameter JSON and falls back to Default
type ModelNormalizer struct {
	client llm.Client
	logger zerolog.Logger
	schema string
}

// NewModelNormalizer creates a normalizer backed by client
func NewModelNormalizer(client llm.Client, logger zerolog.Logger) *ModelNormalizer {
	return &ModelNormalizer{
		client: client,
		logger: logger.With().Str("stage", "params").Logger(),
		schema: schemas.MustGet(schemas.Parameters),
	}
}

// Normalize implements Normalizer. Generation and parse failures both yield Default(rawQuery).
func (n *ModelNormalizer) Normalize(ctx context.Context, criteria types.SearchCriteria, rawQuery string) types.SearchParameters {
	input := rawQuery
	if criteria.JobTitle != "" {
		input = describe(criteria, rawQuery)
	}

	text, err := n.client.Generate(ctx, llm.Request{
		Messages:        []llm.Message{llm.UserMessage(llm.BuildExtractionPrompt(llm.SearchParametersSchema(), input))},
		Temperature:     0.1,
		MaxOutputTokens: 200,
		Tier:            llm.TierLite,
		JSON:            true,
	})
	if err != nil {
		n.logger.Warn().Err(err).Str("kind", string(llm.KindOf(err))).Msg("parameter generation failed, using defaults")
		return Default(rawQuery)
	}

	p, err := llm.DecodeJSON[types.SearchParameters](text, n.schema)
	if err != nil {
		n.logger.Warn().Err(err).Msg("parameter output unparseable, using defaults")
		return Default(rawQuery)
	}

	p = p.Sanitize()
	if p.Keywords == "" {
		p.Keywords = strings.TrimSpace(rawQuery)
	}
	return p
}

func describe(c types.SearchCriteria, rawQuery string) string {
	var sb strings.Builder
	sb.WriteString("Original request: " + rawQuery + "\n")
	sb.WriteString("Job title: " + c.JobTitle + "\n")
	if len(c.Keywords) > 0 {
		sb.WriteString("Keywords: " + strings.Join(c.Keywords, ", ") + "\n")
	}
	sb.WriteString("Experience level: " + string(c.ExperienceLevel) + "\n")
	if c.Location != "" {
		sb.WriteString("Location: " + c.Location + "\n")
	}
	if c.AdditionalCriteria != "" {
		sb.WriteString("Other: " + c.AdditionalCriteria + "\n")
	}
	return sb.String()
}
