package sources

import (
	"context"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/prompts"
	"github.com/jonathan/job-finder/internal/schemas"
	"github.com/jonathan/job-finder/internal/types"
)

// Bounds on how many listings the model is asked to invent
const (
	SyntheticMinJobs = 8
	SyntheticMaxJobs = 10
)

var listingURLPattern = regexp.MustCompile(`^https://www\.linkedin\.com/jobs/view/\d+$`)

var experienceLabels = map[int]string{
	types.ExperienceCodeInternship: "Internship",
	types.ExperienceCodeEntry:      "Entry level",
	types.ExperienceCodeAssociate:  "Associate",
	types.ExperienceCodeMidSenior:  "Mid-Senior level",
	types.ExperienceCodeDirector:   "Director",
	types.ExperienceCodeExecutive:  "Executive",
}

var workTypeLabels = map[int]string{
	types.WorkTypeOnSite: "On-site",
	types.WorkTypeRemote: "Remote",
	types.WorkTypeHybrid: "Hybrid",
}

// Synthetic asks the generation model to invent plausible listings
type Synthetic struct {
	client llm.Client
	logger zerolog.Logger
	schema string
}

// NewSynthetic creates the synthetic adapter
func NewSynthetic(client llm.Client, logger zerolog.Logger) *Synthetic {
	return &Synthetic{
		client: client,
		logger: logger.With().Str("adapter", "synthetic").Logger(),
		schema: schemas.MustGet(schemas.Listings),
	}
}

// Name implements Adapter
func (s *Synthetic) Name() string {
	return "synthetic"
}

// Fetch implements Adapter. Generation or parse failure yields an empty list.
func (s *Synthetic) Fetch(ctx context.Context, q Query, maxJobs int) []types.JobRecord {
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}
	hi := min(SyntheticMaxJobs, maxJobs)
	lo := min(SyntheticMinJobs, hi)

	prompt := prompts.Render("search.json", "synthetic-listings", map[string]string{
		"MinJobs":    strconv.Itoa(lo),
		"MaxJobs":    strconv.Itoa(hi),
		"Keywords":   keywordsFor(q),
		"Location":   orAny(q.Params.Location),
		"Experience": labelFor(experienceLabels, q.Params.ExperienceCode),
		"WorkType":   labelFor(workTypeLabels, q.Params.WorkTypeCode),
		"Profile":    q.Profile.Prompt(),
	})

	text, err := s.client.Generate(ctx, llm.Request{
		Messages:        []llm.Message{llm.UserMessage(prompt)},
		Temperature:     0.8,
		MaxOutputTokens: 3000,
		Tier:            llm.TierStandard,
		JSON:            true,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("kind", string(llm.KindOf(err))).Msg("listing generation failed")
		return nil
	}

	raw, err := llm.DecodeJSON[[]types.JobRecord](text, s.schema)
	if err != nil {
		s.logger.Error().Err(err).Msg("generated listings unparseable")
		return nil
	}

	jobs := make([]types.JobRecord, 0, len(raw))
	for _, job := range raw {
		job = job.WithDefaults()
		if job.Title == "" {
			continue
		}
		if !ValidListingURL(job.URL) {
			job.URL = ""
		}
		jobs = append(jobs, job)
	}
	s.logger.Info().Int("jobs", len(jobs)).Msg("synthetic listings generated")
	return Cap(jobs, maxJobs)
}

// ValidListingURL accepts only canonical job view links
func ValidListingURL(u string) bool {
	return listingURLPattern.MatchString(u)
}

func keywordsFor(q Query) string {
	if q.Params.Keywords != "" {
		return q.Params.Keywords
	}
	return q.Criteria.KeywordString()
}

func labelFor(labels map[int]string, code *int) string {
	if code == nil {
		return "Any"
	}
	if label, ok := labels[*code]; ok {
		return label
	}
	return "Any"
}

func orAny(s string) string {
	if s == "" {
		return "Any"
	}
	return s
}
