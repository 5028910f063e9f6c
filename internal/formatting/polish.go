package formatting

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/prompts"
	"github.com/jonathan/job-finder/internal/types"
)

// Polisher optionally tidies a rendered document. It must return the input when it cannot improve it safely.
type Polisher interface {
	Polish(ctx context.Context, rendered string, jobs []types.JobRecord) string
}

// NopPolisher returns documents unchanged
type NopPolisher struct{}

// Polish implements Polisher
func (NopPolisher) Polish(_ context.Context, rendered string, _ []types.JobRecord) string {
	return rendered
}

var sectionHeading = regexp.MustCompile(`(?m)^###\s+(\d+)\.\s+(.+?)\s*$`)

// ModelPolisher runs a cosmetic generation pass and keeps the result only if Verify accepts it
type ModelPolisher struct {
	client llm.Client
	logger zerolog.Logger
	system string
}

// NewModelPolisher creates a polisher backed by client
func NewModelPolisher(client llm.Client, logger zerolog.Logger) *ModelPolisher {
	return &ModelPolisher{
		client: client,
		logger: logger.With().Str("stage", "polish").Logger(),
		system: prompts.MustGet("format.json", "polish-results"),
	}
}

// Polish implements Polisher
func (p *ModelPolisher) Polish(ctx context.Context, rendered string, jobs []types.JobRecord) string {
	if len(jobs) == 0 {
		return rendered
	}

	out, err := p.client.Generate(ctx, llm.Request{
		System:          p.system,
		Messages:        []llm.Message{llm.UserMessage(rendered)},
		Temperature:     0,
		MaxOutputTokens: 4000,
		Tier:            llm.TierLite,
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("polish failed, keeping rendered output")
		return rendered
	}

	out = strings.TrimSpace(out)
	if !Verify(out, jobs) {
		p.logger.Warn().Msg("polished output altered job content, keeping rendered output")
		return rendered
	}
	return out + "\n"
}

// Verify reports whether doc still holds exactly the jobs' sections, numbered 1..k in order
// with unchanged titles, and whether each section carries the same field lines Render wrote for its job.
func Verify(doc string, jobs []types.JobRecord) bool {
	headings := sectionHeading.FindAllStringSubmatchIndex(doc, -1)
	if len(headings) != len(jobs) {
		return false
	}

	for i, h := range headings {
		job := jobs[i].WithDefaults()
		n, err := strconv.Atoi(doc[h[2]:h[3]])
		if err != nil || n != i+1 {
			return false
		}
		if strings.TrimSpace(doc[h[4]:h[5]]) != job.Title {
			return false
		}

		end := len(doc)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		if !sameFields(doc[h[1]:end], fieldLines(job)) {
			return false
		}
	}
	return true
}

// sameFields reports whether the labelled lines of section are exactly want, in order
func sameFields(section string, want []string) bool {
	var got []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if isFieldLine(line) {
			got = append(got, line)
		}
	}
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func isFieldLine(line string) bool {
	if !strings.HasPrefix(line, "- **") {
		return false
	}
	for _, label := range fieldLabels {
		if strings.HasPrefix(line, "- **"+label+":**") {
			return true
		}
	}
	return false
}
