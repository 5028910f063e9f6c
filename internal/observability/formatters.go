// Package observability provides structured logging and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-finder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintIntent outputs the routing decision for a message.
func (p *Printer) PrintIntent(decision types.IntentDecision) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job search: %t\n", decision.IsJobSearch))
	sb.WriteString(fmt.Sprintf("Confidence: %.2f\n", decision.Confidence))
	if decision.Source != "" {
		sb.WriteString(fmt.Sprintf("Source:     %s\n", decision.Source))
	}
	if decision.Reasoning != "" {
		sb.WriteString(fmt.Sprintf("Reasoning:  %s", decision.Reasoning))
	}
	p.printBox("INTENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCriteria outputs a human-readable summary of the extracted criteria.
func (p *Printer) PrintCriteria(criteria *types.SearchCriteria) {
	if criteria == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:      %s\n", criteria.JobTitle))
	sb.WriteString(fmt.Sprintf("Experience: %s\n", criteria.ExperienceLevel))
	location := criteria.Location
	if location == "" {
		location = "(any)"
	}
	sb.WriteString(fmt.Sprintf("Location:   %s\n", location))

	if len(criteria.Keywords) > 0 {
		sb.WriteString("Keywords:\n")
		count := min(len(criteria.Keywords), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", criteria.Keywords[i]))
		}
		if len(criteria.Keywords) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(criteria.Keywords)-maxItemsToShow))
		}
	}
	if criteria.AdditionalCriteria != "" {
		sb.WriteString(fmt.Sprintf("Other:      %s\n", criteria.AdditionalCriteria))
	}

	p.printBox("SEARCH CRITERIA", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintParameters outputs the normalized job board parameters.
func (p *Printer) PrintParameters(params *types.SearchParameters) {
	if params == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Keywords:   %s\n", params.Keywords))
	sb.WriteString(fmt.Sprintf("Location:   %s\n", orDash(params.Location)))
	sb.WriteString(fmt.Sprintf("Experience: %s\n", codeString(params.ExperienceCode)))
	sb.WriteString(fmt.Sprintf("Work type:  %s", codeString(params.WorkTypeCode)))

	p.printBox("SEARCH PARAMETERS", sb.String())
}

// PrintJobs outputs the first few job titles returned by a source.
func (p *Printer) PrintJobs(source string, jobs []types.JobRecord) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source: %s, %d listing(s)\n", source, len(jobs)))

	count := min(len(jobs), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("#%d  %s @ %s\n", i+1, jobs[i].Title, jobs[i].Company))
	}
	if len(jobs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(jobs)-maxItemsToShow))
	}

	p.printBox("LISTINGS", strings.TrimSuffix(sb.String(), "\n"))
}

func codeString(code *int) string {
	if code == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *code)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
