// Package formatting renders job listings as a markdown document.
package formatting

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-finder/internal/types"
)

// MaxDescriptionRunes is the longest description shown before truncation
const MaxDescriptionRunes = 200

// SectionDelimiter closes every job section
const SectionDelimiter = "\n---\n\n"

// NoResults is the document returned for an empty result list
const NoResults = "## 🎯 No Jobs Found\n\n" +
	"No jobs matching your criteria were found at this time. Try:\n" +
	"- Broadening your search terms\n" +
	"- Adjusting location preferences\n" +
	"- Checking back later"

// Render produces the results document. Sections are numbered from 1 in input order.
func Render(jobs []types.JobRecord) string {
	if len(jobs) == 0 {
		return NoResults
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## 🎯 Found %d Jobs\n\n", len(jobs))

	for i, job := range jobs {
		job = job.WithDefaults()
		fmt.Fprintf(&sb, "### %d. %s\n", i+1, job.Title)
		for _, line := range fieldLines(job) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteString(SectionDelimiter)
	}

	return sb.String()
}

var fieldLabels = []string{"Company", "Location", "Posted", "Description", "Apply"}

// fieldLines returns the bullet lines of one job section, without the heading
func fieldLines(job types.JobRecord) []string {
	lines := []string{
		fieldLine("Company", job.Company),
		fieldLine("Location", job.Location),
		fieldLine("Posted", job.PostedDate),
	}
	if job.Description != "" {
		lines = append(lines, fieldLine("Description", Truncate(job.Description, MaxDescriptionRunes)))
	}
	if job.URL != "" {
		lines = append(lines, fieldLine("Apply", job.URL))
	}
	return lines
}

func fieldLine(label, value string) string {
	return "- **" + label + ":** " + value
}

// Truncate cuts s to limit runes and appends "..." when anything was removed.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
