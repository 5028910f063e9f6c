// Package types provides type definitions for structured data used throughout the job-finder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// ExperienceLevel is the coarse seniority bucket extracted from a query
type ExperienceLevel string

// Experience levels recognized by the criteria extractor
const (
	ExperienceEntry       ExperienceLevel = "entry"
	ExperienceMid         ExperienceLevel = "mid"
	ExperienceSenior      ExperienceLevel = "senior"
	ExperienceUnspecified ExperienceLevel = "unspecified"
)

// ParseExperienceLevel maps free text onto a known level, defaulting to unspecified.
func ParseExperienceLevel(s string) ExperienceLevel {
	switch ExperienceLevel(strings.ToLower(strings.TrimSpace(s))) {
	case ExperienceEntry:
		return ExperienceEntry
	case ExperienceMid:
		return ExperienceMid
	case ExperienceSenior:
		return ExperienceSenior
	default:
		return ExperienceUnspecified
	}
}

// SearchCriteria is the structured form of a user's job request
type SearchCriteria struct {
	JobTitle           string          `json:"job_title"`
	Keywords           []string        `json:"keywords"`
	ExperienceLevel    ExperienceLevel `json:"experience_level"`
	Location           string          `json:"location"`
	AdditionalCriteria string          `json:"additional_criteria"`
}

// KeywordString joins the keywords into a single search string, falling back to the title.
func (c SearchCriteria) KeywordString() string {
	if len(c.Keywords) == 0 {
		return c.JobTitle
	}
	return strings.Join(c.Keywords, " ")
}

// Experience filter codes understood by the job board
const (
	ExperienceCodeInternship = 1
	ExperienceCodeEntry      = 2
	ExperienceCodeAssociate  = 3
	ExperienceCodeMidSenior  = 4
	ExperienceCodeDirector   = 5
	ExperienceCodeExecutive  = 6
)

// Work type filter codes understood by the job board
const (
	WorkTypeOnSite = 1
	WorkTypeRemote = 2
	WorkTypeHybrid = 3
)

// SearchParameters is the backend-facing form of a search.
// A nil code means "no filter".
type SearchParameters struct {
	Keywords       string `json:"keywords"`
	Location       string `json:"location"`
	ExperienceCode *int   `json:"experience_code,omitempty"`
	WorkTypeCode   *int   `json:"work_type_code,omitempty"`
}

// Sanitize drops any code outside its enumeration.
func (p SearchParameters) Sanitize() SearchParameters {
	if p.ExperienceCode != nil && (*p.ExperienceCode < ExperienceCodeInternship || *p.ExperienceCode > ExperienceCodeExecutive) {
		p.ExperienceCode = nil
	}
	if p.WorkTypeCode != nil && (*p.WorkTypeCode < WorkTypeOnSite || *p.WorkTypeCode > WorkTypeHybrid) {
		p.WorkTypeCode = nil
	}
	p.Keywords = strings.TrimSpace(p.Keywords)
	p.Location = strings.TrimSpace(p.Location)
	return p
}

// DefaultPostedDate is shown when a listing carries no timestamp
const DefaultPostedDate = "Recently posted"

// JobRecord is a single listing as produced by a source adapter
type JobRecord struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PostedDate  string `json:"posted_date"`
}

// WithDefaults fills display defaults for missing fields
func (j JobRecord) WithDefaults() JobRecord {
	j.Title = strings.TrimSpace(j.Title)
	j.Company = strings.TrimSpace(j.Company)
	j.Location = strings.TrimSpace(j.Location)
	j.Description = strings.TrimSpace(j.Description)
	j.URL = strings.TrimSpace(j.URL)
	j.PostedDate = strings.TrimSpace(j.PostedDate)
	if j.Company == "" {
		j.Company = "Unknown Company"
	}
	if j.Location == "" {
		j.Location = "Not specified"
	}
	if j.PostedDate == "" {
		j.PostedDate = DefaultPostedDate
	}
	return j
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
