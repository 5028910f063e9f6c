// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "SearchCriteria")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "integer or null"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Use only information stated in the input; leave fields at their defaults otherwise.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// SearchCriteriaSchema returns the extraction schema for turning a job request into criteria.
func SearchCriteriaSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "SearchCriteria",
		Description: `You are a job search assistant. Extract structured job search criteria from the user's message.
Only extract what the user states explicitly. Do not guess a location or seniority that is not mentioned.`,
		Fields: []SchemaField{
			{
				Name:        "job_title",
				Type:        "\"string\"",
				Description: "The role the user is looking for, e.g. 'Python Developer'",
				Required:    true,
			},
			{
				Name:        "keywords",
				Type:        "[\"string\"]",
				Description: "Skills, technologies and other search terms mentioned",
				Required:    true,
			},
			{
				Name:        "experience_level",
				Type:        "\"entry\" | \"mid\" | \"senior\" | \"unspecified\"",
				Description: "Seniority if stated, otherwise 'unspecified'",
				Required:    true,
			},
			{
				Name:        "location",
				Type:        "\"string\"",
				Description: "City, region or 'Remote'; empty string when not mentioned",
				Required:    false,
			},
			{
				Name:        "additional_criteria",
				Type:        "\"string\"",
				Description: "Anything else relevant, such as company size or salary",
				Required:    false,
			},
		},
	}
}

// SearchParametersSchema returns the extraction schema for mapping a query onto job board filters.
func SearchParametersSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "SearchParameters",
		Description: `You convert job search requests into job board search parameters.
Experience codes: 1 internship, 2 entry level, 3 associate or mid level, 4 senior (mid-senior), 5 director, 6 executive.
Work type codes: 1 on-site, 2 remote, 3 hybrid.
Use null for any code the request does not mention.`,
		Fields: []SchemaField{
			{
				Name:        "keywords",
				Type:        "\"string\"",
				Description: "Search keywords, typically the job title and key skills",
				Required:    true,
			},
			{
				Name:        "location",
				Type:        "\"string\"",
				Description: "Location to search in; empty string for anywhere",
				Required:    true,
			},
			{
				Name:        "experience_code",
				Type:        "integer or null",
				Description: "Experience level code",
				Required:    false,
			},
			{
				Name:        "work_type_code",
				Type:        "integer or null",
				Description: "Work type code",
				Required:    false,
			},
		},
	}
}
