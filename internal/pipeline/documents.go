package pipeline

import (
	"fmt"
	"strings"
)

// ConfigErrorDocument is returned for every search while a required credential is missing
func ConfigErrorDocument(name string) string {
	var sb strings.Builder
	sb.WriteString("# ❌ Configuration Error\n\n")
	fmt.Fprintf(&sb, "Missing required environment variable: %s\n\n", name)
	sb.WriteString("Please make sure you have set up your `.env` file with:\n")
	fmt.Fprintf(&sb, "- %s\n\n", name)
	sb.WriteString("Check the README.md for setup instructions.")
	return sb.String()
}

// FailureDocument is returned when a search fails for any reason other than configuration
func FailureDocument(requestID string) string {
	var sb strings.Builder
	sb.WriteString("# ❌ Error During Job Search\n\n")
	sb.WriteString("Something went wrong while processing your request.\n\n")
	sb.WriteString("**What you can try:**\n")
	sb.WriteString("1. Try a simpler search query\n")
	sb.WriteString("2. Check your network connection\n")
	sb.WriteString("3. Try again in a few moments\n")
	sb.WriteString("4. Search directly on [LinkedIn Jobs](https://www.linkedin.com/jobs/)\n\n")
	fmt.Fprintf(&sb, "If the problem persists, report request ID `%s`.", requestID)
	return sb.String()
}
