package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/job-finder/internal/schemas"
)

// DecodeJSON cleans a model response and decodes it into T.
// When schema is non-empty the cleaned document is validated against it first.
// Every failure is a *ParseFailure; the caller decides on the fallback.
func DecodeJSON[T any](text string, schema string) (T, error) {
	var out T

	cleaned := CleanJSONBlock(text)
	if strings.TrimSpace(cleaned) == "" {
		return out, &ParseFailure{Raw: text, Cause: fmt.Errorf("empty response")}
	}

	if schema != "" {
		if err := schemas.ValidateJSONString(schema, cleaned); err != nil {
			return out, &ParseFailure{Raw: text, Cause: err}
		}
	}

	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return out, &ParseFailure{Raw: text, Cause: err}
	}
	return out, nil
}
