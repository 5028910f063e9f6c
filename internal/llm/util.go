// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONBlock isolates the JSON document inside a model response.
// It strips markdown fences (```json, bare ``` or ```lang), leading prose and trailing prose.
// Text that contains no JSON is returned trimmed and otherwise unchanged.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```"); idx >= 0 {
		text = stripFence(text[idx+3:])
	}

	if text == "" || text[0] == '{' || text[0] == '[' {
		if extracted := extractJSON(text); extracted != "" {
			return extracted
		}
		return text
	}

	// Prose before the document: try each candidate start until one decodes
	var firstBalanced string
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		candidate := extractJSON(text[i:])
		if candidate == "" {
			continue
		}
		if json.Valid([]byte(candidate)) {
			return candidate
		}
		if firstBalanced == "" {
			firstBalanced = candidate
		}
	}
	if firstBalanced != "" {
		return firstBalanced
	}
	return text
}

// stripFence removes an optional language identifier line and the closing fence
func stripFence(rest string) string {
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		first := strings.TrimSpace(rest[:nl])
		if len(first) < 20 && !strings.ContainsAny(first, " {[") {
			rest = rest[nl+1:]
		}
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func extractJSON(s string) string {
	if strings.HasPrefix(s, "[") {
		return extractJSONArray(s)
	}
	return extractJSONObject(s)
}

// extractJSONObject returns the balanced object at the start of s, or "".
func extractJSONObject(s string) string {
	return extractBalanced(s, '{', '}')
}

// extractJSONArray returns the balanced array at the start of s, or "".
func extractJSONArray(s string) string {
	return extractBalanced(s, '[', ']')
}

func extractBalanced(s string, open, close byte) string {
	if len(s) == 0 || s[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
