package prompts

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("intent.json", "classify-intent")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "is_job_search")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("intent.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet("intent.json", "classify-intent")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "Keywords: {{.Keywords}}, Location: {{.Location}}"
	data := map[string]string{
		"Keywords": "golang",
		"Location": "Remote",
	}

	result := Format(template, data)
	assert.Equal(t, "Keywords: golang, Location: Remote", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("intent.json")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"classify-intent", "conversation", "conversation-fallback"}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	// First call loads from file
	prompt1, err := Get("intent.json", "classify-intent")
	require.NoError(t, err)

	// Second call should use cache
	prompt2, err := Get("intent.json", "classify-intent")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}

func TestPromptFiles_HavePlaceholders(t *testing.T) {
	ClearCache()

	synthetic := MustGet("search.json", "synthetic-listings")
	for _, key := range []string{"{{.MinJobs}}", "{{.MaxJobs}}", "{{.Keywords}}", "{{.Location}}", "{{.Profile}}"} {
		assert.Contains(t, synthetic, key)
	}
	assert.Contains(t, MustGet("search.json", "acknowledge-profile"), "{{.ProfileRef}}")
	assert.NotEmpty(t, MustGet("format.json", "polish-results"))
	assert.Contains(t, MustGet("intent.json", "conversation-fallback"), "I'm here to help you find jobs!")
}

func TestRender(t *testing.T) {
	ClearCache()

	out := Render("search.json", "acknowledge-profile", map[string]string{"ProfileRef": "https://linkedin.com/in/someone"})
	assert.Contains(t, out, "https://linkedin.com/in/someone")
	assert.NotContains(t, out, "{{.ProfileRef}}")
}

func TestParseAll_RejectsMalformedFile(t *testing.T) {
	_, err := parseAll(fstest.MapFS{
		"ok.json":  {Data: []byte(`{"a": "b"}`)},
		"bad.json": {Data: []byte(`{"a": `)},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}
