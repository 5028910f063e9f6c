// Package prompts holds the assistant's LLM prompt templates.
// Each embedded JSON file maps a prompt key to its text; placeholders take the form {{.Name}}.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

type catalog map[string]map[string]string

var (
	loadOnce sync.Once
	loaded   catalog
	loadErr  error
	loadMu   sync.Mutex
)

// all parses every embedded file on first use
func all() (catalog, error) {
	loadMu.Lock()
	defer loadMu.Unlock()
	loadOnce.Do(func() {
		loaded, loadErr = parseAll(promptFiles)
	})
	return loaded, loadErr
}

func parseAll(fsys fs.FS) (catalog, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, err
	}
	c := make(catalog, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var entries map[string]string
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		c[name] = entries
	}
	return c, nil
}

func file(filename string) (map[string]string, error) {
	c, err := all()
	if err != nil {
		return nil, err
	}
	entries, ok := c[filename]
	if !ok {
		return nil, fmt.Errorf("failed to read prompt file %s: not embedded", filename)
	}
	return entries, nil
}

// Get returns the prompt stored under key in filename (e.g. "intent.json").
func Get(filename, key string) (string, error) {
	entries, err := file(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is Get for prompts the program cannot run without.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format substitutes {{.Name}} placeholders. Placeholders with no value in data are left as-is.
func Format(template string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(template, "{{.") {
		return template
	}
	pairs := make([]string, 0, 2*len(data))
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Render is MustGet followed by Format.
func Render(filename, key string, data map[string]string) string {
	return Format(MustGet(filename, key), data)
}

// ClearCache forces the next lookup to re-read the embedded files.
func ClearCache() {
	loadMu.Lock()
	loadOnce = sync.Once{}
	loaded, loadErr = nil, nil
	loadMu.Unlock()
}

// List returns the prompt keys in filename, sorted.
func List(filename string) ([]string, error) {
	entries, err := file(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
