// Package llmtest provides test doubles for llm.Client.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/job-finder/internal/llm"
)

// MockClient implements llm.Client for testing.
// Calls are recorded so tests can assert on prompts and call counts.
type MockClient struct {
	GenerateFunc func(ctx context.Context, req llm.Request) (string, error)
	GetModelFunc func(tier llm.ModelTier) string
	CloseFunc    func() error

	mu       sync.Mutex
	requests []llm.Request
}

// Generate records the request and delegates to GenerateFunc
func (m *MockClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "", nil
}

// GetModel returns "mock-model" unless overridden
func (m *MockClient) GetModel(tier llm.ModelTier) string {
	if m.GetModelFunc != nil {
		return m.GetModelFunc(tier)
	}
	return "mock-model"
}

// Close delegates to CloseFunc when set
func (m *MockClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Requests returns a copy of every request seen so far
func (m *MockClient) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns how many times Generate was invoked
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Returning builds a mock that always answers text
func Returning(text string) *MockClient {
	return &MockClient{
		GenerateFunc: func(context.Context, llm.Request) (string, error) {
			return text, nil
		},
	}
}

// Failing builds a mock that always fails with a GenerationError of the given kind
func Failing(kind llm.ErrorKind) *MockClient {
	return &MockClient{
		GenerateFunc: func(context.Context, llm.Request) (string, error) {
			return "", &llm.GenerationError{Kind: kind, Provider: "mock"}
		},
	}
}
