package llm_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/llm/llmtest"
)

func fastRetry(n int) llm.RetryConfig {
	return llm.RetryConfig{MaxRetries: n, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestWithRetry_DisabledReturnsSameClient(t *testing.T) {
	mock := llmtest.Returning("ok")
	assert.Same(t, mock, llm.WithRetry(mock, llm.RetryConfig{}, zerolog.Nop()))
}

func TestRetryClient_RecoversFromTransientFailure(t *testing.T) {
	calls := 0
	mock := &llmtest.MockClient{
		GenerateFunc: func(context.Context, llm.Request) (string, error) {
			calls++
			if calls < 3 {
				return "", &llm.GenerationError{Kind: llm.KindNetwork}
			}
			return "done", nil
		},
	}

	client := llm.WithRetry(mock, fastRetry(3), zerolog.Nop())
	out, err := client.Generate(context.Background(), llm.Request{Messages: []llm.Message{llm.UserMessage("hi")}})

	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, 3, calls)
}

func TestRetryClient_GivesUpAfterMaxRetries(t *testing.T) {
	mock := llmtest.Failing(llm.KindTimeout)

	client := llm.WithRetry(mock, fastRetry(2), zerolog.Nop())
	_, err := client.Generate(context.Background(), llm.Request{})

	require.Error(t, err)
	assert.Equal(t, llm.KindTimeout, llm.KindOf(err))
	assert.Equal(t, 3, mock.Calls())
}

func TestRetryClient_DoesNotRetryAuth(t *testing.T) {
	mock := llmtest.Failing(llm.KindAuth)

	client := llm.WithRetry(mock, fastRetry(5), zerolog.Nop())
	_, err := client.Generate(context.Background(), llm.Request{})

	require.Error(t, err)
	assert.Equal(t, llm.KindAuth, llm.KindOf(err))
	assert.Equal(t, 1, mock.Calls())
}
