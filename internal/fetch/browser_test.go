package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserFallback_PassesThroughSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<p>plain</p>"))
	}))
	defer server.Close()

	rendered := false
	b := &BrowserFallback{
		Next: HTTPFetcher{},
		Render: func(context.Context, string, time.Duration, zerolog.Logger) (string, error) {
			rendered = true
			return "", nil
		},
		Logger: zerolog.Nop(),
	}

	result, err := b.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<p>plain</p>", result.HTML)
	assert.False(t, rendered)
}

func TestBrowserFallback_RendersOnStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	var renderedURL string
	b := &BrowserFallback{
		Next: HTTPFetcher{},
		Render: func(_ context.Context, url string, _ time.Duration, _ zerolog.Logger) (string, error) {
			renderedURL = url
			return "<html><body>rendered</body></html>", nil
		},
		Logger: zerolog.Nop(),
	}

	result, err := b.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, renderedURL)
	assert.Contains(t, result.HTML, "rendered")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestBrowserFallback_RenderFailureKeepsOriginalError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	b := &BrowserFallback{
		Next: HTTPFetcher{},
		Render: func(context.Context, string, time.Duration, zerolog.Logger) (string, error) {
			return "", errors.New("no chrome")
		},
		Logger: zerolog.Nop(),
	}

	_, err := b.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "no chrome")
}

func TestBrowserFallback_SkipsTransportErrors(t *testing.T) {
	rendered := false
	b := &BrowserFallback{
		Next: HTTPFetcher{},
		Render: func(context.Context, string, time.Duration, zerolog.Logger) (string, error) {
			rendered = true
			return "", nil
		},
		Logger: zerolog.Nop(),
	}

	_, err := b.Fetch(context.Background(), "not-a-url")
	assert.Error(t, err)
	assert.False(t, rendered)
}
