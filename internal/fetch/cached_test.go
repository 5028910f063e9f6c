package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-finder/internal/cache"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenStore) Delete(context.Context, string) error { return nil }
func (brokenStore) Close() error                         { return nil }

func countingServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte("<ul><li>job</li></ul>"))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestCachedFetcher_HitAvoidsNetwork(t *testing.T) {
	server, hits := countingServer(t, http.StatusOK)
	f := NewCachedFetcher(HTTPFetcher{}, cache.NewMemory(), time.Minute, zerolog.Nop())

	first, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.HTML, second.HTML)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedFetcher_FailuresNotCached(t *testing.T) {
	server, hits := countingServer(t, http.StatusInternalServerError)
	store := cache.NewMemory()
	f := NewCachedFetcher(HTTPFetcher{}, store, time.Minute, zerolog.Nop())

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	_, err = f.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 0, store.Len())
}

func TestCachedFetcher_StoreErrorsIgnored(t *testing.T) {
	server, _ := countingServer(t, http.StatusOK)
	f := NewCachedFetcher(HTTPFetcher{}, brokenStore{}, 0, zerolog.Nop())

	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "job")
}

func TestCachedFetcher_NilStore(t *testing.T) {
	server, hits := countingServer(t, http.StatusOK)
	f := NewCachedFetcher(HTTPFetcher{}, nil, 0, zerolog.Nop())

	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
	assert.NoError(t, f.Invalidate(context.Background(), server.URL))
}

func TestCachedFetcher_Invalidate(t *testing.T) {
	server, hits := countingServer(t, http.StatusOK)
	f := NewCachedFetcher(HTTPFetcher{}, cache.NewMemory(), time.Minute, zerolog.Nop())

	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.NoError(t, f.Invalidate(context.Background(), server.URL))
	_, err = f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
}
