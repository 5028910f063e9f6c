package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/cache"
)

// CachedFetcher wraps a Fetcher with a cache.Store.
// Only successful pages are stored; cache failures are logged and otherwise ignored.
type CachedFetcher struct {
	next   Fetcher
	store  cache.Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedFetcher creates a new cached fetcher. A nil store disables caching.
func NewCachedFetcher(next Fetcher, store cache.Store, ttl time.Duration, logger zerolog.Logger) *CachedFetcher {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &CachedFetcher{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "page_cache").Logger(),
	}
}

// Fetch returns a fresh cached page when available, otherwise fetches and stores it.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	key := cache.Key("page", urlStr)

	if f.store != nil {
		data, err := f.store.Get(ctx, key)
		switch {
		case err == nil:
			f.logger.Debug().Str("url", urlStr).Msg("cache hit")
			return &Result{URL: urlStr, HTML: string(data), StatusCode: 200, FromCache: true}, nil
		case !errors.Is(err, cache.ErrMiss):
			f.logger.Warn().Err(err).Msg("cache read failed")
		}
	}

	result, err := f.next.Fetch(ctx, urlStr)
	if err != nil {
		return result, err
	}

	if f.store != nil {
		if err := f.store.Set(ctx, key, []byte(result.HTML), f.ttl); err != nil {
			f.logger.Warn().Err(err).Msg("cache write failed")
		}
	}
	return result, nil
}

// Invalidator is implemented by fetchers that can forget a page
type Invalidator interface {
	Invalidate(ctx context.Context, urlStr string) error
}

// Invalidate drops a cached page, forcing a re-fetch on next request.
func (f *CachedFetcher) Invalidate(ctx context.Context, urlStr string) error {
	if f.store == nil {
		return nil
	}
	return f.store.Delete(ctx, cache.Key("page", urlStr))
}
