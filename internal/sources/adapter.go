// Package sources produces job listings from a live job board or a generation model.
package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/types"
)

// DefaultMaxJobs bounds the listings returned per search
const DefaultMaxJobs = 15

// Query carries everything an adapter may use to find listings
type Query struct {
	Params   types.SearchParameters
	Criteria types.SearchCriteria
	Profile  *types.ProfileContext
}

// Adapter produces job listings. Fetch never returns an error: failures yield an empty list.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, q Query, maxJobs int) []types.JobRecord
}

// SafeFetch calls a.Fetch, converting a panic into an empty list and capping the result.
func SafeFetch(ctx context.Context, a Adapter, q Query, maxJobs int, logger zerolog.Logger) (jobs []types.JobRecord) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("adapter", a.Name()).Str("panic", fmt.Sprint(r)).Msg("adapter panicked")
			jobs = nil
		}
	}()
	return Cap(a.Fetch(ctx, q, maxJobs), maxJobs)
}

// Cap truncates jobs to at most maxJobs entries; maxJobs <= 0 uses DefaultMaxJobs.
func Cap(jobs []types.JobRecord, maxJobs int) []types.JobRecord {
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}
	if len(jobs) > maxJobs {
		return jobs[:maxJobs]
	}
	return jobs
}

// Chain tries each adapter in order and returns the first non-empty result
type Chain struct {
	Adapters []Adapter
	Logger   zerolog.Logger
}

// Name implements Adapter
func (c *Chain) Name() string {
	names := make([]string, len(c.Adapters))
	for i, a := range c.Adapters {
		names[i] = a.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Fetch implements Adapter
func (c *Chain) Fetch(ctx context.Context, q Query, maxJobs int) []types.JobRecord {
	for _, a := range c.Adapters {
		jobs := SafeFetch(ctx, a, q, maxJobs, c.Logger)
		if len(jobs) > 0 {
			return jobs
		}
		c.Logger.Info().Str("adapter", a.Name()).Msg("no listings, trying next source")
	}
	return nil
}
