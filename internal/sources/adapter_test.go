package sources

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-finder/internal/cache"
	"github.com/jonathan/job-finder/internal/llm/llmtest"
	"github.com/jonathan/job-finder/internal/types"
)

type stubAdapter struct {
	name  string
	jobs  []types.JobRecord
	panic bool
	calls int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(context.Context, Query, int) []types.JobRecord {
	s.calls++
	if s.panic {
		panic("adapter exploded")
	}
	return s.jobs
}

func jobs(n int) []types.JobRecord {
	out := make([]types.JobRecord, n)
	for i := range out {
		out[i] = types.JobRecord{Title: fmt.Sprintf("Job %d", i+1)}
	}
	return out
}

func TestSafeFetch_RecoversPanic(t *testing.T) {
	a := &stubAdapter{name: "bad", panic: true}

	got := SafeFetch(context.Background(), a, Query{}, 15, zerolog.Nop())

	assert.Empty(t, got)
	assert.Equal(t, 1, a.calls)
}

func TestSafeFetch_Caps(t *testing.T) {
	a := &stubAdapter{name: "big", jobs: jobs(30)}

	assert.Len(t, SafeFetch(context.Background(), a, Query{}, 15, zerolog.Nop()), 15)
	assert.Len(t, SafeFetch(context.Background(), a, Query{}, 3, zerolog.Nop()), 3)
}

func TestCap(t *testing.T) {
	assert.Len(t, Cap(jobs(20), 0), DefaultMaxJobs)
	assert.Len(t, Cap(jobs(2), 15), 2)
	assert.Empty(t, Cap(nil, 15))
}

func TestChain(t *testing.T) {
	empty := &stubAdapter{name: "empty"}
	broken := &stubAdapter{name: "broken", panic: true}
	good := &stubAdapter{name: "good", jobs: jobs(2)}
	unused := &stubAdapter{name: "unused", jobs: jobs(5)}

	c := &Chain{Adapters: []Adapter{empty, broken, good, unused}, Logger: zerolog.Nop()}

	got := c.Fetch(context.Background(), Query{}, 15)

	assert.Equal(t, jobs(2), got)
	assert.Equal(t, 0, unused.calls)
	assert.Equal(t, "chain(empty,broken,good,unused)", c.Name())
}

func TestChain_AllEmpty(t *testing.T) {
	c := &Chain{Adapters: []Adapter{&stubAdapter{name: "a"}, &stubAdapter{name: "b"}}, Logger: zerolog.Nop()}
	assert.Empty(t, c.Fetch(context.Background(), Query{}, 15))
}

func TestNew(t *testing.T) {
	client := llmtest.Returning("[]")

	tests := []struct {
		source   string
		client   bool
		wantName string
		wantErr  string
	}{
		{"", false, "linkedin", ""},
		{"live", false, "linkedin", ""},
		{"LIVE", false, "linkedin", ""},
		{"synthetic", true, "synthetic", ""},
		{"chain", true, "chain(linkedin,synthetic)", ""},
		{"synthetic", false, "", "requires a generation client"},
		{"chain", false, "", "requires a generation client"},
		{"google", false, "", "SERPAPI_API_KEY"},
		{"indeed", true, "", "unknown source"},
	}

	for _, tt := range tests {
		t.Run(tt.source+fmt.Sprint(tt.client), func(t *testing.T) {
			var a Adapter
			var err error
			if tt.client {
				a, err = New(Options{Source: tt.source}, client, zerolog.Nop())
			} else {
				a, err = New(Options{Source: tt.source}, nil, zerolog.Nop())
			}

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, a.Name())
		})
	}
}

func TestNew_GoogleSources(t *testing.T) {
	opts := Options{SerpAPIKey: "serp-key"}

	opts.Source = SourceGoogle
	a, err := New(opts, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "google_jobs", a.Name())

	opts.Source = SourceChain
	a, err = New(opts, llmtest.Returning("[]"), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "chain(linkedin,google_jobs,synthetic)", a.Name())
}

func TestNew_LiveWithCacheAndBrowser(t *testing.T) {
	a, err := New(Options{Source: SourceLive, UseBrowser: true, Cache: cache.NewMemory()}, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LinkedIn{}, a)
}
