package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/cache"
	"github.com/jonathan/job-finder/internal/fetch"
	"github.com/jonathan/job-finder/internal/llm"
)

// Source selectors accepted by New
const (
	SourceLive      = "live"
	SourceSynthetic = "synthetic"
	SourceChain     = "chain"
	SourceGoogle    = "google"
)

// Options selects and configures an adapter
type Options struct {
	Source       string
	BaseURL      string
	DelayMin     time.Duration
	DelayMax     time.Duration
	FetchTimeout time.Duration
	UseBrowser   bool
	Cache        cache.Store
	CacheTTL     time.Duration

	// SerpAPIKey enables the Google Jobs source; GoogleJobsURL overrides its endpoint
	SerpAPIKey    string
	GoogleJobsURL string
}

// New builds the adapter named by opts.Source. The synthetic and chain sources need a client;
// google needs opts.SerpAPIKey. The chain tries live, then Google Jobs when a key is set, then synthetic.
func New(opts Options, client llm.Client, logger zerolog.Logger) (Adapter, error) {
	source := strings.ToLower(strings.TrimSpace(opts.Source))
	if source == "" {
		source = SourceLive
	}

	switch source {
	case SourceLive:
		return newLive(opts, logger), nil
	case SourceSynthetic:
		if client == nil {
			return nil, fmt.Errorf("source %q requires a generation client", source)
		}
		return NewSynthetic(client, logger), nil
	case SourceChain:
		if client == nil {
			return nil, fmt.Errorf("source %q requires a generation client", source)
		}
		adapters := []Adapter{newLive(opts, logger)}
		if opts.SerpAPIKey != "" {
			g, err := newGoogle(opts, logger)
			if err != nil {
				return nil, err
			}
			adapters = append(adapters, g)
		}
		return &Chain{
			Adapters: append(adapters, NewSynthetic(client, logger)),
			Logger:   logger,
		}, nil
	case SourceGoogle:
		g, err := newGoogle(opts, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown source %q", opts.Source)
	}
}

func newLive(opts Options, logger zerolog.Logger) *LinkedIn {
	fetchOpts := fetch.DefaultOptions()
	if opts.FetchTimeout > 0 {
		fetchOpts.Timeout = opts.FetchTimeout
	}

	var fetcher fetch.Fetcher = fetch.HTTPFetcher{Options: fetchOpts}
	if opts.UseBrowser {
		fetcher = &fetch.BrowserFallback{Next: fetcher, Timeout: fetch.DefaultBrowserTimeout, Logger: logger}
	}
	if opts.Cache != nil {
		fetcher = fetch.NewCachedFetcher(fetcher, opts.Cache, opts.CacheTTL, logger)
	}

	return NewLinkedIn(LinkedInOptions{
		BaseURL:  opts.BaseURL,
		Fetcher:  fetcher,
		DelayMin: opts.DelayMin,
		DelayMax: opts.DelayMax,
		Logger:   logger,
	})
}

func newGoogle(opts Options, logger zerolog.Logger) (*GoogleJobs, error) {
	fetchOpts := &fetch.Options{
		Timeout: googleJobsTimeout,
		Headers: map[string]string{"Accept": "application/json"},
	}
	if opts.FetchTimeout > 0 {
		fetchOpts.Timeout = opts.FetchTimeout
	}
	return NewGoogleJobs(GoogleJobsOptions{
		APIKey:  opts.SerpAPIKey,
		BaseURL: opts.GoogleJobsURL,
		Fetcher: fetch.HTTPFetcher{Options: fetchOpts},
		Logger:  logger,
	})
}
