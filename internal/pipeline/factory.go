package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/cache"
	"github.com/jonathan/job-finder/internal/config"
	"github.com/jonathan/job-finder/internal/criteria"
	"github.com/jonathan/job-finder/internal/formatting"
	"github.com/jonathan/job-finder/internal/intent"
	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/observability"
	"github.com/jonathan/job-finder/internal/params"
	"github.com/jonathan/job-finder/internal/profile"
	"github.com/jonathan/job-finder/internal/sources"
)

// NewFromConfig wires every stage from cfg.
// A missing credential is not an error here: the returned orchestrator answers
// each search with the configuration document instead.
func NewFromConfig(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.RequireCredential(); err != nil {
		var missing *config.MissingCredentialError
		if errors.As(err, &missing) {
			logger.Warn().Str("credential", missing.Name).Msg("credential missing; searches will return setup instructions")
		}
		return WithConfigError(err, logger), nil
	}

	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}
	client = llm.WithRetry(client, cfg.RetryConfig(), logger)

	o := &Orchestrator{}
	o.closers = append(o.closers, client.Close)

	store, err := cache.Open(ctx, cfg.CacheBackend, cfg.CacheURL)
	if err != nil {
		logger.Warn().Err(err).Str("backend", cfg.CacheBackend).Msg("page cache unavailable, continuing without it")
		store = nil
	}
	if store != nil {
		o.closers = append(o.closers, store.Close)
	}

	adapter, err := sources.New(sources.Options{
		Source:       cfg.Source,
		BaseURL:      cfg.SearchURL,
		DelayMin:     cfg.DelayMin.Std(),
		DelayMax:     cfg.DelayMax.Std(),
		FetchTimeout: cfg.FetchTimeout.Std(),
		UseBrowser:   cfg.UseBrowser,
		Cache:        store,
		CacheTTL:     cfg.CacheTTL.Std(),

		SerpAPIKey:    cfg.SerpAPIKey,
		GoogleJobsURL: cfg.GoogleJobsURL,
	}, client, logger)
	if err != nil {
		_ = o.Close()
		return nil, err
	}

	var polisher formatting.Polisher = formatting.NopPolisher{}
	if cfg.Polish {
		polisher = formatting.NewModelPolisher(client, logger)
	}

	var printer *observability.Printer
	if cfg.Verbose {
		printer = observability.NewPrinter(os.Stderr)
	}

	o.deps = New(Dependencies{
		Router:       intent.NewRouter(client, logger),
		Acknowledger: profile.NewModelAcknowledger(client, logger),
		Extractor:    criteria.NewModelExtractor(client, logger),
		Normalizer:   params.NewModelNormalizer(client, logger),
		Adapter:      adapter,
		Polisher:     polisher,
		Logger:       logger,
		MaxJobs:      cfg.MaxJobs,
		Printer:      printer,
	}).deps

	logger.Info().
		Str("provider", string(cfg.ProviderName())).
		Str("source", adapter.Name()).
		Str("cache", cfg.CacheBackend).
		Int("max_jobs", o.deps.MaxJobs).
		Msg("pipeline ready")
	return o, nil
}
