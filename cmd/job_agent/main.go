// Package main provides the job search assistant CLI and HTTP server.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-finder/internal/config"
	"github.com/jonathan/job-finder/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "job_agent",
	Short: "Job search assistant",
	Long: `Turns a free-text request such as "Find me remote Python developer jobs" into a
markdown list of matching job postings. Small talk gets a conversational reply instead.

Configuration is layered: flags override the --config file, which overrides the
environment (.env is loaded at start), which overrides built-in defaults.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

var (
	configPath string
	flagCfg    config.Config

	flagDelayMin     time.Duration
	flagDelayMax     time.Duration
	flagFetchTimeout time.Duration
	flagCacheTTL     time.Duration

	// settings is the resolved configuration, available to every subcommand
	settings config.Config
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	f.StringVar(&flagCfg.Provider, "provider", "", "Generation provider: gemini or openai (defaults to LLM_PROVIDER)")
	f.StringVar(&flagCfg.APIKey, "api-key", "", "Provider API key (defaults to GEMINI_API_KEY or OPENAI_API_KEY)")
	f.StringVar(&flagCfg.BaseURL, "base-url", "", "Base URL of an OpenAI-compatible endpoint")
	f.IntVar(&flagCfg.Retries, "retries", 0, "Retries for transient generation failures")
	f.StringVar(&flagCfg.Source, "source", "", "Listing source: live, synthetic, chain or google")
	f.StringVar(&flagCfg.SerpAPIKey, "serpapi-key", "", "SerpAPI key for the google source (defaults to SERPAPI_API_KEY)")
	f.StringVar(&flagCfg.SearchURL, "search-url", "", "Override the job board search endpoint")
	f.IntVar(&flagCfg.MaxJobs, "max-jobs", 0, "Maximum listings per search (default 15)")
	f.DurationVar(&flagDelayMin, "delay-min", 0, "Minimum politeness delay before a board request")
	f.DurationVar(&flagDelayMax, "delay-max", 0, "Maximum politeness delay before a board request")
	f.DurationVar(&flagFetchTimeout, "fetch-timeout", 0, "Timeout for a board request")
	f.BoolVar(&flagCfg.UseBrowser, "use-browser", false, "Retry blocked board requests in headless Chrome")
	f.BoolVar(&flagCfg.Polish, "polish", false, "Run a cosmetic generation pass over the results document")
	f.StringVar(&flagCfg.CacheBackend, "cache", "", "Page cache backend: none, memory, redis or postgres")
	f.StringVar(&flagCfg.CacheURL, "cache-url", "", "Redis or Postgres URL for the page cache")
	f.DurationVar(&flagCacheTTL, "cache-ttl", 0, "How long cached board pages stay fresh")
	f.StringVar(&flagCfg.LogLevel, "log-level", "", "Log level: trace, debug, info, warn or error")
	f.StringVar(&flagCfg.LogFormat, "log-format", "", "Log format: console or json")
	f.BoolVarP(&flagCfg.Verbose, "verbose", "v", false, "Print each intermediate result")
}

// loadSettings resolves configuration and initializes logging
func loadSettings(_ *cobra.Command, _ []string) error {
	flagCfg.DelayMin = config.Duration(flagDelayMin)
	flagCfg.DelayMax = config.Duration(flagDelayMax)
	flagCfg.FetchTimeout = config.Duration(flagFetchTimeout)
	flagCfg.CacheTTL = config.Duration(flagCacheTTL)

	var file *config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		file = loaded
	}

	settings = config.Resolve(flagCfg, file, config.FromEnv())
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	observability.InitLogger(settings.LogLevel, settings.LogFormat)
	log.Debug().
		Str("provider", string(settings.ProviderName())).
		Str("source", settings.Source).
		Str("cache", settings.CacheBackend).
		Msg("configuration resolved")
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
