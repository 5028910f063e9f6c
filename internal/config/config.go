// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/job-finder/internal/llm"
)

// Defaults used when neither flags, file nor environment set a value
const (
	DefaultMaxJobs       = 15
	DefaultDelayMin      = 1 * time.Second
	DefaultDelayMax      = 2 * time.Second
	DefaultFetchTimeout  = 15 * time.Second
	DefaultCacheTTL      = 15 * time.Minute
	DefaultPort          = 8080
	DefaultMaxConcurrent = 4
)

// Duration is a time.Duration that reads from JSON as "1.5s" or as a number of seconds
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\" or a number of seconds")
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values come from the environment or defaults.
type Config struct {
	// Generation backend
	Provider string            `json:"provider,omitempty" validate:"omitempty,oneof=gemini openai"`
	APIKey   string            `json:"api_key,omitempty"`
	BaseURL  string            `json:"base_url,omitempty" validate:"omitempty,url"`
	Models   map[string]string `json:"models,omitempty" validate:"omitempty,dive,keys,oneof=lite standard advanced,endkeys,required"`
	Retries  int               `json:"retries,omitempty" validate:"gte=0,lte=5"`

	// Listing source
	Source       string   `json:"source,omitempty" validate:"omitempty,oneof=live synthetic chain google"`
	SearchURL    string   `json:"search_url,omitempty" validate:"omitempty,url"`
	MaxJobs      int      `json:"max_jobs,omitempty" validate:"gte=0,lte=100"`
	DelayMin     Duration `json:"delay_min,omitempty"`
	DelayMax     Duration `json:"delay_max,omitempty"`
	FetchTimeout Duration `json:"fetch_timeout,omitempty"`
	UseBrowser   bool     `json:"use_browser,omitempty"`

	// Google Jobs through SerpAPI
	SerpAPIKey    string `json:"serpapi_key,omitempty"`
	GoogleJobsURL string `json:"google_jobs_url,omitempty" validate:"omitempty,url"`

	// Output
	Polish bool `json:"polish,omitempty"`

	// Page cache
	CacheBackend string   `json:"cache_backend,omitempty" validate:"omitempty,oneof=none memory redis postgres"`
	CacheURL     string   `json:"cache_url,omitempty"`
	CacheTTL     Duration `json:"cache_ttl,omitempty"`

	// Server
	Port          int `json:"port,omitempty" validate:"gte=0,lte=65535"`
	MaxConcurrent int `json:"max_concurrent,omitempty" validate:"gte=0,lte=256"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" validate:"omitempty,oneof=trace debug info warn error"`
	LogFormat string `json:"log_format,omitempty" validate:"omitempty,oneof=console json"`
	Verbose   bool   `json:"verbose,omitempty"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Provider:      string(llm.ProviderGemini),
		Source:        "live",
		MaxJobs:       DefaultMaxJobs,
		DelayMin:      Duration(DefaultDelayMin),
		DelayMax:      Duration(DefaultDelayMax),
		FetchTimeout:  Duration(DefaultFetchTimeout),
		CacheBackend:  "none",
		CacheTTL:      Duration(DefaultCacheTTL),
		Port:          DefaultPort,
		MaxConcurrent: DefaultMaxConcurrent,
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables.
// The API key is taken from the variable matching the selected provider.
func FromEnv() Config {
	cfg := Config{
		Provider:     strings.ToLower(os.Getenv("LLM_PROVIDER")),
		BaseURL:      os.Getenv("OPENAI_BASE_URL"),
		Source:       strings.ToLower(os.Getenv("JOB_SOURCE")),
		SerpAPIKey:   os.Getenv(SerpAPIKeyEnv),
		CacheBackend: strings.ToLower(os.Getenv("CACHE_BACKEND")),
		CacheURL:     os.Getenv("CACHE_URL"),
		LogLevel:     strings.ToLower(os.Getenv("LOG_LEVEL")),
		LogFormat:    strings.ToLower(os.Getenv("LOG_FORMAT")),
	}

	provider := llm.Provider(cfg.Provider)
	if provider == "" {
		provider = llm.ProviderGemini
	}
	cfg.APIKey = os.Getenv(provider.CredentialEnv())

	if cfg.CacheURL == "" {
		switch cfg.CacheBackend {
		case "redis":
			cfg.CacheURL = os.Getenv("REDIS_URL")
		case "postgres":
			cfg.CacheURL = os.Getenv("DATABASE_URL")
		}
	}

	cfg.MaxJobs = envInt("MAX_JOBS")
	cfg.Retries = envInt("LLM_RETRIES")
	cfg.Port = envInt("PORT")
	return cfg
}

func envInt(name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(name)))
	if err != nil {
		return 0
	}
	return v
}

// Validate checks enumerations, ranges and cross-field constraints.
// It does not require an API key; see RequireCredential.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.DelayMin < 0 || c.DelayMax < 0 || c.FetchTimeout < 0 || c.CacheTTL < 0 {
		return fmt.Errorf("config error: durations must be non-negative")
	}
	if c.DelayMax != 0 && c.DelayMax < c.DelayMin {
		return fmt.Errorf("config error: 'delay_max' must not be less than 'delay_min'")
	}
	if (c.CacheBackend == "redis" || c.CacheBackend == "postgres") && c.CacheURL == "" {
		return fmt.Errorf("config error: cache backend %q requires 'cache_url'", c.CacheBackend)
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// Boolean fields are merged with OR since false cannot be told apart from unset.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if len(defaults.Models) > 0 {
		merged := make(map[string]string, len(defaults.Models)+len(result.Models))
		for k, v := range defaults.Models {
			merged[k] = v
		}
		for k, v := range result.Models {
			merged[k] = v
		}
		result.Models = merged
	}
	if result.Retries == 0 {
		result.Retries = defaults.Retries
	}
	if result.Source == "" {
		result.Source = defaults.Source
	}
	if result.SearchURL == "" {
		result.SearchURL = defaults.SearchURL
	}
	if result.SerpAPIKey == "" {
		result.SerpAPIKey = defaults.SerpAPIKey
	}
	if result.GoogleJobsURL == "" {
		result.GoogleJobsURL = defaults.GoogleJobsURL
	}
	if result.MaxJobs == 0 {
		result.MaxJobs = defaults.MaxJobs
	}
	if result.DelayMin == 0 {
		result.DelayMin = defaults.DelayMin
	}
	if result.DelayMax == 0 {
		result.DelayMax = defaults.DelayMax
	}
	if result.FetchTimeout == 0 {
		result.FetchTimeout = defaults.FetchTimeout
	}
	if result.CacheBackend == "" {
		result.CacheBackend = defaults.CacheBackend
	}
	if result.CacheURL == "" {
		result.CacheURL = defaults.CacheURL
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxConcurrent == 0 {
		result.MaxConcurrent = defaults.MaxConcurrent
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Polish = result.Polish || defaults.Polish
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// Resolve layers flags over file over env over built-in defaults. file may be nil.
func Resolve(flags Config, file *Config, env Config) Config {
	merged := flags
	if file != nil {
		merged = merged.MergeWithDefaults(*file)
	}
	merged = merged.MergeWithDefaults(env)
	return merged.MergeWithDefaults(Defaults())
}

// ProviderName returns the configured provider, defaulting to Gemini
func (c *Config) ProviderName() llm.Provider {
	if c.Provider == "" {
		return llm.ProviderGemini
	}
	return llm.Provider(c.Provider)
}

// LLMConfig builds the model configuration for the selected provider
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.ConfigForProvider(c.ProviderName())
	if c.BaseURL != "" && cfg.Provider == llm.ProviderOpenAI {
		cfg.BaseURL = c.BaseURL
	}
	for tier, model := range c.Models {
		cfg = cfg.WithModel(llm.ModelTier(tier), model)
	}
	return cfg
}

// RetryConfig returns the generation retry policy
func (c *Config) RetryConfig() llm.RetryConfig {
	rc := llm.DefaultRetryConfig()
	rc.MaxRetries = c.Retries
	return rc
}
