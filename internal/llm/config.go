// Package llm provides centralized LLM configuration and client abstractions.
// It hides the provider behind a single Generate call and normalizes provider failures into typed errors.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: intent classification, acknowledgments
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: criteria, parameters, formatting
	TierStandard ModelTier = "standard"
	// TierAdvanced is for longer generation such as synthetic listings
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is any OpenAI-compatible chat completions endpoint
	ProviderOpenAI Provider = "openai"
)

// DefaultOpenAIBaseURL is the OpenAI-compatible endpoint used when none is configured
const DefaultOpenAIBaseURL = "https://api.tokenfactory.nebius.com/v1"

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	BaseURL  string // only used by ProviderOpenAI
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// DefaultOpenAIConfig returns the default configuration for an OpenAI-compatible endpoint
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		BaseURL:  DefaultOpenAIBaseURL,
		Models: map[ModelTier]string{
			TierLite:     "meta-llama/Llama-3.3-70B-Instruct",
			TierStandard: "meta-llama/Llama-3.3-70B-Instruct",
			TierAdvanced: "meta-llama/Llama-3.3-70B-Instruct",
		},
	}
}

// ConfigForProvider returns the default configuration for a provider name.
// Unknown names fall back to Gemini.
func ConfigForProvider(p Provider) *Config {
	if p == ProviderOpenAI {
		return DefaultOpenAIConfig()
	}
	return DefaultGeminiConfig()
}

// CredentialEnv returns the environment variable that holds the provider's API key
func (p Provider) CredentialEnv() string {
	if p == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		BaseURL:  c.BaseURL,
		Models:   make(map[ModelTier]string, len(c.Models)+1),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
