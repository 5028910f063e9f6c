package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestDefaultOpenAIConfig(t *testing.T) {
	config := DefaultOpenAIConfig()

	assert.Equal(t, ProviderOpenAI, config.Provider)
	assert.Equal(t, DefaultOpenAIBaseURL, config.BaseURL)
	assert.NotEmpty(t, config.GetModel(TierStandard))
}

func TestConfigForProvider(t *testing.T) {
	assert.Equal(t, ProviderOpenAI, ConfigForProvider(ProviderOpenAI).Provider)
	assert.Equal(t, ProviderGemini, ConfigForProvider("unknown").Provider)
}

func TestProvider_CredentialEnv(t *testing.T) {
	assert.Equal(t, "GEMINI_API_KEY", ProviderGemini.CredentialEnv())
	assert.Equal(t, "OPENAI_API_KEY", ProviderOpenAI.CredentialEnv())
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{},
	}

	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultOpenAIConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "meta-llama/Llama-3.3-70B-Instruct", config.GetModel(TierAdvanced))

	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, config.BaseURL, newConfig.BaseURL)
	assert.Equal(t, config.GetModel(TierLite), newConfig.GetModel(TierLite))
}
