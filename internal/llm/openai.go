package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIClient implements Client for OpenAI-compatible chat completion endpoints.
// One langchaingo model handle is kept per configured model name.
type OpenAIClient struct {
	config *Config
	apiKey string
	models map[string]*openai.LLM
}

// NewOpenAIClient creates a client for every distinct model configured on the tiers
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultOpenAIConfig()
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	c := &OpenAIClient{
		config: config,
		apiKey: apiKey,
		models: make(map[string]*openai.LLM),
	}
	for _, name := range config.Models {
		if _, ok := c.models[name]; ok || name == "" {
			continue
		}
		model, err := openai.New(
			openai.WithToken(apiKey),
			openai.WithBaseURL(baseURL),
			openai.WithModel(name),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client for %s: %w", name, err)
		}
		c.models[name] = model
	}
	return c, nil
}

// Generate runs a chat completion against the tier's model
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", &GenerationError{Kind: KindInvalidRequest, Provider: ProviderOpenAI, Cause: err}
	}

	modelName := c.config.GetModel(req.Tier)
	model, ok := c.models[modelName]
	if !ok {
		return "", &GenerationError{Kind: KindInvalidRequest, Provider: ProviderOpenAI, Cause: fmt.Errorf("no model configured for tier %s", req.Tier)}
	}

	content := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.System != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, m := range req.Messages {
		msgType := llms.ChatMessageTypeHuman
		if m.Role == RoleAssistant {
			msgType = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(msgType, m.Content))
	}

	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if req.MaxOutputTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxOutputTokens))
	}

	resp, err := model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", Classify(ProviderOpenAI, err)
	}
	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", &GenerationError{Kind: KindEmpty, Provider: ProviderOpenAI, Cause: fmt.Errorf("no choices in response")}
	}
	return resp.Choices[0].Content, nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the underlying HTTP client holds no resources that need releasing
func (c *OpenAIClient) Close() error {
	return nil
}
