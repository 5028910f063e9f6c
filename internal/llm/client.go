package llm

import (
	"context"
	"fmt"
)

// Role identifies the speaker of a chat message
type Role string

// Chat roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message sent to the model
type Message struct {
	Role    Role
	Content string
}

// UserMessage is shorthand for a single user message
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Request describes one generation call
type Request struct {
	System          string
	Messages        []Message
	Temperature     float32
	MaxOutputTokens int
	Tier            ModelTier
	JSON            bool // ask the provider for a JSON response body where supported
}

// Client is an abstraction over LLM providers
type Client interface {
	// Generate runs a chat completion and returns the text of the first candidate.
	// Failures are returned as *GenerationError.
	Generate(ctx context.Context, req Request) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported provider %q", config.Provider)
	}
}

func validateRequest(req Request) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("request has no messages")
	}
	if req.Messages[len(req.Messages)-1].Role != RoleUser {
		return fmt.Errorf("last message must come from the user")
	}
	return nil
}
