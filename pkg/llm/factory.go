package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Config holds configuration for creating an oracle model client.
type Config struct {
	Provider  string // "openai" (any OpenAI-compatible endpoint) or "anthropic"
	Endpoint  string // Base URL for OpenAI-compatible endpoints
	Model     string // Model name
	APIKey    string // Optional for local endpoints
	MaxTokens int    // Response budget for providers that require one
}

// NewClient creates the model client for the configured provider.
func NewClient(cfg *Config, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
