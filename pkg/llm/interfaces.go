// Package llm provides the model clients behind the selection oracle.
package llm

import "context"

// Client generates one completion for a prompt. The engine treats every call
// as a pure, side-effect-free function of its inputs.
type Client interface {
	// Complete generates a chat completion for the prompt.
	Complete(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Compile-time interface checks.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*MockClient)(nil)
)
