// Package llm provides streaming LLM client interfaces and implementations.
package llm

import (
	"context"
)

// Message roles accepted by ChatRequest.History.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one prior conversation turn in provider-neutral form.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes one streaming exchange. History covers the
// conversation as it stood before the current turn; the new user input
// travels separately in UserText and must not appear in History.
type ChatRequest struct {
	Model          string
	History        []ChatMessage
	UserText       string
	Temperature    float64
	ThinkingBudget int32
	EnableThinking bool
	MaxTokens      int
}

// Stream is a lazy, finite, non-restartable sequence of response
// fragments. Next returns the next non-empty fragment, io.EOF once the
// model has finished, or the transport/provider error that ended the
// stream. Concatenating fragments in order reconstructs the response.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Client is the interface for streaming LLM providers. StreamChat
// performs exactly one network exchange; there is no retry or backoff,
// and failures surface to the caller unmodified.
type Client interface {
	StreamChat(ctx context.Context, req *ChatRequest) (Stream, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// NewClient creates a new LLM client for the given provider.
func NewClient(ctx context.Context, provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	default:
		return NewGeminiClient(ctx, apiKey)
	}
}
