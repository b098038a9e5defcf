package llm

import (
	"context"
	"testing"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	for _, provider := range []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic} {
		t.Run(string(provider), func(t *testing.T) {
			if _, err := NewClient(context.Background(), provider, ""); err == nil {
				t.Errorf("NewClient(%s, \"\") should fail", provider)
			}
		})
	}
}

func TestNewClient_ProviderRouting(t *testing.T) {
	openaiClient, err := NewClient(context.Background(), ProviderOpenAI, "test-key")
	if err != nil {
		t.Fatalf("NewClient(openai): %v", err)
	}
	if openaiClient.Name() != "openai" {
		t.Errorf("Name() = %q, want openai", openaiClient.Name())
	}

	anthropicClient, err := NewClient(context.Background(), ProviderAnthropic, "test-key")
	if err != nil {
		t.Fatalf("NewClient(anthropic): %v", err)
	}
	if anthropicClient.Name() != "anthropic" {
		t.Errorf("Name() = %q, want anthropic", anthropicClient.Name())
	}
}
