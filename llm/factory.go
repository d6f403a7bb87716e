package llm

import (
	"context"
	"fmt"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// NewProvider constructs a Provider by name. The context is only used
// by providers whose clients dial during construction.
func NewProvider(ctx context.Context, provider, apiKey string) (Provider, error) {
	switch provider {
	case "openai":
		return NewOpenAIProvider(apiKey), nil
	case "groq":
		return NewOpenAICompatibleProvider(apiKey, groqBaseURL), nil
	case "anthropic":
		return NewAnthropicProvider(apiKey), nil
	case "gemini":
		return NewGeminiProvider(ctx, apiKey)
	default:
		return nil, fmt.Errorf("unknown provider '%s'", provider)
	}
}
