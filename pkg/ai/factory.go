package ai

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
)

// NewProvider builds a provider by name. API keys come from the environment.
func NewProvider(providerName string, modelName string) (ai.Provider, error) {
	switch providerName {
	case "ollama", "":
		return NewOllamaProvider(modelName), nil
	case "mock":
		return &MockProvider{Model: modelName}, nil
	case "openai":
		return NewOpenAIProvider(modelName, os.Getenv("OPENAI_API_KEY")), nil
	case "anthropic":
		return NewAnthropicProvider(modelName, os.Getenv("ANTHROPIC_API_KEY")), nil
	case "gemini":
		return NewGeminiProvider(modelName, os.Getenv("GEMINI_API_KEY")), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// GetDefaultProvider returns a provider based on environment variables or configured defaults.
func GetDefaultProvider(providerName, modelName string) (ai.Provider, error) {
	if env := os.Getenv("RISKGATE_AI_PROVIDER"); env != "" {
		providerName = env
	}
	if env := os.Getenv("RISKGATE_AI_MODEL"); env != "" {
		modelName = env
	}
	return NewProvider(providerName, modelName)
}
