package wiring

import (
	"time"

	"github.com/felixgeelhaar/riskgate/internal/infrastructure/config"
	infraai "github.com/felixgeelhaar/riskgate/pkg/ai"
	domainai "github.com/felixgeelhaar/riskgate/pkg/domain/ai"
)

// LoadAIProvider builds the configured provider wrapped with retry and
// timeout. The embedding model from the similarity section is applied to
// providers that embed.
func LoadAIProvider(cfg *config.Config) (*infraai.ResilientProvider, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	providerName := "ollama"
	modelName := "llama3"
	resilienceConfig := infraai.DefaultResilienceConfig()

	if cfg.AI.Provider != "" {
		providerName = cfg.AI.Provider
	}
	if cfg.AI.Model != "" {
		modelName = cfg.AI.Model
	}
	if cfg.AI.MaxRetries > 0 {
		resilienceConfig.MaxRetries = cfg.AI.MaxRetries
	}
	if cfg.AI.RetryDelayMs > 0 {
		resilienceConfig.RetryDelay = time.Duration(cfg.AI.RetryDelayMs) * time.Millisecond
	}
	if cfg.AI.TimeoutSec > 0 {
		resilienceConfig.Timeout = time.Duration(cfg.AI.TimeoutSec) * time.Second
	}

	baseProvider, err := infraai.GetDefaultProvider(providerName, modelName)
	if err != nil {
		return nil, err
	}
	if m := cfg.Similarity.EmbedModel; m != "" {
		switch p := baseProvider.(type) {
		case *infraai.OllamaProvider:
			p.EmbedModel = m
		case *infraai.OpenAIProvider:
			if m != config.Default().Similarity.EmbedModel {
				p.EmbedModel = m
			}
		}
	}

	return infraai.NewResilientProviderWithConfig(baseProvider, resilienceConfig), nil
}

// canEmbed reports whether the provider behind p produces embeddings.
func canEmbed(p *infraai.ResilientProvider) bool {
	_, ok := p.Unwrap().(domainai.Embedder)
	return ok
}
