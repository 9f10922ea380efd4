package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
)

// ResilienceConfig bounds the retries and total time spent on one call.
type ResilienceConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		MaxRetries: 2,
		RetryDelay: time.Second,
		Timeout:    300 * time.Second,
	}
}

// ResilientProvider wraps a provider with retry and timeout. Embedding calls
// are wrapped the same way when the inner provider can embed.
type ResilientProvider struct {
	inner  ai.Provider
	config ResilienceConfig
}

var (
	_ ai.Provider = (*ResilientProvider)(nil)
	_ ai.Embedder = (*ResilientProvider)(nil)
)

func NewResilientProvider(inner ai.Provider) *ResilientProvider {
	return NewResilientProviderWithConfig(inner, DefaultResilienceConfig())
}

// NewResilientProviderWithConfig fills zero fields of cfg from the defaults.
func NewResilientProviderWithConfig(inner ai.Provider, cfg ResilienceConfig) *ResilientProvider {
	def := DefaultResilienceConfig()
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &ResilientProvider{inner: inner, config: cfg}
}

func (p *ResilientProvider) ID() string {
	return p.inner.ID()
}

// Unwrap returns the wrapped provider.
func (p *ResilientProvider) Unwrap() ai.Provider {
	return p.inner
}

// Config returns the effective resilience settings.
func (p *ResilientProvider) Config() ResilienceConfig {
	return p.config
}

func (p *ResilientProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	return withResilience(ctx, p.config, func(ctx context.Context) (*ai.CompletionResponse, error) {
		return p.inner.Complete(ctx, req)
	})
}

func (p *ResilientProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	embedder, ok := p.inner.(ai.Embedder)
	if !ok {
		return nil, fmt.Errorf("provider %s cannot embed text", p.inner.ID())
	}
	return withResilience(ctx, p.config, func(ctx context.Context) ([]float64, error) {
		return embedder.Embed(ctx, text)
	})
}

func withResilience[T any](ctx context.Context, cfg ResilienceConfig, fn func(context.Context) (T, error)) (T, error) {
	r := retry.New[T](retry.Config{
		MaxAttempts:   cfg.MaxRetries,
		InitialDelay:  cfg.RetryDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[T](timeout.Config{
		DefaultTimeout: cfg.Timeout,
	})
	return t.Execute(ctx, cfg.Timeout, func(ctx context.Context) (T, error) {
		return r.Do(ctx, fn)
	})
}
