package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/riskgate/internal/infrastructure/config"
	infraai "github.com/felixgeelhaar/riskgate/pkg/ai"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/felixgeelhaar/riskgate/pkg/domain/similarity"
	infrasim "github.com/felixgeelhaar/riskgate/pkg/similarity"
	"github.com/redis/go-redis/v9"
)

// Searchers holds the similarity collaborators for clause comparison and
// whole-document comparison. Both are nil for the "none" backend.
type Searchers struct {
	Clause   similarity.Searcher
	Semantic similarity.Searcher
	Backend  string
	redis    *redis.Client
}

// Close releases the Redis connection, if any.
func (s *Searchers) Close() error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Close()
}

// BuildSearchers selects the backend from cfg. An unreachable Redis disables
// the cache and is logged; it never fails the build.
func BuildSearchers(ctx context.Context, cfg *config.Config, registry *patterns.Registry, provider *infraai.ResilientProvider, logger *slog.Logger) (*Searchers, error) {
	sc := cfg.Similarity
	out := &Searchers{Backend: sc.Backend}
	source := infrasim.RegistrySource(registry)

	switch sc.Backend {
	case config.BackendNone:
		return out, nil
	case config.BackendLexical, "":
		out.Backend = config.BackendLexical
		out.Clause = infrasim.NewLexicalSearcher(source, infrasim.KindClause)
		out.Semantic = infrasim.NewLexicalSearcher(source, infrasim.KindDocument)
	case config.BackendEmbedding:
		if provider == nil || !canEmbed(provider) {
			return nil, fmt.Errorf("similarity backend %q needs an AI provider that supports embeddings", sc.Backend)
		}
		out.Clause = infrasim.NewVectorIndex(provider, source, infrasim.KindClause)
		out.Semantic = infrasim.NewVectorIndex(provider, source, infrasim.KindDocument)
	default:
		return nil, fmt.Errorf("unknown similarity backend %q", sc.Backend)
	}

	limit := time.Duration(sc.TimeoutMs) * time.Millisecond
	out.Clause = infrasim.NewResilientSearcher(out.Clause, sc.MaxAttempts, 0, limit)
	out.Semantic = infrasim.NewResilientSearcher(out.Semantic, sc.MaxAttempts, 0, limit)

	if sc.RedisURL == "" {
		return out, nil
	}
	client, err := infrasim.NewRedisClient(ctx, sc.RedisURL)
	if err != nil {
		logger.Warn("similarity cache disabled", "component", "similarity", "error", err)
		return out, nil
	}
	out.redis = client

	namespace := func(kind string) func() string {
		return func() string {
			return out.Backend + ":" + kind + ":" + registry.Current().Corpus.Version
		}
	}
	ttl := time.Duration(sc.CacheTTLSec) * time.Second
	out.Clause = infrasim.NewCachedSearcher(out.Clause, client,
		infrasim.WithCacheTTL(ttl), infrasim.WithCacheNamespace(namespace(infrasim.KindClause)), infrasim.WithCacheLogger(logger))
	out.Semantic = infrasim.NewCachedSearcher(out.Semantic, client,
		infrasim.WithCacheTTL(ttl), infrasim.WithCacheNamespace(namespace(infrasim.KindDocument)), infrasim.WithCacheLogger(logger))
	return out, nil
}
