package similarity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/riskgate/pkg/domain/similarity"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL    = time.Hour
	defaultCachePrefix = "riskgate:similar"
)

// CachedSearcher stores nearest-template results in Redis. Cache failures
// are logged and the inner searcher is used directly.
type CachedSearcher struct {
	inner     similarity.Searcher
	client    *redis.Client
	ttl       time.Duration
	namespace func() string
	logger    *slog.Logger
}

var _ similarity.Searcher = (*CachedSearcher)(nil)

// CacheOption configures a CachedSearcher.
type CacheOption func(*CachedSearcher)

func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedSearcher) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheNamespace scopes keys, typically by corpus version, so a corpus
// reload never serves stale matches.
func WithCacheNamespace(ns func() string) CacheOption {
	return func(c *CachedSearcher) { c.namespace = ns }
}

func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *CachedSearcher) { c.logger = l }
}

func NewCachedSearcher(inner similarity.Searcher, client *redis.Client, opts ...CacheOption) *CachedSearcher {
	c := &CachedSearcher{
		inner:     inner,
		client:    client,
		ttl:       defaultCacheTTL,
		namespace: func() string { return "" },
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (c *CachedSearcher) Search(ctx context.Context, query string, topK int) ([]similarity.Match, error) {
	key := c.key(query, topK)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []similarity.Match
		if jerr := json.Unmarshal(data, &cached); jerr == nil {
			return cached, nil
		}
		c.logger.Warn("discarding corrupt similarity cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("similarity cache read failed", "error", err)
	}

	matches, err := c.inner.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(matches); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("similarity cache write failed", "error", err)
		}
	}
	return matches, nil
}

func (c *CachedSearcher) key(query string, topK int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s:%s:%d:%s", defaultCachePrefix, c.namespace(), topK, hex.EncodeToString(sum[:]))
}
