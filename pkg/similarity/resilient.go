package similarity

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
	"github.com/felixgeelhaar/riskgate/pkg/domain/similarity"
)

// ResilientSearcher retries a flaky searcher and bounds each search. Final
// failures wrap risk.ErrSimilarityUnavailable.
type ResilientSearcher struct {
	inner       similarity.Searcher
	maxAttempts int
	delay       time.Duration
	timeout     time.Duration
}

var _ similarity.Searcher = (*ResilientSearcher)(nil)

func NewResilientSearcher(inner similarity.Searcher, maxAttempts int, delay, limit time.Duration) *ResilientSearcher {
	if maxAttempts <= 0 {
		maxAttempts = 2
	}
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	if limit <= 0 {
		limit = 3 * time.Second
	}
	return &ResilientSearcher{inner: inner, maxAttempts: maxAttempts, delay: delay, timeout: limit}
}

func (s *ResilientSearcher) Search(ctx context.Context, query string, topK int) ([]similarity.Match, error) {
	r := retry.New[[]similarity.Match](retry.Config{
		MaxAttempts:   s.maxAttempts,
		InitialDelay:  s.delay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[[]similarity.Match](timeout.Config{
		DefaultTimeout: s.timeout,
	})

	matches, err := t.Execute(ctx, s.timeout, func(ctx context.Context) ([]similarity.Match, error) {
		return r.Do(ctx, func(ctx context.Context) ([]similarity.Match, error) {
			return s.inner.Search(ctx, query, topK)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", risk.ErrSimilarityUnavailable, err)
	}
	if matches == nil {
		matches = []similarity.Match{}
	}
	return matches, nil
}
