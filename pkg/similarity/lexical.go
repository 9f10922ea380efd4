package similarity

import (
	"context"

	"github.com/felixgeelhaar/riskgate/pkg/domain/similarity"
)

// LexicalSearcher ranks corpus templates with the blended text metric. It
// needs no external service.
type LexicalSearcher struct {
	source CorpusSource
	kinds  map[string]bool
}

var _ similarity.Searcher = (*LexicalSearcher)(nil)

// NewLexicalSearcher searches the templates of the given kinds, or all of
// them when none are given.
func NewLexicalSearcher(source CorpusSource, kinds ...string) *LexicalSearcher {
	return &LexicalSearcher{source: source, kinds: kindSet(kinds)}
}

func (s *LexicalSearcher) Search(ctx context.Context, query string, topK int) ([]similarity.Match, error) {
	all := entries(s.source(), s.kinds)
	matches := make([]similarity.Match, 0, len(all))
	for _, e := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches = append(matches, similarity.Match{
			ID:       e.id,
			Content:  e.content,
			Score:    round4(similarity.Blend(query, e.content)),
			Metric:   similarity.MetricSimilarity,
			Metadata: e.metadata,
		})
	}
	return rank(matches, topK), nil
}
