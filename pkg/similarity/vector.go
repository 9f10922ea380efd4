package similarity

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
	"github.com/felixgeelhaar/riskgate/pkg/domain/similarity"
	"golang.org/x/sync/errgroup"
)

const defaultEmbedConcurrency = 4

// VectorIndex ranks corpus templates by cosine similarity of their
// embeddings. Template vectors are computed on first use and rebuilt when
// the corpus changes.
type VectorIndex struct {
	embedder    ai.Embedder
	source      CorpusSource
	kinds       map[string]bool
	concurrency int

	mu      sync.Mutex
	corpus  *patterns.Corpus
	entries []entry
	vectors [][]float64
}

var _ similarity.Searcher = (*VectorIndex)(nil)

func NewVectorIndex(embedder ai.Embedder, source CorpusSource, kinds ...string) *VectorIndex {
	return &VectorIndex{
		embedder:    embedder,
		source:      source,
		kinds:       kindSet(kinds),
		concurrency: defaultEmbedConcurrency,
	}
}

func (v *VectorIndex) Search(ctx context.Context, query string, topK int) ([]similarity.Match, error) {
	ents, vecs, err := v.index(ctx)
	if err != nil {
		return nil, err
	}
	if len(ents) == 0 {
		return []similarity.Match{}, nil
	}

	q, err := v.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", risk.ErrSimilarityUnavailable, err)
	}

	matches := make([]similarity.Match, 0, len(ents))
	for i, e := range ents {
		matches = append(matches, similarity.Match{
			ID:       e.id,
			Content:  e.content,
			Score:    round4(math.Max(0, cosine(q, vecs[i]))),
			Metric:   similarity.MetricSimilarity,
			Metadata: e.metadata,
		})
	}
	return rank(matches, topK), nil
}

func (v *VectorIndex) index(ctx context.Context) ([]entry, [][]float64, error) {
	corpus := v.source()

	v.mu.Lock()
	defer v.mu.Unlock()
	if corpus == v.corpus && v.vectors != nil {
		return v.entries, v.vectors, nil
	}

	ents := entries(corpus, v.kinds)
	vecs := make([][]float64, len(ents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, e := range ents {
		g.Go(func() error {
			vec, err := v.embedder.Embed(gctx, e.content)
			if err != nil {
				return fmt.Errorf("%w: embed template %s: %v", risk.ErrSimilarityUnavailable, e.id, err)
			}
			vecs[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	v.corpus, v.entries, v.vectors = corpus, ents, vecs
	return ents, vecs, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
