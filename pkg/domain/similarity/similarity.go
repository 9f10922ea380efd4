// Package similarity defines the nearest-template search contract and the
// blended text similarity metric used to compare clauses.
package similarity

import (
	"context"

	"github.com/felixgeelhaar/riskgate/pkg/domain/document"
	"github.com/pmezard/go-difflib/difflib"
)

// Metric tells how Match.Score should be read.
type Metric string

const (
	MetricSimilarity Metric = "similarity" // 0..1, higher is closer
	MetricDistance   Metric = "distance"   // >= 0, lower is closer
)

// Metadata keys understood by the analyzers.
const (
	MetaKind        = "kind"         // "clause" or "document"
	MetaClauseType  = "clause_type"  // clause type for clause templates
	MetaSourceWords = "source_words" // word count of the template document
)

// Match is one nearest-template result.
type Match struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Score    float64           `json:"score"`
	Metric   Metric            `json:"metric"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Similarity normalises the score to [0,1]. Distances map through 1/(1+d).
func (m Match) Similarity() float64 {
	if m.Metric == MetricDistance {
		if m.Score < 0 {
			return 1
		}
		return 1 / (1 + m.Score)
	}
	return clamp(m.Score)
}

// Searcher returns the topK nearest templates to a query, best first.
// Implementations return an empty slice, not an error, when no index exists.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Match, error)
}

// Blend weights.
const (
	SequenceWeight = 0.4
	TokenWeight    = 0.4
	NGramWeight    = 0.2
)

// Blend compares two texts: word sequence alignment ratio, word-set Jaccard
// and character trigram Jaccard, combined 0.4/0.4/0.2.
func Blend(a, b string) float64 {
	ta, tb := document.Tokenize(a), document.Tokenize(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	seq := difflib.NewMatcher(ta, tb).Ratio()
	tok := jaccard(setOf(ta), setOf(tb))
	ngr := jaccard(trigrams(ta), trigrams(tb))
	return clamp(SequenceWeight*seq + TokenWeight*tok + NGramWeight*ngr)
}

// TokenJaccard is the Jaccard index of the two texts' word sets.
func TokenJaccard(a, b string) float64 {
	return jaccard(setOf(document.Tokenize(a)), setOf(document.Tokenize(b)))
}

func setOf(tokens []string) map[string]struct{} {
	s := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

func trigrams(tokens []string) map[string]struct{} {
	s := map[string]struct{}{}
	for i, t := range tokens {
		if i > 0 {
			t = " " + t
		}
		r := []rune(t)
		if len(r) < 3 {
			s[string(r)] = struct{}{}
			continue
		}
		for j := 0; j+3 <= len(r); j++ {
			s[string(r[j:j+3])] = struct{}{}
		}
	}
	return s
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
