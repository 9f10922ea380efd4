package analysis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/felixgeelhaar/riskgate/pkg/domain/document"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
	"github.com/felixgeelhaar/riskgate/pkg/domain/similarity"
)

const (
	semanticTopK         = 5
	semanticFetchK       = 4 * semanticTopK
	deviationThreshold   = 0.3
	lengthRatioLimit     = 2.0
	anomalyPenaltyStep   = 0.05
	maxAnomalyPenalty    = 0.2
	neutralSimilarity    = 0.5
	patternBlend         = 0.7
	embeddingBlend       = 0.3
	hitScore             = 0.5
	anomalyWeight        = 0.5
	maxSemanticQuery     = 4000
	defaultSearchTimeout = 5 * time.Second
)

// SemanticAnalyzer looks for contradictions and unsupported claims, and
// compares the document with the template corpus through a Searcher.
type SemanticAnalyzer struct {
	lib      *patterns.Library
	searcher similarity.Searcher
	timeout  time.Duration
}

// SemanticOption configures a SemanticAnalyzer.
type SemanticOption func(*SemanticAnalyzer)

// WithSemanticSearcher sets the nearest-template searcher. Without one the
// analyzer runs on patterns only.
func WithSemanticSearcher(s similarity.Searcher) SemanticOption {
	return func(a *SemanticAnalyzer) { a.searcher = s }
}

// WithSearchTimeout bounds the nearest-template search.
func WithSearchTimeout(d time.Duration) SemanticOption {
	return func(a *SemanticAnalyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func NewSemanticAnalyzer(lib *patterns.Library, opts ...SemanticOption) *SemanticAnalyzer {
	a := &SemanticAnalyzer{lib: lib, timeout: defaultSearchTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *SemanticAnalyzer) Kind() risk.Kind { return risk.KindSemantic }

// Analyze combines 0.7 x pattern score, 0.3 x (1 - mean template similarity)
// and an anomaly penalty. Search failures degrade to pattern-only scoring
// with a neutral similarity of 0.5; they never fail the analysis.
func (a *SemanticAnalyzer) Analyze(ctx context.Context, doc *document.Document) (risk.ComponentResult, error) {
	res := newResult(risk.KindSemantic)
	text := doc.Text()

	var patternScore, total float64
	for _, rule := range a.lib.Semantic {
		total += rule.Importance
		locs := rule.Matcher().FindAll(text, -1)
		if len(locs) == 0 {
			continue
		}
		typeScore := min(1, hitScore*float64(len(locs)))
		patternScore += rule.Importance * typeScore
		first := locs[0]
		for _, l := range locs[1:] {
			if l[0] < first[0] {
				first = l
			}
		}
		f := risk.NewFinding(
			"semantic-"+rule.Type,
			risk.KindSemantic,
			rule.Severity,
			rule.Theme,
			fmt.Sprintf("%s: %q", rule.Title, snippet(text[first[0]:first[1]], 100)),
		).WithWeight(rule.Importance * 2).WithConfidence(round4(typeScore))
		if title := locate(doc, first[0]); title != "" {
			f = f.At(title)
		}
		res.Findings = append(res.Findings, f)
		res.Recommendations = append(res.Recommendations, fmt.Sprintf("Resolve the %s.", rule.Title))
	}
	if total > 0 {
		patternScore /= total
	}

	avg, anomalies, degraded := a.compareTemplates(ctx, doc)
	res.Degraded = degraded
	res.Findings = append(res.Findings, anomalies...)
	penalty := min(maxAnomalyPenalty, anomalyPenaltyStep*float64(len(anomalies)))

	res.Risk = round4(clamp01(patternBlend*patternScore + embeddingBlend*(1-avg) + penalty))
	res.Details["pattern_score"] = round4(patternScore)
	res.Details["template_similarity"] = round4(avg)
	res.Details["anomaly_penalty"] = round4(penalty)
	return res, nil
}

func (a *SemanticAnalyzer) compareTemplates(ctx context.Context, doc *document.Document) (float64, []risk.Finding, bool) {
	if a.searcher == nil {
		return neutralSimilarity, nil, false
	}

	query := doc.Text()
	if r := []rune(query); len(r) > maxSemanticQuery {
		query = string(r[:maxSemanticQuery])
	}
	sctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	// The index may hold clauses too; fetch extra and keep the first
	// semanticTopK document matches.
	matches, err := a.searcher.Search(sctx, query, semanticFetchK)
	if err != nil {
		return neutralSimilarity, nil, true
	}

	var (
		sum       float64
		n         int
		anomalies []risk.Finding
	)
	words := doc.WordCount()
	for _, m := range matches {
		if m.Metadata[similarity.MetaKind] == "clause" {
			continue
		}
		sim := m.Similarity()
		sum += sim
		n++
		if sim < deviationThreshold {
			anomalies = append(anomalies, risk.NewFinding(
				"semantic-deviation-"+m.ID,
				risk.KindSemantic,
				risk.SeverityMedium,
				risk.ThemeSemanticRisk,
				fmt.Sprintf("Content deviates from template '%s' (similarity %.2f).", m.ID, sim),
			).At("semantic_deviation").WithWeight(anomalyWeight).WithConfidence(round4(1-sim)))
		}
		if src, err := strconv.Atoi(m.Metadata[similarity.MetaSourceWords]); err == nil && src > 0 && words > 0 {
			ratio := float64(max(src, words)) / float64(min(src, words))
			if ratio > lengthRatioLimit {
				anomalies = append(anomalies, risk.NewFinding(
					"semantic-length-"+m.ID,
					risk.KindSemantic,
					risk.SeverityLow,
					risk.ThemeStructuralIssues,
					fmt.Sprintf("Document length (%d words) differs from template '%s' (%d words) by %.1fx.", words, m.ID, src, ratio),
				).At("content_length_anomaly").WithWeight(anomalyWeight))
			}
		}
		if n == semanticTopK {
			break
		}
	}
	if n == 0 {
		return neutralSimilarity, anomalies, false
	}
	return sum / float64(n), anomalies, false
}
