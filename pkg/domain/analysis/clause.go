package analysis

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/felixgeelhaar/riskgate/pkg/domain/document"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
	"github.com/felixgeelhaar/riskgate/pkg/domain/similarity"
)

const (
	// DefaultClauseThreshold is the similarity below which a clause counts as altered.
	DefaultClauseThreshold = 0.7
	// HighDeviationThreshold is the similarity below which an alteration is high severity.
	HighDeviationThreshold = 0.5

	// UnverifiedClause is the Details value for a clause with no reference wording.
	UnverifiedClause = -1

	clauseWindow        = 300
	maxClauseCandidates = 5
	clauseSearchTopK    = 3
)

// ClauseAnalyzer compares clause spans with approved reference wording.
type ClauseAnalyzer struct {
	lib       *patterns.Library
	corpus    *patterns.Corpus
	searcher  similarity.Searcher
	threshold float64
}

// ClauseOption configures a ClauseAnalyzer.
type ClauseOption func(*ClauseAnalyzer)

// WithClauseSearcher adds remote reference clauses from a similarity searcher.
func WithClauseSearcher(s similarity.Searcher) ClauseOption {
	return func(a *ClauseAnalyzer) { a.searcher = s }
}

// WithClauseThreshold overrides the altered-clause threshold.
func WithClauseThreshold(t float64) ClauseOption {
	return func(a *ClauseAnalyzer) { a.threshold = t }
}

func NewClauseAnalyzer(snap *patterns.Snapshot, opts ...ClauseOption) *ClauseAnalyzer {
	a := &ClauseAnalyzer{
		lib:       snap.Library,
		corpus:    snap.Corpus,
		threshold: DefaultClauseThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *ClauseAnalyzer) Kind() risk.Kind { return risk.KindClause }

// Analyze emits a missing finding for every clause type with no candidate
// span and an altered finding for every clause whose best similarity to the
// reference wording is under the threshold. A clause with no reference
// wording is scored at neutral similarity and reported as unverified. Risk
// is the importance-weighted mean of 1 - similarity.
func (a *ClauseAnalyzer) Analyze(ctx context.Context, doc *document.Document) (risk.ComponentResult, error) {
	res := newResult(risk.KindClause)

	var weighted, total float64
	for _, rule := range a.lib.Clauses {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		total += rule.Importance

		cands := candidateSpans(doc, rule.Matcher())
		if len(cands) == 0 {
			weighted += rule.Importance
			res.Details[rule.Type] = 0
			res.Findings = append(res.Findings, risk.NewFinding(
				"clause-missing-"+rule.Type,
				risk.KindClause,
				risk.SeverityHigh,
				risk.ThemeLegalDeviation,
				fmt.Sprintf("No %s clause found.", rule.Title),
			).At(rule.Type).WithWeight(rule.Importance))
			res.Recommendations = append(res.Recommendations, fmt.Sprintf("Add a %s clause based on the approved template.", rule.Title))
			continue
		}

		refs := a.references(rule.Type)
		if extra, err := a.searchReferences(ctx, rule.Type, cands[0].Text); err != nil {
			res.Degraded = true
		} else {
			refs = append(refs, extra...)
		}
		if len(refs) == 0 {
			weighted += rule.Importance * (1 - neutralSimilarity)
			res.Details[rule.Type] = UnverifiedClause
			loc := rule.Type
			if title := locate(doc, cands[0].Start); title != "" {
				loc = title
			}
			res.Findings = append(res.Findings, risk.NewFinding(
				"clause-unverified-"+rule.Type,
				risk.KindClause,
				risk.SeverityLow,
				risk.ThemeLegalDeviation,
				fmt.Sprintf("%s clause could not be checked: no approved template wording is available.", rule.Title),
			).At(loc).WithWeight(rule.Importance))
			res.Recommendations = append(res.Recommendations, fmt.Sprintf("Add approved %s wording to the template corpus.", rule.Title))
			continue
		}

		best, bestSpan := 0.0, cands[0]
		for _, c := range cands {
			for _, ref := range refs {
				if s := similarity.Blend(c.Text, ref); s > best {
					best, bestSpan = s, c
				}
			}
		}
		best = round4(best)
		res.Details[rule.Type] = best
		weighted += rule.Importance * (1 - best)

		if best < a.threshold {
			sev := risk.SeverityMedium
			if best < HighDeviationThreshold {
				sev = risk.SeverityHigh
			}
			loc := rule.Type
			if title := locate(doc, bestSpan.Start); title != "" {
				loc = title
			}
			res.Findings = append(res.Findings, risk.NewFinding(
				"clause-altered-"+rule.Type,
				risk.KindClause,
				sev,
				risk.ThemeLegalDeviation,
				fmt.Sprintf("%s clause deviates from the approved template (similarity %.2f): %q", rule.Title, best, snippet(bestSpan.Text, 80)),
			).At(loc).WithConfidence(round4(clamp01(1 - best))))
			res.Recommendations = append(res.Recommendations, fmt.Sprintf("Review the %s clause against the approved wording.", rule.Title))
		}
	}

	if total > 0 {
		res.Risk = round4(clamp01(weighted / total))
	}
	return res, nil
}

func (a *ClauseAnalyzer) references(clauseType string) []string {
	if a.corpus == nil {
		return nil
	}
	var out []string
	for _, c := range a.corpus.ClausesFor(clauseType) {
		out = append(out, c.Text)
	}
	return out
}

func (a *ClauseAnalyzer) searchReferences(ctx context.Context, clauseType, query string) ([]string, error) {
	if a.searcher == nil {
		return nil, nil
	}
	matches, err := a.searcher.Search(ctx, query, clauseSearchTopK)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range matches {
		if m.Metadata[similarity.MetaClauseType] == clauseType && m.Content != "" {
			out = append(out, m.Content)
		}
	}
	return out, nil
}

// candidateSpans returns up to five spans around pattern matches. A span is
// the paragraph holding the match, with a bare heading joined to the
// paragraph after it; long paragraphs are cut to a window around the match.
func candidateSpans(doc *document.Document, m patterns.Matcher) []document.Span {
	locs := m.FindAll(doc.Text(), -1)
	if len(locs) == 0 {
		return nil
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i][0] < locs[j][0] })

	text := doc.Text()
	paras := doc.Paragraphs()
	seen := map[int]bool{}
	var out []document.Span
	for _, loc := range locs {
		span, ok := spanFor(text, paras, loc)
		if !ok || seen[span.Start] {
			continue
		}
		seen[span.Start] = true
		out = append(out, span)
		if len(out) == maxClauseCandidates {
			break
		}
	}
	return out
}

func spanFor(text string, paras []document.Span, loc []int) (document.Span, bool) {
	for i, p := range paras {
		if loc[0] < p.Start || loc[0] >= p.End {
			continue
		}
		if document.IsHeading(p.Text) && i+1 < len(paras) {
			p = document.Span{Start: p.Start, End: paras[i+1].End, Text: text[p.Start:paras[i+1].End]}
		}
		if p.End-p.Start > 2*clauseWindow {
			start := max(p.Start, loc[0]-clauseWindow)
			for start > p.Start && !utf8.RuneStart(text[start]) {
				start--
			}
			end := min(p.End, loc[1]+clauseWindow)
			for end < p.End && !utf8.RuneStart(text[end]) {
				end++
			}
			return document.Span{Start: start, End: end, Text: text[start:end]}, true
		}
		return p, true
	}
	return document.Span{}, false
}
