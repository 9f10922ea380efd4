// Package analysis contains the four document analyzers. Each analyzer reads
// a pattern library snapshot and a document and returns a ComponentResult;
// none of them keep state between calls.
package analysis

import (
	"context"
	"math"
	"strings"

	"github.com/felixgeelhaar/riskgate/pkg/domain/document"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// Analyzer is one independent stage of the risk pipeline.
type Analyzer interface {
	Kind() risk.Kind
	Analyze(ctx context.Context, doc *document.Document) (risk.ComponentResult, error)
}

func newResult(kind risk.Kind) risk.ComponentResult {
	return risk.ComponentResult{
		Component: kind,
		Findings:  []risk.Finding{},
		Details:   map[string]float64{},
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// snippet returns a single-line excerpt of at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// locate names the section containing offset, or "" if it has no title.
func locate(doc *document.Document, offset int) string {
	if sec, ok := doc.SectionAt(offset); ok {
		return sec.Title
	}
	return ""
}
