package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

const (
	// HighRiskThreshold is inclusive: a score of exactly 7.0 is high risk.
	HighRiskThreshold = 7.0
	// ReviewThreshold separates REVIEW from PROCEED below the high threshold.
	ReviewThreshold  = 4.0
	MaxCompoundScore = 10.0

	dominantShare    = 0.7
	accumulatedShare = 0.3
)

// CompoundDetector groups findings by theme and decides whether their
// combination is unacceptable.
type CompoundDetector struct{}

func NewCompoundDetector() *CompoundDetector {
	return &CompoundDetector{}
}

// Detect scores each theme as sum(severity x weight x theme weight) and the
// document as 0.7 x worst theme + 0.3 x the other themes, capped at 10.
// Findings from different analyzers share a theme score.
//
// A malformed finding yields the fail-safe blocking result together with
// the error, so callers that ignore the error still block.
func (d *CompoundDetector) Detect(findings []risk.Finding) (risk.CompoundRiskResult, error) {
	for _, f := range findings {
		if err := f.Validate(); err != nil {
			return FailSafe(err), err
		}
	}
	if len(findings) == 0 {
		return risk.CompoundRiskResult{
			Summary:           "No risk findings.",
			RecommendedAction: "PROCEED: no risk findings.",
			ThemeBreakdown:    map[risk.Theme]risk.ThemeScore{},
		}, nil
	}

	breakdown := map[risk.Theme]risk.ThemeScore{}
	histogram := map[risk.Severity]int{}
	for _, f := range findings {
		ts := breakdown[f.Theme]
		if ts.Severities == nil {
			ts.Severities = map[risk.Severity]int{}
		}
		ts.Score += float64(f.Severity.Score()) * f.Weight * f.Theme.Weight()
		ts.Count++
		ts.Severities[f.Severity]++
		breakdown[f.Theme] = ts
		histogram[f.Severity]++
	}

	var primary risk.Theme
	var top, total float64
	for _, theme := range risk.Themes() {
		ts, ok := breakdown[theme]
		if !ok {
			continue
		}
		ts.Score = round4(ts.Score)
		breakdown[theme] = ts
		total += ts.Score
		if primary == "" || ts.Score > top {
			primary, top = theme, ts.Score
		}
	}

	score := round4(math.Min(MaxCompoundScore, dominantShare*top+accumulatedShare*(total-top)))
	res := risk.CompoundRiskResult{
		IsHigh:         score >= HighRiskThreshold,
		Score:          score,
		PrimaryTheme:   primary,
		ThemeBreakdown: breakdown,
	}
	res.Summary = fmt.Sprintf("Primary risk theme %s; %d findings (%s); compound score %.2f/10.",
		primary, len(findings), formatHistogram(histogram), score)
	res.RecommendedAction = recommendedAction(res)
	return res, nil
}

// FailSafe is the conservative verdict used whenever analysis cannot
// complete: maximum score, high risk, block.
func FailSafe(err error) risk.CompoundRiskResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return risk.CompoundRiskResult{
		IsHigh:            true,
		Score:             MaxCompoundScore,
		Summary:           "analysis failed: " + msg,
		RecommendedAction: "BLOCK: automated analysis failed; manual review is required before release.",
		ThemeBreakdown:    map[risk.Theme]risk.ThemeScore{},
	}
}

func recommendedAction(r risk.CompoundRiskResult) string {
	switch {
	case r.IsHigh:
		return fmt.Sprintf("BLOCK: compound risk %.2f/10 driven by %s; resolve the findings before release.", r.Score, r.PrimaryTheme)
	case r.Score >= ReviewThreshold:
		return fmt.Sprintf("REVIEW: compound risk %.2f/10; have a reviewer check the %s findings.", r.Score, r.PrimaryTheme)
	default:
		return fmt.Sprintf("PROCEED: compound risk %.2f/10 is within tolerance.", r.Score)
	}
}

func formatHistogram(h map[risk.Severity]int) string {
	var parts []string
	for _, s := range risk.Severities() {
		if n := h[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", s, n))
		}
	}
	return strings.Join(parts, ", ")
}
