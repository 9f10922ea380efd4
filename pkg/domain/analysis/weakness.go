package analysis

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/riskgate/pkg/domain/document"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

const (
	weakThreshold  = 0.1
	maxStrongDamp  = 0.3
	strongDampStep = 0.1
	absentWeight   = 0.5
)

// WeaknessAnalyzer scores how vague or unconvincing each content area is.
type WeaknessAnalyzer struct {
	lib *patterns.Library
}

func NewWeaknessAnalyzer(lib *patterns.Library) *WeaknessAnalyzer {
	return &WeaknessAnalyzer{lib: lib}
}

func (a *WeaknessAnalyzer) Kind() risk.Kind { return risk.KindWeakness }

// Analyze returns the weight-averaged weakness score across categories.
func (a *WeaknessAnalyzer) Analyze(ctx context.Context, doc *document.Document) (risk.ComponentResult, error) {
	res := newResult(risk.KindWeakness)
	text := doc.Text()

	var weighted, total float64
	for _, rule := range a.lib.Weaknesses {
		total += rule.Weight

		if !rule.PresenceMatcher().MatchString(text) {
			weighted += rule.Weight
			res.Details[rule.Category] = 1
			res.Findings = append(res.Findings, risk.NewFinding(
				"weakness-absent-"+rule.Category,
				risk.KindWeakness,
				risk.SeverityMedium,
				rule.Theme,
				fmt.Sprintf("The document does not address %s.", rule.Title),
			).At(rule.Category).WithWeight(absentWeight))
			res.Recommendations = append(res.Recommendations, fmt.Sprintf("Add concrete %s content.", rule.Title))
			continue
		}

		weak := rule.WeakMatcher().Count(text)
		negative := rule.NegativeMatcher().Count(text)
		strong := rule.StrongMatcher().Count(text)
		score := WeaknessScore(weak, negative, strong, rule.IndicatorCount())
		res.Details[rule.Category] = score
		weighted += rule.Weight * score

		if score <= weakThreshold {
			continue
		}
		res.Findings = append(res.Findings, risk.NewFinding(
			"weakness-"+rule.Category,
			risk.KindWeakness,
			WeaknessSeverity(score, negative > 0),
			rule.Theme,
			fmt.Sprintf("%s content is weak (score %.2f): %d weak and %d negative indicators, %d strong.", rule.Title, score, weak, negative, strong),
		).At(rule.Category))
		res.Recommendations = append(res.Recommendations, fmt.Sprintf("Replace vague %s statements with specifics.", rule.Title))
	}

	if total > 0 {
		res.Risk = round4(clamp01(weighted / total))
	}
	return res, nil
}

// WeaknessScore normalises weak and doubled negative indicator counts by
// the number of indicator patterns, then subtracts up to 0.3 for strong
// indicators. Strong indicators only dampen a weak signal, so a category
// without weak signals scores 0.
func WeaknessScore(weak, negative, strong, patternCount int) float64 {
	if patternCount <= 0 {
		return 0
	}
	base := clamp01(float64(weak+2*negative) / float64(patternCount))
	if base == 0 {
		return 0
	}
	damp := min(maxStrongDamp, strongDampStep*float64(strong))
	return round4(clamp01(base - damp))
}

// WeaknessSeverity maps a weakness score to a severity. Between 0.6 and 0.8
// the presence of a negative indicator decides between medium and high.
func WeaknessSeverity(score float64, hasNegative bool) risk.Severity {
	switch {
	case score >= 0.8:
		return risk.SeverityHigh
	case score >= 0.6:
		if hasNegative {
			return risk.SeverityHigh
		}
		return risk.SeverityMedium
	case score >= 0.3:
		return risk.SeverityMedium
	default:
		return risk.SeverityLow
	}
}
