package analysis

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/riskgate/pkg/domain/document"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// MissingCriticalPenalty is added to structural risk per missing critical section.
const MissingCriticalPenalty = 0.1

// StructuralAnalyzer checks that the required sections are present and
// reasonably complete.
type StructuralAnalyzer struct {
	lib *patterns.Library
}

func NewStructuralAnalyzer(lib *patterns.Library) *StructuralAnalyzer {
	return &StructuralAnalyzer{lib: lib}
}

func (a *StructuralAnalyzer) Kind() risk.Kind { return risk.KindStructural }

// Analyze scores 1 - completeness, where completeness is the weight of
// present required sections over the weight of all required sections.
// Empty text has every section missing and scores 1.0.
func (a *StructuralAnalyzer) Analyze(ctx context.Context, doc *document.Document) (risk.ComponentResult, error) {
	res := newResult(risk.KindStructural)
	text := doc.Text()

	var total, present, bonus float64
	missingCritical := 0
	for _, rule := range a.lib.Sections {
		loc := rule.Matcher().FindIndex(text)

		if !rule.Required {
			if loc != nil {
				bonus += rule.Bonus
			}
			continue
		}

		total += rule.Weight
		if loc == nil {
			sev := risk.SeverityHigh
			if rule.Critical {
				sev = risk.SeverityCritical
				missingCritical++
			}
			res.Findings = append(res.Findings, risk.NewFinding(
				"structural-missing-"+rule.Name,
				risk.KindStructural,
				sev,
				risk.ThemeContentCompleteness,
				fmt.Sprintf("Required section '%s' is missing.", rule.Title),
			).At(rule.Name).WithWeight(rule.Weight))
			res.Recommendations = append(res.Recommendations, fmt.Sprintf("Add a %s section.", rule.Title))
			continue
		}

		present += rule.Weight
		sec, ok := doc.SectionAt(loc[0])
		if !ok {
			continue
		}
		switch {
		case rule.MinWords > 0 && sec.Words < rule.MinWords:
			res.Findings = append(res.Findings, risk.NewFinding(
				"structural-thin-"+rule.Name,
				risk.KindStructural,
				risk.SeverityLow,
				risk.ThemeStructuralIssues,
				fmt.Sprintf("Section '%s' has %d words; at least %d are expected.", rule.Title, sec.Words, rule.MinWords),
			).At(rule.Name).WithConfidence(0.8))
			res.Recommendations = append(res.Recommendations,
				fmt.Sprintf("Expand the %s section to about %d words.", rule.Title, rule.OptimalWords))
		case rule.OptimalWords > 0 && sec.Words < rule.OptimalWords:
			res.Recommendations = append(res.Recommendations,
				fmt.Sprintf("Consider expanding the %s section (%d of about %d words).", rule.Title, sec.Words, rule.OptimalWords))
		}
	}

	completeness := 1.0
	if total > 0 {
		completeness = present / total
	}
	score := clamp01(1 - completeness + MissingCriticalPenalty*float64(missingCritical))
	score = clamp01(score - bonus)

	res.Risk = round4(score)
	res.Details["completeness"] = round4(completeness)
	res.Details["missing_critical"] = float64(missingCritical)
	res.Details["bonus"] = round4(bonus)
	return res, nil
}
