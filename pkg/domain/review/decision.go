// Package review maps risk scores to release decisions and drives a single
// assessment through its lifecycle.
package review

import (
	"math"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// Decision thresholds on the 0..1 compound component score. Each bound is
// inclusive.
const (
	AutoApproveMax     = 0.2
	ManualReviewMax    = 0.5
	RequiresChangesMax = 0.7
	AutoBlockMax       = 0.85
)

// DecisionFor maps a 0..1 score to a release decision.
func DecisionFor(score float64) risk.Decision {
	switch {
	case score <= AutoApproveMax:
		return risk.DecisionAutoApprove
	case score <= ManualReviewMax:
		return risk.DecisionManualReview
	case score <= RequiresChangesMax:
		return risk.DecisionRequiresChanges
	case score <= AutoBlockMax:
		return risk.DecisionAutoBlock
	default:
		return risk.DecisionCriticalBlock
	}
}

const (
	baseConfidence    = 0.9
	disagreementLimit = 0.5
	disagreementCost  = 0.1
	degradedCost      = 0.05
)

// Confidence rates how far the decision can be trusted. Strongly disagreeing
// components (spread above 0.5) and a semantic analyzer running without its
// searcher both lower it.
func Confidence(spread float64, degraded bool) float64 {
	c := baseConfidence
	if spread > disagreementLimit {
		c -= disagreementCost
	}
	if degraded {
		c -= degradedCost
	}
	return math.Round(math.Max(0, math.Min(1, c))*1e4) / 1e4
}
