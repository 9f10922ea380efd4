// Package scoring turns analyzer output into the two risk numbers of an
// assessment: the weighted component score on the 0..1 scale and the
// theme-based compound score on the 0..10 scale.
package scoring

import (
	"fmt"
	"math"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// ComponentWeights are the fixed contributions of each analyzer.
var ComponentWeights = map[risk.Kind]float64{
	risk.KindStructural: 0.25,
	risk.KindClause:     0.30,
	risk.KindWeakness:   0.25,
	risk.KindSemantic:   0.20,
}

// Scorer combines component risks into a single 0..1 score.
type Scorer struct {
	weights map[risk.Kind]float64
}

func NewScorer() *Scorer {
	return &Scorer{weights: ComponentWeights}
}

// Score computes sum(component risk x weight). A component that is absent
// contributes nothing; an unknown component or a risk outside [0,1] is an
// error.
func (s *Scorer) Score(results []risk.ComponentResult) (risk.ScoreSummary, error) {
	sum := risk.ScoreSummary{Contributions: map[risk.Kind]float64{}}
	if len(results) == 0 {
		sum.Level = risk.LevelFor(0)
		return sum, nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range results {
		w, ok := s.weights[r.Component]
		if !ok {
			return sum, fmt.Errorf("unknown component %q", r.Component)
		}
		if r.Risk < 0 || r.Risk > 1 || math.IsNaN(r.Risk) {
			return sum, fmt.Errorf("component %s risk %f outside [0,1]", r.Component, r.Risk)
		}
		c := round4(r.Risk * w)
		sum.Contributions[r.Component] = c
		sum.Compound += r.Risk * w
		lo = math.Min(lo, r.Risk)
		hi = math.Max(hi, r.Risk)
	}
	sum.Compound = round4(math.Min(1, sum.Compound))
	sum.Spread = round4(hi - lo)
	sum.Level = risk.LevelFor(sum.Compound)
	return sum, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
