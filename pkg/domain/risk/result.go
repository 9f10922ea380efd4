package risk

import (
	"time"
)

// ComponentResult is one analyzer's contribution to an assessment.
type ComponentResult struct {
	Component       Kind               `json:"component" yaml:"component"`
	Findings        []Finding          `json:"findings" yaml:"findings"`
	Risk            float64            `json:"risk" yaml:"risk"`
	Recommendations []string           `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	Details         map[string]float64 `json:"details,omitempty" yaml:"details,omitempty"`
	// Degraded is set when a collaborator was unavailable and the analyzer
	// fell back to pattern-only scoring.
	Degraded bool `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

// ThemeScore is the per-theme slice of a compound verdict.
type ThemeScore struct {
	Score      float64          `json:"score" yaml:"score"`
	Count      int              `json:"count" yaml:"count"`
	Severities map[Severity]int `json:"severities" yaml:"severities"`
}

// CompoundRiskResult is the terminal verdict of the compound detector.
// Score is on a 0-10 scale.
type CompoundRiskResult struct {
	IsHigh            bool                 `json:"is_high" yaml:"is_high"`
	Score             float64              `json:"score" yaml:"score"`
	PrimaryTheme      Theme                `json:"primary_theme,omitempty" yaml:"primary_theme,omitempty"`
	Summary           string               `json:"summary" yaml:"summary"`
	RecommendedAction string               `json:"recommended_action" yaml:"recommended_action"`
	ThemeBreakdown    map[Theme]ThemeScore `json:"theme_breakdown" yaml:"theme_breakdown"`
}

// RiskLevel is the canonical banding of a 0..1 risk score.
type RiskLevel string

const (
	LevelLow      RiskLevel = "low"
	LevelMedium   RiskLevel = "medium"
	LevelHigh     RiskLevel = "high"
	LevelCritical RiskLevel = "critical"
)

// LevelFor bands a 0..1 score: low <0.3, medium <0.6, high <0.8, critical otherwise.
func LevelFor(score float64) RiskLevel {
	switch {
	case score < 0.3:
		return LevelLow
	case score < 0.6:
		return LevelMedium
	case score < 0.8:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// ScoreSummary is the Risk Scorer output on the canonical 0..1 scale.
type ScoreSummary struct {
	Compound      float64          `json:"compound" yaml:"compound"`
	Level         RiskLevel        `json:"level" yaml:"level"`
	Contributions map[Kind]float64 `json:"contributions" yaml:"contributions"`
	// Spread is the difference between the highest and lowest component risk.
	Spread float64 `json:"spread" yaml:"spread"`
}

// Decision is the release decision derived from the compound risk score.
type Decision string

const (
	DecisionAutoApprove     Decision = "auto_approve"
	DecisionManualReview    Decision = "manual_review"
	DecisionRequiresChanges Decision = "requires_changes"
	DecisionAutoBlock       Decision = "auto_block"
	DecisionCriticalBlock   Decision = "critical_block"
)

// Decisions returns every decision from least to most severe.
func Decisions() []Decision {
	return []Decision{DecisionAutoApprove, DecisionManualReview, DecisionRequiresChanges, DecisionAutoBlock, DecisionCriticalBlock}
}

// Blocks returns true if the decision prevents release.
func (d Decision) Blocks() bool {
	return d == DecisionAutoBlock || d == DecisionCriticalBlock
}

func (d Decision) String() string {
	return string(d)
}

// Fix is a remediation suggestion for one finding. Fixes are advisory.
type Fix struct {
	FindingID  string  `json:"finding_id" yaml:"finding_id"`
	Text       string  `json:"text,omitempty" yaml:"text,omitempty"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Rationale  string  `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// RemediationReport collects the fixes produced for a high-risk document.
type RemediationReport struct {
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Fixes    []Fix  `json:"fixes" yaml:"fixes"`
	Skipped  int    `json:"skipped" yaml:"skipped"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Assessment is the structured record handed to the surrounding application.
type Assessment struct {
	ID           string             `json:"id" yaml:"id"`
	DocumentHash string             `json:"document_hash" yaml:"document_hash"`
	Words        int                `json:"words" yaml:"words"`
	Library      string             `json:"pattern_library" yaml:"pattern_library"`
	Components   []ComponentResult  `json:"components" yaml:"components"`
	Findings     []Finding          `json:"findings" yaml:"findings"`
	Score        ScoreSummary       `json:"score" yaml:"score"`
	Compound     CompoundRiskResult `json:"compound" yaml:"compound"`
	Decision     Decision           `json:"decision" yaml:"decision"`
	Confidence   float64            `json:"confidence" yaml:"confidence"`
	Remediation  *RemediationReport `json:"remediation,omitempty" yaml:"remediation,omitempty"`
	States       []string           `json:"states" yaml:"states"`
	Degraded     bool               `json:"degraded,omitempty" yaml:"degraded,omitempty"`
	Failure      string             `json:"failure,omitempty" yaml:"failure,omitempty"`
	CreatedAt    time.Time          `json:"created_at" yaml:"created_at"`
}

// Component returns the result for the given analyzer kind, if present.
func (a *Assessment) Component(kind Kind) (ComponentResult, bool) {
	for _, c := range a.Components {
		if c.Component == kind {
			return c, true
		}
	}
	return ComponentResult{}, false
}

// Blocked returns true if the assessment's decision prevents release.
func (a *Assessment) Blocked() bool {
	return a.Decision.Blocks()
}
