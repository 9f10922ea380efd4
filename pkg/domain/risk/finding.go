// Package risk holds the value objects shared by every stage of a document
// risk assessment: findings, per-component results, the compound verdict and
// the release decision.
package risk

import (
	"fmt"
)

// Kind identifies the analyzer (component) that produced a finding.
type Kind string

const (
	KindStructural Kind = "structural"
	KindClause     Kind = "clause"
	KindWeakness   Kind = "weakness"
	KindSemantic   Kind = "semantic"
)

// Kinds returns the analyzer kinds in pipeline order.
func Kinds() []Kind {
	return []Kind{KindStructural, KindClause, KindWeakness, KindSemantic}
}

// IsValid returns true if the kind is a recognized analyzer kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindStructural, KindClause, KindWeakness, KindSemantic:
		return true
	default:
		return false
	}
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities returns all severities from most to least severe.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// Score maps the severity onto its ordinal integer (1..4).
// Unknown severities score 0.
func (s Severity) Score() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

func (s Severity) IsValid() bool {
	return s.Score() > 0
}

// ParseSeverity parses a string into a Severity value.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", fmt.Errorf("invalid severity: %s", s)
	}
	return sev, nil
}

// Theme groups findings for compound scoring regardless of which analyzer
// produced them.
type Theme string

const (
	ThemeContentCompleteness Theme = "content_completeness"
	ThemeLegalDeviation      Theme = "legal_deviation"
	ThemeFinancialRisk       Theme = "financial_risk"
	ThemeQualityIssues       Theme = "quality_issues"
	ThemeSemanticRisk        Theme = "semantic_risk"
	ThemeStructuralIssues    Theme = "structural_issues"
)

var themeWeights = map[Theme]float64{
	ThemeContentCompleteness: 0.8,
	ThemeLegalDeviation:      1.0,
	ThemeFinancialRisk:       0.9,
	ThemeQualityIssues:       0.7,
	ThemeSemanticRisk:        0.6,
	ThemeStructuralIssues:    0.5,
}

// Themes returns every theme in a fixed order. The order is used to break
// ties when choosing a primary theme.
func Themes() []Theme {
	return []Theme{
		ThemeLegalDeviation,
		ThemeFinancialRisk,
		ThemeContentCompleteness,
		ThemeQualityIssues,
		ThemeSemanticRisk,
		ThemeStructuralIssues,
	}
}

func (t Theme) IsValid() bool {
	_, ok := themeWeights[t]
	return ok
}

// Weight returns the fixed per-theme multiplier used by compound scoring.
func (t Theme) Weight() float64 {
	return themeWeights[t]
}

// ParseTheme parses a string into a Theme value.
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid theme: %s", s)
	}
	return t, nil
}

// Finding is a single detected issue. Findings are values: analyzers build
// them and every later stage only reads them.
type Finding struct {
	ID          string   `json:"id" yaml:"id"`
	Kind        Kind     `json:"kind" yaml:"kind"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Theme       Theme    `json:"theme" yaml:"theme"`
	Description string   `json:"description" yaml:"description"`
	Location    string   `json:"location,omitempty" yaml:"location,omitempty"`
	Confidence  float64  `json:"confidence" yaml:"confidence"`
	Weight      float64  `json:"weight" yaml:"weight"`
}

// NewFinding creates a finding with full confidence and the default weight of 1.0.
func NewFinding(id string, kind Kind, severity Severity, theme Theme, description string) Finding {
	return Finding{
		ID:          id,
		Kind:        kind,
		Severity:    severity,
		Theme:       theme,
		Description: description,
		Confidence:  1.0,
		Weight:      1.0,
	}
}

// At returns a copy of the finding located at the given section or clause.
func (f Finding) At(location string) Finding {
	f.Location = location
	return f
}

// WithConfidence returns a copy of the finding with the given confidence.
func (f Finding) WithConfidence(c float64) Finding {
	f.Confidence = c
	return f
}

// WithWeight returns a copy of the finding with the given weight.
func (f Finding) WithWeight(w float64) Finding {
	f.Weight = w
	return f
}

// Validate checks the finding's invariants: exactly one known theme and
// severity, confidence within [0,1] and a non-negative weight.
func (f Finding) Validate() error {
	if !f.Severity.IsValid() {
		return &InvalidFindingError{FindingID: f.ID, Reason: fmt.Sprintf("unknown severity %q", f.Severity)}
	}
	if !f.Theme.IsValid() {
		return &InvalidFindingError{FindingID: f.ID, Reason: fmt.Sprintf("unknown theme %q", f.Theme)}
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return &InvalidFindingError{FindingID: f.ID, Reason: fmt.Sprintf("confidence %.2f outside [0,1]", f.Confidence)}
	}
	if f.Weight < 0 {
		return &InvalidFindingError{FindingID: f.ID, Reason: fmt.Sprintf("negative weight %.2f", f.Weight)}
	}
	return nil
}
