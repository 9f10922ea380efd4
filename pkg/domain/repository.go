// Package domain holds the cross-cutting contracts of a riskgate workspace:
// the audit trail and the repositories behind the .riskgate/ directory.
package domain

import (
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// AssessmentRepository stores completed assessments.
type AssessmentRepository interface {
	SaveAssessment(a *risk.Assessment) error
	// LoadAssessments returns the most recent assessments first. A limit of
	// zero or less returns all of them.
	LoadAssessments(limit int) ([]risk.Assessment, error)
	FindAssessment(id string) (*risk.Assessment, error)
}

// PatternSource provides the raw pattern library and template corpus. A nil
// slice with a nil error means the workspace has no override and the
// embedded defaults apply.
type PatternSource interface {
	LoadPatterns() ([]byte, error)
	LoadTemplates() ([]byte, error)
}

// WorkspaceRepository handles the persistence of riskgate artifacts in the
// .riskgate/ directory.
type WorkspaceRepository interface {
	Initialize() error
	IsInitialized() bool
	SavePatterns(data []byte) error
	SaveTemplates(data []byte) error
	PatternSource
	AuditRepository
	AssessmentRepository
}
