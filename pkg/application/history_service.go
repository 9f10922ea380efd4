package application

import (
	"fmt"

	"github.com/felixgeelhaar/riskgate/pkg/domain"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// HistoryService records completed assessments and answers questions about
// past ones.
type HistoryService struct {
	repo  domain.AssessmentRepository
	audit domain.AuditLogger
}

func NewHistoryService(repo domain.AssessmentRepository, audit domain.AuditLogger) *HistoryService {
	return &HistoryService{repo: repo, audit: audit}
}

// Record persists the assessment and writes its audit event. Fail-safe
// verdicts are audited as assessment.failed.
func (s *HistoryService) Record(a *risk.Assessment, actor string) error {
	if err := s.repo.SaveAssessment(a); err != nil {
		return fmt.Errorf("save assessment: %w", err)
	}
	if s.audit == nil {
		return nil
	}

	action := domain.ActionAssessmentCompleted
	meta := map[string]interface{}{
		"assessment_id": a.ID,
		"document_hash": a.DocumentHash,
		"decision":      string(a.Decision),
		"score":         a.Score.Compound,
		"compound":      a.Compound.Score,
		"high_risk":     a.Compound.IsHigh,
		"findings":      len(a.Findings),
	}
	if a.Failure != "" {
		action = domain.ActionAssessmentFailed
		meta["failure"] = a.Failure
	}
	if err := s.audit.Log(action, actor, meta); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Recent returns up to limit assessments, newest first.
func (s *HistoryService) Recent(limit int) ([]risk.Assessment, error) {
	return s.repo.LoadAssessments(limit)
}

func (s *HistoryService) Get(id string) (*risk.Assessment, error) {
	return s.repo.FindAssessment(id)
}

// Summary counts past decisions.
type Summary struct {
	Total     int                   `json:"total"`
	Blocked   int                   `json:"blocked"`
	HighRisk  int                   `json:"high_risk"`
	Decisions map[risk.Decision]int `json:"decisions"`
}

func (s *HistoryService) Summarize() (*Summary, error) {
	all, err := s.repo.LoadAssessments(0)
	if err != nil {
		return nil, err
	}
	sum := &Summary{Decisions: map[risk.Decision]int{}}
	for _, a := range all {
		sum.Total++
		sum.Decisions[a.Decision]++
		if a.Blocked() {
			sum.Blocked++
		}
		if a.Compound.IsHigh {
			sum.HighRisk++
		}
	}
	return sum, nil
}
