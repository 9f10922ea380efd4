package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

func (r *FilesystemRepository) SaveAssessment(a *risk.Assessment) error {
	if a == nil {
		return fmt.Errorf("assessment is nil")
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal assessment: %w", err)
	}
	return r.appendLine(AssessmentsFile, data)
}

// LoadAssessments returns the newest assessments first.
func (r *FilesystemRepository) LoadAssessments(limit int) ([]risk.Assessment, error) {
	data, err := r.readOptional(AssessmentsFile)
	if err != nil {
		return nil, err
	}

	var all []risk.Assessment
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var a risk.Assessment
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal assessment: %w", err)
		}
		all = append(all, a)
	}

	out := make([]risk.Assessment, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, all[i])
	}
	return out, nil
}

func (r *FilesystemRepository) FindAssessment(id string) (*risk.Assessment, error) {
	all, err := r.LoadAssessments(0)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("assessment %s not found", id)
}
