package application

import (
	"fmt"

	"github.com/felixgeelhaar/riskgate/pkg/domain"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
)

// InitService creates a .riskgate workspace seeded with the built-in pattern
// library and template corpus.
type InitService struct {
	repo  domain.WorkspaceRepository
	audit domain.AuditLogger
}

func NewInitService(repo domain.WorkspaceRepository, audit domain.AuditLogger) *InitService {
	return &InitService{repo: repo, audit: audit}
}

func (s *InitService) InitializeWorkspace() error {
	if s.repo.IsInitialized() {
		return fmt.Errorf("workspace already initialized")
	}
	if err := s.repo.Initialize(); err != nil {
		return err
	}
	if err := s.repo.SavePatterns(patterns.DefaultLibraryYAML()); err != nil {
		return fmt.Errorf("write pattern library: %w", err)
	}
	if err := s.repo.SaveTemplates(patterns.DefaultCorpusYAML()); err != nil {
		return fmt.Errorf("write template corpus: %w", err)
	}
	if s.audit != nil {
		return s.audit.Log(domain.ActionWorkspaceInitialized, domain.ActorHuman, nil)
	}
	return nil
}
