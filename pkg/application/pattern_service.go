package application

import (
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/riskgate/pkg/domain"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
)

// PatternService keeps the active pattern registry in step with the
// workspace files.
type PatternService struct {
	source   domain.PatternSource
	registry *patterns.Registry
	audit    domain.AuditLogger
	logger   *slog.Logger
}

func NewPatternService(source domain.PatternSource, registry *patterns.Registry, audit domain.AuditLogger, logger *slog.Logger) *PatternService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PatternService{source: source, registry: registry, audit: audit, logger: logger}
}

// NewWorkspaceRegistry builds a registry from the workspace overrides,
// falling back to the built-in data for any file the workspace lacks.
func NewWorkspaceRegistry(source domain.PatternSource) (*patterns.Registry, error) {
	reg, err := patterns.NewDefaultRegistry()
	if err != nil {
		return nil, err
	}
	if source == nil {
		return reg, nil
	}
	lib, corpus, err := loadSources(source)
	if err != nil {
		return nil, err
	}
	if err := reg.Reload(lib, corpus); err != nil {
		return nil, err
	}
	return reg, nil
}

func loadSources(source domain.PatternSource) ([]byte, []byte, error) {
	lib, err := source.LoadPatterns()
	if err != nil {
		return nil, nil, fmt.Errorf("read pattern library: %w", err)
	}
	corpus, err := source.LoadTemplates()
	if err != nil {
		return nil, nil, fmt.Errorf("read template corpus: %w", err)
	}
	return lib, corpus, nil
}

func (s *PatternService) Registry() *patterns.Registry {
	return s.registry
}

// Reload re-reads the workspace files and swaps them in. Analyses already
// running keep the snapshot they started with; on error the previous
// library stays active.
func (s *PatternService) Reload() error {
	if s.source == nil {
		return fmt.Errorf("no workspace to reload patterns from")
	}
	lib, corpus, err := loadSources(s.source)
	if err != nil {
		return err
	}
	if err := s.registry.Reload(lib, corpus); err != nil {
		s.logger.Warn("pattern reload rejected, keeping previous library", "error", err)
		return err
	}

	stats := s.registry.Current().Library.Stats()
	s.logger.Info("pattern library reloaded", "version", stats.Version, "patterns", stats.Patterns)
	if s.audit != nil {
		if err := s.audit.Log(domain.ActionPatternsReloaded, domain.ActorSystem, map[string]interface{}{
			"version":  stats.Version,
			"patterns": stats.Patterns,
		}); err != nil {
			s.logger.Warn("failed to audit pattern reload", "error", err)
		}
	}
	return nil
}

// Stats describes the active library.
func (s *PatternService) Stats() patterns.Stats {
	return s.registry.Current().Library.Stats()
}

// ValidatePatterns parses a pattern library without activating it.
func ValidatePatterns(data []byte) (patterns.Stats, error) {
	lib, err := patterns.ParseLibrary(data)
	if err != nil {
		return patterns.Stats{}, err
	}
	return lib.Stats(), nil
}
