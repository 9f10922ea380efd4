package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/riskgate/internal/infrastructure/config"
	infraai "github.com/felixgeelhaar/riskgate/pkg/ai"
	"github.com/felixgeelhaar/riskgate/pkg/application"
	"github.com/felixgeelhaar/riskgate/pkg/domain"
)

// AppServices exposes the application layer services wired together with a workspace.
type AppServices struct {
	Workspace   *Workspace
	Config      *config.Config
	Init        *application.InitService
	Patterns    *application.PatternService
	Analysis    *application.AnalysisService
	Remediation *application.RemediationService
	History     *application.HistoryService
	Audit       *application.AuditService
	Provider    *infraai.ResilientProvider
	Searchers   *Searchers
}

// Options tunes BuildAppServices.
type Options struct {
	Logger *slog.Logger
	// ProviderResolver replaces LoadAIProvider.
	ProviderResolver func(*config.Config) (*infraai.ResilientProvider, error)
	// NoRemediation disables fix generation regardless of configuration.
	NoRemediation bool
}

// BuildAppServices constructs the services for a repo root. A workspace is
// optional: without one the built-in library and defaults are used. A
// provider that cannot be built falls back to the default Ollama provider
// and the error is returned alongside the services.
func BuildAppServices(ctx context.Context, root string, opts Options) (*AppServices, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workspace := NewWorkspace(root)
	cfg, err := workspace.Config()
	if err != nil {
		return nil, err
	}

	resolver := opts.ProviderResolver
	if resolver == nil {
		resolver = LoadAIProvider
	}
	provider, err := resolver(cfg)
	var loadErr error
	if err != nil {
		loadErr = fmt.Errorf("AI provider config fallback: %w", err)
		fallback, fallbackErr := infraai.GetDefaultProvider("ollama", "llama3")
		if fallbackErr != nil {
			return nil, fmt.Errorf("fallback AI provider failed: %w", fallbackErr)
		}
		provider = infraai.NewResilientProvider(fallback)
	}

	// Outside a workspace nothing is read from or written to disk.
	var (
		audit  domain.AuditLogger
		source domain.PatternSource
	)
	if workspace.Repo.IsInitialized() {
		audit = workspace.Audit
		source = workspace.Repo
	}

	registry, err := application.NewWorkspaceRegistry(source)
	if err != nil {
		return nil, fmt.Errorf("load pattern library: %w", err)
	}

	searchers, err := BuildSearchers(ctx, cfg, registry, provider, logger)
	if err != nil {
		return nil, err
	}

	remediation := application.NewRemediationService(provider, audit, cfg.Analysis.MaxFixes, logger)
	analysisOpts := []application.AnalysisOption{
		application.WithLogger(logger),
		application.WithLimits(cfg.Limits()),
		application.WithSearchTimeout(time.Duration(cfg.Similarity.TimeoutMs) * time.Millisecond),
		application.WithClauseSearcher(searchers.Clause),
		application.WithSemanticSearcher(searchers.Semantic),
	}
	if cfg.Analysis.Remediation && !opts.NoRemediation {
		analysisOpts = append(analysisOpts, application.WithRemediator(remediation))
	}
	analysis, err := application.NewAnalysisService(registry, analysisOpts...)
	if err != nil {
		_ = searchers.Close()
		return nil, err
	}

	services := &AppServices{
		Workspace:   workspace,
		Config:      cfg,
		Init:        application.NewInitService(workspace.Repo, workspace.Audit),
		Patterns:    application.NewPatternService(source, registry, audit, logger),
		Analysis:    analysis,
		Remediation: remediation,
		History:     workspace.History,
		Audit:       workspace.Audit,
		Provider:    provider,
		Searchers:   searchers,
	}

	return services, loadErr
}

// Close releases connections held by the services.
func (s *AppServices) Close() error {
	if s.Searchers == nil {
		return nil
	}
	return s.Searchers.Close()
}
