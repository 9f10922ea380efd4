package wiring

import (
	"github.com/felixgeelhaar/riskgate/internal/infrastructure/config"
	"github.com/felixgeelhaar/riskgate/pkg/application"
	"github.com/felixgeelhaar/riskgate/pkg/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Repo    *storage.FilesystemRepository
	Audit   *application.AuditService
	History *application.HistoryService
}

func NewWorkspace(root string) *Workspace {
	repo := storage.NewFilesystemRepository(root)
	audit := application.NewAuditService(repo)
	return &Workspace{
		Repo:    repo,
		Audit:   audit,
		History: application.NewHistoryService(repo, audit),
	}
}

// Config loads riskgate.yaml, or the defaults when the workspace has none.
func (w *Workspace) Config() (*config.Config, error) {
	if !w.Repo.IsInitialized() {
		return config.Default(), nil
	}
	return config.Load(w.Repo.Root())
}
