package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/riskgate/internal/infrastructure/wiring"
)

func loadServices(ctx context.Context, root string, opts wiring.Options) (*wiring.AppServices, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	services, loadErr := wiring.BuildAppServices(ctx, root, opts)
	if services == nil {
		return nil, MapError(fmt.Errorf("failed to build services: %w", loadErr))
	}
	if loadErr != nil {
		opts.Logger.Warn("using fallback AI provider", "error", loadErr)
	}
	return services, nil
}

func getProjectRoot() (string, error) {
	if projectPath != "" {
		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return "", fmt.Errorf("invalid project path %q: %w", projectPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("project path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("project path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func loadServicesForCurrentDir(ctx context.Context, opts wiring.Options) (*wiring.AppServices, error) {
	root, err := getProjectRoot()
	if err != nil {
		return nil, err
	}
	return loadServices(ctx, root, opts)
}

func requireWorkspace(root string) (*wiring.Workspace, error) {
	ws := wiring.NewWorkspace(root)
	if !ws.Repo.IsInitialized() {
		return nil, NewCLIError("no riskgate workspace found", "Run 'riskgate init' first", nil)
	}
	return ws, nil
}
