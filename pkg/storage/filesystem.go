// Package storage persists a riskgate workspace under the .riskgate/
// directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/riskgate/pkg/domain"
)

const RiskgateDir = ".riskgate"
const PatternsFile = "patterns.yaml"
const TemplatesFile = "templates.yaml"
const ConfigFile = "riskgate.yaml"
const EventsFile = "events.jsonl"
const AssessmentsFile = "assessments.jsonl"

var _ domain.WorkspaceRepository = (*FilesystemRepository)(nil)

type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
	mu          sync.Mutex
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// Dir returns the .riskgate directory.
func (r *FilesystemRepository) Dir() string {
	return filepath.Join(r.root, RiskgateDir)
}

// ResolvePath ensures the path is within the .riskgate directory and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := r.Dir()
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	// G301: Use 0700 for directories
	if err := os.MkdirAll(r.Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", RiskgateDir, err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(r.Dir())
	return err == nil
}

func (r *FilesystemRepository) SavePatterns(data []byte) error {
	return r.writeFile(PatternsFile, data)
}

// LoadPatterns returns nil when the workspace has no patterns.yaml.
func (r *FilesystemRepository) LoadPatterns() ([]byte, error) {
	return r.readOptional(PatternsFile)
}

func (r *FilesystemRepository) SaveTemplates(data []byte) error {
	return r.writeFile(TemplatesFile, data)
}

// LoadTemplates returns nil when the workspace has no templates.yaml.
func (r *FilesystemRepository) LoadTemplates() ([]byte, error) {
	return r.readOptional(TemplatesFile)
}

func (r *FilesystemRepository) writeFile(name string, data []byte) error {
	path, err := r.ResolvePath(name)
	if err != nil {
		return err
	}
	// G306: Use 0600 for files
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// readOptional reads a workspace file, retrying transient failures. A
// missing file is not an error.
func (r *FilesystemRepository) readOptional(name string) ([]byte, error) {
	path, err := r.ResolvePath(name)
	if err != nil {
		return nil, err
	}

	retryer := retry.New[[]byte](r.retryConfig)
	data, err := retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// appendLine appends one JSON line to a workspace log file.
func (r *FilesystemRepository) appendLine(name string, line []byte) error {
	path, err := r.ResolvePath(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
