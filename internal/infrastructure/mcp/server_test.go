package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/riskgate/internal/infrastructure/config"
	"github.com/felixgeelhaar/riskgate/internal/infrastructure/wiring"
	infraai "github.com/felixgeelhaar/riskgate/pkg/ai"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
	"github.com/felixgeelhaar/riskgate/pkg/storage"
)

const skeletal = `Proposal for the Acme engagement.

We will do some work for the client and deliver something useful, probably within a few months. Costs to be determined later.
`

var testOptions = wiring.Options{
	Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	ProviderResolver: func(*config.Config) (*infraai.ResilientProvider, error) {
		return infraai.NewResilientProvider(&infraai.MockProvider{Model: "test"}), nil
	},
}

func newTestServer(t *testing.T, initialize bool) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	if initialize {
		repo := storage.NewFilesystemRepository(root)
		if err := repo.Initialize(); err != nil {
			t.Fatalf("initialize repo: %v", err)
		}
		if err := repo.SavePatterns(patterns.DefaultLibraryYAML()); err != nil {
			t.Fatal(err)
		}
	}
	server, err := NewServer(context.Background(), root, testOptions)
	if err != nil {
		t.Fatalf("create server: %v", err)
	}
	t.Cleanup(func() { _ = server.Close() })
	return server, root
}

func TestHandleAnalyze_RecordsHistory(t *testing.T) {
	server, _ := newTestServer(t, true)

	out, err := server.handleAnalyze(context.Background(), AnalyzeArgs{Text: skeletal})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	a, ok := out.(*risk.Assessment)
	if !ok {
		t.Fatalf("expected assessment, got %T", out)
	}
	if !a.Blocked() {
		t.Errorf("expected skeletal proposal to be blocked, got %s", a.Decision)
	}

	noRecord := false
	if _, err := server.handleAnalyze(context.Background(), AnalyzeArgs{Text: skeletal, Record: &noRecord}); err != nil {
		t.Fatal(err)
	}

	out, err = server.handleHistory(context.Background(), HistoryArgs{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	hist := out.(historyResponse)
	if hist.Summary.Total != 1 || len(hist.Assessments) != 1 || hist.Assessments[0].ID != a.ID {
		t.Errorf("expected exactly the recorded assessment, got %+v", hist)
	}
}

func TestHandleAnalyze_ValidationError(t *testing.T) {
	server, _ := newTestServer(t, false)
	_, err := server.handleAnalyze(context.Background(), AnalyzeArgs{Text: "  "})
	if err == nil || !strings.Contains(err.Error(), "document is empty") {
		t.Errorf("expected friendly validation error, got %v", err)
	}
}

func TestHandleHistory_RequiresWorkspace(t *testing.T) {
	server, _ := newTestServer(t, false)
	if _, err := server.handleHistory(context.Background(), HistoryArgs{Limit: 5}); err == nil {
		t.Error("expected error without a workspace")
	}
}

func TestHandlePatterns(t *testing.T) {
	server, _ := newTestServer(t, false)
	out, err := server.handlePatterns(context.Background(), struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	resp := out.(patternsResponse)
	if resp.Library.Version != "2024.2" || resp.Clauses == 0 || resp.Similarity != config.BackendLexical {
		t.Errorf("unexpected patterns response %+v", resp)
	}
}

func TestHandleReload(t *testing.T) {
	server, root := newTestServer(t, true)
	path := filepath.Join(root, storage.RiskgateDir, storage.PatternsFile)

	updated := strings.Replace(string(patterns.DefaultLibraryYAML()), `version: "2024.2"`, `version: "2024.3"`, 1)
	if err := os.WriteFile(path, []byte(updated), 0600); err != nil {
		t.Fatal(err)
	}
	msg, err := server.handleReload(context.Background(), struct{}{})
	if err != nil || !strings.Contains(msg, "2024.3") {
		t.Fatalf("expected reload to 2024.3, got %q %v", msg, err)
	}

	if err := os.WriteFile(path, []byte("sections: [broken"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := server.handleReload(context.Background(), struct{}{}); err == nil {
		t.Error("expected a broken library to be rejected")
	}
	if v := server.services.Patterns.Stats().Version; v != "2024.3" {
		t.Errorf("expected previous library kept, got %s", v)
	}
}

func TestWatchPatterns_HotReload(t *testing.T) {
	server, root := newTestServer(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- server.WatchPatterns(ctx) }()
	time.Sleep(50 * time.Millisecond)

	updated := strings.Replace(string(patterns.DefaultLibraryYAML()), `version: "2024.2"`, `version: "2025.1"`, 1)
	path := filepath.Join(root, storage.RiskgateDir, storage.PatternsFile)
	if err := os.WriteFile(path, []byte(updated), 0600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for server.services.Patterns.Stats().Version != "2025.1" {
		if time.Now().After(deadline) {
			t.Fatal("library was not reloaded")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSchemaInfo(t *testing.T) {
	info := schemaInfo()
	if info.SchemaVersion != SchemaVersion || len(info.Decisions) != 5 {
		t.Errorf("unexpected schema %+v", info)
	}
	if len(info.Blocking) != 2 {
		t.Errorf("expected two blocking decisions, got %v", info.Blocking)
	}
}

func TestServerServeHTTPReturnsCanceled(t *testing.T) {
	server, _ := newTestServer(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := server.ServeHTTP(ctx, "127.0.0.1:0"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
