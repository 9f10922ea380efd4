package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, dir string, reload ReloadFunc, hook func(ChangeEvent, error)) context.CancelFunc {
	t.Helper()
	w, err := NewLibraryWatcher(dir, []string{"patterns.yaml", "templates.yaml"}, reload,
		WithDebounce(50*time.Millisecond), WithReloadHook(hook))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = w.Run(ctx)
	}()
	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return cancel
}

func TestLibraryWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "patterns.yaml")
	if err := os.WriteFile(file, []byte("version: \"1\""), 0600); err != nil {
		t.Fatal(err)
	}

	var reloads atomic.Int32
	var lastPath atomic.Value
	cancel := startWatcher(t, dir, func() error {
		reloads.Add(1)
		return nil
	}, func(e ChangeEvent, err error) {
		lastPath.Store(e.Path)
	})
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(file, []byte("version: \"2\""), 0600); err != nil {
			t.Fatal(err)
		}
	}

	time.Sleep(250 * time.Millisecond)

	if got := reloads.Load(); got != 1 {
		t.Errorf("expected one reload for a burst of writes, got %d", got)
	}
	if p, _ := lastPath.Load().(string); filepath.Base(p) != "patterns.yaml" {
		t.Errorf("expected patterns.yaml in the change event, got %q", p)
	}
}

func TestLibraryWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	var reloads atomic.Int32
	cancel := startWatcher(t, dir, func() error {
		reloads.Add(1)
		return nil
	}, nil)
	defer cancel()

	if err := os.WriteFile(filepath.Join(dir, "events.jsonl"), []byte("{}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := reloads.Load(); got != 0 {
		t.Errorf("expected no reload, got %d", got)
	}
}

func TestLibraryWatcher_ReportsReloadErrors(t *testing.T) {
	dir := t.TempDir()

	var failures atomic.Int32
	cancel := startWatcher(t, dir, func() error {
		return errors.New("bad regex")
	}, func(e ChangeEvent, err error) {
		if err != nil {
			failures.Add(1)
		}
	})
	defer cancel()

	if err := os.WriteFile(filepath.Join(dir, "templates.yaml"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if failures.Load() == 0 {
		t.Error("expected the reload failure to be reported")
	}
}

func TestLibraryWatcher_ContextCancellation(t *testing.T) {
	w, err := NewLibraryWatcher(t.TempDir(), []string{"patterns.yaml"}, func() error { return nil })
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop after context cancellation")
	}
}

func TestNewLibraryWatcher_Errors(t *testing.T) {
	if _, err := NewLibraryWatcher(t.TempDir(), nil, nil); err == nil {
		t.Error("expected error without a reload function")
	}
	if _, err := NewLibraryWatcher(filepath.Join(t.TempDir(), "missing"), nil, func() error { return nil }); err == nil {
		t.Error("expected error for a missing directory")
	}
}
