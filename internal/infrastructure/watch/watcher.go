package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 300 * time.Millisecond

// ChangeEvent represents a change to a watched file.
type ChangeEvent struct {
	Path       string
	ChangeType string // "create", "write", "remove", "rename"
}

// ReloadFunc re-reads the watched files.
type ReloadFunc func() error

// LibraryWatcher watches the workspace directory and calls reload once per
// burst of changes to the named files. The directory is watched rather than
// the files, so editors that save by rename are still seen.
type LibraryWatcher struct {
	watcher  *fsnotify.Watcher
	filter   *NameFilter
	debounce time.Duration
	reload   ReloadFunc
	logger   *slog.Logger
	onReload func(ChangeEvent, error)
}

// Option configures a LibraryWatcher.
type Option func(*LibraryWatcher)

func WithDebounce(d time.Duration) Option {
	return func(w *LibraryWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *LibraryWatcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithReloadHook is called after every reload attempt.
func WithReloadHook(fn func(ChangeEvent, error)) Option {
	return func(w *LibraryWatcher) { w.onReload = fn }
}

// NewLibraryWatcher watches dir for changes to the given file names.
func NewLibraryWatcher(dir string, names []string, reload ReloadFunc, opts ...Option) (*LibraryWatcher, error) {
	if reload == nil {
		return nil, fmt.Errorf("reload function is required")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &LibraryWatcher{
		watcher:  fw,
		filter:   NewNameFilter(names...),
		debounce: DefaultDebounce,
		reload:   reload,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run starts the event loop. It blocks until the context is cancelled or
// the watcher fails.
func (w *LibraryWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debouncer := NewDebouncer(w.debounce, w.apply)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			changeType := opToChangeType(event.Op)
			if changeType == "" || !w.filter.Matches(event.Name) {
				continue
			}
			w.logger.Debug("pattern file changed", "path", event.Name, "change", changeType)
			debouncer.Trigger(ChangeEvent{Path: event.Name, ChangeType: changeType})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *LibraryWatcher) apply(e ChangeEvent) {
	err := w.reload()
	if err != nil {
		w.logger.Warn("pattern reload failed", "path", e.Path, "error", err)
	}
	if w.onReload != nil {
		w.onReload(e, err)
	}
}

func opToChangeType(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
