package groups

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

type reloader interface {
	Reload(ctx context.Context) (BuildReport, error)
}

// DatasetWatcher reloads the service whenever the dataset file changes.
// It watches the parent directory so editors that replace the file by rename
// are still picked up.
type DatasetWatcher struct {
	path     string
	target   reloader
	logger   *slog.Logger
	debounce time.Duration
	onReload func(BuildReport, error)
}

// WatcherOption customizes a DatasetWatcher.
type WatcherOption func(*DatasetWatcher)

// WithWatchDebounce collapses bursts of events into one reload.
func WithWatchDebounce(d time.Duration) WatcherOption {
	return func(w *DatasetWatcher) {
		w.debounce = d
	}
}

// WithWatchLogger sets the logger used for reload failures.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *DatasetWatcher) {
		w.logger = logger
	}
}

// WithReloadCallback is invoked after every reload attempt.
func WithReloadCallback(fn func(BuildReport, error)) WatcherOption {
	return func(w *DatasetWatcher) {
		w.onReload = fn
	}
}

// NewDatasetWatcher builds a watcher for path.
func NewDatasetWatcher(path string, target reloader, opts ...WatcherOption) *DatasetWatcher {
	w := &DatasetWatcher{
		path:     path,
		target:   target,
		debounce: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = normalizeLogger(w.logger)
	return w
}

// Run blocks until ctx is done.
func (w *DatasetWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("groups: create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("groups: resolve dataset path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("groups: watch %s: %w", filepath.Dir(abs), err)
	}
	name := filepath.Base(abs)

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			trigger = timer.C
		case <-trigger:
			trigger = nil
			report, err := w.target.Reload(ctx)
			if err != nil {
				w.logger.ErrorContext(ctx, "dataset reload failed", "path", w.path, "error", err)
			} else {
				w.logger.InfoContext(ctx, "dataset reloaded", "path", w.path, "issues", len(report.Issues))
			}
			if w.onReload != nil {
				w.onReload(report, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "dataset watcher error", "error", err)
		}
	}
}
