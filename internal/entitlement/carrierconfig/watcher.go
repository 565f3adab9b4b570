package carrierconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"imsse/internal/entitlement/models"
	"imsse/pkg/requestcontext"
)

const defaultDebounce = 200 * time.Millisecond

// HandlerFunc receives the events of one reload.
type HandlerFunc func(ctx context.Context, events []models.TriggerEvent)

// Watcher reloads a FileSource when its file changes. Editors often write a
// file in several steps, so bursts of notifications are folded into one
// reload.
type Watcher struct {
	source   *FileSource
	handle   HandlerFunc
	debounce time.Duration
	logger   *slog.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher watches source's file and passes reload events to handle.
func NewWatcher(source *FileSource, handle HandlerFunc, opts ...WatcherOption) (*Watcher, error) {
	if source == nil || source.Path() == "" {
		return nil, errors.New("a file-backed carrier config source is required")
	}
	if handle == nil {
		return nil, errors.New("event handler is required")
	}
	w := &Watcher{
		source:   source,
		handle:   handle,
		debounce: defaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks until ctx ends. The directory is watched rather than the file so
// that atomic replace-by-rename is seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	path := filepath.Clean(w.source.Path())
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	w.logger.InfoContext(ctx, "watching carrier config", "path", path)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "carrier config watcher error", "error", err)

		case <-fire:
			fire = nil
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	events, err := w.source.Reload()
	if err != nil {
		w.logger.WarnContext(ctx, "carrier config reload failed, keeping previous config", "error", err)
		return
	}
	w.logger.InfoContext(ctx, "carrier config reloaded", "events", len(events))
	if len(events) == 0 {
		return
	}
	w.handle(requestcontext.WithTime(ctx, time.Now()), events)
}
