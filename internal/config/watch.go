package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/xiview/internal/logging"
)

// DefaultDebounce is how long Watcher waits for a burst of writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a configuration file when it changes.
//
// The file's directory is watched rather than the file itself, since many
// editors save by writing a new file and renaming it over the old one.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	logger   *logging.Logger
	debounce time.Duration
}

// NewWatcher starts watching path. Changes made after NewWatcher returns
// are seen by Run.
func NewWatcher(path string, logger *logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Null()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		fsw:      fsw,
		logger:   logger.WithComponent("config"),
		debounce: DefaultDebounce,
	}, nil
}

// Run delivers each valid reload to fn until ctx is done. fn is called
// from Run's goroutine. Invalid files are logged and skipped.
func (w *Watcher) Run(ctx context.Context, fn func(*Config)) error {
	defer w.fsw.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error: %v", err)

		case <-timer.C:
			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warn("ignoring config change: %v", err)
				continue
			}
			w.logger.Info("reloaded %s", w.path)
			fn(cfg)
		}
	}
}

// Watch is NewWatcher followed by Run.
func Watch(ctx context.Context, path string, fn func(*Config), logger *logging.Logger) error {
	w, err := NewWatcher(path, logger)
	if err != nil {
		return err
	}
	return w.Run(ctx, fn)
}
