package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sfcc-replicator/internal/logger"
)

// DefaultDebounce is the quiet period after the last write before a reload.
const DefaultDebounce = 250 * time.Millisecond

// Watch calls fn with the reloaded config each time the file at path
// changes. Invalid configs are logged and skipped. It blocks until ctx is
// done.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	return Watcher{Debounce: DefaultDebounce}.Watch(ctx, path, fn)
}

// Watcher watches a config file.
type Watcher struct {
	Debounce time.Duration
}

// Watch implements the package level Watch with w's settings.
func (w Watcher) Watch(ctx context.Context, path string, fn func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	// Editors replace files on save, so watch the directory.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	logger.Debug("config: watching %s", abs)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config: watcher error: %v", err)

		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				logger.Error("config: reload of %s rejected: %v", abs, err)
				continue
			}
			logger.Info("config: reloaded %s", abs)
			fn(cfg)
		}
	}
}
