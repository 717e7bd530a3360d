package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher repairs a file every time it is written
type Watcher struct {
	path     string
	pipeline *Pipeline
	opts     FileOptions
	debounce time.Duration
	logger   *zap.Logger

	// OnRepair is called after every repair attempt that did not fail
	OnRepair func(FileResult)
}

// NewWatcher creates a watcher for path. A nil logger disables logging.
func NewWatcher(path string, p *Pipeline, opts FileOptions, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		pipeline: p,
		opts:     opts,
		debounce: defaultDebounce,
		logger:   logger,
	}
}

// Run repairs the file once and then again after each burst of writes,
// until ctx is cancelled. The pipeline is idempotent, so the watcher's own
// writes settle after one extra pass.
func (w *Watcher) Run(ctx context.Context) error {
	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory: editors often replace files by renaming.
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	w.logger.Info("watching", zap.String("path", target))

	w.repair(target)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped", zap.String("path", target))
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("change detected", zap.String("op", event.Op.String()))
			fire = time.After(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			w.repair(target)
		}
	}
}

func (w *Watcher) repair(path string) {
	result, err := RepairFile(path, w.pipeline, w.opts)
	if err != nil {
		// The file may be half written; the next event retries.
		w.logger.Warn("repair failed", zap.String("path", path), zap.Error(err))
		return
	}
	if w.OnRepair != nil {
		w.OnRepair(result)
	}
}
