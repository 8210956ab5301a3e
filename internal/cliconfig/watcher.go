package cliconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/walletd/internal/ports"
	"github.com/bft-labs/walletd/pkg/log"
)

// DefaultDebounceDelay is how long the watcher waits after the last change
// before reloading.
const DefaultDebounceDelay = 100 * time.Millisecond

// Watcher reloads the config file when it changes on disk and hands the new
// contents to a callback. Only settings that are safe to change at runtime
// should be applied by the callback.
type Watcher struct {
	path     string
	delay    time.Duration
	logger   ports.Logger
	onChange func(FileConfig)

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, logger ports.Logger, onChange func(FileConfig)) *Watcher {
	return &Watcher{
		path:     path,
		delay:    DefaultDebounceDelay,
		logger:   logger,
		onChange: onChange,
	}
}

// Run watches until ctx is canceled. The parent directory is watched rather
// than the file so editors that save by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	defer w.stopDebounce()

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, w.reload)
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func (w *Watcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload failed", log.String("path", w.path), log.Err(err))
		return
	}
	w.logger.Info("config reloaded", log.String("path", w.path))
	w.onChange(fc)
}
