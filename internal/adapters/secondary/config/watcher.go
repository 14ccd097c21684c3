package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/sufield/trustgate/internal/core/ports"
	"github.com/sufield/trustgate/internal/core/services"
)

// PinWatcher watches a pin file and hands freshly parsed snapshots to a
// policy. Reconfiguration is always atomic replacement of the whole PinSet:
// a malformed edit is logged and skipped, leaving the previous snapshot live,
// so concurrent evaluations never observe a partial or broken set.
type PinWatcher struct {
	path    string
	target  ports.PinReplacer
	logger  *slog.Logger
	metrics services.MetricsReporter

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// NewPinWatcher creates a watcher for the given pin file. The initial load
// happens on Start so construction cannot race the caller's policy wiring.
func NewPinWatcher(path string, target ports.PinReplacer, logger *slog.Logger, metrics services.MetricsReporter) (*PinWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("pin file path cannot be empty")
	}
	if target == nil {
		return nil, fmt.Errorf("pin replacement target cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &services.NoOpMetrics{}
	}

	return &PinWatcher{
		path:    filepath.Clean(path),
		target:  target,
		logger:  logger,
		metrics: metrics,
		done:    make(chan struct{}),
	}, nil
}

// Start loads the pin file once, then watches it for changes until Close.
// The initial load is fatal if invalid; later reloads are best-effort.
func (w *PinWatcher) Start() error {
	if err := w.reload(); err != nil {
		return fmt.Errorf("initial pin load failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory, not the file: editors and config rollouts
	// replace the file, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = watcher

	go w.run()
	return nil
}

func (w *PinWatcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := w.reload(); err != nil {
				w.logger.Error("pin reload failed; keeping previous pins",
					"path", w.path,
					"error", err,
				)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("pin file watcher error", "path", w.path, "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *PinWatcher) reload() error {
	pins, err := LoadPinFile(w.path)
	if err != nil {
		w.metrics.RecordPinReload(false)
		return err
	}

	w.target.ReplacePins(pins)
	w.metrics.RecordPinReload(true)
	w.logger.Info("pin configuration loaded", "path", w.path, "pins", pins.String())
	return nil
}

// Close stops watching. Safe to call more than once.
func (w *PinWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.watcher != nil {
			err = w.watcher.Close()
		}
	})
	return err
}
