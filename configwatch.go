package pinboard

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const configReloadDebounce = 200 * time.Millisecond

// ConfigWatcher reloads a YAML config file when it changes on disk.
type ConfigWatcher struct {
	path     string
	logger   *slog.Logger
	onChange func(Config)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewConfigWatcher creates a watcher for path. onChange runs on the watcher's
// goroutine; hosts hand the config to their board with Board.Enqueue.
func NewConfigWatcher(path string, logger *slog.Logger, onChange func(Config)) (*ConfigWatcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path is required")
	}
	if onChange == nil {
		return nil, fmt.Errorf("config change callback is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		path:     path,
		logger:   logger.With("component", "config"),
		onChange: onChange,
	}, nil
}

// WatchBoard returns a ConfigWatcher that applies every reload to b.
func WatchBoard(path string, b *Board, logger *slog.Logger) (*ConfigWatcher, error) {
	return NewConfigWatcher(path, logger, func(cfg Config) {
		b.Enqueue(func(b *Board) { b.SetConfig(cfg) })
	})
}

// Start begins watching. The file's directory is watched so editors that
// replace the file on save are handled.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return err
	}
	done := make(chan struct{})
	w.mu.Lock()
	w.watcher = watcher
	w.done = done
	w.mu.Unlock()

	go w.watchLoop(ctx, watcher, done)
	return nil
}

// Close stops watching. Once it returns, onChange is no longer called.
func (w *ConfigWatcher) Close() error {
	w.mu.Lock()
	watcher, done := w.watcher, w.done
	w.watcher, w.done = nil, nil
	w.mu.Unlock()
	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}

// watchLoop runs reloads on its own goroutine. A pending debounced reload is
// dropped when the loop exits.
func (w *ConfigWatcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan<- struct{}) {
	defer close(done)
	target := filepath.Clean(w.path)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fire:
			fire = nil
			w.reload()
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != target {
				continue
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				if timer == nil {
					timer = time.NewTimer(configReloadDebounce)
				} else {
					timer.Reset(configReloadDebounce)
				}
				fire = timer.C
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", "error", err)
		}
	}
}

func (w *ConfigWatcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.path)
	w.onChange(cfg)
}
