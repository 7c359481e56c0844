package dynconfig

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileWatcher polls a single TOML file's modification time and reloads,
// validates, and broadcasts changes on any change, grounded on
// original_source/src/core/dynamic_config/watchers/file_watcher.rs. Unlike
// its tokio-spawned-task original, it runs its poll loop on a goroutine
// started by Start and stopped by Stop.
type FileWatcher struct {
	path     string
	loader   *FileLoader
	notifier *ChangeNotifier
	logger   *zap.Logger

	pollInterval time.Duration

	mu      sync.RWMutex
	current Config

	stateMu      sync.Mutex
	watching     bool
	stop         chan struct{}
	lastModified time.Time
}

// NewFileWatcher constructs a FileWatcher with the default 1s poll
// interval and an empty notifier of capacity 100.
func NewFileWatcher(path string, logger *zap.Logger) *FileWatcher {
	return &FileWatcher{
		path:         path,
		loader:       NewFileLoader(path),
		notifier:     NewChangeNotifier(100),
		logger:       logger,
		pollInterval: defaultPollInterval,
		current:      Default(),
	}
}

// WithPollInterval sets a non-default poll interval and returns the
// receiver for chaining, mirroring with_poll_interval.
func (w *FileWatcher) WithPollInterval(d time.Duration) *FileWatcher {
	w.pollInterval = d
	return w
}

// SetConfig seeds the watcher's in-memory baseline without touching disk,
// used to align a freshly-loaded Manager config with its watcher.
func (w *FileWatcher) SetConfig(cfg Config) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = cfg
}

// GetConfig returns the watcher's last-known configuration snapshot.
func (w *FileWatcher) GetConfig() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Subscribe returns a channel of future change events, including Lagged
// notices if the subscriber falls behind.
func (w *FileWatcher) Subscribe() <-chan ChangeEvent {
	return w.notifier.Subscribe()
}

// IsWatching reports whether Start has been called without a matching
// Stop.
func (w *FileWatcher) IsWatching() bool {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	return w.watching
}

// WatcherType names this watcher implementation for diagnostics.
func (w *FileWatcher) WatcherType() string { return "file" }

// Start begins the poll loop. Calling Start on an already-watching
// instance is a no-op, matching the original's idempotent start_watching.
func (w *FileWatcher) Start(ctx context.Context) error {
	w.stateMu.Lock()
	if w.watching {
		w.stateMu.Unlock()
		return nil
	}
	w.watching = true
	w.stop = make(chan struct{})
	stop := w.stop
	w.stateMu.Unlock()

	if fi, err := os.Stat(w.path); err == nil {
		w.lastModified = fi.ModTime()
	}

	go w.run(ctx, stop)
	return nil
}

// Stop halts the poll loop. Calling Stop when not watching is a no-op.
func (w *FileWatcher) Stop() error {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	if !w.watching {
		return nil
	}
	close(w.stop)
	w.watching = false
	return nil
}

func (w *FileWatcher) run(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce(ctx)
		}
	}
}

func (w *FileWatcher) pollOnce(ctx context.Context) {
	fi, err := os.Stat(w.path)
	if err != nil {
		return
	}
	if !fi.ModTime().After(w.lastModified) {
		return
	}
	w.lastModified = fi.ModTime()

	if err := w.reload(ctx); err != nil {
		w.logger.Warn("failed to reload config from file",
			zap.String("path", w.path), zap.Error(err))
	}
}

func (w *FileWatcher) reload(ctx context.Context) error {
	newConfig, err := w.loader.Load(ctx)
	if err != nil {
		return err
	}
	if err := Validate(newConfig); err != nil {
		return err
	}

	w.mu.Lock()
	old := w.current
	w.current = newConfig
	w.mu.Unlock()

	changes := CalculateChanges(old, newConfig, time.Now())
	for _, c := range changes {
		w.notifier.Notify(c)
	}

	w.logger.Info("configuration reloaded from file", zap.String("path", w.path))
	return nil
}
