package dynconfig

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultPollInterval = time.Second

// Manager is the primary interface for reading, updating, and watching
// runtime configuration. It holds the live Config behind a single
// reader/writer lock: readers clone under a read lock, writers validate a
// clone outside the write lock and swap in only on success, and
// subscriber broadcast happens outside any lock, grounded on
// original_source/src/core/dynamic_config/mod.rs's DynamicConfigManager.
type Manager struct {
	mu     sync.RWMutex
	config Config

	loader   *CombinedLoader
	rules    *RuleRegistry
	notifier *ChangeNotifier
	logger   *zap.Logger

	pollInterval time.Duration
	lastModified time.Time
	filePath     string

	watchMu    sync.Mutex
	watchedSet map[string]struct{}
	stopWatch  chan struct{}
	watching   bool
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithPollInterval overrides the default 1s hot-reload poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) { m.pollInterval = d }
}

// New loads configuration via loader (creating the on-disk default if the
// file loader's target doesn't exist yet) and returns a ready Manager.
func New(ctx context.Context, filePath string, logger *zap.Logger, opts ...Option) (*Manager, error) {
	fileLoader := NewFileLoader(filePath)
	combined := NewCombinedLoader(fileLoader, NewEnvLoader(""))

	cfg, err := combined.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	existed := fileLoader.Exists(ctx)

	m := &Manager{
		config:       cfg,
		loader:       combined,
		rules:        NewRuleRegistry(),
		notifier:     NewChangeNotifier(100),
		logger:       logger,
		pollInterval: defaultPollInterval,
		filePath:     filePath,
		watchedSet:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if !existed {
		if err := combined.Save(ctx, cfg); err != nil {
			return nil, err
		}
	}
	if fi, err := os.Stat(filePath); err == nil {
		m.lastModified = fi.ModTime()
	}

	logger.Info("dynamic configuration manager initialized", zap.String("path", filePath))
	return m, nil
}

// GetConfig returns a snapshot clone of the current configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// UpdateConfig applies updater to a clone of the current config, validates
// the result, and swaps it in only on success. It persists via the loader
// and broadcasts the resulting changes.
func (m *Manager) UpdateConfig(ctx context.Context, updater func(*Config) error) ([]ConfigChange, error) {
	m.mu.Lock()
	old := m.config
	candidate := m.config
	m.mu.Unlock()

	if err := updater(&candidate); err != nil {
		return nil, err
	}
	if err := Validate(candidate); err != nil {
		return nil, err
	}
	if err := m.loader.Save(ctx, candidate); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.config = candidate
	m.mu.Unlock()

	changes := CalculateChanges(old, candidate, time.Now())

	for _, c := range changes {
		m.notifier.Notify(c)
	}

	m.logger.Info("configuration updated", zap.Int("changes", len(changes)))
	return changes, nil
}

// Reload re-reads configuration from storage, validates it, swaps it in,
// and broadcasts the diff against the previous live config.
func (m *Manager) Reload(ctx context.Context) ([]ConfigChange, error) {
	newConfig, err := m.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := Validate(newConfig); err != nil {
		return nil, err
	}

	m.mu.Lock()
	old := m.config
	m.config = newConfig
	m.mu.Unlock()

	changes := CalculateChanges(old, newConfig, time.Now())
	for _, c := range changes {
		m.notifier.Notify(c)
	}

	m.logger.Info("configuration reloaded", zap.Int("changes", len(changes)))
	return changes, nil
}

// SubscribeToChanges returns a channel of future configuration changes.
func (m *Manager) SubscribeToChanges() <-chan ChangeEvent {
	return m.notifier.Subscribe()
}

// WatchField records a dotted field path of interest (informational; the
// broadcast itself already carries the changed path on every update).
func (m *Manager) WatchField(path string) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	m.watchedSet[path] = struct{}{}
}

func (m *Manager) UnwatchField(path string) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	delete(m.watchedSet, path)
}

// AddValidationRule registers a per-field predicate evaluated by
// ValidateField.
func (m *Manager) AddValidationRule(fieldPath string, rule FieldRule) {
	m.rules.Add(fieldPath, rule)
}

// ValidateField runs any registered rule for fieldPath against value.
func (m *Manager) ValidateField(fieldPath, value string) error {
	return m.rules.Validate(fieldPath, value)
}

// ValidateCurrent re-validates the live configuration.
func (m *Manager) ValidateCurrent() error {
	return Validate(m.GetConfig())
}

// StartAutoReload begins polling the backing file's modification time at
// pollInterval; on change it reloads, validates, swaps in, and broadcasts.
// A failed reload is logged and the last good config stays live.
func (m *Manager) StartAutoReload(ctx context.Context) error {
	m.watchMu.Lock()
	if m.watching {
		m.watchMu.Unlock()
		return nil
	}
	m.watching = true
	m.stopWatch = make(chan struct{})
	stop := m.stopWatch
	m.watchMu.Unlock()

	go m.pollLoop(ctx, stop)
	m.logger.Info("started automatic configuration reloading", zap.Duration("interval", m.pollInterval))
	return nil
}

// StopAutoReload halts the polling goroutine started by StartAutoReload.
func (m *Manager) StopAutoReload() error {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	if !m.watching {
		return nil
	}
	close(m.stopWatch)
	m.watching = false
	m.logger.Info("stopped automatic configuration reloading")
	return nil
}

func (m *Manager) pollLoop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			fi, err := os.Stat(m.filePath)
			if err != nil {
				continue
			}
			if !fi.ModTime().After(m.lastModified) {
				continue
			}
			m.lastModified = fi.ModTime()

			if _, err := m.Reload(ctx); err != nil {
				m.logger.Warn("hot-reload failed, keeping last good config",
					zap.Error(err), zap.String("path", m.filePath))
			}
		}
	}
}
