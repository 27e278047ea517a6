package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cgp-hq/seqval/pkg/config"
	"cgp-hq/seqval/pkg/manifest/schema"
	"cgp-hq/seqval/pkg/manifest/schema/builtin"
)

// ReloadObserver is notified after every load attempt.
type ReloadObserver interface {
	ObserveReload(schemas int, duration time.Duration, err error)
}

// Manager owns the active schema set. It combines the built-in schemas with
// the configured directory, where a directory schema overrides a built-in
// schema with the same key, and keeps the last good set when a reload fails.
type Manager struct {
	config   *config.SchemasConfig
	loader   *Loader
	registry *Registry
	logger   *slog.Logger
	observer ReloadObserver
	builtins func() []*schema.Schema

	mu            sync.RWMutex
	lastLoadTime  time.Time
	lastLoadError error

	watchMu     sync.Mutex
	watchCancel context.CancelFunc
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithReloadObserver reports load attempts to o.
func WithReloadObserver(o ReloadObserver) ManagerOption {
	return func(m *Manager) { m.observer = o }
}

// NewManager creates a schema manager. Nothing is loaded until Load is called.
func NewManager(cfg *config.SchemasConfig, logger *slog.Logger, opts ...ManagerOption) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	loaderConfig := DefaultLoaderConfig()
	if cfg.MaxFileSize > 0 {
		loaderConfig.MaxFileSize = cfg.MaxFileSize
	}
	loaderConfig.RequireNameMatch = !cfg.AllowNameMismatch

	m := &Manager{
		config:   cfg,
		loader:   NewLoader(loaderConfig),
		registry: NewRegistry(),
		logger:   logger.With("component", "registry"),
		builtins: builtin.Schemas,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Load loads the schema set and installs it.
func (m *Manager) Load() error {
	return m.load(false)
}

// Reload re-reads the schema set. On failure the previous set stays active
// and the error is returned.
func (m *Manager) Reload() error {
	return m.load(true)
}

func (m *Manager) load(reload bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	m.logger.Debug("loading schemas",
		"directory", m.config.Directory,
		"builtin", !m.config.DisableBuiltin,
	)

	schemas, err := m.collect()
	if err == nil {
		err = m.registry.Replace(schemas)
	}
	duration := time.Since(start)

	if m.observer != nil {
		m.observer.ObserveReload(len(schemas), duration, err)
	}

	if err != nil {
		m.lastLoadError = err
		msg := "failed to load schemas"
		if reload {
			msg = "failed to reload schemas, keeping previous schemas"
		}
		m.logger.Error(msg,
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		return err
	}

	m.lastLoadTime = time.Now()
	m.lastLoadError = nil

	m.logger.Info("schemas loaded",
		"count", len(schemas),
		"version", m.registry.Version(),
		"duration_ms", duration.Milliseconds(),
	)

	return nil
}

// collect builds the schema set without installing it.
func (m *Manager) collect() ([]*schema.Schema, error) {
	var out []*schema.Schema
	index := make(map[string]int)

	if !m.config.DisableBuiltin {
		for _, s := range m.builtins() {
			index[s.Key()] = len(out)
			out = append(out, s)
		}
	}

	if m.config.Directory != "" {
		loaded, err := m.loader.Load(m.config.Directory)
		if err != nil {
			return nil, fmt.Errorf("failed to load schemas from %q: %w", m.config.Directory, err)
		}
		for _, s := range loaded {
			if i, ok := index[s.Key()]; ok {
				m.logger.Debug("schema overrides built-in", "schema", s.Key(), "source", s.Source())
				out[i] = s
				continue
			}
			index[s.Key()] = len(out)
			out = append(out, s)
		}
	}

	if len(out) == 0 {
		return nil, errors.New("no schemas available")
	}
	return out, nil
}

// DryRun loads and checks the configured schema set without installing it.
func (m *Manager) DryRun() ([]*schema.Schema, error) {
	return m.collect()
}

// Lookup returns the schema for a form type and version.
func (m *Manager) Lookup(typ, version string) (*schema.Schema, error) {
	return m.registry.Lookup(typ, version)
}

// Schemas returns the active schemas sorted by key.
func (m *Manager) Schemas() []*schema.Schema {
	return m.registry.All()
}

// Version returns the version hash of the active set.
func (m *Manager) Version() string {
	return m.registry.Version()
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// LastLoadTime returns the time of the last successful load.
func (m *Manager) LastLoadTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoadTime
}

// LastLoadError returns the error from the last load attempt, nil if it succeeded.
func (m *Manager) LastLoadError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoadError
}

// Watch keeps the schema set in sync with the configured directory until ctx
// is cancelled or Close is called. File events trigger debounced reloads
// when schemas.watch is set; schemas.rescan_schedule adds periodic reloads.
func (m *Manager) Watch(ctx context.Context) error {
	if m.config.Directory == "" {
		return fmt.Errorf("schema watching requires a schema directory")
	}
	if !m.config.Watch && m.config.RescanSchedule == "" {
		return fmt.Errorf("schema watching is not enabled in configuration")
	}

	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchMu.Unlock()
		return fmt.Errorf("watch already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	m.watchCancel = cancel
	m.watchMu.Unlock()

	defer func() {
		m.watchMu.Lock()
		m.watchCancel = nil
		m.watchMu.Unlock()
		cancel()
	}()

	var watcher *FileWatcher
	if m.config.Watch {
		wcfg := DefaultFileWatcherConfig()
		wcfg.Path = m.config.Directory
		if m.config.DebounceInterval > 0 {
			wcfg.DebounceInterval = m.config.DebounceInterval
		}

		var err error
		watcher, err = NewFileWatcher(wcfg, m.logger)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}

		go func() {
			if err := watcher.Watch(ctx, m.Reload); err != nil {
				m.logger.Error("schema watcher error", "error", err)
			}
		}()
	}

	var scheduler *Scheduler
	if m.config.RescanSchedule != "" {
		scheduler = NewScheduler(m.config.RescanSchedule, func() {
			if err := m.Reload(); err != nil {
				m.logger.Warn("scheduled schema rescan failed", "error", err)
			}
		}, m.logger)
		if err := scheduler.Start(ctx); err != nil {
			if watcher != nil {
				_ = watcher.Stop()
			}
			return err
		}
	}

	<-ctx.Done()

	if scheduler != nil {
		scheduler.Stop()
	}
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			m.logger.Error("failed to stop schema watcher", "error", err)
			return err
		}
	}

	return nil
}

// Close stops watching.
func (m *Manager) Close() error {
	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchCancel()
	}
	m.watchMu.Unlock()

	m.logger.Debug("schema manager closed")
	return nil
}
