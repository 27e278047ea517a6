package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a schema directory and triggers reloads.
// Bursts of events are coalesced by a Debouncer.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *FileWatcherConfig
	debounce *Debouncer

	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// FileWatcherConfig contains configuration for the file watcher.
type FileWatcherConfig struct {
	// Path is the file or directory to watch
	Path string

	// DebounceInterval is the quiet period before a reload is triggered
	DebounceInterval time.Duration

	// Extensions is the list of file extensions to react to
	Extensions []string

	// SkipHidden ignores files and directories starting with "."
	SkipHidden bool
}

// DefaultFileWatcherConfig returns the default watcher configuration.
func DefaultFileWatcherConfig() *FileWatcherConfig {
	return &FileWatcherConfig{
		DebounceInterval: 250 * time.Millisecond,
		Extensions:       []string{".json", ".yaml", ".yml"},
		SkipHidden:       true,
	}
}

// NewFileWatcher creates a new file watcher.
func NewFileWatcher(config *FileWatcherConfig, logger *slog.Logger) (*FileWatcher, error) {
	if config == nil {
		config = DefaultFileWatcherConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		logger:   logger,
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, calling onReload
// after each debounced burst of relevant file events. The watcher cannot be
// restarted once Watch returns.
func (fw *FileWatcher) Watch(ctx context.Context, onReload func() error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.debounce.Stop()
		_ = fw.watcher.Close()
		close(fw.doneCh)
	}()

	if err := fw.addPath(fw.config.Path); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	fw.logger.Info("schema watcher started",
		"path", fw.config.Path,
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("schema watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("schema watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// New subdirectories need their own watch.
			if event.Op&fsnotify.Create != 0 {
				if isDir, _ := isDirectory(event.Name); isDir {
					if err := fw.addDirectory(event.Name); err != nil {
						fw.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.logger.Debug("schema file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			name, op := event.Name, event.Op.String()
			fw.debounce.Trigger(func() {
				fw.logger.Info("triggering schema reload", "path", name, "op", op)
				if err := onReload(); err != nil {
					fw.logger.Error("schema reload failed", "error", err)
				}
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fw.logger.Error("schema watcher error", "error", err)
		}
	}
}

// Stop stops a running watcher and waits for Watch to return.
// A watcher that never ran only releases its fsnotify handle.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	running := fw.running
	fw.mu.Unlock()

	if !running {
		fw.debounce.Stop()
		return fw.watcher.Close()
	}

	fw.stopOnce.Do(func() { close(fw.stopCh) })
	<-fw.doneCh
	return nil
}

// addPath adds a file or directory to the watcher.
func (fw *FileWatcher) addPath(path string) error {
	isDir, err := isDirectory(path)
	if err != nil {
		return err
	}
	if isDir {
		return fw.addDirectory(path)
	}
	return fw.watcher.Add(path)
}

// addDirectory adds a directory and all subdirectories to the watcher.
func (fw *FileWatcher) addDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if fw.config.SkipHidden && strings.HasPrefix(filepath.Base(path), ".") && path != dir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", path, err)
			}
			fw.logger.Debug("watching directory", "path", path)
		}
		return nil
	})
}

// shouldProcessEvent determines if an event should trigger a reload.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	if !fw.hasValidExtension(strings.ToLower(filepath.Ext(event.Name))) {
		return false
	}

	if fw.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	return true
}

func (fw *FileWatcher) hasValidExtension(ext string) bool {
	for _, validExt := range fw.config.Extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// Debouncer runs only the last callback of a burst, once the burst has been
// quiet for the configured interval.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger records callback and restarts the quiet period.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}

func isDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
