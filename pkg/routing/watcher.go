package routing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period after the last file event
// before a reload runs.
const DefaultDebounceInterval = 100 * time.Millisecond

// Watcher reloads the route table when the route file changes on disk.
// It watches the parent directory so that editors which replace the file
// (write to temp, rename) are still observed.
type Watcher struct {
	path     string
	source   Source
	store    *Store
	logger   *slog.Logger
	debounce time.Duration

	// OnReload, if set, is called after every reload attempt.
	OnReload func(*Table, error)

	mu      sync.Mutex
	running bool
	timer   *time.Timer
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a Watcher for the route file at path.
func NewWatcher(path string, source Source, store *Store, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Watcher{
		path:     filepath.Clean(path),
		source:   source,
		store:    store,
		logger:   logger.With("component", "routing.watcher"),
		debounce: DefaultDebounceInterval,
	}
}

// Start begins watching in a background goroutine. It returns once the
// watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %q: %w", w.path, err)
	}

	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	go w.loop(ctx, fw, w.stopCh, w.doneCh)

	w.logger.Info("route file watcher started", "path", w.path)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("route file event", "op", event.Op.String())
			w.schedule(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("route file watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.reload(ctx) })
}

func (w *Watcher) reload(ctx context.Context) {
	t, err := Reload(ctx, w.source, w.store)
	if err != nil {
		// Keep serving the previous table
		w.logger.Error("route reload failed", "source", w.source.Name(), "error", err)
	} else {
		w.logger.Info("route table reloaded", "source", w.source.Name(), "routes", t.Len())
	}
	if w.OnReload != nil {
		w.OnReload(t, err)
	}
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	doneCh, fw := w.doneCh, w.watcher
	w.mu.Unlock()

	<-doneCh

	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.logger.Info("route file watcher stopped")
	return nil
}
