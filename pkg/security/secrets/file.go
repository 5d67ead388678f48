package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileProvider reads one secret per file from a directory, the layout of a
// Kubernetes secret volume. Files must not be readable by group or others.
// Values are trimmed of surrounding whitespace.
type FileProvider struct {
	dir    string
	logger *slog.Logger

	mu      sync.RWMutex
	values  map[string]string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileProvider creates a FileProvider for dir. With watch set, cached
// values are dropped whenever a file in dir changes.
func NewFileProvider(dir string, watch bool) (*FileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("secrets dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets dir %s is not a directory", dir)
	}

	p := &FileProvider{
		dir:    dir,
		logger: slog.Default().With("component", "secrets.file"),
		values: make(map[string]string),
		done:   make(chan struct{}),
	}
	if watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create secrets watcher: %w", err)
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to watch secrets dir: %w", err)
		}
		p.watcher = w
		go p.watch()
	}
	return p, nil
}

// Lookup implements Provider.
func (p *FileProvider) Lookup(_ context.Context, name string) (string, error) {
	p.mu.RLock()
	v, ok := p.values[name]
	p.mu.RUnlock()
	if ok {
		return v, nil
	}

	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid secret name %q", name)
	}
	path := filepath.Join(p.dir, name)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s (file %s)", ErrNotFound, name, path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat secret %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret %s is not a regular file", name)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return "", fmt.Errorf("insecure permissions %o on %s (group/other access)", perm, path)
	}

	data, err := os.ReadFile(path) // #nosec G304 - name is a single path element
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}
	value := strings.TrimSpace(string(data))

	p.mu.Lock()
	p.values[name] = value
	p.mu.Unlock()
	return value, nil
}

// Name implements Provider.
func (p *FileProvider) Name() string { return "file" }

// Refresh drops every cached value.
func (p *FileProvider) Refresh() {
	p.mu.Lock()
	p.values = make(map[string]string)
	p.mu.Unlock()
}

// Close stops watching the directory.
func (p *FileProvider) Close() error {
	if p.watcher == nil {
		return nil
	}
	close(p.done)
	return p.watcher.Close()
}

func (p *FileProvider) watch() {
	for {
		select {
		case ev, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				p.logger.Debug("secret file changed", "file", filepath.Base(ev.Name), "op", ev.Op.String())
				p.Refresh()
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("secrets watcher error", "error", err)
		case <-p.done:
			return
		}
	}
}
