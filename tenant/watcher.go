package tenant

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Invalidator is notified when a tenant's configuration file changes.
type Invalidator interface {
	Invalidate(id string)
}

// Watcher turns filesystem events in the tenant directory into
// Invalidate calls.
type Watcher struct {
	dir     string
	target  Invalidator
	logger  *zap.Logger
	watcher *fsnotify.Watcher
}

func NewWatcher(dir string, target Invalidator, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{dir: dir, target: target, logger: logger, watcher: fileWatcher}, nil
}

// Start blocks until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch tenant dir %s: %w", w.dir, err)
	}
	w.logger.Info("Tenant watcher started", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Tenant watcher stopped")
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Tenant watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	id, ok := IDFromPath(event.Name)
	if !ok {
		return
	}
	w.logger.Debug("Tenant file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	w.target.Invalidate(id)
}

// IDFromPath maps a configuration file path to its tenant id.
func IDFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	for _, known := range Extensions {
		if ext == known {
			id := strings.TrimSuffix(base, filepath.Ext(base))
			return id, ValidID(id)
		}
	}
	return "", false
}
