package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDelay coalesces the burst of events editors emit on save
const reloadDelay = 200 * time.Millisecond

// Watch reloads the catalog whenever its file changes, until ctx is done.
// The parent directory is watched so atomic replace-by-rename is seen.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return fmt.Errorf("catalog has no backing file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch catalog directory: %w", err)
	}

	go s.watchLoop(ctx, watcher, target)
	s.logger.Info("Watching concept catalog", zap.String("path", target))
	return nil
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string) {
	defer watcher.Close()

	timer := time.NewTimer(reloadDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(reloadDelay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("Catalog watcher error", zap.Error(err))

		case <-timer.C:
			if err := s.Reload(); err != nil {
				s.logger.Error("Failed to reload concept catalog, keeping previous",
					zap.String("path", target),
					zap.Error(err))
			}
		}
	}
}
