package margins

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the table at path whenever the file is written, created or
// renamed into place, and passes each successfully parsed table to fn.
// Reload failures are logged and the previous table stays in effect.
//
// The parent directory is watched rather than the file so that editors
// which replace the file on save keep triggering reloads. Watching stops
// when ctx is done. fn runs on the watcher's goroutine.
func Watch(ctx context.Context, path string, fn func(Table), logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("margins: watch: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("margins: watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("margins: watch %s: %w", path, err)
	}

	log := logger.With(zap.String("path", abs))
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				t, err := Load(abs)
				if err != nil {
					log.Warn("margins reload failed", zap.Error(err))
					continue
				}
				log.Info("margins reloaded", zap.String("op", event.Op.String()))
				fn(t)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("margins watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
