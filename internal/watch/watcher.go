// Package watch reports item files appearing in and disappearing from the
// storage root, whoever makes the change.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Event kinds passed to Callback.
const (
	KindCreated = "created"
	KindDeleted = "deleted"
)

// Callback is called once per item change.
type Callback func(kind, item string)

// Watch runs an fsnotify watcher on root until ctx is cancelled. Only direct
// children of root are reported; subdirectories are ignored. A rename reports
// the old name as deleted, and the new name arrives as its own create event.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	cleanRoot := filepath.Clean(root)
	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Dir(ev.Name) != cleanRoot {
				continue
			}
			item := filepath.Base(ev.Name)

			switch {
			case ev.Op&fsnotify.Create != 0:
				if info, statErr := os.Stat(ev.Name); statErr != nil || info.IsDir() {
					continue
				}
				logger.Debug("watcher: item created", slog.String("item", item))
				if cb != nil {
					cb(KindCreated, item)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				logger.Debug("watcher: item deleted", slog.String("item", item))
				if cb != nil {
					cb(KindDeleted, item)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
