package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the board file for changes until ctx is cancelled and
// calls cb after each burst of events, debounced. Editors usually
// replace files via rename, so the parent directory is watched rather
// than the file itself; events for other files in the directory are
// ignored. The callback is responsible for deciding whether the change
// was an external edit or an echo of our own save.
func Watch(ctx context.Context, path string, logger *slog.Logger, cb func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("file", abs))

	// debounceTimer coalesces bursts of events (tmp write + rename).
	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	schedule := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounceTimer.C
		} else {
			debounceTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			cb()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				logger.Debug("watcher: board file changed", slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
