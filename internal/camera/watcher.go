package camera

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcherQuietPeriod is how long a folder must go without new events
// before a run is triggered. Camera apps write a burst of events per shot
// and bursts of shots.
const watcherQuietPeriod = 2 * time.Second

// FolderWatcher triggers an upload run when new files land in the local
// upload folders.
type FolderWatcher struct {
	settings settingsLoader
	trigger  func()
	logger   *slog.Logger
	quiet    time.Duration
}

// NewFolderWatcher creates a watcher calling trigger after changes.
func NewFolderWatcher(settings settingsLoader, trigger func(), logger *slog.Logger) *FolderWatcher {
	return &FolderWatcher{
		settings: settings,
		trigger:  trigger,
		logger:   logger,
		quiet:    watcherQuietPeriod,
	}
}

// Watch monitors the configured folders recursively until ctx is
// cancelled. Folders are read from settings once at start; folders that
// do not exist yet are skipped.
func (w *FolderWatcher) Watch(ctx context.Context) error {
	settings, err := w.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0

	for _, folder := range []string{settings.PrimaryFolder, settings.SecondaryFolder} {
		if folder == "" {
			continue
		}

		if err := addRecursive(watcher, folder); err != nil {
			w.logger.Warn("watching upload folder", slog.String("path", folder), slog.String("error", err.Error()))
			continue
		}

		watched++
	}

	w.logger.Info("watching upload folders", slog.Int("folders", watched))

	timer := time.NewTimer(w.quiet)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("fsnotify events channel closed")
			}

			if w.handleEvent(watcher, event) {
				timer.Reset(w.quiet)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("fsnotify errors channel closed")
			}

			w.logger.Warn("folder watcher error", slog.String("error", err.Error()))

		case <-timer.C:
			w.logger.Debug("upload folder changed, triggering run")
			w.trigger()
		}
	}
}

// handleEvent reports whether the event should schedule a run. New
// subdirectories are added to the watch set.
func (w *FolderWatcher) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(watcher, event.Name); err != nil {
				w.logger.Debug("watching new folder", slog.String("path", event.Name), slog.String("error", err.Error()))
			}
		}
	}

	return true
}

// addRecursive adds root and all its non-hidden subdirectories.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
}
