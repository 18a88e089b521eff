package spec

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the pipeline spec at path whenever it changes and passes it
// to onChange. Specs that fail to load are logged and skipped. Watch returns
// when ctx is cancelled.
//
// The parent directory is watched rather than the file, so atomic saves that
// rename a temp file over path keep being picked up.
func Watch(ctx context.Context, path string, onChange func(*PipelineSpec)) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch spec: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	slog.Info("spec: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				slog.Warn("spec: file moved away, waiting for it to reappear", "path", path)
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			ps, err := LoadFromFile(path)
			if err != nil {
				slog.Error("spec: reload failed", "path", path, "error", err)
				continue
			}

			slog.Info("spec: reloaded", "path", path, "name", ps.Name)
			onChange(ps)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("spec: watcher error", "error", err)
		}
	}
}
