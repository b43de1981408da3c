package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bethropolis/pixl/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Watch blocks until ctx is done, calling onChange with the changed path
// whenever one of files is written, created or replaced. Parent directories
// are watched so editors that save via rename are still seen. Events for the
// same file within WatchDebounce of the previous one are dropped.
func Watch(ctx context.Context, files []string, onChange func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	wanted := make(map[string]struct{}, len(files))
	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolving '%s': %w", f, err)
		}
		wanted[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watching '%s': %w", dir, err)
		}
	}

	last := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, ok := wanted[name]; !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[name]; ok && now.Sub(t) < WatchDebounce {
				continue
			}
			last[name] = now
			logger.DebugTagf("config", "watch: %s changed (%s)", name, ev.Op)
			onChange(name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("config watch error: %v", err)
		}
	}
}
