package hookconfig

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig watches the main config file (and, if present, its
// local override) for writes and renames, invoking onChange after
// each. It blocks until ctx is canceled or the watcher errors.
func WatchConfig(ctx context.Context, root string, onChange func()) error {
	mainPath := Discover(root)
	if mainPath == "" {
		return fmt.Errorf("hookconfig: no config file to watch under %s", root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("hookconfig: create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(mainPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("hookconfig: watch %s: %w", dir, err)
	}

	watched := map[string]bool{mainPath: true}
	if local := localOverridePath(mainPath); local != "" {
		watched[local] = true
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[event.Name] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("hookconfig: watch error: %w", err)
		}
	}
}
