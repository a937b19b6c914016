package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher turns filesystem events on the registered targets into
// scheduler notifications.
type Watcher struct {
	fsw   *fsnotify.Watcher
	sched *Scheduler
}

// NewWatcher builds a Watcher feeding the given scheduler.
func NewWatcher(sched *Scheduler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	return &Watcher{fsw: fsw, sched: sched}, nil
}

// Watch registers targets. Directories are watched recursively, plain
// files directly. A target that cannot be watched is logged and skipped;
// the remaining targets stay live.
func (w *Watcher) Watch(targets ...string) {
	for _, target := range targets {
		if target == "" {
			continue
		}
		st, err := os.Stat(target)
		if err != nil {
			slog.Warn("Watch target unavailable, skipping", "target", target, "error", err)
			continue
		}
		if st.IsDir() {
			w.addDirsRecursive(target)
			continue
		}
		if err := w.fsw.Add(target); err != nil {
			slog.Warn("Watch add failed", "target", target, "error", err)
		}
	}
}

// Run pumps filesystem events into the scheduler until the context is
// cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.sched.Stop()
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod || ignorePath(ev.Name) {
		return
	}
	// New subdirectories must be picked up, or edits inside them go
	// unseen.
	if ev.Op&fsnotify.Create != 0 {
		if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
			w.addDirsRecursive(ev.Name)
		}
	}
	slog.Debug("Change detected", "path", ev.Name, "op", ev.Op.String())
	w.sched.Notify()
}

func (w *Watcher) addDirsRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return filepath.SkipDir
			}
			if err := w.fsw.Add(path); err != nil {
				slog.Warn("Watch add failed", "dir", path, "error", err)
			}
		}
		return nil
	})
}

// ignorePath filters events from files that never affect the generated
// site: hidden files and editor temp or swap files.
func ignorePath(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") {
		return true
	}
	if strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
