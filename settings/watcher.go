package settings

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CheckInterval bounds how often the settings file is stat'ed.
const CheckInterval = 500 * time.Millisecond

// Watcher reports changes to the settings file. fsnotify events mark the
// file dirty; the check itself runs on the poll tick, which also catches
// changes on filesystems without notifications.
type Watcher struct {
	path     string
	interval time.Duration
	log      *slog.Logger

	modTime time.Time
	size    int64
	exists  bool
}

// NewWatcher records the current state of path so only later changes are
// reported.
func NewWatcher(path string, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	w := &Watcher{path: filepath.Clean(path), interval: CheckInterval, log: log}
	w.Changed()
	return w
}

// Changed stats the file and reports whether its mtime, size or existence
// differs from the previous call.
func (w *Watcher) Changed() bool {
	info, err := os.Stat(w.path)
	exists := err == nil
	var mod time.Time
	var size int64
	if exists {
		mod, size = info.ModTime(), info.Size()
	}
	changed := exists != w.exists || !mod.Equal(w.modTime) || size != w.size
	w.exists, w.modTime, w.size = exists, mod, size
	return changed
}

// Run blocks until ctx is done, calling onChange with the reloaded file
// after every change.
func (w *Watcher) Run(ctx context.Context, onChange func(*File, error)) error {
	events, closeNotify := w.notify()
	defer closeNotify()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	const fullPollEvery = 10
	pending := false
	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) == w.path {
				pending = true
			}
		case <-ticker.C:
			ticks++
			if !pending && events != nil && ticks%fullPollEvery != 0 {
				continue
			}
			pending = false
			if w.Changed() {
				f, err := Load(w.path)
				w.log.Info("settings changed", "path", w.path, "error", err)
				onChange(f, err)
			}
		}
	}
}

// notify watches the settings directory. Without fsnotify the returned
// channel is nil and Run polls on every tick.
func (w *Watcher) notify() (<-chan fsnotify.Event, func()) {
	nw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Warn("settings watcher unavailable, polling", "error", err)
		return nil, func() {}
	}
	if err := nw.Add(filepath.Dir(w.path)); err != nil {
		w.log.Debug("settings dir not watchable, polling", "error", err)
		nw.Close()
		return nil, func() {}
	}
	go func() {
		for err := range nw.Errors {
			w.log.Warn("settings watcher error", "error", err)
		}
	}()
	return nw.Events, func() { nw.Close() }
}
