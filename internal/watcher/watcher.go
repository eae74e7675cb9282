// Package watcher re-runs the analysis when its input files change.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// InputWatcher watches a fixed set of files and invokes a callback after a
// quiet period once any of them changes. Editors and archive rebuilds
// produce bursts of events; debouncing collapses each burst into one run.
type InputWatcher struct {
	watcher  *fsnotify.Watcher
	paths    map[string]bool // absolute paths being watched
	debounce time.Duration
	callback func()

	timerMu sync.Mutex
	timer   *time.Timer
}

// New creates a watcher over the given files. The parent directories are
// watched, which survives the rename-and-replace pattern most tools use
// when rewriting archives.
func New(paths []string, callback func()) (*InputWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &InputWatcher{
		watcher:  fsw,
		paths:    make(map[string]bool),
		debounce: defaultDebounce,
		callback: callback,
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return w, nil
}

// Watch blocks processing events until the context is cancelled.
func (w *InputWatcher) Watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

// Close stops the watcher and cancels any pending callback.
func (w *InputWatcher) Close() error {
	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerMu.Unlock()
	return w.watcher.Close()
}

// relevant reports whether an event touches one of the watched files with
// an operation that changes content.
func (w *InputWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.paths[abs]
}

// schedule (re)arms the debounce timer.
func (w *InputWatcher) schedule() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.callback)
}
