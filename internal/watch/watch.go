//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package watch re-runs a handler whenever an input file changes.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
)

// DefaultDebounce is how long the file must be quiet before the handler
// runs. Editors and exporters often write a file in several steps.
const DefaultDebounce = 500 * time.Millisecond

// Handler is called with the watched path after each settled change.
type Handler func(path string) error

// Watcher watches one file through its parent directory, so files that
// are replaced by rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	lastMod  time.Time
	lastSize int64
}

// New creates a watcher for path. The file need not exist yet.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{path: abs, debounce: debounce, watcher: fw}
	if info, err := os.Stat(abs); err == nil {
		w.lastMod = info.ModTime()
		w.lastSize = info.Size()
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run blocks until ctx is done or the watcher fails. Handler errors are
// logged and do not stop the loop. The handler runs on the calling
// goroutine, so runs never overlap.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if !w.changed() {
				continue
			}
			logging.Info().Str("input", w.path).Msg("Input changed")
			if err := handler(w.path); err != nil {
				logging.Error().Err(err).Str("input", w.path).Msg("Analysis failed")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.path, err)
		}
	}
}

// changed reports whether the file differs from the last handled state.
func (w *Watcher) changed() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	if info.ModTime().Equal(w.lastMod) && info.Size() == w.lastSize {
		return false
	}
	w.lastMod = info.ModTime()
	w.lastSize = info.Size()
	return true
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
