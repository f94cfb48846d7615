// Package watcher triggers callbacks when the tasks file changes on disk.
// Editors replace files rather than write them in place, so the watch is on
// the parent directory, filtered by file name.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last change
// before firing. Task files are often written several times in a burst.
const DefaultDebounce = 1000 * time.Millisecond

// Watcher observes one file and invokes OnChange after changes settle.
type Watcher struct {
	// OnChange runs after the debounce window closes. Required.
	OnChange func()
	// OnError receives watch errors. Optional.
	OnError func(err error)

	path     string
	debounce time.Duration
}

// New creates a watcher for the given file. The file must exist.
func New(path string, debounce time.Duration) (*Watcher, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("watch target %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: path, debounce: debounce}, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Run watches until the context is cancelled. It blocks.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	base := filepath.Base(w.path)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	// fired is drained in this goroutine so OnChange never runs concurrently
	// with itself.
	fired := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event, base) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fired <- struct{}{}:
				default:
				}
			})

		case <-fired:
			w.OnChange()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}

// relevant reports whether an event means the watched file changed. Writes,
// creates, and renames all count; editors save through temp-file renames.
func (w *Watcher) relevant(event fsnotify.Event, base string) bool {
	if filepath.Base(event.Name) != base {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Debouncer rate-limits trigger checks: the first call fires, later calls
// fire only after the window has elapsed since the previous firing.
type Debouncer struct {
	window time.Duration
	last   time.Time
}

// NewDebouncer creates a debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// ShouldTrigger reports whether enough time has passed since the last
// accepted trigger, and records the acceptance when it has.
func (d *Debouncer) ShouldTrigger() bool {
	now := time.Now()
	if !d.last.IsZero() && now.Sub(d.last) < d.window {
		return false
	}
	d.last = now
	return true
}

// Reset forgets the last trigger so the next check fires immediately.
func (d *Debouncer) Reset() {
	d.last = time.Time{}
}
