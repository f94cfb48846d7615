package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNewRequiresExistingFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.json"), 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewDefaultsDebounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
}

func TestRelevantFiltersByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New(path, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write to target", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create of target", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"rename of target", fsnotify.Event{Name: path, Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"sibling file", fsnotify.Event{Name: filepath.Join(filepath.Dir(path), "other.json"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := w.relevant(tt.event, "tasks.json"); got != tt.want {
			t.Errorf("%s: relevant = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRunFiresAfterDebounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 1)
	w.OnChange = func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watch a moment to attach before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"tasks":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange never fired")
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(time.Hour)

	if !d.ShouldTrigger() {
		t.Fatal("first check must trigger")
	}
	if d.ShouldTrigger() {
		t.Fatal("second check inside the window must not trigger")
	}

	d.Reset()
	if !d.ShouldTrigger() {
		t.Fatal("check after reset must trigger")
	}
}

func TestDebouncerElapsedWindow(t *testing.T) {
	d := NewDebouncer(time.Nanosecond)
	if !d.ShouldTrigger() {
		t.Fatal("first check must trigger")
	}
	time.Sleep(time.Millisecond)
	if !d.ShouldTrigger() {
		t.Fatal("check after the window must trigger")
	}
}
