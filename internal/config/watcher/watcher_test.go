package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blockpad.toml")
	if err := os.WriteFile(path, []byte("a = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	events := make(chan Event, 8)
	w.OnChange(func(ev Event) { events <- ev })
	if err := w.Add(path); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// A neighbouring file is not reported.
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if err := os.WriteFile(path, []byte("a = 2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case ev := <-events:
		if ev.Path != path {
			t.Errorf("event path = %q, want %q", ev.Path, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
	}
}

func TestWatcherAddRemove(t *testing.T) {
	dir := t.TempDir()
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}

	a, b := filepath.Join(dir, "a.toml"), filepath.Join(dir, "b.toml")
	for _, p := range []string{a, b, a} {
		if err := w.Add(p); err != nil {
			t.Fatalf("Add(%s): %v", p, err)
		}
	}
	if got := w.Watching(); got != 2 {
		t.Errorf("Watching() = %d, want 2", got)
	}
	if err := w.Remove(a); err != nil {
		t.Errorf("Remove: %v", err)
	}
	if err := w.Remove(a); err != ErrNotWatching {
		t.Errorf("second Remove = %v, want ErrNotWatching", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Add(a); err != ErrWatcherClosed {
		t.Errorf("Add after Close = %v, want ErrWatcherClosed", err)
	}
}

func TestOperationString(t *testing.T) {
	tests := map[Operation]string{
		OpWrite:  "write",
		OpCreate: "create",
		OpRemove: "remove",
		OpRename: "rename",
		0:        "unknown",
	}
	for op, want := range tests {
		if got := op.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(op), got, want)
		}
	}
}
