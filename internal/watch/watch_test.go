package watch

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWatcher_SignalsOnWrite(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "proj")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New([]string{root}, 50*time.Millisecond, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(sub, "session.jsonl"), []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change signal after writing a log file")
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	w, err := New([]string{root}, 100*time.Millisecond, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		os.WriteFile(filepath.Join(root, "s.jsonl"), []byte("{}\n"), 0o644)
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("expected one signal for the burst")
	}

	select {
	case <-w.Changes():
		t.Error("burst should collapse into a single signal")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_MissingRootIsNotFatal(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "absent")}, 50*time.Millisecond, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("New should tolerate missing roots, got: %v", err)
	}
	w.Close()
}
