package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/btouchard/dasfront/internal/compiler/parser"
	"github.com/btouchard/dasfront/internal/logging"
)

func options(file string) parser.Options {
	return parser.Options{File: file}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.das")
	if err := os.WriteFile(path, []byte("def main {\n    pass\n}\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res := ParseFile(path, options(path))
	if res.Err != nil || len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Program.FindFunctions("main")) != 1 {
		t.Errorf("expected function main")
	}

	res = ParseFile(filepath.Join(t.TempDir(), "missing.das"), parser.Options{})
	if res.Err == nil {
		t.Errorf("expected a read error")
	}
}

func TestWatcherReparsesChanges(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.das")
	if err := os.WriteFile(first, []byte("def a {\n    pass\n}\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	results := make(chan Result, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(dir, 20*time.Millisecond, options, logging.Discard())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(r Result) { results <- r })
	}()

	// initial pass
	select {
	case r := <-results:
		if r.Path != first || len(r.Program.FindFunctions("a")) != 1 {
			t.Fatalf("unexpected initial result for %s", r.Path)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for the initial pass")
	}

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	second := filepath.Join(dir, "b.das")
	if err := os.WriteFile(second, []byte("def b {\n    pass\n}\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-results:
			if r.Path != second {
				t.Fatalf("unexpected result for %s", r.Path)
			}
			if r.Err == nil && len(r.Program.FindFunctions("b")) == 1 {
				cancel()
				if err := <-done; err != nil {
					t.Errorf("Run returned %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for b.das")
		}
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope"), time.Millisecond, options, logging.Discard())
	if err := w.Run(context.Background(), func(Result) {}); err == nil {
		t.Errorf("expected an error for a missing directory")
	}
}
