// Package watch re-parses source units as they change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/parser"
)

// Extension selects the files the watcher parses.
const Extension = ".das"

// Result is the outcome of parsing one file. Err is set when the file could not be read.
type Result struct {
	Path        string
	Program     *ast.Program
	Diagnostics []*diag.Diagnostic
	Err         error
}

// ParseFile reads and parses one unit.
func ParseFile(path string, opts parser.Options) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("failed to read %s: %w", path, err)}
	}
	prog, diags := parser.ParseString(path, string(data), opts)
	return Result{Path: path, Program: prog, Diagnostics: diags}
}

// Watcher parses every unit under a directory tree, then re-parses units as they are written.
type Watcher struct {
	dir      string
	debounce time.Duration
	options  func(file string) parser.Options
	log      *slog.Logger
}

// New creates a Watcher. options supplies the parser options of each file.
func New(dir string, debounce time.Duration, options func(file string) parser.Options, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		options:  options,
		log:      log.With(slog.String("component", "watch")),
	}
}

// Run blocks until ctx is done, calling handle for the initial pass and for every
// change. Writes to the same file within the debounce window are parsed once.
func (w *Watcher) Run(ctx context.Context, handle func(Result)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fw.Close()

	var initial []string
	err = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		if filepath.Ext(path) == Extension {
			initial = append(initial, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	for _, path := range initial {
		w.parse(path, handle)
	}
	w.log.Info("watching", slog.String("dir", w.dir), slog.Int("files", len(initial)))

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := fw.Add(ev.Name); err != nil {
						w.log.Warn("cannot watch directory", slog.String("dir", ev.Name), slog.Any("error", err))
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || filepath.Ext(ev.Name) != Extension {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", slog.Any("error", err))
		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			clear(pending)
			for _, path := range paths {
				w.parse(path, handle)
			}
		}
	}
}

func (w *Watcher) parse(path string, handle func(Result)) {
	res := ParseFile(path, w.options(path))
	if res.Err != nil {
		w.log.Warn("parse skipped", slog.String("path", path), slog.Any("error", res.Err))
	} else {
		w.log.Debug("parsed", slog.String("path", path), slog.Int("diagnostics", len(res.Diagnostics)))
	}
	handle(res)
}
