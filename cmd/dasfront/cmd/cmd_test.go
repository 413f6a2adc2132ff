package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btouchard/dasfront/internal/compiler/lexer"
	"github.com/btouchard/dasfront/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, verbose, dumpTree, dbPath, runID, basePath = "", false, false, "", "", "."
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.das", "def a {\n    pass\n}\n"),
		writeFile(t, dir, "b.das", "typedef T = int\ntypedef T = float\n"),
		writeFile(t, dir, "c.das", "struct C {\n    x : int\n}\n"),
	}

	results, err := parseAll(context.Background(), config.Default(), paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("result[%d] is %s, want %s", i, res.Path, paths[i])
		}
	}
	if len(results[0].Diagnostics) != 0 || len(results[1].Diagnostics) != 1 || len(results[2].Diagnostics) != 0 {
		t.Errorf("unexpected diagnostic counts: %d, %d, %d",
			len(results[0].Diagnostics), len(results[1].Diagnostics), len(results[2].Diagnostics))
	}
}

func TestParseAllMissingFile(t *testing.T) {
	_, err := parseAll(context.Background(), config.Default(), []string{filepath.Join(t.TempDir(), "nope.das")})
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestRenderResult(t *testing.T) {
	dir := t.TempDir()
	clean := parseFile(config.Default(), writeFile(t, dir, "ok.das", "let x = 1\n"))
	var buf bytes.Buffer
	if n := renderResult(&buf, clean); n != 0 {
		t.Errorf("expected 0 diagnostics, got %d", n)
	}
	if !strings.Contains(buf.String(), "ok") {
		t.Errorf("expected an ok line, got %q", buf.String())
	}

	bad := parseFile(config.Default(), writeFile(t, dir, "bad.das", "typedef T = int\ntypedef T = float\n"))
	buf.Reset()
	if n := renderResult(&buf, bad); n != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", n)
	}
	out := buf.String()
	for _, want := range []string{"bad.das", "2:9", "duplicate declaration:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintTokens(t *testing.T) {
	var buf bytes.Buffer
	printTokens(&buf, lexer.NewFile("t.das", "let x = 1"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 tokens including EOF, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "1:1") || !strings.Contains(lines[0], `"let"`) {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[4], "EOF") {
		t.Errorf("expected EOF last, got %q", lines[4])
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.das", "def main {\n    pass\n}\n")
	bad := writeFile(t, dir, "bad.das", "typedef T = int\ntypedef T = float\n")

	if _, err := execute(t, "check", good); err != nil {
		t.Fatalf("expected a clean check, got %v", err)
	}
	out, err := execute(t, "check", good, bad)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("expected errDiagnostics, got %v", err)
	}
	if !strings.Contains(out, "1 diagnostics in 2 files") {
		t.Errorf("expected a summary line, got:\n%s", out)
	}
}

func TestParseCommandDump(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.das", "def main {\n    pass\n}\n")
	out, err := execute(t, "parse", "--dump", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "(def main () : -") {
		t.Errorf("expected the function in the dump, got:\n%s", out)
	}
}

func TestIndexAndFind(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "index.db")
	src := writeFile(t, dir, "math.das", "module math\nstruct Vec {\n    x : float\n}\n")

	out, err := execute(t, "index", "--db", db, src)
	if err != nil {
		t.Fatalf("index failed: %v", err)
	}
	if !strings.Contains(out, "1 files, 0 diagnostics") {
		t.Errorf("unexpected index output %q", out)
	}

	out, err = execute(t, "find", "--db", db, "math::Vec")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if !strings.Contains(out, "math.das:2:1 struct Vec") {
		t.Errorf("unexpected find output %q", out)
	}

	if _, err := execute(t, "find", "--db", db, "Missing"); err == nil {
		t.Error("expected an error for an unknown name")
	}
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	conf := writeFile(t, dir, "dasfront.toml", "[[macros]]\nname = \"sql\"\nterminator = \"~\"\n")
	src := writeFile(t, dir, "q.das", "let q = %sql~select 1~\n")

	_, err := execute(t, "--config", conf, "check", src)
	if err != nil {
		t.Fatalf("expected the configured macro to parse, got %v", err)
	}

	_, err = execute(t, "--config", filepath.Join(dir, "missing.toml"), "check", src)
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected a missing config error, got %v", err)
	}
}
