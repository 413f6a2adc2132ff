package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/btouchard/dasfront/internal/compiler/dump"
	"github.com/btouchard/dasfront/internal/compiler/parser"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Index.Path != "dasfront.db" {
		t.Errorf("unexpected index path %q", cfg.Index.Path)
	}
	if cfg.Watch.Debounce.Duration != 200*time.Millisecond {
		t.Errorf("unexpected debounce %s", cfg.Watch.Debounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "dasfront.toml", `
[log]
level = "debug"
format = "json"

[parser]
oxford_comma = true
max_errors = 5

[[macros]]
name = "sql"
terminator = "~"

[watch]
debounce = "1s"
`},
		{"yaml", "dasfront.yaml", `
log:
  level: debug
  format: json
parser:
  oxford_comma: true
  max_errors: 5
macros:
  - name: sql
    terminator: "~"
watch:
  debounce: 1s
`},
		{"jsonc", "dasfront.jsonc", `{
  // comments and trailing commas are fine
  "log": {"level": "debug", "format": "json"},
  "parser": {"oxford_comma": true, "max_errors": 5,},
  "macros": [{"name": "sql", "terminator": "~"}],
  "watch": {"debounce": "1s"},
}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
				t.Errorf("log = %+v", cfg.Log)
			}
			if !cfg.Parser.OxfordComma || cfg.Parser.MaxErrors != 5 || cfg.Parser.DefaultPrivate {
				t.Errorf("parser = %+v", cfg.Parser)
			}
			if len(cfg.Macros) != 1 || cfg.Macros[0].Name != "sql" || cfg.Macros[0].Terminator != "~" {
				t.Errorf("macros = %+v", cfg.Macros)
			}
			if cfg.Watch.Debounce.Duration != time.Second {
				t.Errorf("debounce = %s", cfg.Watch.Debounce)
			}
			// unset values fall back to defaults
			if cfg.Index.Path != "dasfront.db" {
				t.Errorf("index path = %q", cfg.Index.Path)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown extension", "cfg.ini", "x=1", "unsupported config format"},
		{"bad toml", "cfg.toml", "[log", "failed to parse config"},
		{"bad format", "cfg.toml", "[log]\nformat = \"xml\"\n", "log.format"},
		{"long terminator", "cfg.yaml", "macros:\n  - name: sql\n    terminator: ab\n", "single character"},
		{"unnamed macro", "cfg.json", `{"macros": [{"terminator": "~"}]}`, "missing name"},
		{"unknown json field", "cfg.json", `{"colour": "red"}`, "failed to parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected a not found error, got %v", err)
	}
}

func TestParserOptions(t *testing.T) {
	cfg := Default()
	cfg.Parser.MaxErrors = 3
	cfg.Macros = []MacroConfig{{Name: "sql", Terminator: "~"}}

	opts := cfg.ParserOptions("main.das")
	if opts.File != "main.das" || opts.MaxErrors != 3 {
		t.Errorf("unexpected options %+v", opts)
	}

	e, errs := parser.ParseExpression("%sql~select 1~", opts)
	if len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	if got := dump.Expr(e); got != `(%sql "select 1")` {
		t.Errorf("unexpected tree %s", got)
	}
}
