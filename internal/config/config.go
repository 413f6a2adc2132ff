package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/btouchard/dasfront/internal/compiler/macro"
	"github.com/btouchard/dasfront/internal/compiler/parser"
)

// Config holds the complete tool configuration
type Config struct {
	Log    LogConfig     `toml:"log" yaml:"log" json:"log"`
	Parser ParserConfig  `toml:"parser" yaml:"parser" json:"parser"`
	Macros []MacroConfig `toml:"macros" yaml:"macros" json:"macros"`
	Index  IndexConfig   `toml:"index" yaml:"index" json:"index"`
	Watch  WatchConfig   `toml:"watch" yaml:"watch" json:"watch"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `toml:"level" yaml:"level" json:"level"`
	Format string `toml:"format" yaml:"format" json:"format"` // text or json
}

// ParserConfig holds the parse policy applied to every unit
type ParserConfig struct {
	OxfordComma    bool `toml:"oxford_comma" yaml:"oxford_comma" json:"oxford_comma"`
	DefaultPrivate bool `toml:"default_private" yaml:"default_private" json:"default_private"`
	MaxErrors      int  `toml:"max_errors" yaml:"max_errors" json:"max_errors"`
}

// MacroConfig declares a delimited reader macro: %name~ ... terminator
type MacroConfig struct {
	Name       string `toml:"name" yaml:"name" json:"name"`
	Terminator string `toml:"terminator" yaml:"terminator" json:"terminator"`
}

// IndexConfig holds declaration index settings
type IndexConfig struct {
	Path string `toml:"path" yaml:"path" json:"path"`
}

// WatchConfig holds watch mode settings
type WatchConfig struct {
	Debounce Duration `toml:"debounce" yaml:"debounce" json:"debounce"`
}

// Duration wraps time.Duration so every format reads "250ms" style strings
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file. The format follows the extension:
// .toml, .yaml/.yml, or .json/.jsonc (comments and trailing commas allowed).
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".json", ".jsonc":
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(std))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Index.Path == "" {
		c.Index.Path = "dasfront.db"
	}
	if c.Watch.Debounce.Duration == 0 {
		c.Watch.Debounce.Duration = 200 * time.Millisecond
	}
}

// Validate checks values the decoders cannot.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Parser.MaxErrors < 0 {
		return fmt.Errorf("parser.max_errors must not be negative")
	}
	for i, m := range c.Macros {
		if m.Name == "" {
			return fmt.Errorf("macros[%d]: missing name", i)
		}
		if len([]rune(m.Terminator)) != 1 {
			return fmt.Errorf("macro %s: terminator must be a single character, got %q", m.Name, m.Terminator)
		}
	}
	return nil
}

// Registry builds the reader-macro registry declared by the configuration.
func (c *Config) Registry() *macro.Registry {
	reg := macro.NewRegistry()
	for _, m := range c.Macros {
		reg.Register(macro.NewDelimited(m.Name, []rune(m.Terminator)[0]))
	}
	return reg
}

// ParserOptions returns the parser options for one unit. Each call builds a fresh
// registry: stock macro handlers hold per-parse state.
func (c *Config) ParserOptions(file string) parser.Options {
	return parser.Options{
		File:           file,
		OxfordComma:    c.Parser.OxfordComma,
		DefaultPrivate: c.Parser.DefaultPrivate,
		MaxErrors:      c.Parser.MaxErrors,
		Macros:         c.Registry(),
	}
}
