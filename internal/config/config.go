// Package config loads protos.yaml.
//
// A config is decoded with yaml.v3 (unknown keys rejected) and then
// validated against an embedded CUE schema, so constraint errors name the
// offending field. Defaults are applied after validation.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// DefaultFile is the config file name looked up by the CLI.
const DefaultFile = "protos.yaml"

// Defaults applied when a field is left empty.
const (
	DefaultOutput   = "protos.json"
	DefaultLogLevel = "info"
)

// Backend names accepted in backends[].name.
const (
	BackendTS       = "ts"
	BackendPkgDef   = "pkgdef"
	BackendServices = "services"
	BackendJSON     = "json"
)

// Backend is one renderer run after compiling.
type Backend struct {
	Name   string `yaml:"name" json:"name,omitempty"`
	Output string `yaml:"output" json:"output,omitempty"`
}

// Config is the decoded protos.yaml.
type Config struct {
	Descriptors []string  `yaml:"descriptors" json:"descriptors,omitempty"`
	Output      string    `yaml:"output" json:"output,omitempty"`
	Database    string    `yaml:"database" json:"database,omitempty"`
	LogLevel    string    `yaml:"log_level" json:"log_level,omitempty"`
	Backends    []Backend `yaml:"backends" json:"backends,omitempty"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// ValidationError lists every schema violation of a config.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	where := "config"
	if e.Path != "" {
		where = e.Path
	}
	return fmt.Sprintf("%s: invalid configuration:\n  %s", where, strings.Join(e.Errors, "\n  "))
}

// Load reads and parses the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields Default().
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes YAML, validates it and applies defaults. An empty document
// is the default config.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Validate checks cfg against the embedded CUE schema.
func Validate(cfg *Config) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	val := ctx.Encode(cfg)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	err := def.Unify(val).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range cueerrors.Errors(err) {
		ve.Errors = append(ve.Errors, e.Error())
	}
	if len(ve.Errors) == 0 {
		ve.Errors = []string{err.Error()}
	}
	return ve
}

func (c *Config) applyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// SlogLevel maps LogLevel to a slog level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Backend returns the first backend with the given name.
func (c *Config) Backend(name string) (Backend, bool) {
	for _, b := range c.Backends {
		if b.Name == name {
			return b, true
		}
	}
	return Backend{}, false
}
