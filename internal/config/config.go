// Package config loads the optional tally.yaml settings file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tally/internal/interpreter"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "tally.yaml"

type Config struct {
	Scope        string `yaml:"scope"`
	MaxCallDepth int    `yaml:"max_call_depth"`
	Trace        bool   `yaml:"trace"`
	HistoryFile  string `yaml:"history_file"`
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	return "config: " + strings.Join(e.Issues, "; ")
}

func Default() Config {
	return Config{
		Scope:       interpreter.ScopeDynamic.String(),
		HistoryFile: ".tally_history",
	}
}

// Load reads path on top of Default. Unknown keys are rejected. An empty
// file yields the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional behaves like Load but returns the defaults when path does not
// exist.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs ValidationError
	if _, err := interpreter.ParseScopeMode(c.Scope); err != nil {
		errs.Issues = append(errs.Issues, "scope: "+err.Error())
	}
	if c.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth must not be negative, got %d", c.MaxCallDepth))
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// InterpreterOptions converts the settings into interpreter options. Output
// writers are left for the caller; trace, when enabled, goes to traceOut.
func (c Config) InterpreterOptions(stdout, traceOut io.Writer) (interpreter.Options, error) {
	scope, err := interpreter.ParseScopeMode(c.Scope)
	if err != nil {
		return interpreter.Options{}, err
	}
	opts := interpreter.Options{
		Stdout:       stdout,
		Scope:        scope,
		MaxCallDepth: c.MaxCallDepth,
	}
	if c.Trace {
		opts.Trace = traceOut
	}
	return opts, nil
}
