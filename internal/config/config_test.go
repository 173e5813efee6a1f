package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tally/internal/interpreter"
)

func TestDecode(t *testing.T) {
	cfg, err := Decode(strings.NewReader("scope: lexical\nmax_call_depth: 64\ntrace: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := Config{Scope: "lexical", MaxCallDepth: 64, Trace: true, HistoryFile: ".tally_history"}
	if cfg != want {
		t.Fatalf("want %+v, got %+v", want, cfg)
	}
}

func TestDecodeEmptyGivesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatalf("want defaults, got %+v", cfg)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"scopes: lexical\n", "field scopes not found"},
		{"scope: static\n", `unknown scope mode "static"`},
		{"max_call_depth: -1\n", "max_call_depth must not be negative"},
		{"scope: static\nmax_call_depth: -2\n", "; max_call_depth"},
		{"trace: [1\n", "parse"},
	}
	for _, tt := range tests {
		_, err := Decode(strings.NewReader(tt.src))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%q: want error containing %q, got %v", tt.src, tt.want, err)
		}
	}

	_, err := Decode(strings.NewReader("max_call_depth: -1\n"))
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Issues) != 1 {
		t.Fatalf("want one validation issue, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	if err := os.WriteFile(path, []byte("history_file: /tmp/h\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HistoryFile != "/tmp/h" || cfg.Scope != "dynamic" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want ErrNotExist, got %v", err)
	}
	cfg, err = LoadOptional(filepath.Join(dir, "missing.yaml"))
	if err != nil || cfg != Default() {
		t.Fatalf("want defaults, got %+v %v", cfg, err)
	}
}

func TestInterpreterOptions(t *testing.T) {
	var out, trace strings.Builder
	cfg := Config{Scope: "lexical", MaxCallDepth: 7}
	opts, err := cfg.InterpreterOptions(&out, &trace)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Scope != interpreter.ScopeLexical || opts.MaxCallDepth != 7 || opts.Trace != nil || opts.Stdout != &out {
		t.Fatalf("unexpected options %+v", opts)
	}

	cfg.Trace = true
	opts, _ = cfg.InterpreterOptions(&out, &trace)
	if opts.Trace != &trace {
		t.Fatal("trace writer not wired")
	}
}
