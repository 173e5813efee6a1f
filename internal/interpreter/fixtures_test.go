package interpreter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"

	"tally/internal/parser"
)

// fixture is one program plus its expected outcome. Files under testdata hold
// a YAML list of fixtures.
type fixture struct {
	Name   string   `yaml:"name"`
	Scope  string   `yaml:"scope"`
	Source string   `yaml:"source"`
	Stdout []string `yaml:"stdout"`
	Error  string   `yaml:"error"`
}

func readFixtures(t *testing.T, path string) []fixture {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var fixtures []fixture
	if err := dec.Decode(&fixtures); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return fixtures
}

func TestFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no fixtures found")
	}
	for _, path := range paths {
		for _, fx := range readFixtures(t, path) {
			fx := fx
			t.Run(strings.TrimSuffix(filepath.Base(path), ".yaml")+"/"+fx.Name, func(t *testing.T) {
				runFixture(t, fx)
			})
		}
	}
}

func runFixture(t *testing.T, fx fixture) {
	t.Helper()
	scope, err := ParseScopeMode(fx.Scope)
	if err != nil {
		t.Fatal(err)
	}
	program, err := parser.Parse(fx.Source)
	if err != nil {
		if fx.Error != "" && strings.Contains(err.Error(), fx.Error) {
			return
		}
		t.Fatalf("parse error: %v", err)
	}

	var out bytes.Buffer
	err = New(Options{Stdout: &out, Scope: scope, MaxCallDepth: 1000}).Execute(program)
	if fx.Error != "" {
		if err == nil {
			t.Fatalf("expected error containing %q, got none", fx.Error)
		}
		if !strings.Contains(err.Error(), fx.Error) {
			t.Fatalf("expected error containing %q, got %q", fx.Error, err)
		}
	} else if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	if s := strings.TrimSuffix(out.String(), "\n"); s != "" {
		got = strings.Split(s, "\n")
	}
	if diff := cmp.Diff(fx.Stdout, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("stdout mismatch (-want +got):\n%s", diff)
	}
}
