// Package interpreter executes a parsed tally program by walking its AST.
package interpreter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"tally/internal/ast"
	"tally/internal/runtime"
)

// ScopeMode selects what a called function can see besides its own frames.
type ScopeMode int

const (
	// ScopeDynamic leaves the caller's local scopes visible to the callee.
	ScopeDynamic ScopeMode = iota
	// ScopeLexical hides the caller's local scopes; a callee sees only the
	// globals and the scopes it pushes itself.
	ScopeLexical
)

func (m ScopeMode) String() string {
	if m == ScopeLexical {
		return "lexical"
	}
	return "dynamic"
}

// ParseScopeMode accepts "dynamic", "lexical", or "" (dynamic).
func ParseScopeMode(s string) (ScopeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dynamic":
		return ScopeDynamic, nil
	case "lexical":
		return ScopeLexical, nil
	}
	return ScopeDynamic, fmt.Errorf("unknown scope mode %q (want dynamic or lexical)", s)
}

type Options struct {
	// Stdout receives print output. Defaults to os.Stdout.
	Stdout io.Writer
	Scope  ScopeMode
	// MaxCallDepth bounds nested user function calls. Zero means unlimited.
	MaxCallDepth int
	// Trace, when set, receives one line per executed statement.
	Trace io.Writer
}

// Interpreter holds the environment of one program run. The environment
// persists across Execute calls, so a REPL can feed it one snippet at a time.
// An Interpreter is not safe for concurrent use.
type Interpreter struct {
	env      *runtime.Environment
	out      io.Writer
	trace    io.Writer
	scope    ScopeMode
	maxDepth int
	depth    int
}

func New(opts Options) *Interpreter {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &Interpreter{
		env:      runtime.NewEnvironment(),
		out:      out,
		trace:    opts.Trace,
		scope:    opts.Scope,
		maxDepth: opts.MaxCallDepth,
	}
}

// Execute runs the top-level statements of program in order and stops at the
// first error.
func (in *Interpreter) Execute(program *ast.Program) error {
	for _, stmt := range program.Statements {
		if _, err := in.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Call invokes the declared function or builtin called name with args.
func (in *Interpreter) Call(name string, args ...runtime.Value) (runtime.Value, error) {
	return in.call(nil, name, args)
}

// Global returns the value bound to name in the global table.
func (in *Interpreter) Global(name string) (runtime.Value, bool) {
	return in.env.Global(name)
}

// Globals lists the names bound in the global table, sorted.
func (in *Interpreter) Globals() []string {
	return in.env.GlobalNames()
}

func (in *Interpreter) call(node ast.Node, name string, args []runtime.Value) (runtime.Value, error) {
	if v, ok := in.env.Get(name); ok {
		if fn, ok := v.(runtime.FunctionValue); ok {
			return in.callFunction(node, fn.Declaration, args)
		}
	}
	b, ok := builtins[name]
	if !ok {
		return nil, errorAt(node, "unknown function: %s", name)
	}
	v, err := b(args)
	if err != nil {
		return nil, errorAt(node, "%s: %v", name, err)
	}
	return v, nil
}

func (in *Interpreter) callFunction(node ast.Node, fn *ast.FunctionDeclaration, args []runtime.Value) (runtime.Value, error) {
	if len(args) != len(fn.Parameters) {
		return nil, errorAt(node, "function %s expects %d arguments, got %d", fn.Name, len(fn.Parameters), len(args))
	}
	if in.maxDepth > 0 && in.depth >= in.maxDepth {
		return nil, errorAt(node, "maximum call depth %d exceeded calling %s", in.maxDepth, fn.Name)
	}

	if in.scope == ScopeLexical {
		saved := in.env.Detach()
		defer in.env.Restore(saved)
	}
	in.env.Push()
	defer in.env.Pop()
	in.depth++
	defer func() { in.depth-- }()

	for i, param := range fn.Parameters {
		in.env.Set(param, args[i])
	}

	f, err := in.executeBlock(fn.Body)
	if err != nil {
		return nil, err
	}
	if f.returned {
		return f.value, nil
	}
	return runtime.Number(0), nil
}
