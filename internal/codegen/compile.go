// Package codegen lowers the numeric subset of a program (numbers, arithmetic,
// control flow and functions of numbers) to Go closures, or emits it as a
// standalone Go program.
package codegen

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"tally/internal/ast"
	"tally/internal/runtime"
)

// ErrUnsupported is wrapped by every *UnsupportedError.
var ErrUnsupported = errors.New("not supported by the numeric backend")

// UnsupportedError names the first construct the backend cannot lower, or a
// name it cannot resolve.
type UnsupportedError struct {
	What   string
	Line   int
	Column int
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.What)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

func unsupported(node ast.Node, format string, args ...any) error {
	line, col := node.Pos()
	return &UnsupportedError{What: fmt.Sprintf(format, args...), Line: line, Column: col}
}

type (
	// frame holds the variable slots of one activation.
	frame  []float64
	exprFn func(fr frame) float64
	// stmtFn reports whether a return executed, and its value.
	stmtFn func(fr frame) (float64, bool)
)

type function struct {
	name   string
	params int
	slots  int
	body   stmtFn
}

func (f *function) invoke(args []float64) float64 {
	fr := make(frame, f.slots)
	copy(fr, args)
	v, _ := f.body(fr)
	return v
}

// Module is a compiled program. Functions only see their own parameters and
// locals; top-level variables are private to Run.
type Module struct {
	// Stdout receives print output. Defaults to os.Stdout.
	Stdout io.Writer

	funcs map[string]*function
	main  *function
}

// Run executes the top-level statements and returns the value of a top-level
// return, or 0 when none executes.
func (m *Module) Run() (v float64, err error) {
	defer catchWrite(&err)
	return m.main.invoke(nil), nil
}

func (m *Module) Call(name string, args ...float64) (v float64, err error) {
	fn, ok := m.funcs[name]
	if !ok {
		return 0, fmt.Errorf("unknown function: %s", name)
	}
	if len(args) != fn.params {
		return 0, fmt.Errorf("function %s expects %d arguments, got %d", name, fn.params, len(args))
	}
	defer catchWrite(&err)
	return fn.invoke(args), nil
}

// writeError carries a failed print out of the compiled closures, which have
// no error result.
type writeError struct{ err error }

func catchWrite(err *error) {
	if r := recover(); r != nil {
		we, ok := r.(writeError)
		if !ok {
			panic(r)
		}
		*err = we.err
	}
}

func (m *Module) stdout() io.Writer {
	if m.Stdout == nil {
		return os.Stdout
	}
	return m.Stdout
}

var mathBuiltins = map[string]int{
	"sqrt": 1,
	"log":  1,
	"exp":  1,
	"abs":  1,
	"pow":  2,
}

// Compile lowers program. Every function declaration, nested ones included,
// becomes a module-level function; a later declaration of the same name
// replaces an earlier one.
func Compile(program *ast.Program) (*Module, error) {
	m := &Module{funcs: make(map[string]*function)}
	decls := make(map[string]*ast.FunctionDeclaration)
	for _, decl := range program.Functions() {
		m.funcs[decl.Name] = &function{name: decl.Name, params: len(decl.Parameters)}
		decls[decl.Name] = decl
	}

	for _, decl := range program.Functions() {
		if decls[decl.Name] != decl {
			continue
		}
		c := newCompiler(m)
		for _, p := range decl.Parameters {
			c.declare(p)
		}
		body, err := c.block(decl.Body.Statements, false)
		if err != nil {
			return nil, err
		}
		fn := m.funcs[decl.Name]
		fn.body, fn.slots = body, c.slots
	}

	c := newCompiler(m)
	body, err := c.block(program.Statements, false)
	if err != nil {
		return nil, err
	}
	m.main = &function{name: "main", body: body, slots: c.slots}
	return m, nil
}

// compiler assigns frame slots for one function body. scopes mirror the
// block structure so a let inside a block shadows only within it.
type compiler struct {
	m      *Module
	scopes []map[string]int
	slots  int
}

func newCompiler(m *Module) *compiler {
	return &compiler{m: m, scopes: []map[string]int{{}}}
}

func (c *compiler) declare(name string) int {
	slot := c.slots
	c.slots++
	c.scopes[len(c.scopes)-1][name] = slot
	return slot
}

func (c *compiler) lookup(name string) (int, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if slot, ok := c.scopes[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

func (c *compiler) block(stmts []ast.Statement, scoped bool) (stmtFn, error) {
	if scoped {
		c.scopes = append(c.scopes, map[string]int{})
		defer func() { c.scopes = c.scopes[:len(c.scopes)-1] }()
	}
	fns := make([]stmtFn, 0, len(stmts))
	for _, s := range stmts {
		fn, err := c.statement(s)
		if err != nil {
			return nil, err
		}
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	return func(fr frame) (float64, bool) {
		for _, fn := range fns {
			if v, ret := fn(fr); ret {
				return v, true
			}
		}
		return 0, false
	}, nil
}

func (c *compiler) statement(stmt ast.Statement) (stmtFn, error) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		val, err := c.expr(s.Value)
		if err != nil {
			return nil, err
		}
		slot := c.declare(s.Name)
		return func(fr frame) (float64, bool) {
			fr[slot] = val(fr)
			return 0, false
		}, nil

	case *ast.AssignmentStatement:
		slot, ok := c.lookup(s.Name)
		if !ok {
			return nil, unsupported(s, "undefined variable: %s", s.Name)
		}
		val, err := c.expr(s.Value)
		if err != nil {
			return nil, err
		}
		return func(fr frame) (float64, bool) {
			fr[slot] = val(fr)
			return 0, false
		}, nil

	case *ast.PrintStatement:
		val, err := c.expr(s.Expression)
		if err != nil {
			return nil, err
		}
		return func(fr frame) (float64, bool) {
			if _, err := fmt.Fprintln(c.m.stdout(), runtime.FormatNumber(val(fr))); err != nil {
				panic(writeError{fmt.Errorf("print: %w", err)})
			}
			return 0, false
		}, nil

	case *ast.BlockStatement:
		return c.block(s.Statements, true)

	case *ast.IfStatement:
		cond, err := c.expr(s.Condition)
		if err != nil {
			return nil, err
		}
		then, err := c.block(s.Consequence.Statements, true)
		if err != nil {
			return nil, err
		}
		otherwise := func(frame) (float64, bool) { return 0, false }
		if s.Alternative != nil {
			if otherwise, err = c.block(s.Alternative.Statements, true); err != nil {
				return nil, err
			}
		}
		return func(fr frame) (float64, bool) {
			if cond(fr) != 0 {
				return then(fr)
			}
			return otherwise(fr)
		}, nil

	case *ast.WhileStatement:
		cond, err := c.expr(s.Condition)
		if err != nil {
			return nil, err
		}
		body, err := c.block(s.Body.Statements, true)
		if err != nil {
			return nil, err
		}
		return func(fr frame) (float64, bool) {
			for cond(fr) != 0 {
				if v, ret := body(fr); ret {
					return v, true
				}
			}
			return 0, false
		}, nil

	case *ast.ForStatement:
		return c.forStatement(s)

	case *ast.FunctionDeclaration:
		// Compiled up front by Compile.
		return nil, nil

	case *ast.ReturnStatement:
		if s.ReturnValue == nil {
			return func(frame) (float64, bool) { return 0, true }, nil
		}
		val, err := c.expr(s.ReturnValue)
		if err != nil {
			return nil, err
		}
		return func(fr frame) (float64, bool) { return val(fr), true }, nil
	}
	return nil, unsupported(stmt, "%s statement", nodeName(stmt))
}

func (c *compiler) forStatement(s *ast.ForStatement) (stmtFn, error) {
	c.scopes = append(c.scopes, map[string]int{})
	defer func() { c.scopes = c.scopes[:len(c.scopes)-1] }()

	noop := func(frame) (float64, bool) { return 0, false }
	always := func(frame) float64 { return 1 }
	initFn, updateFn, cond := noop, noop, always
	var err error
	if s.Init != nil {
		if initFn, err = c.statement(s.Init); err != nil {
			return nil, err
		}
	}
	if s.Condition != nil {
		if cond, err = c.expr(s.Condition); err != nil {
			return nil, err
		}
	}
	if s.Update != nil {
		if updateFn, err = c.statement(s.Update); err != nil {
			return nil, err
		}
	}
	body, err := c.block(s.Body.Statements, true)
	if err != nil {
		return nil, err
	}
	return func(fr frame) (float64, bool) {
		for initFn(fr); cond(fr) != 0; updateFn(fr) {
			if v, ret := body(fr); ret {
				return v, true
			}
		}
		return 0, false
	}, nil
}

func (c *compiler) expr(e ast.Expression) (exprFn, error) {
	switch e := e.(type) {
	case *ast.NumberLiteral:
		v := e.Value
		return func(frame) float64 { return v }, nil

	case *ast.Identifier:
		slot, ok := c.lookup(e.Value)
		if !ok {
			return nil, unsupported(e, "undefined variable: %s", e.Value)
		}
		return func(fr frame) float64 { return fr[slot] }, nil

	case *ast.BinaryOperation:
		l, err := c.expr(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := c.expr(e.Right)
		if err != nil {
			return nil, err
		}
		return binary(e, l, r)

	case *ast.FunctionCall:
		return c.call(e)
	}
	return nil, unsupported(e, "%s expression", nodeName(e))
}

func (c *compiler) call(e *ast.FunctionCall) (exprFn, error) {
	args := make([]exprFn, len(e.Arguments))
	for i, a := range e.Arguments {
		fn, err := c.expr(a)
		if err != nil {
			return nil, err
		}
		args[i] = fn
	}

	if fn, ok := c.m.funcs[e.Function]; ok {
		if len(args) != fn.params {
			return nil, unsupported(e, "function %s expects %d arguments, got %d", fn.name, fn.params, len(args))
		}
		return func(fr frame) float64 {
			vals := make([]float64, len(args))
			for i, a := range args {
				vals[i] = a(fr)
			}
			return fn.invoke(vals)
		}, nil
	}

	n, ok := mathBuiltins[e.Function]
	if !ok {
		return nil, unsupported(e, "unknown function: %s", e.Function)
	}
	if len(args) != n {
		return nil, unsupported(e, "builtin %s expects %d arguments, got %d", e.Function, n, len(args))
	}
	switch e.Function {
	case "sqrt":
		return unaryMath(math.Sqrt, args[0]), nil
	case "log":
		return unaryMath(math.Log, args[0]), nil
	case "exp":
		return unaryMath(math.Exp, args[0]), nil
	case "abs":
		return unaryMath(math.Abs, args[0]), nil
	}
	x, y := args[0], args[1]
	return func(fr frame) float64 { return math.Pow(x(fr), y(fr)) }, nil
}

func unaryMath(f func(float64) float64, arg exprFn) exprFn {
	return func(fr frame) float64 { return f(arg(fr)) }
}

func binary(e *ast.BinaryOperation, l, r exprFn) (exprFn, error) {
	switch e.Operator {
	case "+":
		return func(fr frame) float64 { return l(fr) + r(fr) }, nil
	case "-":
		return func(fr frame) float64 { return l(fr) - r(fr) }, nil
	case "*":
		return func(fr frame) float64 { return l(fr) * r(fr) }, nil
	case "/":
		return func(fr frame) float64 { return l(fr) / r(fr) }, nil
	case "**":
		return func(fr frame) float64 { return math.Pow(l(fr), r(fr)) }, nil
	case "==":
		return func(fr frame) float64 { return b2f(l(fr) == r(fr)) }, nil
	case "!=":
		return func(fr frame) float64 { return b2f(l(fr) != r(fr)) }, nil
	case "<":
		return func(fr frame) float64 { return b2f(l(fr) < r(fr)) }, nil
	case ">":
		return func(fr frame) float64 { return b2f(l(fr) > r(fr)) }, nil
	case "<=":
		return func(fr frame) float64 { return b2f(l(fr) <= r(fr)) }, nil
	case ">=":
		return func(fr frame) float64 { return b2f(l(fr) >= r(fr)) }, nil
	}
	return nil, unsupported(e, "operator %s", e.Operator)
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func nodeName(n ast.Node) string {
	return fmt.Sprintf("%T", n)[len("*ast."):]
}
