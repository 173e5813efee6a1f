package interpreter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"tally/internal/parser"
	"tally/internal/runtime"
)

func run(t *testing.T, src string, opts Options) (*Interpreter, string, error) {
	t.Helper()
	program, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v\nsource:\n%s", err, src)
	}
	var out bytes.Buffer
	opts.Stdout = &out
	in := New(opts)
	err = in.Execute(program)
	return in, out.String(), err
}

func mustRun(t *testing.T, src string) (*Interpreter, string) {
	t.Helper()
	in, out, err := run(t, src, Options{})
	if err != nil {
		t.Fatalf("runtime error: %v\nsource:\n%s", err, src)
	}
	return in, out
}

func runtimeErr(t *testing.T, src, want string) *RuntimeError {
	t.Helper()
	_, _, err := run(t, src, Options{})
	if err == nil {
		t.Fatalf("expected runtime error containing %q\nsource:\n%s", want, src)
	}
	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("want ErrRuntime, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("want error containing %q, got %q", want, err)
	}
	var re *RuntimeError
	errors.As(err, &re)
	return re
}

func wantNumber(t *testing.T, v runtime.Value, want float64) {
	t.Helper()
	n, ok := v.(runtime.NumberValue)
	if !ok {
		t.Fatalf("want number %v, got %s %v", want, v.Kind(), v)
	}
	if n.Val != want {
		t.Fatalf("want %v, got %v", want, n.Val)
	}
}

const recursive = `
function factorial(n) {
  if (n <= 1) { return 1; }
  return n * factorial(n - 1);
}
function fibonacci(n) {
  if (n <= 1) { return n; }
  return fibonacci(n - 1) + fibonacci(n - 2);
}
`

func TestRecursiveFunctions(t *testing.T) {
	in, _ := mustRun(t, recursive)

	v, err := in.Call("factorial", runtime.Number(5))
	if err != nil {
		t.Fatal(err)
	}
	wantNumber(t, v, 120)

	v, err = in.Call("fibonacci", runtime.Number(7))
	if err != nil {
		t.Fatal(err)
	}
	wantNumber(t, v, 13)

	_, out := mustRun(t, recursive+"print(factorial(5));\nprint(fibonacci(7));")
	if out != "120.000000\n13.000000\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStatisticsBuiltins(t *testing.T) {
	in := New(Options{Stdout: &bytes.Buffer{}})
	nums := func(xs ...float64) runtime.Value {
		elems := make([]runtime.Value, len(xs))
		for i, x := range xs {
			elems[i] = runtime.Number(x)
		}
		return runtime.Array(elems...)
	}
	tests := []struct {
		name string
		arg  runtime.Value
		want float64
	}{
		{"sum", nums(1, 2, 3, 4, 5), 15},
		{"mean", nums(1, 2, 3, 4, 5), 3},
		{"std", nums(2, 4, 4, 4, 5, 5, 7, 9), 2.138089935299395},
		{"std", nums(42), 0},
		{"max", nums(3, 9, -1), 9},
		{"min", nums(3, 9, -1), -1},
		{"mean", nums(), 0},
		{"max", nums(), 0},
		{"sum", nums(), 0},
		{"len", nums(1, 2), 2},
		{"len", runtime.String("héllo"), 6},
		{"abs", runtime.Number(-4), 4},
		{"sqrt", runtime.Number(16), 4},
		{"exp", runtime.Number(0), 1},
		{"log", runtime.Number(1), 0},
		{"num", runtime.String(" 2.5 "), 2.5},
	}
	for _, tt := range tests {
		v, err := in.Call(tt.name, tt.arg)
		if err != nil {
			t.Errorf("%s(%s): %v", tt.name, tt.arg, err)
			continue
		}
		if n, ok := v.(runtime.NumberValue); !ok || n.Val != tt.want {
			t.Errorf("%s(%s): want %v, got %v", tt.name, tt.arg, tt.want, v)
		}
	}

	v, err := in.Call("pow", runtime.Number(2), runtime.Number(10))
	if err != nil {
		t.Fatal(err)
	}
	wantNumber(t, v, 1024)
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print(sqrt("x"));`, "sqrt: expects a number, got string"},
		{`print(sqrt(1, 2));`, "sqrt: expects 1 argument, got 2"},
		{`print(pow(1));`, "pow: expects 2 arguments, got 1"},
		{`print(len(3));`, "len: expects a string, array or map, got number"},
		{`print(mean([1, "a"]));`, "mean: requires a numeric array, element 1 is string"},
		{`print(sum(5));`, "sum: expects an array, got number"},
		{`print(num("abc"));`, `num: cannot convert string to number: "abc"`},
		{`print(num(1));`, "num: expects a string, got number"},
		{`print(nope(1));`, "unknown function: nope"},
	}
	for _, tt := range tests {
		runtimeErr(t, tt.src, tt.want)
	}
}

func TestConcatenation(t *testing.T) {
	_, out := mustRun(t, `
print("a" + 1);
print(1 + "a");
print("n=" + [1, 2]);
print("x" + "y");
print(str(2) + "!");
`)
	want := "a1.000000\n1.000000a\nn=[1.000000, 2.000000]\nxy\n2.000000!\n"
	if out != want {
		t.Fatalf("want %q, got %q", want, out)
	}
}

func TestOperators(t *testing.T) {
	_, out := mustRun(t, `
print(2 + 3 * 4);
print(2 ** 3 ** 2);
print(7 / 2);
print(1 / 0);
print(3 < 4);
print(3 >= 4);
print("a" == "a");
print("a" != "a");
`)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	expect := []string{"14.000000", "64.000000", "3.500000", "inf", "1.000000", "0.000000", "1.000000", "0.000000"}
	if strings.Join(lines, "|") != strings.Join(expect, "|") {
		t.Fatalf("want %v, got %v", expect, lines)
	}

	runtimeErr(t, `print("a" - 1);`, "invalid operation: string - number")
	runtimeErr(t, `print("a" < "b");`, "invalid operation: string < string")
	runtimeErr(t, `print([1] * 2);`, "invalid operation: array * number")
}

func TestCollections(t *testing.T) {
	_, out := mustRun(t, `
let xs = [10, 20, 30];
let person = {"name": "Alice", "age": 30};
print(xs[1]);
print(xs[2.9]);
print(person["name"]);
print(len(person));
print(person);
`)
	want := "20.000000\n30.000000\nAlice\n2.000000\n{\"name\": Alice, \"age\": 30.000000}\n"
	if out != want {
		t.Fatalf("want %q, got %q", want, out)
	}

	re := runtimeErr(t, "let arr = [1, 2, 3];\nprint(arr[5]);", "array index out of bounds")
	if re.Line != 2 {
		t.Fatalf("want error on line 2, got %d", re.Line)
	}
	runtimeErr(t, "let arr = [1];\nprint(arr[0 - 1]);", "array index out of bounds")
	runtimeErr(t, `let m = {"a": 1}; print(m["missing"]);`, "key not found in map: missing")
	runtimeErr(t, `let s = "abc"; print(s[0]);`, "invalid array access")
	runtimeErr(t, `let xs = [1]; print(xs["k"]);`, "invalid map access")
}

func TestForLoopScope(t *testing.T) {
	_, out := mustRun(t, `
for (let i = 0; i < 5; i = i + 1) {
  print(i);
}
`)
	if got := strings.Count(out, "\n"); got != 5 {
		t.Fatalf("want 5 iterations, got %d: %q", got, out)
	}
	if !strings.HasPrefix(out, "0.000000\n1.000000\n") || !strings.HasSuffix(out, "4.000000\n") {
		t.Fatalf("unexpected output %q", out)
	}

	runtimeErr(t, `
for (let i = 0; i < 5; i = i + 1) { }
print(i);
`, "undefined variable: i")
}

func TestAssignmentWritesInnermostScope(t *testing.T) {
	_, out := mustRun(t, `
let total = 1;
if (1) {
  total = total + 10;
  print(total);
}
print(total);
`)
	if out != "11.000000\n1.000000\n" {
		t.Fatalf("unexpected output %q", out)
	}
	runtimeErr(t, "ghost = 1;", "undefined variable: ghost")
}

const leaky = `
function show() { return secret; }
if (1) {
  let secret = 42;
  print(show());
}
`

func TestDynamicScopeSeesCallerLocals(t *testing.T) {
	_, out, err := run(t, leaky, Options{Scope: ScopeDynamic})
	if err != nil {
		t.Fatal(err)
	}
	if out != "42.000000\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLexicalScopeHidesCallerLocals(t *testing.T) {
	_, _, err := run(t, leaky, Options{Scope: ScopeLexical})
	if err == nil || !strings.Contains(err.Error(), "undefined variable: secret") {
		t.Fatalf("want undefined variable error, got %v", err)
	}

	// Globals and the callee's own frames stay visible.
	_, out, err := run(t, `
let base = 100;
function add(x) { let y = x + base; return y; }
if (1) { let base = 0; print(add(1)); }
`, Options{Scope: ScopeLexical})
	if err != nil {
		t.Fatal(err)
	}
	if out != "101.000000\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFunctions(t *testing.T) {
	in, out := mustRun(t, `
function noop() { }
function early(x) {
  while (1) {
    if (x > 0) { return "pos"; }
    return;
  }
  print("unreachable");
}
print(noop());
print(early(1));
print(early(-1));
if (1) { function nested() { return 7; } }
print(nested());
`)
	if out != "0.000000\npos\n0.000000\n7.000000\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, ok := in.Global("nested"); !ok {
		t.Fatal("nested declaration should be global")
	}

	runtimeErr(t, "function f(a, b) { return a; }\nprint(f(1));", "function f expects 2 arguments, got 1")
	runtimeErr(t, "return 1;", "return statement outside of function")

	// A variable that is not a function falls back to the builtin table.
	_, out = mustRun(t, `let sqrt = 3; print(sqrt(9));`)
	if out != "3.000000\n" {
		t.Fatalf("unexpected output %q", out)
	}
	runtimeErr(t, `let g = 3; print(g(9));`, "unknown function: g")
}

func TestErrorsInsideCallsUnwindScopes(t *testing.T) {
	program, err := parser.Parse(`
function boom() { let local = 1; return missing; }
print(boom());
`)
	if err != nil {
		t.Fatal(err)
	}
	in := New(Options{Stdout: &bytes.Buffer{}})
	if err := in.Execute(program); err == nil {
		t.Fatal("expected error")
	}
	if in.env.Depth() != 0 || in.depth != 0 {
		t.Fatalf("scopes leaked: depth %d, calls %d", in.env.Depth(), in.depth)
	}
	if _, ok := in.env.Get("local"); ok {
		t.Fatal("callee local leaked into globals")
	}
}

func TestMaxCallDepth(t *testing.T) {
	_, _, err := run(t, "function down(n) { return down(n + 1); }\nprint(down(0));", Options{MaxCallDepth: 50})
	if !errors.Is(err, ErrRuntime) || !strings.Contains(err.Error(), "maximum call depth 50 exceeded") {
		t.Fatalf("want call depth error, got %v", err)
	}

	_, out, err := run(t, recursive+"print(factorial(10));", Options{MaxCallDepth: 10})
	if err != nil {
		t.Fatal(err)
	}
	if out != "3628800.000000\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestTrace(t *testing.T) {
	program, err := parser.Parse("let x = 1;\nprint(x);")
	if err != nil {
		t.Fatal(err)
	}
	var trace bytes.Buffer
	in := New(Options{Stdout: &bytes.Buffer{}, Trace: &trace})
	if err := in.Execute(program); err != nil {
		t.Fatal(err)
	}
	want := "trace: 1:1 VariableDeclaration\ntrace: 2:1 PrintStatement\n"
	if trace.String() != want {
		t.Fatalf("want %q, got %q", want, trace.String())
	}
}

func TestEnvironmentPersistsAcrossExecutes(t *testing.T) {
	var out bytes.Buffer
	in := New(Options{Stdout: &out})
	for _, src := range []string{"let x = 2;", "function sq(n) { return n * n; }", "print(sq(x));"} {
		program, err := parser.Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		if err := in.Execute(program); err != nil {
			t.Fatal(err)
		}
	}
	if out.String() != "4.000000\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	if got := strings.Join(in.Globals(), ","); got != "sq,x" {
		t.Fatalf("unexpected globals %s", got)
	}
}

func TestParseScopeMode(t *testing.T) {
	for in, want := range map[string]ScopeMode{"": ScopeDynamic, "dynamic": ScopeDynamic, "Lexical": ScopeLexical} {
		got, err := ParseScopeMode(in)
		if err != nil || got != want {
			t.Errorf("%q: want %s, got %s (%v)", in, want, got, err)
		}
	}
	if _, err := ParseScopeMode("static"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
