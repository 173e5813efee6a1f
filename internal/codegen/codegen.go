package codegen

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"tally/internal/ast"
)

// GenerateGo emits a standalone Go program equivalent to program. It accepts
// exactly what Compile accepts.
func GenerateGo(program *ast.Program) (string, error) {
	if _, err := Compile(program); err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)

	buf.WriteString("package main\n\nimport (\n\t\"fmt\"\n\t\"math\"\n\t\"strconv\"\n)\n\n")
	// Programs without print would otherwise leave fmt unused.
	buf.WriteString("var _ = fmt.Println\n\n")

	// Helpers shared by generated code.
	buf.WriteString("func truthy(v float64) bool { return v != 0 }\n\n")
	buf.WriteString("func b2f(b bool) float64 {\n")
	buf.WriteString("\tif b {\n\t\treturn 1\n\t}\n")
	buf.WriteString("\treturn 0\n")
	buf.WriteString("}\n\n")
	// Arithmetic goes through functions so the Go compiler never folds
	// constant operands; 1 / 0 must stay an IEEE infinity.
	buf.WriteString("func add(a, b float64) float64 { return a + b }\n")
	buf.WriteString("func sub(a, b float64) float64 { return a - b }\n")
	buf.WriteString("func mul(a, b float64) float64 { return a * b }\n")
	buf.WriteString("func div(a, b float64) float64 { return a / b }\n\n")
	buf.WriteString("func format(v float64) string {\n")
	buf.WriteString("\tswitch {\n")
	buf.WriteString("\tcase math.IsNaN(v):\n\t\treturn \"nan\"\n")
	buf.WriteString("\tcase math.IsInf(v, 1):\n\t\treturn \"inf\"\n")
	buf.WriteString("\tcase math.IsInf(v, -1):\n\t\treturn \"-inf\"\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\treturn strconv.FormatFloat(v, 'f', 6, 64)\n")
	buf.WriteString("}\n\n")

	// Generate functions; the last declaration of a name wins.
	g := &generator{buf: buf, funcs: make(map[string]bool)}
	last := make(map[string]*ast.FunctionDeclaration)
	for _, fn := range program.Functions() {
		last[fn.Name] = fn
		g.funcs[fn.Name] = true
	}
	for _, fn := range program.Functions() {
		if last[fn.Name] == fn {
			g.genFunction(fn)
		}
	}

	buf.WriteString("func run() float64 {\n")
	g.push()
	g.genBlock(program.Statements, 1)
	g.pop()
	buf.WriteString("\treturn 0\n")
	buf.WriteString("}\n\n")
	buf.WriteString("func main() {\n\t_ = run()\n}\n")

	return buf.String(), nil
}

// generator writes Go source. scopes track the names declared in each open
// Go block, so redeclaring a name in the same block becomes an assignment.
type generator struct {
	buf    *bytes.Buffer
	funcs  map[string]bool
	scopes []map[string]bool
}

func (g *generator) push() { g.scopes = append(g.scopes, map[string]bool{}) }
func (g *generator) pop()  { g.scopes = g.scopes[:len(g.scopes)-1] }

func (g *generator) printf(format string, args ...any) {
	fmt.Fprintf(g.buf, format, args...)
}

func (g *generator) genFunction(fn *ast.FunctionDeclaration) {
	g.push()
	defer g.pop()
	params := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = goName(p)
		g.scopes[len(g.scopes)-1][params[i]] = true
	}
	sig := ""
	if len(params) > 0 {
		sig = strings.Join(params, ", ") + " float64"
	}
	g.printf("func %s(%s) float64 {\n", goFunc(fn.Name), sig)
	g.genBlock(fn.Body.Statements, 1)
	g.printf("\treturn 0\n")
	g.printf("}\n\n")
}

// genScoped writes stmts as the body of a new Go block.
func (g *generator) genScoped(stmts []ast.Statement, indent int) {
	g.push()
	g.genBlock(stmts, indent)
	g.pop()
}

func (g *generator) genStatement(stmt ast.Statement, indent int) {
	ind := indentString(indent)
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		name := goName(s.Name)
		scope := g.scopes[len(g.scopes)-1]
		if scope[name] {
			g.printf("%s%s = %s\n", ind, name, g.genExpr(s.Value))
			return
		}
		// Generated code may never read a variable; keep the compiler quiet.
		g.printf("%svar %s float64 = %s\n", ind, name, g.genExpr(s.Value))
		g.printf("%s_ = %s\n", ind, name)
		scope[name] = true
	case *ast.AssignmentStatement:
		g.printf("%s%s = %s\n", ind, goName(s.Name), g.genExpr(s.Value))
	case *ast.PrintStatement:
		g.printf("%sfmt.Println(format(%s))\n", ind, g.genExpr(s.Expression))
	case *ast.BlockStatement:
		g.printf("%s{\n", ind)
		g.genScoped(s.Statements, indent+1)
		g.printf("%s}\n", ind)
	case *ast.IfStatement:
		g.printf("%sif truthy(%s) {\n", ind, g.genExpr(s.Condition))
		g.genScoped(s.Consequence.Statements, indent+1)
		if s.Alternative != nil {
			g.printf("%s} else {\n", ind)
			g.genScoped(s.Alternative.Statements, indent+1)
		}
		g.printf("%s}\n", ind)
	case *ast.WhileStatement:
		g.printf("%sfor truthy(%s) {\n", ind, g.genExpr(s.Condition))
		g.genScoped(s.Body.Statements, indent+1)
		g.printf("%s}\n", ind)
	case *ast.ForStatement:
		// The init clause gets its own block so its variable ends with the loop.
		g.printf("%s{\n", ind)
		g.push()
		if s.Init != nil {
			g.genStatement(s.Init, indent+1)
		}
		cond := "true"
		if s.Condition != nil {
			cond = fmt.Sprintf("truthy(%s)", g.genExpr(s.Condition))
		}
		g.printf("%s\tfor %s {\n", ind, cond)
		g.genScoped(s.Body.Statements, indent+2)
		if s.Update != nil {
			g.genStatement(s.Update, indent+2)
		}
		g.printf("%s\t}\n", ind)
		g.pop()
		g.printf("%s}\n", ind)
	case *ast.FunctionDeclaration:
		// Emitted at package level by GenerateGo.
	case *ast.ReturnStatement:
		if s.ReturnValue == nil {
			g.printf("%sreturn 0\n", ind)
		} else {
			g.printf("%sreturn %s\n", ind, g.genExpr(s.ReturnValue))
		}
	}
}

func (g *generator) genBlock(stmts []ast.Statement, indent int) {
	for _, stmt := range stmts {
		g.genStatement(stmt, indent)
	}
}

var comparisons = map[string]bool{"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true}

var arithmetic = map[string]string{"+": "add", "-": "sub", "*": "mul", "/": "div"}

var mathFuncs = map[string]string{
	"sqrt": "math.Sqrt",
	"log":  "math.Log",
	"exp":  "math.Exp",
	"abs":  "math.Abs",
	"pow":  "math.Pow",
}

func (g *generator) genExpr(exp ast.Expression) string {
	switch e := exp.(type) {
	case *ast.Identifier:
		return goName(e.Value)
	case *ast.NumberLiteral:
		return genNumber(e.Value)
	case *ast.BinaryOperation:
		l, r := g.genExpr(e.Left), g.genExpr(e.Right)
		switch {
		case e.Operator == "**":
			return fmt.Sprintf("math.Pow(%s, %s)", l, r)
		case comparisons[e.Operator]:
			return fmt.Sprintf("b2f(%s %s %s)", l, e.Operator, r)
		default:
			return fmt.Sprintf("%s(%s, %s)", arithmetic[e.Operator], l, r)
		}
	case *ast.FunctionCall:
		args := make([]string, len(e.Arguments))
		for i, a := range e.Arguments {
			args[i] = g.genExpr(a)
		}
		fn := goFunc(e.Function)
		if m, ok := mathFuncs[e.Function]; ok && !g.funcs[e.Function] {
			fn = m
		}
		return fmt.Sprintf("%s(%s)", fn, strings.Join(args, ", "))
	default:
		return "/* unsupported */ 0"
	}
}

// genNumber renders a float64 constant. The parser only produces finite
// literals, but hand-built trees may carry an infinity or NaN.
func genNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "math.Inf(1)"
	case math.IsNaN(v):
		return "math.NaN()"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// goName names a user variable. Every variable gets the prefix, so two
// distinct source names never map to the same Go name and none can clash
// with a Go keyword or a helper of the generated program.
func goName(name string) string {
	return "v_" + name
}

// goFunc names a user function. The prefix keeps functions and variables in
// separate namespaces, as they are in the source language.
func goFunc(name string) string {
	return "fn_" + name
}

func indentString(indent int) string {
	return string(bytes.Repeat([]byte("\t"), indent))
}
