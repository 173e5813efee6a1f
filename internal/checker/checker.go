// Package checker reports likely mistakes in a program without running it.
// Its findings are warnings: the interpreter still decides what fails.
package checker

import (
	"fmt"

	"tally/internal/ast"
	"tally/internal/interpreter"
)

type Warning struct {
	Msg    string
	Line   int
	Column int
}

func (w Warning) String() string {
	return fmt.Sprintf("%d:%d: %s", w.Line, w.Column, w.Msg)
}

type Checker struct {
	warnings  []Warning
	functions map[string]*ast.FunctionDeclaration
	// declared holds every name bound anywhere in the program. Scoping is
	// decided at run time, so the checker only flags names nothing binds.
	declared map[string]bool
	depth    int // nesting of function bodies
}

func New() *Checker {
	return &Checker{
		functions: make(map[string]*ast.FunctionDeclaration),
		declared:  make(map[string]bool),
	}
}

func (c *Checker) warn(node ast.Node, format string, args ...any) {
	line, col := node.Pos()
	c.warnings = append(c.warnings, Warning{Msg: fmt.Sprintf(format, args...), Line: line, Column: col})
}

func (c *Checker) Check(program *ast.Program) []Warning {
	// First pass: collect functions and every bound name.
	for _, fn := range program.Functions() {
		if prev, exists := c.functions[fn.Name]; exists {
			line, _ := prev.Pos()
			c.warn(fn, "function %s already declared on line %d", fn.Name, line)
		}
		c.functions[fn.Name] = fn
		c.declared[fn.Name] = true
		for _, p := range fn.Parameters {
			c.declared[p] = true
		}
	}
	c.collect(program.Statements)

	// Second pass: check statements.
	for _, stmt := range program.Statements {
		c.checkStatement(stmt)
	}
	return c.warnings
}

func (c *Checker) collect(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VariableDeclaration:
			c.declared[s.Name] = true
		case *ast.BlockStatement:
			c.collect(s.Statements)
		case *ast.IfStatement:
			c.collect(s.Consequence.Statements)
			if s.Alternative != nil {
				c.collect(s.Alternative.Statements)
			}
		case *ast.WhileStatement:
			c.collect(s.Body.Statements)
		case *ast.ForStatement:
			if s.Init != nil {
				c.collect([]ast.Statement{s.Init})
			}
			c.collect(s.Body.Statements)
		case *ast.FunctionDeclaration:
			c.collect(s.Body.Statements)
		}
	}
}

func (c *Checker) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		c.checkExpression(s.Value)
	case *ast.AssignmentStatement:
		if !c.declared[s.Name] {
			c.warn(s, "assignment to undeclared variable %s", s.Name)
		}
		c.checkExpression(s.Value)
	case *ast.PrintStatement:
		c.checkExpression(s.Expression)
	case *ast.BlockStatement:
		c.checkBlock(s)
	case *ast.IfStatement:
		c.checkExpression(s.Condition)
		c.checkBlock(s.Consequence)
		if s.Alternative != nil {
			c.checkBlock(s.Alternative)
		}
	case *ast.WhileStatement:
		c.checkExpression(s.Condition)
		c.checkBlock(s.Body)
	case *ast.ForStatement:
		if s.Init != nil {
			c.checkStatement(s.Init)
		}
		if s.Condition != nil {
			c.checkExpression(s.Condition)
		}
		if s.Update != nil {
			c.checkStatement(s.Update)
		}
		c.checkBlock(s.Body)
	case *ast.FunctionDeclaration:
		c.depth++
		c.checkBlock(s.Body)
		c.depth--
	case *ast.ReturnStatement:
		if c.depth == 0 {
			c.warn(s, "return outside function")
		}
		if s.ReturnValue != nil {
			c.checkExpression(s.ReturnValue)
		}
	}
}

func (c *Checker) checkBlock(block *ast.BlockStatement) {
	for _, stmt := range block.Statements {
		c.checkStatement(stmt)
	}
}

func (c *Checker) checkExpression(exp ast.Expression) {
	switch e := exp.(type) {
	case *ast.Identifier:
		if !c.declared[e.Value] {
			c.warn(e, "undefined variable %s", e.Value)
		}
	case *ast.FunctionCall:
		for _, arg := range e.Arguments {
			c.checkExpression(arg)
		}
		c.checkCall(e)
	case *ast.BinaryOperation:
		c.checkExpression(e.Left)
		c.checkExpression(e.Right)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			c.checkExpression(el)
		}
	case *ast.MapLiteral:
		for _, entry := range e.Entries {
			c.checkExpression(entry.Value)
		}
	case *ast.ArrayAccess:
		c.checkExpression(e.Array)
		c.checkExpression(e.Index)
	case *ast.MapAccess:
		c.checkExpression(e.Map)
	}
}

func (c *Checker) checkCall(call *ast.FunctionCall) {
	got := len(call.Arguments)
	if fn, ok := c.functions[call.Function]; ok {
		if want := len(fn.Parameters); want != got {
			c.warn(call, "function %s expects %d arguments, got %d", fn.Name, want, got)
		}
		return
	}
	if want, ok := interpreter.Arity(call.Function); ok {
		if want != got {
			c.warn(call, "builtin %s expects %d arguments, got %d", call.Function, want, got)
		}
		return
	}
	// A variable may hold a function value at run time.
	if !c.declared[call.Function] {
		c.warn(call, "call to undefined function %s", call.Function)
	}
}
