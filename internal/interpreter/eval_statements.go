package interpreter

import (
	"fmt"
	"strings"

	"tally/internal/ast"
	"tally/internal/runtime"
)

// flow is the control-flow outcome of a statement. A returned flow carries the
// value of the return statement up to the enclosing call.
type flow struct {
	returned bool
	value    runtime.Value
}

var normal = flow{}

func (in *Interpreter) execute(stmt ast.Statement) (flow, error) {
	if in.trace != nil {
		line, col := stmt.Pos()
		fmt.Fprintf(in.trace, "trace: %d:%d %s\n", line, col, strings.TrimPrefix(fmt.Sprintf("%T", stmt), "*ast."))
	}

	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		v, err := in.evaluate(s.Value)
		if err != nil {
			return normal, err
		}
		in.env.Set(s.Name, v)
		return normal, nil

	case *ast.AssignmentStatement:
		if _, ok := in.env.Get(s.Name); !ok {
			return normal, errorAt(s, "undefined variable: %s", s.Name)
		}
		v, err := in.evaluate(s.Value)
		if err != nil {
			return normal, err
		}
		in.env.Set(s.Name, v)
		return normal, nil

	case *ast.PrintStatement:
		v, err := in.evaluate(s.Expression)
		if err != nil {
			return normal, err
		}
		if _, err := fmt.Fprintln(in.out, v.String()); err != nil {
			return normal, fmt.Errorf("print: %w", err)
		}
		return normal, nil

	case *ast.BlockStatement:
		return in.executeBlock(s)

	case *ast.IfStatement:
		cond, err := in.evaluate(s.Condition)
		if err != nil {
			return normal, err
		}
		if cond.Truthy() {
			return in.executeBlock(s.Consequence)
		}
		if s.Alternative != nil {
			return in.executeBlock(s.Alternative)
		}
		return normal, nil

	case *ast.WhileStatement:
		for {
			cond, err := in.evaluate(s.Condition)
			if err != nil {
				return normal, err
			}
			if !cond.Truthy() {
				return normal, nil
			}
			f, err := in.executeBlock(s.Body)
			if err != nil || f.returned {
				return f, err
			}
		}

	case *ast.ForStatement:
		return in.executeFor(s)

	case *ast.FunctionDeclaration:
		in.env.SetGlobal(s.Name, runtime.FunctionValue{Declaration: s})
		return normal, nil

	case *ast.ReturnStatement:
		if in.depth == 0 {
			return normal, errorAt(s, "return statement outside of function")
		}
		if s.ReturnValue == nil {
			return flow{returned: true, value: runtime.Number(0)}, nil
		}
		v, err := in.evaluate(s.ReturnValue)
		if err != nil {
			return normal, err
		}
		return flow{returned: true, value: v}, nil

	default:
		return normal, errorAt(stmt, "unsupported statement %T", stmt)
	}
}

func (in *Interpreter) executeBlock(block *ast.BlockStatement) (flow, error) {
	in.env.Push()
	defer in.env.Pop()

	for _, stmt := range block.Statements {
		f, err := in.execute(stmt)
		if err != nil || f.returned {
			return f, err
		}
	}
	return normal, nil
}

// executeFor runs the whole loop inside one scope, so a variable declared by
// the init clause lives across iterations and disappears afterwards.
func (in *Interpreter) executeFor(s *ast.ForStatement) (flow, error) {
	in.env.Push()
	defer in.env.Pop()

	if s.Init != nil {
		if _, err := in.execute(s.Init); err != nil {
			return normal, err
		}
	}
	for {
		if s.Condition != nil {
			cond, err := in.evaluate(s.Condition)
			if err != nil {
				return normal, err
			}
			if !cond.Truthy() {
				return normal, nil
			}
		}
		f, err := in.executeBlock(s.Body)
		if err != nil || f.returned {
			return f, err
		}
		if s.Update != nil {
			if _, err := in.execute(s.Update); err != nil {
				return normal, err
			}
		}
	}
}
