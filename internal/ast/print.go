package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Print writes an indented debug tree of n to w.
func Print(w io.Writer, n Node) error {
	tp := &treePrinter{w: w}
	tp.node(n, 0)
	return tp.err
}

type treePrinter struct {
	w   io.Writer
	err error
}

func (tp *treePrinter) line(indent int, format string, args ...any) {
	if tp.err != nil {
		return
	}
	_, tp.err = fmt.Fprintf(tp.w, "%s%s\n", strings.Repeat(" ", indent), fmt.Sprintf(format, args...))
}

func (tp *treePrinter) node(n Node, indent int) {
	switch n := n.(type) {
	case *Program:
		tp.line(indent, "Program:")
		for _, s := range n.Statements {
			tp.node(s, indent+2)
		}
	case *VariableDeclaration:
		tp.line(indent, "VariableDeclaration: %s", n.Name)
		tp.node(n.Value, indent+2)
	case *AssignmentStatement:
		tp.line(indent, "Assignment: %s", n.Name)
		tp.node(n.Value, indent+2)
	case *PrintStatement:
		tp.line(indent, "PrintStatement:")
		tp.node(n.Expression, indent+2)
	case *BlockStatement:
		tp.line(indent, "Block:")
		for _, s := range n.Statements {
			tp.node(s, indent+2)
		}
	case *IfStatement:
		tp.line(indent, "IfStatement:")
		tp.line(indent+2, "Condition:")
		tp.node(n.Condition, indent+4)
		tp.line(indent+2, "Then:")
		tp.node(n.Consequence, indent+4)
		if n.Alternative != nil {
			tp.line(indent+2, "Else:")
			tp.node(n.Alternative, indent+4)
		}
	case *WhileStatement:
		tp.line(indent, "WhileStatement:")
		tp.line(indent+2, "Condition:")
		tp.node(n.Condition, indent+4)
		tp.line(indent+2, "Body:")
		tp.node(n.Body, indent+4)
	case *ForStatement:
		tp.line(indent, "ForStatement:")
		if n.Init != nil {
			tp.line(indent+2, "Init:")
			tp.node(n.Init, indent+4)
		}
		if n.Condition != nil {
			tp.line(indent+2, "Condition:")
			tp.node(n.Condition, indent+4)
		}
		if n.Update != nil {
			tp.line(indent+2, "Update:")
			tp.node(n.Update, indent+4)
		}
		tp.line(indent+2, "Body:")
		tp.node(n.Body, indent+4)
	case *FunctionDeclaration:
		tp.line(indent, "FunctionDeclaration: %s", n.Name)
		tp.line(indent+2, "Parameters: %s", strings.Join(n.Parameters, ", "))
		tp.line(indent+2, "Body:")
		tp.node(n.Body, indent+4)
	case *ReturnStatement:
		tp.line(indent, "ReturnStatement:")
		if n.ReturnValue != nil {
			tp.node(n.ReturnValue, indent+2)
		}
	case *NumberLiteral:
		tp.line(indent, "NumberLiteral: %s", strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *StringLiteral:
		tp.line(indent, "StringLiteral: %q", n.Value)
	case *Identifier:
		tp.line(indent, "Identifier: %s", n.Value)
	case *BinaryOperation:
		tp.line(indent, "BinaryOperation: %s", n.Operator)
		tp.node(n.Left, indent+2)
		tp.node(n.Right, indent+2)
	case *FunctionCall:
		tp.line(indent, "FunctionCall: %s", n.Function)
		for _, a := range n.Arguments {
			tp.node(a, indent+2)
		}
	case *ArrayLiteral:
		tp.line(indent, "ArrayLiteral:")
		for _, e := range n.Elements {
			tp.node(e, indent+2)
		}
	case *MapLiteral:
		tp.line(indent, "MapLiteral:")
		for _, e := range n.Entries {
			tp.line(indent+2, "%q:", e.Key)
			tp.node(e.Value, indent+4)
		}
	case *ArrayAccess:
		tp.line(indent, "ArrayAccess:")
		tp.node(n.Array, indent+2)
		tp.node(n.Index, indent+2)
	case *MapAccess:
		tp.line(indent, "MapAccess: key=%q", n.Key)
		tp.node(n.Map, indent+2)
	default:
		tp.line(indent, "<unknown node %T>", n)
	}
}
