package interpreter

import (
	"errors"
	"fmt"

	"tally/internal/ast"
)

// ErrRuntime is wrapped by every *RuntimeError.
var ErrRuntime = errors.New("runtime error")

// RuntimeError is a failure raised while evaluating a program. Line and
// Column locate the node being evaluated; both are zero when the failure
// did not originate in source (for example Interpreter.Call from Go).
type RuntimeError struct {
	Msg    string
	Line   int
	Column int
}

func (e *RuntimeError) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

func (e *RuntimeError) Unwrap() error { return ErrRuntime }

func errorAt(node ast.Node, format string, args ...any) error {
	err := &RuntimeError{Msg: fmt.Sprintf(format, args...)}
	if node != nil {
		err.Line, err.Column = node.Pos()
	}
	return err
}
