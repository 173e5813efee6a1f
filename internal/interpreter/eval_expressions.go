package interpreter

import (
	"math"

	"tally/internal/ast"
	"tally/internal/runtime"
)

func (in *Interpreter) evaluate(expr ast.Expression) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return runtime.Number(e.Value), nil

	case *ast.StringLiteral:
		return runtime.String(e.Value), nil

	case *ast.Identifier:
		v, ok := in.env.Get(e.Value)
		if !ok {
			return nil, errorAt(e, "undefined variable: %s", e.Value)
		}
		return v, nil

	case *ast.ArrayLiteral:
		elems := make([]runtime.Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := in.evaluate(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return runtime.ArrayValue{Elements: elems}, nil

	case *ast.MapLiteral:
		m := runtime.NewMap()
		for _, entry := range e.Entries {
			v, err := in.evaluate(entry.Value)
			if err != nil {
				return nil, err
			}
			m.Set(entry.Key, v)
		}
		return m, nil

	case *ast.ArrayAccess:
		return in.evalArrayAccess(e)

	case *ast.MapAccess:
		v, err := in.evaluate(e.Map)
		if err != nil {
			return nil, err
		}
		m, ok := v.(*runtime.MapValue)
		if !ok {
			return nil, errorAt(e, "invalid map access: cannot index %s with a key", v.Kind())
		}
		elem, ok := m.Get(e.Key)
		if !ok {
			return nil, errorAt(e, "key not found in map: %s", e.Key)
		}
		return elem, nil

	case *ast.FunctionCall:
		args := make([]runtime.Value, 0, len(e.Arguments))
		for _, a := range e.Arguments {
			v, err := in.evaluate(a)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return in.call(e, e.Function, args)

	case *ast.BinaryOperation:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := in.evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		return binary(e, left, right)

	default:
		return nil, errorAt(expr, "unsupported expression %T", expr)
	}
}

func (in *Interpreter) evalArrayAccess(e *ast.ArrayAccess) (runtime.Value, error) {
	av, err := in.evaluate(e.Array)
	if err != nil {
		return nil, err
	}
	iv, err := in.evaluate(e.Index)
	if err != nil {
		return nil, err
	}
	arr, ok := av.(runtime.ArrayValue)
	idx, isNum := iv.(runtime.NumberValue)
	if !ok || !isNum {
		return nil, errorAt(e, "invalid array access: cannot index %s with %s", av.Kind(), iv.Kind())
	}
	// Indices truncate toward zero, so -0.5 addresses element 0.
	i := math.Trunc(idx.Val)
	if math.IsNaN(i) || i < 0 || i >= float64(len(arr.Elements)) {
		return nil, errorAt(e, "array index out of bounds: %s (length %d)", idx, len(arr.Elements))
	}
	return arr.Elements[int(i)], nil
}

// binary applies op to two evaluated operands. "+" with a string on either
// side concatenates renderings; otherwise numbers do arithmetic and
// comparison, and strings only compare for equality.
func binary(e *ast.BinaryOperation, left, right runtime.Value) (runtime.Value, error) {
	op := e.Operator
	_, ls := left.(runtime.StringValue)
	_, rs := right.(runtime.StringValue)
	if op == "+" && (ls || rs) {
		return runtime.String(left.String() + right.String()), nil
	}

	if l, ok := left.(runtime.NumberValue); ok {
		if r, ok := right.(runtime.NumberValue); ok {
			if v, ok := arithmetic(op, l.Val, r.Val); ok {
				return v, nil
			}
		}
	}

	if ls && rs {
		switch op {
		case "==":
			return runtime.Bool(left.String() == right.String()), nil
		case "!=":
			return runtime.Bool(left.String() != right.String()), nil
		}
	}
	return nil, errorAt(e, "invalid operation: %s %s %s", left.Kind(), op, right.Kind())
}

func arithmetic(op string, l, r float64) (runtime.Value, bool) {
	switch op {
	case "+":
		return runtime.Number(l + r), true
	case "-":
		return runtime.Number(l - r), true
	case "*":
		return runtime.Number(l * r), true
	case "/":
		return runtime.Number(l / r), true
	case "**":
		return runtime.Number(math.Pow(l, r)), true
	case "==":
		return runtime.Bool(l == r), true
	case "!=":
		return runtime.Bool(l != r), true
	case "<":
		return runtime.Bool(l < r), true
	case ">":
		return runtime.Bool(l > r), true
	case "<=":
		return runtime.Bool(l <= r), true
	case ">=":
		return runtime.Bool(l >= r), true
	}
	return nil, false
}
