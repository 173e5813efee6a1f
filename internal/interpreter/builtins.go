package interpreter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"tally/internal/runtime"
)

type builtin func(args []runtime.Value) (runtime.Value, error)

// builtins is consulted only when a call does not resolve to a declared
// function. Errors returned here are prefixed with the builtin's name.
var builtins = map[string]builtin{
	"sqrt": unary(math.Sqrt),
	"log":  unary(math.Log),
	"exp":  unary(math.Exp),
	"abs":  unary(math.Abs),
	"pow": func(args []runtime.Value) (runtime.Value, error) {
		x, y, err := twoNumbers(args)
		if err != nil {
			return nil, err
		}
		return runtime.Number(math.Pow(x, y)), nil
	},
	"len": func(args []runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, arity(1, len(args))
		}
		switch v := args[0].(type) {
		case runtime.StringValue:
			return runtime.Number(float64(len(v.Val))), nil
		case runtime.ArrayValue:
			return runtime.Number(float64(len(v.Elements))), nil
		case *runtime.MapValue:
			return runtime.Number(float64(v.Len())), nil
		}
		return nil, fmt.Errorf("expects a string, array or map, got %s", args[0].Kind())
	},
	"sum": stat(func(xs []float64) float64 {
		var total float64
		for _, x := range xs {
			total += x
		}
		return total
	}),
	"mean": stat(mean),
	"std": stat(func(xs []float64) float64 {
		if len(xs) <= 1 {
			return 0
		}
		m := mean(xs)
		var variance float64
		for _, x := range xs {
			variance += (x - m) * (x - m)
		}
		return math.Sqrt(variance / float64(len(xs)-1))
	}),
	"max": stat(func(xs []float64) float64 {
		if len(xs) == 0 {
			return 0
		}
		best := xs[0]
		for _, x := range xs[1:] {
			if x > best {
				best = x
			}
		}
		return best
	}),
	"min": stat(func(xs []float64) float64 {
		if len(xs) == 0 {
			return 0
		}
		best := xs[0]
		for _, x := range xs[1:] {
			if x < best {
				best = x
			}
		}
		return best
	}),
	"str": func(args []runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, arity(1, len(args))
		}
		return runtime.String(args[0].String()), nil
	},
	"num": func(args []runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, arity(1, len(args))
		}
		s, ok := args[0].(runtime.StringValue)
		if !ok {
			return nil, fmt.Errorf("expects a string, got %s", args[0].Kind())
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s.Val), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("cannot convert string to number: %q", s.Val)
		}
		return runtime.Number(f), nil
	},
}

// Arity reports the number of arguments the named builtin takes, for static
// checks. ok is false when name is not a builtin.
func Arity(name string) (n int, ok bool) {
	if _, ok := builtins[name]; !ok {
		return 0, false
	}
	if name == "pow" {
		return 2, true
	}
	return 1, true
}

func arity(want, got int) error {
	if want == 1 {
		return fmt.Errorf("expects 1 argument, got %d", got)
	}
	return fmt.Errorf("expects %d arguments, got %d", want, got)
}

func unary(f func(float64) float64) builtin {
	return func(args []runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, arity(1, len(args))
		}
		n, ok := args[0].(runtime.NumberValue)
		if !ok {
			return nil, fmt.Errorf("expects a number, got %s", args[0].Kind())
		}
		return runtime.Number(f(n.Val)), nil
	}
}

func twoNumbers(args []runtime.Value) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, arity(2, len(args))
	}
	x, ok1 := args[0].(runtime.NumberValue)
	y, ok2 := args[1].(runtime.NumberValue)
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("expects two numbers, got %s and %s", args[0].Kind(), args[1].Kind())
	}
	return x.Val, y.Val, nil
}

// stat adapts a reduction over numbers into a builtin taking one array whose
// elements must all be numbers.
func stat(f func([]float64) float64) builtin {
	return func(args []runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, arity(1, len(args))
		}
		arr, ok := args[0].(runtime.ArrayValue)
		if !ok {
			return nil, fmt.Errorf("expects an array, got %s", args[0].Kind())
		}
		xs := make([]float64, len(arr.Elements))
		for i, el := range arr.Elements {
			n, ok := el.(runtime.NumberValue)
			if !ok {
				return nil, fmt.Errorf("requires a numeric array, element %d is %s", i, el.Kind())
			}
			xs[i] = n.Val
		}
		return runtime.Number(f(xs)), nil
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var total float64
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}
