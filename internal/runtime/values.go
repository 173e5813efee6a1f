package runtime

import (
	"math"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"tally/internal/ast"
)

type NumberValue struct {
	Val float64
}

func (NumberValue) Kind() Kind       { return KindNumber }
func (n NumberValue) Truthy() bool   { return n.Val != 0 }
func (NumberValue) isValue()         {}
func (n NumberValue) String() string { return FormatNumber(n.Val) }

// FormatNumber renders a number with six fixed decimals ("3.000000").
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', 6, 64)
}

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind       { return KindString }
func (s StringValue) Truthy() bool   { return s.Val != "" }
func (StringValue) isValue()         {}
func (s StringValue) String() string { return s.Val }

// ArrayValue is an ordered sequence. Programs cannot mutate an array after it
// is built, so sharing the backing slice between copies is safe.
type ArrayValue struct {
	Elements []Value
}

func (ArrayValue) Kind() Kind     { return KindArray }
func (a ArrayValue) Truthy() bool { return len(a.Elements) > 0 }
func (ArrayValue) isValue()       {}
func (a ArrayValue) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MapValue maps string keys to values and remembers insertion order, which
// makes rendering deterministic.
type MapValue struct {
	entries *linkedhashmap.Map
}

func NewMap() *MapValue {
	return &MapValue{entries: linkedhashmap.New()}
}

func (*MapValue) Kind() Kind       { return KindMap }
func (m *MapValue) Truthy() bool   { return m.Len() > 0 }
func (*MapValue) isValue()         {}
func (m *MapValue) Len() int       { return m.entries.Size() }

// Set binds key. Rebinding an existing key keeps its original position.
func (m *MapValue) Set(key string, v Value) {
	m.entries.Put(key, v)
}

func (m *MapValue) Get(key string) (Value, bool) {
	v, ok := m.entries.Get(key)
	if !ok {
		return nil, false
	}
	return v.(Value), true
}

// Keys returns the keys in insertion order.
func (m *MapValue) Keys() []string {
	keys := make([]string, 0, m.Len())
	it := m.entries.Iterator()
	for it.Next() {
		keys = append(keys, it.Key().(string))
	}
	return keys
}

func (m *MapValue) String() string {
	var b strings.Builder
	b.WriteString("{")
	it := m.entries.Iterator()
	first := true
	for it.Next() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(`"` + it.Key().(string) + `": `)
		b.WriteString(it.Value().(Value).String())
	}
	b.WriteString("}")
	return b.String()
}

// FunctionValue refers to a declaration inside the program's AST. The
// reference keeps the declaration alive, so values may outlive the Program
// that produced them.
type FunctionValue struct {
	Declaration *ast.FunctionDeclaration
}

func (FunctionValue) Kind() Kind     { return KindFunction }
func (FunctionValue) Truthy() bool   { return true }
func (FunctionValue) isValue()       {}
func (FunctionValue) String() string { return "<function>" }

// Convenience constructors.

func Number(f float64) Value { return NumberValue{Val: f} }

func String(s string) Value { return StringValue{Val: s} }

func Array(elems ...Value) Value { return ArrayValue{Elements: elems} }

// Bool maps a Go bool onto the language's 1/0 convention.
func Bool(b bool) Value {
	if b {
		return NumberValue{Val: 1}
	}
	return NumberValue{Val: 0}
}
