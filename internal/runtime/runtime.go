// Package runtime holds the values a tally program computes and the
// environment they are bound in.
package runtime

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindArray
	KindMap
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Value is the closed set of runtime values. Only the types in this package
// implement it.
type Value interface {
	Kind() Kind
	// Truthy is the boolean interpretation used by if, while and for.
	Truthy() bool
	// String is the canonical rendering used by print, str and concatenation.
	String() string
	isValue()
}
