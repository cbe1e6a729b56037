package types

import (
	"strings"

	"safec/internal/source"
)

// Type is a SafeC type expression.
type Type interface {
	isType()
	// Span returns the source span the expression was parsed from, if any.
	Span() source.Span
}

// Named is a plain type name. Multi-word C names ("unsigned int",
// "const char", "struct Point") are stored with single spaces.
type Named struct {
	Name string
	Loc  source.Span
}

// Applied is a parametric type application Name<Args...>.
type Applied struct {
	Name string
	Args []Type
	Loc  source.Span
}

// Pointer adds one level of indirection.
type Pointer struct {
	Elem Type
	Loc  source.Span
}

func (*Named) isType()   {}
func (*Applied) isType() {}
func (*Pointer) isType() {}

func (t *Named) Span() source.Span   { return t.Loc }
func (t *Applied) Span() source.Span { return t.Loc }
func (t *Pointer) Span() source.Span { return t.Loc }

// NewNamed returns a Named type without a source location.
func NewNamed(name string) *Named { return &Named{Name: name} }

// NewApplied returns an Applied type without a source location.
// An empty argument list yields a plain Named type.
func NewApplied(name string, args ...Type) Type {
	if len(args) == 0 {
		return &Named{Name: name}
	}
	return &Applied{Name: name, Args: args}
}

// Ptr wraps t in depth pointer levels.
func Ptr(t Type, depth int) Type {
	for range depth {
		t = &Pointer{Elem: t}
	}
	return t
}

// Base strips all outer pointer levels.
func Base(t Type) Type {
	for {
		p, ok := t.(*Pointer)
		if !ok {
			return t
		}
		t = p.Elem
	}
}

// PointerDepth counts the outer pointer levels of t.
func PointerDepth(t Type) int {
	n := 0
	for {
		p, ok := t.(*Pointer)
		if !ok {
			return n
		}
		n++
		t = p.Elem
	}
}

// BaseName returns the name under the outer pointer levels, or "" for nil.
func BaseName(t Type) string {
	switch b := Base(t).(type) {
	case *Named:
		return b.Name
	case *Applied:
		return b.Name
	default:
		return ""
	}
}

// TypeArgs returns the type arguments of the base type; nil if it is not applied.
func TypeArgs(t Type) []Type {
	if a, ok := Base(t).(*Applied); ok {
		return a.Args
	}
	return nil
}

// Equal reports structural equality, recursing through nested arguments.
// Source spans are ignored.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case *Named:
		y, ok := b.(*Named)
		return ok && x.Name == y.Name
	case *Pointer:
		y, ok := b.(*Pointer)
		return ok && Equal(x.Elem, y.Elem)
	case *Applied:
		y, ok := b.(*Applied)
		return ok && x.Name == y.Name && EqualLists(x.Args, y.Args)
	default:
		return false
	}
}

// EqualLists compares two argument lists pairwise.
func EqualLists(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// String renders t in SafeC source form: Box<Pair<int, char>>*.
func String(t Type) string {
	var sb strings.Builder
	write(&sb, t, ", ")
	return sb.String()
}

// Key renders t canonically; Key(a) == Key(b) iff Equal(a, b).
func Key(t Type) string {
	var sb strings.Builder
	write(&sb, t, ",")
	return sb.String()
}

// ListKey is the canonical key of an argument list.
func ListKey(args []Type) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(';')
		}
		write(&sb, a, ",")
	}
	return sb.String()
}

func write(sb *strings.Builder, t Type, sep string) {
	switch x := t.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Named:
		sb.WriteString(x.Name)
	case *Pointer:
		write(sb, x.Elem, sep)
		sb.WriteByte('*')
	case *Applied:
		sb.WriteString(x.Name)
		sb.WriteByte('<')
		for i, a := range x.Args {
			if i > 0 {
				sb.WriteString(sep)
			}
			write(sb, a, sep)
		}
		sb.WriteByte('>')
	}
}
