package mono

import (
	"errors"
	"fmt"

	"safec/internal/ast"
	"safec/internal/types"
)

// ErrArityMismatch is wrapped by every *ArityError.
var ErrArityMismatch = errors.New("type argument count mismatch")

// ArityError reports a generic used with the wrong number of type arguments.
type ArityError struct {
	Name   string
	Params int
	Args   int
}

func (e *ArityError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("expected %d type argument(s), got %d", e.Params, e.Args)
	}
	return fmt.Sprintf("%s expects %d type argument(s), got %d", e.Name, e.Params, e.Args)
}

func (e *ArityError) Unwrap() error { return ErrArityMismatch }

// Subst binds type parameter names to concrete types. The zero value and a
// nil *Subst are the identity substitution.
type Subst struct {
	names []string
	types []types.Type
}

// BuildSubst binds params[i] to args[i]. On a length mismatch the first
// min(len(params), len(args)) bindings are kept and an *ArityError is
// returned alongside them.
func BuildSubst(params []ast.TypeParam, args []types.Type) (*Subst, error) {
	n := min(len(params), len(args))
	s := &Subst{
		names: make([]string, 0, n),
		types: make([]types.Type, 0, n),
	}
	for i := range n {
		s.names = append(s.names, params[i].Name)
		s.types = append(s.types, args[i])
	}
	if len(params) != len(args) {
		return s, &ArityError{Params: len(params), Args: len(args)}
	}
	return s, nil
}

// Len returns the number of bindings.
func (s *Subst) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Lookup returns the type bound to name.
func (s *Subst) Lookup(name string) (types.Type, bool) {
	if s == nil {
		return nil, false
	}
	for i, n := range s.names {
		if n == name {
			return s.types[i], true
		}
	}
	return nil, false
}

// Type rewrites t. Bound names are replaced by their bindings; pointer
// levels of the use are added on top of the binding's own (T* with T=int*
// is int**); type arguments are rewritten recursively. Inputs are never
// mutated and unchanged subtrees are shared.
func (s *Subst) Type(t types.Type) types.Type {
	if t == nil || s.Len() == 0 {
		return t
	}
	switch x := t.(type) {
	case *types.Named:
		if b, ok := s.Lookup(x.Name); ok {
			return b
		}
		return x
	case *types.Pointer:
		elem := s.Type(x.Elem)
		if elem == x.Elem {
			return x
		}
		return &types.Pointer{Elem: elem, Loc: x.Loc}
	case *types.Applied:
		// A parameter applied to arguments (T<int>) is replaced verbatim.
		if b, ok := s.Lookup(x.Name); ok {
			return b
		}
		var args []types.Type
		for i, a := range x.Args {
			na := s.Type(a)
			if na != a && args == nil {
				args = make([]types.Type, len(x.Args))
				copy(args, x.Args[:i])
			}
			if args != nil {
				args[i] = na
			}
		}
		if args == nil {
			return x
		}
		return &types.Applied{Name: x.Name, Args: args, Loc: x.Loc}
	default:
		return t
	}
}

// Types applies Type to each element of list.
func (s *Subst) Types(list []types.Type) []types.Type {
	if len(list) == 0 {
		return nil
	}
	out := make([]types.Type, len(list))
	for i, t := range list {
		out[i] = s.Type(t)
	}
	return out
}
