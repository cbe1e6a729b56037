package mono_test

import (
	"errors"
	"testing"

	"safec/internal/ast"
	"safec/internal/mono"
	"safec/internal/types"
)

func params(names ...string) []ast.TypeParam {
	out := make([]ast.TypeParam, len(names))
	for i, n := range names {
		out[i] = ast.TypeParam{Name: n}
	}
	return out
}

func TestBuildSubstArity(t *testing.T) {
	s, err := mono.BuildSubst(params("K", "V"), []types.Type{named("int")})
	if !errors.Is(err, mono.ErrArityMismatch) {
		t.Fatalf("expected ErrArityMismatch, got %v", err)
	}
	var ae *mono.ArityError
	if !errors.As(err, &ae) || ae.Params != 2 || ae.Args != 1 {
		t.Fatalf("unexpected arity error: %#v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected the matched prefix to stay bound, got %d bindings", s.Len())
	}
	if b, ok := s.Lookup("K"); !ok || types.String(b) != "int" {
		t.Fatalf("K bound to %v", b)
	}
	if _, ok := s.Lookup("V"); ok {
		t.Fatalf("V must stay unbound")
	}
}

func TestSubstType(t *testing.T) {
	s, err := mono.BuildSubst(params("T", "U"), []types.Type{types.Ptr(named("int"), 1), types.NewApplied("Box", named("char"))})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		in   types.Type
		want string
	}{
		{"bound", named("T"), "int*"},
		{"pointer depth adds", types.Ptr(named("T"), 1), "int**"},
		{"applied args", types.NewApplied("Pair", named("T"), named("U")), "Pair<int*, Box<char>>"},
		{"nested", types.NewApplied("Box", types.NewApplied("Box", named("T"))), "Box<Box<int*>>"},
		{"applied parameter is verbatim", types.NewApplied("U", named("long")), "Box<char>"},
		{"unbound", named("double"), "double"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := types.String(s.Type(tt.in)); got != tt.want {
				t.Fatalf("Type(%s) = %s, want %s", types.String(tt.in), got, tt.want)
			}
		})
	}
	if s.Type(nil) != nil {
		t.Fatalf("nil must map to nil")
	}
}

func TestSubstSharesUnchangedSubtrees(t *testing.T) {
	s, _ := mono.BuildSubst(params("T"), []types.Type{named("int")})
	in := types.NewApplied("Pair", named("char"), types.Ptr(named("long"), 1))
	if s.Type(in) != in {
		t.Fatalf("a type without parameters should be returned as-is")
	}
	var nilSubst *mono.Subst
	if nilSubst.Type(in) != in {
		t.Fatalf("nil Subst must be the identity")
	}
	orig := types.NewApplied("Box", named("T"))
	_ = s.Type(orig)
	if types.String(orig) != "Box<T>" {
		t.Fatalf("input mutated: %s", types.String(orig))
	}
}
