package mono_test

import (
	"testing"

	"safec/internal/diag"
	"safec/internal/mono"
	"safec/internal/source"
	"safec/internal/types"
)

func site(start uint32) mono.UseSite {
	return mono.UseSite{Span: source.Span{Start: start, End: start + 1}, Caller: "main"}
}

func TestRegisterDeduplicates(t *testing.T) {
	reg := mono.NewRegistry(mono.InstStruct, nil)
	a, created := reg.Register("Wrapper", []types.Type{named("int")}, site(1))
	if !created || a.Mangled != "Wrapper_int" {
		t.Fatalf("first register: created=%v mangled=%q", created, a.Mangled)
	}
	b, created := reg.Register("Wrapper", []types.Type{types.NewNamed("int")}, site(1))
	if created || b != a {
		t.Fatalf("second register must return the existing entry")
	}
	reg.Register("Wrapper", []types.Type{named("int")}, site(7))
	if reg.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", reg.Len())
	}
	if len(a.UseSites) != 2 {
		t.Fatalf("expected 2 distinct use sites, got %d", len(a.UseSites))
	}
}

func TestRegisterNestedKeysAreStructural(t *testing.T) {
	reg := mono.NewRegistry(mono.InstStruct, nil)
	reg.Register("Box", []types.Type{types.NewApplied("Pair", named("int"), named("char"))}, site(1))
	reg.Register("Box", []types.Type{types.NewApplied("Pair", named("int"), named("double"))}, site(2))
	if reg.Len() != 2 {
		t.Fatalf("Box<Pair<int, char>> and Box<Pair<int, double>> must be distinct, got %d", reg.Len())
	}
}

func TestEntriesMostRecentFirst(t *testing.T) {
	reg := mono.NewRegistry(mono.InstFunc, nil)
	for _, n := range []string{"int", "char", "double"} {
		reg.Register("id", []types.Type{named(n)}, site(1))
	}
	var got []string
	for _, in := range reg.Entries() {
		got = append(got, in.Mangled)
	}
	want := []string{"id_double", "id_char", "id_int"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Entries() = %v, want %v", got, want)
		}
	}
	if first := reg.Ordered()[0].Mangled; first != "id_int" {
		t.Fatalf("Ordered()[0] = %s", first)
	}
}

func TestRegisterReportsMangleCollision(t *testing.T) {
	bag := diag.NewBag(16)
	reg := mono.NewRegistry(mono.InstStruct, diag.BagReporter{Bag: bag})
	if _, created := reg.Register("Box", []types.Type{named("int_ptr")}, site(1)); !created {
		t.Fatalf("first entry not created")
	}
	in, created := reg.Register("Box", []types.Type{types.Ptr(named("int"), 1)}, site(9))
	if in != nil || created {
		t.Fatalf("colliding entry must not be registered")
	}
	if bag.Count(diag.MonoMangleCollision) != 1 || !bag.HasErrors() {
		t.Fatalf("expected one MonoMangleCollision error, got %d", bag.Count(diag.MonoMangleCollision))
	}
	if got := reg.ByMangled("Box_int_ptr").String(); got != "Box<int_ptr>" {
		t.Fatalf("owner of Box_int_ptr = %s", got)
	}
}

func TestInstantiationsOf(t *testing.T) {
	insts := mono.NewInstantiations(nil)
	if insts.Of(mono.InstStruct) != insts.Structs || insts.Of(mono.InstFunc) != insts.Funcs {
		t.Fatalf("Of returned the wrong registry")
	}
	insts.Funcs.Register("f", []types.Type{named("int")}, site(1))
	insts.Structs.Register("S", []types.Type{named("int")}, site(1))
	if insts.Len() != 2 {
		t.Fatalf("Len = %d", insts.Len())
	}
}
