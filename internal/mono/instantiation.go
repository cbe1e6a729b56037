package mono

import (
	"fmt"
	"slices"

	"safec/internal/diag"
	"safec/internal/source"
	"safec/internal/types"
)

// InstantiationKind identifies the kind of entity being instantiated.
type InstantiationKind uint8

const (
	// InstStruct is a specialized struct or union.
	InstStruct InstantiationKind = iota
	// InstFunc is a specialized function.
	InstFunc
)

func (k InstantiationKind) String() string {
	switch k {
	case InstStruct:
		return "struct"
	case InstFunc:
		return "func"
	default:
		return fmt.Sprintf("InstantiationKind(%d)", k)
	}
}

// InstantiationKey is a comparable key for instantiations.
//
// Go maps cannot use slices as keys, so the argument list is folded into
// its canonical types.ListKey; the arguments themselves live in
// Instantiation.TypeArgs.
type InstantiationKey struct {
	Kind    InstantiationKind
	Name    string
	ArgsKey string
}

// UseSite records a location that requested an instantiation.
type UseSite struct {
	Span source.Span
	// Caller is the enclosing declaration: a generic or plain name for
	// collected uses, the mangled name of the parent for expanded ones.
	Caller string
}

// Instantiation is one generic declaration applied to concrete arguments.
type Instantiation struct {
	Kind        InstantiationKind
	GenericName string
	TypeArgs    []types.Type
	Mangled     string
	Key         InstantiationKey

	// Depth is 0 for uses found in the program text and parent depth + 1
	// for uses found while expanding Parent.
	Depth  int
	Parent *Instantiation

	UseSites []UseSite
}

// String renders the instantiation in source form: Pair<int, char>.
func (in *Instantiation) String() string {
	return types.String(types.NewApplied(in.GenericName, in.TypeArgs...))
}

func (in *Instantiation) addSite(site UseSite) {
	if site.Span == (source.Span{}) {
		return
	}
	if slices.Contains(in.UseSites, site) {
		return
	}
	in.UseSites = append(in.UseSites, site)
}

// firstSite returns the earliest recorded use, or a zero span.
func (in *Instantiation) firstSite() source.Span {
	if len(in.UseSites) == 0 {
		return source.Span{}
	}
	return in.UseSites[0].Span
}

// Registry deduplicates instantiations of one kind by structural key.
type Registry struct {
	kind      InstantiationKind
	list      []*Instantiation
	byKey     map[InstantiationKey]*Instantiation
	byMangled map[string]*Instantiation
	reporter  diag.Reporter
}

// NewRegistry creates an empty registry. Mangled-name collisions are
// reported to r.
func NewRegistry(kind InstantiationKind, r diag.Reporter) *Registry {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Registry{
		kind:      kind,
		byKey:     make(map[InstantiationKey]*Instantiation),
		byMangled: make(map[string]*Instantiation),
		reporter:  r,
	}
}

// Register returns the entry for name<args>, creating it when absent; the
// boolean reports creation. Registering an existing key only records the
// new use site. If the key is new but its mangled name already belongs to
// a different key, MonoMangleCollision is reported and nil is returned.
func (r *Registry) Register(name string, args []types.Type, site UseSite) (*Instantiation, bool) {
	key := InstantiationKey{Kind: r.kind, Name: name, ArgsKey: types.ListKey(args)}
	if in := r.byKey[key]; in != nil {
		in.addSite(site)
		return in, false
	}

	mangled := Mangle(name, args)
	if owner := r.byMangled[mangled]; owner != nil {
		b := diag.ReportError(r.reporter, diag.MonoMangleCollision, site.Span,
			fmt.Sprintf("%s %s mangles to %q, already used by %s", r.kind, types.String(types.NewApplied(name, args...)), mangled, owner))
		if sp := owner.firstSite(); sp != (source.Span{}) {
			b.WithNote(sp, fmt.Sprintf("%s requested here", owner))
		}
		b.Emit()
		return nil, false
	}

	in := &Instantiation{
		Kind:        r.kind,
		GenericName: name,
		TypeArgs:    slices.Clone(args),
		Mangled:     mangled,
		Key:         key,
	}
	in.addSite(site)
	r.list = append(r.list, in)
	r.byKey[key] = in
	r.byMangled[mangled] = in
	return in, true
}

// Lookup returns the entry for name<args>, or nil.
func (r *Registry) Lookup(name string, args []types.Type) *Instantiation {
	return r.byKey[InstantiationKey{Kind: r.kind, Name: name, ArgsKey: types.ListKey(args)}]
}

// ByMangled returns the entry owning a mangled name, or nil.
func (r *Registry) ByMangled(mangled string) *Instantiation {
	return r.byMangled[mangled]
}

// Entries returns the instantiations most recent first.
func (r *Registry) Entries() []*Instantiation {
	out := slices.Clone(r.list)
	slices.Reverse(out)
	return out
}

// Ordered returns the instantiations in registration order.
func (r *Registry) Ordered() []*Instantiation {
	return slices.Clone(r.list)
}

// Len returns the number of distinct instantiations.
func (r *Registry) Len() int { return len(r.list) }

// Instantiations holds the struct and function registries of one compilation.
type Instantiations struct {
	Structs *Registry
	Funcs   *Registry
}

// NewInstantiations creates both registries reporting to r.
func NewInstantiations(r diag.Reporter) *Instantiations {
	return &Instantiations{
		Structs: NewRegistry(InstStruct, r),
		Funcs:   NewRegistry(InstFunc, r),
	}
}

// Of returns the registry for kind.
func (s *Instantiations) Of(kind InstantiationKind) *Registry {
	if kind == InstFunc {
		return s.Funcs
	}
	return s.Structs
}

// Len returns the total number of instantiations.
func (s *Instantiations) Len() int {
	return s.Structs.Len() + s.Funcs.Len()
}
