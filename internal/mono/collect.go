package mono

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/source"
	"safec/internal/trace"
	"safec/internal/types"
)

// Collect registers every concrete generic use in prog: applied struct
// types wherever a type is written (variables, fields, parameters, results,
// typedefs, casts, sizeof) and calls with explicit type arguments. Nested
// arguments are registered before the type that contains them.
//
// Generic declarations are not walked: their bodies are visited by Expand
// once a concrete instantiation exists, so an unused generic contributes
// nothing. Uses naming unknown or non-generic declarations are left alone.
func Collect(ctx context.Context, prog *ast.Program, insts *Instantiations, opts Options) error {
	if prog == nil || insts == nil {
		return nil
	}
	opts = opts.withDefaults()
	span, ctx := trace.StartSpan(ctx, trace.ScopePass, "collect")

	idx := buildIndex(prog)
	for _, d := range prog.Decls {
		if err := ctx.Err(); err != nil {
			span.End("canceled")
			return err
		}
		if isGenericDecl(d) {
			continue
		}
		w := &walker{
			idx:    idx,
			insts:  insts,
			opts:   opts,
			caller: declName(d),
			tracer: trace.FromContext(ctx),
			spanID: span.ID(),
		}
		w.node(d)
	}

	span.WithExtra("structs", strconv.Itoa(insts.Structs.Len())).
		WithExtra("funcs", strconv.Itoa(insts.Funcs.Len())).
		End("")
	return nil
}

// Expand computes the closure of insts: every instantiation's substituted
// declaration is walked like Collect walks the program, and the uses it
// contains are registered one level deeper. A use deeper than
// Options.MaxDepth is reported as MonoDepthExceeded and not registered.
// Expand may be called repeatedly; already expanded entries are walked again
// but register nothing new.
func Expand(ctx context.Context, prog *ast.Program, insts *Instantiations, opts Options) error {
	if prog == nil || insts == nil {
		return nil
	}
	opts = opts.withDefaults()
	span, ctx := trace.StartSpan(ctx, trace.ScopePass, "expand")

	idx := buildIndex(prog)
	before := insts.Len()
	structs, funcs := 0, 0
	for structs < insts.Structs.Len() || funcs < insts.Funcs.Len() {
		if err := ctx.Err(); err != nil {
			span.End("canceled")
			return err
		}
		var in *Instantiation
		if structs < insts.Structs.Len() {
			in = insts.Structs.list[structs]
			structs++
		} else {
			in = insts.Funcs.list[funcs]
			funcs++
		}
		decl, params := idx.declOf(in)
		if decl == nil {
			continue
		}
		subst, err := BuildSubst(params, in.TypeArgs)
		if err != nil {
			continue
		}
		w := &walker{
			idx:    idx,
			insts:  insts,
			opts:   opts,
			subst:  subst,
			caller: in.Mangled,
			parent: in,
			tracer: trace.FromContext(ctx),
			spanID: span.ID(),
		}
		w.node(decl)
	}

	span.WithExtra("added", strconv.Itoa(insts.Len()-before)).End("")
	return nil
}

// declOf returns the generic declaration an instantiation specializes, or
// nil when the program has none.
func (idx *index) declOf(in *Instantiation) (ast.Node, []ast.TypeParam) {
	switch in.Kind {
	case InstStruct:
		if d := idx.genericStruct(in.GenericName); d != nil {
			return d, d.TypeParams
		}
	case InstFunc:
		if d := idx.genericFunc(in.GenericName); d != nil {
			return d, d.TypeParams
		}
	}
	return nil, nil
}

// walker registers the generic uses found under one declaration.
type walker struct {
	idx    *index
	insts  *Instantiations
	opts   Options
	subst  *Subst
	caller string
	parent *Instantiation
	tracer trace.Tracer
	spanID uint64
}

func (w *walker) node(n ast.Node) {
	ast.Inspect(n, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpr); ok && len(call.TypeArgs) > 0 {
			w.call(call)
			return true
		}
		for _, t := range ast.TypesOf(n) {
			w.typ(w.subst.Type(t), siteOf(t, n))
		}
		return true
	})
}

func (w *walker) call(c *ast.CallExpr) {
	args := w.subst.Types(c.TypeArgs)
	for i, a := range args {
		w.typ(a, siteOf(c.TypeArgs[i], c))
	}
	name := c.CalleeName()
	decl := w.idx.genericFunc(name)
	if decl == nil {
		return
	}
	w.register(InstFunc, name, decl.TypeParams, args, c.Span())
}

// typ registers t and, first, every applied type nested in it.
func (w *walker) typ(t types.Type, site source.Span) {
	switch x := t.(type) {
	case *types.Pointer:
		w.typ(x.Elem, site)
	case *types.Applied:
		for _, a := range x.Args {
			w.typ(a, site)
		}
		decl := w.idx.genericStruct(x.Name)
		if decl == nil {
			return
		}
		w.register(InstStruct, x.Name, decl.TypeParams, x.Args, site)
	}
}

func (w *walker) register(kind InstantiationKind, name string, params []ast.TypeParam, args []types.Type, site source.Span) {
	if _, err := BuildSubst(params, args); err != nil {
		var ae *ArityError
		if errors.As(err, &ae) {
			ae.Name = name
		}
		diag.ReportError(w.opts.Reporter, diag.MonoArityMismatch, site, err.Error()).Emit()
		return
	}

	reg := w.insts.Of(kind)
	depth := 0
	if w.parent != nil {
		depth = w.parent.Depth + 1
	}
	if depth > w.opts.MaxDepth && reg.Lookup(name, args) == nil {
		b := diag.ReportError(w.opts.Reporter, diag.MonoDepthExceeded, site,
			fmt.Sprintf("instantiating %s exceeds the maximum depth of %d", types.String(types.NewApplied(name, args...)), w.opts.MaxDepth))
		if root := w.parent.root(); root != nil {
			if sp := root.firstSite(); sp != (source.Span{}) {
				b.WithNote(sp, fmt.Sprintf("chain starts at %s", root))
			}
		}
		b.Emit()
		return
	}

	in, created := reg.Register(name, args, UseSite{Span: site, Caller: w.caller})
	if in == nil || !created {
		return
	}
	in.Depth = depth
	in.Parent = w.parent
	trace.Point(w.tracer, trace.ScopeInst, "inst:"+in.Mangled, in.String(), w.spanID)
}

// root follows Parent links to the instantiation found in the program text.
func (in *Instantiation) root() *Instantiation {
	for in != nil && in.Parent != nil {
		in = in.Parent
	}
	return in
}

// siteOf prefers the span of the written type over the enclosing node.
func siteOf(t types.Type, n ast.Node) source.Span {
	if t != nil {
		if sp := t.Span(); sp != (source.Span{}) {
			return sp
		}
	}
	return n.Span()
}

func isGenericDecl(d ast.Decl) bool {
	switch x := d.(type) {
	case *ast.StructDecl:
		return x.IsGeneric()
	case *ast.FuncDecl:
		return x.IsGeneric()
	}
	return false
}

func declName(d ast.Decl) string {
	switch x := d.(type) {
	case *ast.StructDecl:
		return x.Name
	case *ast.FuncDecl:
		return x.Name
	case *ast.TypedefDecl:
		return x.Name
	case *ast.VarDecl:
		if len(x.Vars) > 0 {
			return x.Vars[0].Name
		}
	}
	return ""
}
