package mono

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/trace"
	"safec/internal/types"
)

// Generate collects, expands and emits prog as one C translation unit and
// returns the instantiations it used.
func Generate(ctx context.Context, w io.Writer, prog *ast.Program, opts Options) (*Instantiations, error) {
	opts = opts.withDefaults()
	insts, err := Prepare(ctx, prog, opts)
	if err != nil {
		return insts, err
	}
	return insts, Emit(ctx, w, prog, insts, opts)
}

// GenerateHeader is Generate for the companion header: declarations only,
// wrapped in an include guard named <guard>_H.
func GenerateHeader(ctx context.Context, w io.Writer, prog *ast.Program, guard string, opts Options) (*Instantiations, error) {
	opts = opts.withDefaults()
	insts, err := Prepare(ctx, prog, opts)
	if err != nil {
		return insts, err
	}
	return insts, EmitHeader(ctx, w, prog, insts, guard, opts)
}

// Prepare runs Collect and Expand into fresh registries.
func Prepare(ctx context.Context, prog *ast.Program, opts Options) (*Instantiations, error) {
	opts = opts.withDefaults()
	insts := NewInstantiations(opts.Reporter)
	if err := Collect(ctx, prog, insts, opts); err != nil {
		return insts, err
	}
	if err := Expand(ctx, prog, insts, opts); err != nil {
		return insts, err
	}
	return insts, nil
}

// Emit writes the translation unit for prog using already expanded
// instantiations: header comment, hoisted preprocessor lines, specialized
// structs, specialized functions, then the non-generic declarations in
// source order. Nothing is written if ctx is canceled first.
func Emit(ctx context.Context, w io.Writer, prog *ast.Program, insts *Instantiations, opts Options) error {
	opts = opts.withDefaults()
	span, ctx := trace.StartSpan(ctx, trace.ScopePass, "emit")
	e := newEmitter(prog, insts, opts)

	e.preamble()
	e.directives()
	structs := e.structs()
	funcs := e.funcs(true)
	if err := ctx.Err(); err != nil {
		span.End("canceled")
		return err
	}
	e.passThrough()

	span.WithExtra("structs", strconv.Itoa(structs)).
		WithExtra("funcs", strconv.Itoa(funcs)).
		WithExtra("bytes", strconv.Itoa(e.buf.Len())).
		End("")
	return e.flush(w)
}

// EmitHeader writes the declarations of prog inside an include guard:
// hoisted preprocessor lines, specialized structs, non-generic type
// declarations, prototypes of every non-static function and extern
// declarations of non-static globals.
func EmitHeader(ctx context.Context, w io.Writer, prog *ast.Program, insts *Instantiations, guard string, opts Options) error {
	opts = opts.withDefaults()
	span, ctx := trace.StartSpan(ctx, trace.ScopePass, "emit_header")
	e := newEmitter(prog, insts, opts)
	macro := guard + "_H"

	e.preamble()
	e.write("#ifndef ", macro, "\n#define ", macro, "\n\n")
	e.directives()
	e.structs()
	e.typeDecls()
	e.funcs(false)
	e.prototypes()
	e.externs()
	if err := ctx.Err(); err != nil {
		span.End("canceled")
		return err
	}
	e.write("#endif /* ", macro, " */\n")

	span.WithExtra("guard", macro).End("")
	return e.flush(w)
}

// GuardName derives an include guard stem from a file path: the base name
// without extension, upper-cased, with every non-alphanumeric byte replaced
// by '_'. "out/vec-int.c" yields "VEC_INT".
func GuardName(path string) string {
	base := filepath.Base(path)
	if i := strings.LastIndexByte(base, '\\'); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var sb strings.Builder
	for i := 0; i < len(base); i++ {
		c := base[i]
		switch {
		case c >= 'a' && c <= 'z':
			sb.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			sb.WriteByte(c)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "SAFEC_OUTPUT"
	}
	return sb.String()
}

type emitter struct {
	*printer
	prog  *ast.Program
	insts *Instantiations
	opts  Options
}

func newEmitter(prog *ast.Program, insts *Instantiations, opts Options) *emitter {
	if prog == nil {
		prog = &ast.Program{}
	}
	if insts == nil {
		insts = NewInstantiations(opts.Reporter)
	}
	tagged := make(map[string]bool)
	for _, in := range insts.Structs.Ordered() {
		if insts.Funcs.ByMangled(in.Mangled) != nil {
			tagged[in.Mangled] = true
		}
	}
	return &emitter{
		printer: &printer{
			buf:    &bytes.Buffer{},
			idx:    buildIndex(prog),
			rep:    opts.Reporter,
			tagged: tagged,
		},
		prog:  prog,
		insts: insts,
		opts:  opts,
	}
}

func (e *emitter) flush(w io.Writer) error {
	if _, err := w.Write(e.buf.Bytes()); err != nil {
		return fmt.Errorf("mono: write output: %w", err)
	}
	return nil
}

func (e *emitter) preamble() {
	if e.opts.NoHeaderComment {
		return
	}
	e.write(e.opts.HeaderComment, "\n\n")
}

// directives hoists every preprocessor line, in source order.
func (e *emitter) directives() {
	n := 0
	for _, d := range e.prog.Decls {
		switch x := d.(type) {
		case *ast.IncludeDecl:
			e.write(x.Text, "\n")
			n++
		case *ast.DirectiveDecl:
			e.write(x.Text, "\n")
			n++
		}
	}
	if n > 0 {
		e.write("\n")
	}
}

// structs writes a forward typedef for every struct instantiation, then
// the definitions with by-value dependencies first. A struct sharing its
// mangled name with a function instantiation gets no typedef, since both
// would claim the same ordinary identifier. It returns the number of
// definitions written.
func (e *emitter) structs() int {
	order := e.structOrder()
	typedefs := 0
	for _, in := range order {
		if e.tagged[in.Mangled] {
			continue
		}
		d := e.idx.genericStruct(in.GenericName)
		e.write("typedef ", d.Keyword(), " ", in.Mangled, " ", in.Mangled, ";\n")
		typedefs++
	}
	if typedefs > 0 {
		e.write("\n")
	}
	n := 0
	for _, in := range order {
		d := e.idx.genericStruct(in.GenericName)
		if d.Fields == nil {
			continue
		}
		subst, err := BuildSubst(d.TypeParams, in.TypeArgs)
		if err != nil {
			e.arity(in, err)
			continue
		}
		e.write(d.Keyword(), " ", in.Mangled, " ")
		e.with(subst).fields(d.Fields, 0)
		e.write(";\n\n")
		n++
	}
	return n
}

// structOrder returns the struct instantiations that have a declaration,
// most recent first, except that a struct used by value in another's fields
// comes before it.
func (e *emitter) structOrder() []*Instantiation {
	var (
		out  []*Instantiation
		seen = make(map[*Instantiation]bool)
	)
	var visit func(in *Instantiation)
	visit = func(in *Instantiation) {
		if seen[in] {
			return
		}
		seen[in] = true
		d := e.idx.genericStruct(in.GenericName)
		if d == nil {
			e.dangling(in)
			return
		}
		if subst, err := BuildSubst(d.TypeParams, in.TypeArgs); err == nil {
			for _, f := range d.Fields {
				for _, dep := range e.byValue(subst.Type(f.Type)) {
					visit(dep)
				}
			}
		}
		out = append(out, in)
	}
	for _, in := range e.insts.Structs.Entries() {
		visit(in)
	}
	return out
}

// byValue lists the struct instantiations a field of type t embeds.
func (e *emitter) byValue(t types.Type) []*Instantiation {
	a, ok := t.(*types.Applied)
	if !ok {
		return nil
	}
	if in := e.insts.Structs.Lookup(a.Name, a.Args); in != nil {
		return []*Instantiation{in}
	}
	return nil
}

// funcs writes a prototype for every function instantiation and, when
// bodies is set, the definitions. It returns the number of definitions.
func (e *emitter) funcs(bodies bool) int {
	type pending struct {
		in    *Instantiation
		decl  *ast.FuncDecl
		subst *Subst
	}
	var list []pending
	for _, in := range e.insts.Funcs.Entries() {
		d := e.idx.genericFunc(in.GenericName)
		if d == nil {
			e.dangling(in)
			continue
		}
		subst, err := BuildSubst(d.TypeParams, in.TypeArgs)
		if err != nil {
			e.arity(in, err)
			continue
		}
		if !bodies && d.Storage&ast.StorageStatic != 0 {
			continue
		}
		list = append(list, pending{in: in, decl: d, subst: subst})
	}

	for _, s := range list {
		e.write(e.with(s.subst).signature(s.decl, s.in.Mangled), ";\n")
	}
	if len(list) > 0 {
		e.write("\n")
	}
	if !bodies {
		return 0
	}
	n := 0
	for _, s := range list {
		if s.decl.Body == nil {
			continue
		}
		p := e.with(s.subst)
		p.write(p.signature(s.decl, s.in.Mangled), " ")
		p.block(s.decl.Body, 0)
		p.write("\n\n")
		n++
	}
	return n
}

// passThrough writes the non-generic declarations in source order.
func (e *emitter) passThrough() {
	for _, d := range e.prog.Decls {
		switch x := d.(type) {
		case *ast.StructDecl:
			if x.IsGeneric() {
				continue
			}
			e.plainStruct(x)
		case *ast.FuncDecl:
			if x.IsGeneric() {
				continue
			}
			e.write(e.signature(x, x.Name))
			if x.Body == nil {
				e.write(";\n")
				continue
			}
			e.write(" ")
			e.block(x.Body, 0)
			e.write("\n\n")
		case *ast.VarDecl:
			e.write(e.varDecl(x), ";\n")
		case *ast.TypedefDecl:
			e.typedef(x)
		case *ast.EnumDecl:
			e.enum(x)
		}
	}
}

func (e *emitter) plainStruct(d *ast.StructDecl) {
	e.write(d.Keyword(), " ", d.Name)
	if d.Fields == nil {
		e.write(";\n")
		return
	}
	e.write(" ")
	e.fields(d.Fields, 0)
	e.write(";\n\n")
}

// typeDecls writes the non-generic struct, union, enum and typedef
// declarations in source order.
func (e *emitter) typeDecls() {
	for _, d := range e.prog.Decls {
		switch x := d.(type) {
		case *ast.StructDecl:
			if !x.IsGeneric() {
				e.plainStruct(x)
			}
		case *ast.TypedefDecl:
			e.typedef(x)
		case *ast.EnumDecl:
			e.enum(x)
		}
	}
}

// prototypes declares every non-generic, non-static function.
func (e *emitter) prototypes() {
	n := 0
	for _, d := range e.prog.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok || fn.IsGeneric() || fn.Storage&ast.StorageStatic != 0 {
			continue
		}
		e.write(e.signature(fn, fn.Name), ";\n")
		n++
	}
	if n > 0 {
		e.write("\n")
	}
}

// externs declares every non-static global without its initializer.
func (e *emitter) externs() {
	n := 0
	for _, d := range e.prog.Decls {
		v, ok := d.(*ast.VarDecl)
		if !ok || v.Storage&ast.StorageStatic != 0 {
			continue
		}
		decl := &ast.VarDecl{Storage: ast.StorageExtern, Loc: v.Loc}
		for _, dd := range v.Vars {
			cp := *dd
			cp.Init = nil
			decl.Vars = append(decl.Vars, &cp)
		}
		e.write(e.varDecl(decl), ";\n")
		n++
	}
	if n > 0 {
		e.write("\n")
	}
}

func (e *emitter) dangling(in *Instantiation) {
	diag.ReportWarning(e.rep, diag.MonoDanglingInstantiation, in.firstSite(),
		fmt.Sprintf("no generic %s named %s; %s is not emitted", in.Kind, in.GenericName, in.Mangled)).Emit()
}

func (e *emitter) arity(in *Instantiation, err error) {
	diag.ReportError(e.rep, diag.MonoArityMismatch, in.firstSite(),
		fmt.Sprintf("%s: %v; %s is not emitted", in, err, in.Mangled)).Emit()
}
