package driver

import (
	"bytes"
	"context"
	"fmt"

	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/mono"
	"safec/internal/observ"
	"safec/internal/project"
	"safec/internal/source"
	"safec/internal/trace"
)

// CompileOptions controls one source-to-C compilation.
type CompileOptions struct {
	MaxDiagnostics int

	// MaxDepth, HeaderComment and NoHeaderComment are passed to mono.Options.
	MaxDepth        int
	HeaderComment   string
	NoHeaderComment bool

	// Header also renders the companion header into CompileResult.Header.
	Header bool
	// HeaderGuard defaults to mono.GuardName(path).
	HeaderGuard string

	// Cache is optional; nil disables caching.
	Cache *DiskCache
	// Timings appends an ObsTimings diagnostic with per-phase durations.
	Timings bool
}

// CompileResult holds the generated C text and everything needed to report on it.
type CompileResult struct {
	Path    string
	FileSet *source.FileSet
	File    *source.File
	// Program and Insts are nil when the result came from the cache or
	// parsing failed.
	Program *ast.Program
	Insts   *mono.Instantiations
	Bag     *diag.Bag
	Output  []byte
	Header  []byte
	Structs int
	Funcs   int
	Cached  bool
	Timer   *observ.Timer
}

// Failed reports whether compilation produced error diagnostics.
func (r *CompileResult) Failed() bool {
	return r == nil || r.Bag.HasErrors()
}

// Compile loads path and compiles it. See CompileFile.
func Compile(ctx context.Context, path string, opts CompileOptions) (*CompileResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return CompileFile(ctx, fs, fileID, opts)
}

// CompileFile parses one file of fs and lowers it to C. Syntax errors stop
// the pipeline before monomorphization; the result then has no Output.
// Errors are returned only for cancellation and cache I/O failures, never
// for problems in the source.
func CompileFile(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts CompileOptions) (*CompileResult, error) {
	file := fs.Get(fileID)
	span, ctx := trace.StartSpan(ctx, trace.ScopeFile, "compile")
	span.WithExtra("path", file.Path)
	defer span.End("")

	if opts.Header && opts.HeaderGuard == "" {
		opts.HeaderGuard = mono.GuardName(file.Path)
	}

	res := &CompileResult{
		Path:    file.Path,
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
		Timer:   observ.NewTimer(),
	}

	key := cacheKey(project.Digest(file.Hash), opts)
	if opts.Cache != nil {
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			// повреждённая запись: просто перекомпилируем
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache:corrupt", err.Error(), span.ID())
		}
		if hit && payload.ContentHash == project.Digest(file.Hash) {
			res.Output, res.Header = payload.Output, payload.Header
			res.Structs, res.Funcs = payload.Structs, payload.Funcs
			res.Cached = true
			for _, d := range payload.Diagnostics {
				res.Bag.Add(rebase(d, fileID))
			}
			span.WithExtra("cache", "hit")
			return res, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var prog *ast.Program
	err := res.Timer.Measure("parse", func() (err error) {
		prog, err = parseFile(ctx, file, res.Bag, opts.MaxDiagnostics)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Program = prog
	if res.Bag.HasErrors() {
		res.finish(opts)
		return res, nil
	}

	monoOpts := mono.Options{
		MaxDepth:        opts.MaxDepth,
		HeaderComment:   opts.HeaderComment,
		NoHeaderComment: opts.NoHeaderComment,
		Reporter:        diag.BagReporter{Bag: res.Bag},
	}
	err = res.Timer.Measure("mono", func() (err error) {
		res.Insts, err = mono.Prepare(ctx, prog, monoOpts)
		return err
	})
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := res.Timer.Measure("emit", func() error {
		return mono.Emit(ctx, &out, prog, res.Insts, monoOpts)
	}); err != nil {
		return nil, err
	}
	res.Output = out.Bytes()

	if opts.Header {
		var hdr bytes.Buffer
		if err := res.Timer.Measure("emit-header", func() error {
			return mono.EmitHeader(ctx, &hdr, prog, res.Insts, opts.HeaderGuard, monoOpts)
		}); err != nil {
			return nil, err
		}
		res.Header = hdr.Bytes()
	}

	res.Structs = res.Insts.Structs.Len()
	res.Funcs = res.Insts.Funcs.Len()
	for _, in := range res.Insts.Structs.Ordered() {
		trace.Point(trace.FromContext(ctx), trace.ScopeInst, "inst:"+in.Mangled, in.String(), span.ID())
	}
	for _, in := range res.Insts.Funcs.Ordered() {
		trace.Point(trace.FromContext(ctx), trace.ScopeInst, "inst:"+in.Mangled, in.String(), span.ID())
	}
	res.finish(opts)

	if opts.Cache != nil && !res.Bag.HasErrors() {
		payload := &DiskPayload{
			Path:        file.Path,
			ContentHash: project.Digest(file.Hash),
			Output:      res.Output,
			Header:      res.Header,
			Diagnostics: cacheableDiagnostics(res.Bag),
			Structs:     res.Structs,
			Funcs:       res.Funcs,
		}
		if err := opts.Cache.Put(key, payload); err != nil {
			return res, fmt.Errorf("driver: cache %s: %w", file.Path, err)
		}
	}
	return res, nil
}

// finish sorts and deduplicates diagnostics and appends timings if requested.
func (r *CompileResult) finish(opts CompileOptions) {
	r.Bag.Sort()
	r.Bag.Dedup()
	if opts.Timings {
		appendTimings(r.Bag, r.Path, r.Timer)
	}
}

// cacheableDiagnostics drops timing entries: they describe this run, not the file.
func cacheableDiagnostics(bag *diag.Bag) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Code == diag.ObsTimings {
			continue
		}
		out = append(out, d)
	}
	return out
}

// rebase points every span of a cached diagnostic at fileID.
func rebase(d diag.Diagnostic, fileID source.FileID) diag.Diagnostic {
	d.Primary.File = fileID
	notes := make([]diag.Note, len(d.Notes))
	for i, n := range d.Notes {
		n.Span.File = fileID
		notes[i] = n
	}
	d.Notes = notes
	fixes := make([]diag.Fix, len(d.Fixes))
	for i, f := range d.Fixes {
		edits := make([]diag.FixEdit, len(f.Edits))
		for j, e := range f.Edits {
			e.Span.File = fileID
			edits[j] = e
		}
		f.Edits = edits
		fixes[i] = f
	}
	d.Fixes = fixes
	return d
}
