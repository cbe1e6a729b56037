package mono

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"safec/internal/source"
	"safec/internal/types"
)

// DumpOptions configures the instantiation dump.
type DumpOptions struct {
	// PathMode matches source.File.FormatPath modes: "relative", "absolute", "basename", "auto".
	PathMode string
}

// Dump writes a text listing of insts: structs first, then functions, each
// sorted by mangled name, with their use sites.
//
//	struct Pair<int, char> -> Pair_int_char  depth=0 uses=1
//	  - at main.sc:12:5 caller=main
func Dump(w io.Writer, insts *Instantiations, fs *source.FileSet, opts DumpOptions) error {
	if w == nil || insts == nil {
		return nil
	}
	if opts.PathMode == "" {
		opts.PathMode = "relative"
	}
	for _, in := range sortedEntries(insts) {
		if _, err := fmt.Fprintf(w, "%s %s -> %s  depth=%d uses=%d\n", in.Kind, in, in.Mangled, in.Depth, len(in.UseSites)); err != nil {
			return err
		}
		for _, us := range sortedSites(in.UseSites) {
			caller := us.Caller
			if caller == "" {
				caller = "_"
			}
			if _, err := fmt.Fprintf(w, "  - at %s caller=%s\n", formatSpan(fs, us.Span, opts.PathMode), caller); err != nil {
				return err
			}
		}
	}
	return nil
}

// DumpEntry is the JSON form of one instantiation.
type DumpEntry struct {
	Kind     string   `json:"kind"`
	Generic  string   `json:"generic"`
	TypeArgs []string `json:"type_args"`
	Mangled  string   `json:"mangled"`
	Depth    int      `json:"depth"`
	Parent   string   `json:"parent,omitempty"`
	Uses     []string `json:"uses"`
}

// DumpJSON writes insts as a JSON array of DumpEntry in Dump order.
func DumpJSON(w io.Writer, insts *Instantiations, fs *source.FileSet, opts DumpOptions) error {
	if w == nil || insts == nil {
		return nil
	}
	if opts.PathMode == "" {
		opts.PathMode = "relative"
	}
	out := make([]DumpEntry, 0, insts.Len())
	for _, in := range sortedEntries(insts) {
		e := DumpEntry{
			Kind:     in.Kind.String(),
			Generic:  in.GenericName,
			TypeArgs: make([]string, len(in.TypeArgs)),
			Mangled:  in.Mangled,
			Depth:    in.Depth,
			Uses:     []string{},
		}
		for i, a := range in.TypeArgs {
			e.TypeArgs[i] = types.String(a)
		}
		if in.Parent != nil {
			e.Parent = in.Parent.Mangled
		}
		for _, us := range sortedSites(in.UseSites) {
			e.Uses = append(e.Uses, formatSpan(fs, us.Span, opts.PathMode))
		}
		out = append(out, e)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func sortedEntries(insts *Instantiations) []*Instantiation {
	var all []*Instantiation
	for _, reg := range []*Registry{insts.Structs, insts.Funcs} {
		list := reg.Ordered()
		slices.SortStableFunc(list, func(a, b *Instantiation) int {
			return strings.Compare(a.Mangled, b.Mangled)
		})
		all = append(all, list...)
	}
	return all
}

func sortedSites(sites []UseSite) []UseSite {
	out := slices.Clone(sites)
	slices.SortStableFunc(out, func(a, b UseSite) int {
		if a.Span.File != b.Span.File {
			return int(a.Span.File) - int(b.Span.File)
		}
		if a.Span.Start != b.Span.Start {
			if a.Span.Start < b.Span.Start {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Caller, b.Caller)
	})
	return out
}

func formatSpan(fs *source.FileSet, sp source.Span, pathMode string) string {
	if fs == nil || sp == (source.Span{}) || int(sp.File) >= fs.Len() {
		return "_:0:0"
	}
	file := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	path := filepath.ToSlash(file.FormatPath(pathMode, fs.BaseDir()))
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}
