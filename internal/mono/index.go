package mono

import "safec/internal/ast"

// index maps declaration names of one program. A definition wins over an
// earlier forward declaration or prototype of the same name.
type index struct {
	structs map[string]*ast.StructDecl // generic structs and unions
	funcs   map[string]*ast.FuncDecl   // generic functions
	plain   map[string]bool            // non-generic struct, union and typedef names
}

func buildIndex(prog *ast.Program) *index {
	idx := &index{
		structs: make(map[string]*ast.StructDecl),
		funcs:   make(map[string]*ast.FuncDecl),
		plain:   make(map[string]bool),
	}
	if prog == nil {
		return idx
	}
	for _, d := range prog.Decls {
		switch x := d.(type) {
		case *ast.StructDecl:
			if !x.IsGeneric() {
				idx.plain[x.Name] = true
				continue
			}
			if prev := idx.structs[x.Name]; prev == nil || prev.Fields == nil {
				idx.structs[x.Name] = x
			}
		case *ast.FuncDecl:
			if !x.IsGeneric() {
				continue
			}
			if prev := idx.funcs[x.Name]; prev == nil || prev.Body == nil {
				idx.funcs[x.Name] = x
			}
		case *ast.TypedefDecl:
			idx.plain[x.Name] = true
			if x.Struct != nil && x.Struct.Name != "" {
				idx.plain[x.Struct.Name] = true
			}
		}
	}
	return idx
}

// genericStruct returns the declaration of a generic struct named name.
func (idx *index) genericStruct(name string) *ast.StructDecl {
	return idx.structs[name]
}

// genericFunc returns the declaration of a generic function named name.
func (idx *index) genericFunc(name string) *ast.FuncDecl {
	return idx.funcs[name]
}
