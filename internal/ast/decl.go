package ast

import (
	"strings"

	"safec/internal/source"
	"safec/internal/types"
)

// StructDecl is a struct or union declaration, possibly generic.
// Fields is nil for a forward declaration (`struct X;`).
type StructDecl struct {
	Union      bool
	Name       string
	NameLoc    source.Span
	TypeParams []TypeParam
	Fields     []*Field
	Loc        source.Span
}

// FuncDecl is a function definition (Body != nil) or prototype.
type FuncDecl struct {
	Storage    StorageClass
	Result     types.Type
	Name       string
	NameLoc    source.Span
	TypeParams []TypeParam
	Params     []*Param
	Variadic   bool
	Body       *BlockStmt
	Loc        source.Span
}

// VarDecl declares one or more variables sharing a base type. It appears
// both at top level and as a statement.
type VarDecl struct {
	Storage StorageClass
	Vars    []*Declarator
	Loc     source.Span
}

// Declarator is one name in a VarDecl with its full type.
type Declarator struct {
	Type types.Type
	Name string
	Dims []Expr
	Init Expr
	Loc  source.Span
}

func (d *Declarator) Span() source.Span { return d.Loc }

// TypedefDecl is `typedef <type> Name;`. When the aliased type is an inline
// struct body, Struct holds it and Type names it.
type TypedefDecl struct {
	Type   types.Type
	Struct *StructDecl
	Name   string
	Dims   []Expr
	Loc    source.Span
}

// EnumDecl is an enumeration; it is passed through unchanged.
type EnumDecl struct {
	Name  string
	Items []*EnumItem
	Loc   source.Span
}

type EnumItem struct {
	Name  string
	Value Expr
	Loc   source.Span
}

// IncludeDecl is an #include line.
type IncludeDecl struct {
	Path   string
	System bool
	Text   string
	Loc    source.Span
}

// DirectiveDecl is any other preprocessor line, kept verbatim.
type DirectiveDecl struct {
	Text string
	Loc  source.Span
}

func (*StructDecl) declNode()    {}
func (*FuncDecl) declNode()      {}
func (*VarDecl) declNode()       {}
func (*TypedefDecl) declNode()   {}
func (*EnumDecl) declNode()      {}
func (*IncludeDecl) declNode()   {}
func (*DirectiveDecl) declNode() {}

func (d *StructDecl) Span() source.Span    { return d.Loc }
func (d *FuncDecl) Span() source.Span      { return d.Loc }
func (d *VarDecl) Span() source.Span       { return d.Loc }
func (d *TypedefDecl) Span() source.Span   { return d.Loc }
func (d *EnumDecl) Span() source.Span      { return d.Loc }
func (d *IncludeDecl) Span() source.Span   { return d.Loc }
func (d *DirectiveDecl) Span() source.Span { return d.Loc }

// IsGeneric reports whether the struct declares type parameters.
func (d *StructDecl) IsGeneric() bool { return len(d.TypeParams) > 0 }

// IsGeneric reports whether the function declares type parameters.
func (d *FuncDecl) IsGeneric() bool { return len(d.TypeParams) > 0 }

// Keyword returns "struct" or "union".
func (d *StructDecl) Keyword() string {
	if d.Union {
		return "union"
	}
	return "struct"
}

// ParseInclude splits an #include directive into its path and bracket style.
// ok is false when text is not an include.
func ParseInclude(text string) (path string, system, ok bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "#"))
	if !strings.HasPrefix(rest, "include") {
		return "", false, false
	}
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "include"))
	if len(rest) < 2 {
		return "", false, false
	}
	switch rest[0] {
	case '<':
		if end := strings.IndexByte(rest, '>'); end > 0 {
			return rest[1:end], true, true
		}
	case '"':
		if end := strings.IndexByte(rest[1:], '"'); end >= 0 {
			return rest[1 : end+1], false, true
		}
	}
	return "", false, false
}
