package ast

import (
	"safec/internal/source"
	"safec/internal/types"
)

// Node is any syntax tree node.
type Node interface {
	Span() source.Span
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Program is one parsed translation unit with its top-level declarations in source order.
type Program struct {
	File  source.FileID
	Decls []Decl
}

// TypeParam is a formal type parameter of a generic declaration.
type TypeParam struct {
	Name string
	Loc  source.Span
}

// ParamNames returns the names of ps in order.
func ParamNames(ps []TypeParam) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// StorageClass holds the storage-class and function specifiers of a declaration.
type StorageClass uint8

const (
	StorageStatic StorageClass = 1 << iota
	StorageExtern
	StorageInline
)

// String renders the specifiers in canonical order followed by a space, or "".
func (s StorageClass) String() string {
	out := ""
	if s&StorageStatic != 0 {
		out += "static "
	}
	if s&StorageExtern != 0 {
		out += "extern "
	}
	if s&StorageInline != 0 {
		out += "inline "
	}
	return out
}

// Field is a struct member.
type Field struct {
	Type types.Type
	Name string
	// Dims holds array dimensions; a nil entry is an unsized [].
	Dims []Expr
	Loc  source.Span
}

func (f *Field) Span() source.Span { return f.Loc }

// Param is a function parameter. Name may be empty in prototypes.
type Param struct {
	Type types.Type
	Name string
	Dims []Expr
	Loc  source.Span
}

func (p *Param) Span() source.Span { return p.Loc }
