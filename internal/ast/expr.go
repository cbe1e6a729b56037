package ast

import (
	"safec/internal/source"
	"safec/internal/token"
	"safec/internal/types"
)

type Ident struct {
	Name string
	Loc  source.Span
}

// BasicLit is a numeric, string or character literal; Value is the source text.
type BasicLit struct {
	Kind  token.Kind
	Value string
	Loc   source.Span
}

// BinaryExpr covers arithmetic, comparison, logical, bitwise and
// assignment operators. Comma expressions use token.Comma.
type BinaryExpr struct {
	Op  token.Kind
	X   Expr
	Y   Expr
	Loc source.Span
}

type UnaryExpr struct {
	Op      token.Kind
	X       Expr
	Postfix bool
	Loc     source.Span
}

type ConditionalExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	Loc  source.Span
}

// CallExpr is a call; TypeArgs is non-empty for explicit generic calls
// such as identity<int>(42).
type CallExpr struct {
	Fun      Expr
	TypeArgs []types.Type
	Args     []Expr
	Loc      source.Span
}

type MemberExpr struct {
	X     Expr
	Name  string
	Arrow bool
	Loc   source.Span
}

type IndexExpr struct {
	X     Expr
	Index Expr
	Loc   source.Span
}

// SizeofExpr is sizeof(Type) when Type is set, otherwise sizeof X.
type SizeofExpr struct {
	Type types.Type
	X    Expr
	Loc  source.Span
}

type CastExpr struct {
	Type types.Type
	X    Expr
	Loc  source.Span
}

// ParenExpr keeps source parentheses.
type ParenExpr struct {
	X   Expr
	Loc source.Span
}

// InitList is a brace initializer {a, b, c}.
type InitList struct {
	Elems []Expr
	Loc   source.Span
}

func (*Ident) exprNode()           {}
func (*BasicLit) exprNode()        {}
func (*BinaryExpr) exprNode()      {}
func (*UnaryExpr) exprNode()       {}
func (*ConditionalExpr) exprNode() {}
func (*CallExpr) exprNode()        {}
func (*MemberExpr) exprNode()      {}
func (*IndexExpr) exprNode()       {}
func (*SizeofExpr) exprNode()      {}
func (*CastExpr) exprNode()        {}
func (*ParenExpr) exprNode()       {}
func (*InitList) exprNode()        {}

func (e *Ident) Span() source.Span           { return e.Loc }
func (e *BasicLit) Span() source.Span        { return e.Loc }
func (e *BinaryExpr) Span() source.Span      { return e.Loc }
func (e *UnaryExpr) Span() source.Span       { return e.Loc }
func (e *ConditionalExpr) Span() source.Span { return e.Loc }
func (e *CallExpr) Span() source.Span        { return e.Loc }
func (e *MemberExpr) Span() source.Span      { return e.Loc }
func (e *IndexExpr) Span() source.Span       { return e.Loc }
func (e *SizeofExpr) Span() source.Span      { return e.Loc }
func (e *CastExpr) Span() source.Span        { return e.Loc }
func (e *ParenExpr) Span() source.Span       { return e.Loc }
func (e *InitList) Span() source.Span        { return e.Loc }

// CalleeName returns the callee identifier of a direct call, or "".
func (e *CallExpr) CalleeName() string {
	if id, ok := e.Fun.(*Ident); ok {
		return id.Name
	}
	return ""
}
