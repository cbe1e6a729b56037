package ast

import "safec/internal/source"

type BlockStmt struct {
	Stmts []Stmt
	Loc   source.Span
}

type ReturnStmt struct {
	Value Expr
	Loc   source.Span
}

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt
	Loc  source.Span
}

type WhileStmt struct {
	Cond Expr
	Body Stmt
	Loc  source.Span
}

type DoWhileStmt struct {
	Body Stmt
	Cond Expr
	Loc  source.Span
}

// ForStmt is `for (Init; Cond; Post) Body`. Init is nil, *VarDecl or *ExprStmt.
type ForStmt struct {
	Init Stmt
	Cond Expr
	Post Expr
	Body Stmt
	Loc  source.Span
}

type BreakStmt struct{ Loc source.Span }

type ContinueStmt struct{ Loc source.Span }

type EmptyStmt struct{ Loc source.Span }

type ExprStmt struct {
	X   Expr
	Loc source.Span
}

func (*BlockStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()   {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*DoWhileStmt) stmtNode()  {}
func (*ForStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*EmptyStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()     {}
func (*VarDecl) stmtNode()      {}

func (s *BlockStmt) Span() source.Span    { return s.Loc }
func (s *ReturnStmt) Span() source.Span   { return s.Loc }
func (s *IfStmt) Span() source.Span       { return s.Loc }
func (s *WhileStmt) Span() source.Span    { return s.Loc }
func (s *DoWhileStmt) Span() source.Span  { return s.Loc }
func (s *ForStmt) Span() source.Span      { return s.Loc }
func (s *BreakStmt) Span() source.Span    { return s.Loc }
func (s *ContinueStmt) Span() source.Span { return s.Loc }
func (s *EmptyStmt) Span() source.Span    { return s.Loc }
func (s *ExprStmt) Span() source.Span     { return s.Loc }
