package ast

import "safec/internal/types"

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// every node. If f returns false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if isNil(n) || !f(n) {
		return
	}
	switch x := n.(type) {
	case *StructDecl:
		for _, fl := range x.Fields {
			Inspect(fl, f)
		}
	case *Field:
		inspectExprs(x.Dims, f)
	case *FuncDecl:
		for _, p := range x.Params {
			Inspect(p, f)
		}
		if x.Body != nil {
			Inspect(x.Body, f)
		}
	case *Param:
		inspectExprs(x.Dims, f)
	case *VarDecl:
		for _, d := range x.Vars {
			Inspect(d, f)
		}
	case *Declarator:
		inspectExprs(x.Dims, f)
		Inspect(x.Init, f)
	case *TypedefDecl:
		if x.Struct != nil {
			Inspect(x.Struct, f)
		}
		inspectExprs(x.Dims, f)
	case *EnumDecl:
		for _, it := range x.Items {
			Inspect(it.Value, f)
		}

	case *BlockStmt:
		for _, s := range x.Stmts {
			Inspect(s, f)
		}
	case *ReturnStmt:
		Inspect(x.Value, f)
	case *IfStmt:
		Inspect(x.Cond, f)
		Inspect(x.Then, f)
		Inspect(x.Else, f)
	case *WhileStmt:
		Inspect(x.Cond, f)
		Inspect(x.Body, f)
	case *DoWhileStmt:
		Inspect(x.Body, f)
		Inspect(x.Cond, f)
	case *ForStmt:
		Inspect(x.Init, f)
		Inspect(x.Cond, f)
		Inspect(x.Post, f)
		Inspect(x.Body, f)
	case *ExprStmt:
		Inspect(x.X, f)

	case *BinaryExpr:
		Inspect(x.X, f)
		Inspect(x.Y, f)
	case *UnaryExpr:
		Inspect(x.X, f)
	case *ConditionalExpr:
		Inspect(x.Cond, f)
		Inspect(x.Then, f)
		Inspect(x.Else, f)
	case *CallExpr:
		Inspect(x.Fun, f)
		inspectExprs(x.Args, f)
	case *MemberExpr:
		Inspect(x.X, f)
	case *IndexExpr:
		Inspect(x.X, f)
		Inspect(x.Index, f)
	case *SizeofExpr:
		Inspect(x.X, f)
	case *CastExpr:
		Inspect(x.X, f)
	case *ParenExpr:
		Inspect(x.X, f)
	case *InitList:
		inspectExprs(x.Elems, f)
	}
}

func inspectExprs(list []Expr, f func(Node) bool) {
	for _, e := range list {
		Inspect(e, f)
	}
}

// isNil catches both a nil interface and a typed nil pointer stored in one.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch x := n.(type) {
	case *BlockStmt:
		return x == nil
	case *StructDecl:
		return x == nil
	case *VarDecl:
		return x == nil
	}
	return false
}

// TypesOf returns the type expressions written directly on n (not on its
// children), in source order.
func TypesOf(n Node) []types.Type {
	switch x := n.(type) {
	case *Field:
		return []types.Type{x.Type}
	case *Param:
		return []types.Type{x.Type}
	case *FuncDecl:
		return []types.Type{x.Result}
	case *Declarator:
		return []types.Type{x.Type}
	case *TypedefDecl:
		if x.Struct != nil {
			return nil
		}
		return []types.Type{x.Type}
	case *CastExpr:
		return []types.Type{x.Type}
	case *SizeofExpr:
		if x.Type != nil {
			return []types.Type{x.Type}
		}
	case *CallExpr:
		return x.TypeArgs
	}
	return nil
}
