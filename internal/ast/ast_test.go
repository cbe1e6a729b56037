package ast

import (
	"testing"

	"safec/internal/token"
	"safec/internal/types"
)

func TestInspectVisitsNestedNodes(t *testing.T) {
	call := &CallExpr{
		Fun:      &Ident{Name: "identity"},
		TypeArgs: []types.Type{types.NewNamed("int")},
		Args:     []Expr{&BasicLit{Kind: token.IntLit, Value: "42"}},
	}
	fn := &FuncDecl{
		Result: types.NewNamed("int"),
		Name:   "main",
		Body: &BlockStmt{Stmts: []Stmt{
			&VarDecl{Vars: []*Declarator{{Type: types.NewApplied("Box", types.NewNamed("int")), Name: "b"}}},
			&ForStmt{Cond: &Ident{Name: "x"}, Body: &ReturnStmt{Value: call}},
		}},
	}

	var calls, decls int
	var seen []types.Type
	Inspect(fn, func(n Node) bool {
		switch n.(type) {
		case *CallExpr:
			calls++
		case *Declarator:
			decls++
		}
		seen = append(seen, TypesOf(n)...)
		return true
	})
	if calls != 1 || decls != 1 {
		t.Fatalf("calls=%d decls=%d, want 1 and 1", calls, decls)
	}
	// result int, Box<int>, call type arg int
	if len(seen) != 3 || types.BaseName(seen[1]) != "Box" {
		t.Fatalf("unexpected types: %v", seen)
	}
}

func TestInspectSkipsChildren(t *testing.T) {
	body := &BlockStmt{Stmts: []Stmt{&ExprStmt{X: &Ident{Name: "a"}}}}
	visited := 0
	Inspect(body, func(n Node) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Fatalf("visited %d nodes, want 1", visited)
	}
}

func TestParseInclude(t *testing.T) {
	tests := []struct {
		in     string
		path   string
		system bool
		ok     bool
	}{
		{"#include <stdio.h>", "stdio.h", true, true},
		{`#include "box.h"`, "box.h", false, true},
		{"#  include <sys/types.h>", "sys/types.h", true, true},
		{"#define X 1", "", false, false},
		{"#include", "", false, false},
	}
	for _, tt := range tests {
		path, system, ok := ParseInclude(tt.in)
		if path != tt.path || system != tt.system || ok != tt.ok {
			t.Errorf("ParseInclude(%q) = %q, %v, %v", tt.in, path, system, ok)
		}
	}
}

func TestStorageClassString(t *testing.T) {
	if got := (StorageStatic | StorageInline).String(); got != "static inline " {
		t.Fatalf("got %q", got)
	}
	if got := StorageClass(0).String(); got != "" {
		t.Fatalf("got %q", got)
	}
}
