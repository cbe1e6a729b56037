package parser_test

import (
	"strings"
	"testing"

	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/parser"
	"safec/internal/source"
	"safec/internal/testkit"
	"safec/internal/token"
	"safec/internal/types"
)

func parse(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.sc", []byte(src)))
	bag := diag.NewBag(64)
	prog := parser.ParseFile(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	return prog, bag
}

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, bag := parse(t, src)
	if bag.Len() != 0 {
		for _, d := range bag.Items() {
			t.Errorf("%s %s: %s", d.Code.ID(), d.Primary, d.Message)
		}
		t.FailNow()
	}
	return prog
}

func funcBody(t *testing.T, prog *ast.Program, name string) []ast.Stmt {
	t.Helper()
	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Name == name {
			if fn.Body == nil {
				t.Fatalf("function %s has no body", name)
			}
			return fn.Body.Stmts
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}

func TestGenericStruct(t *testing.T) {
	prog := parseOK(t, "struct Pair<K, V> { K key; V value; };\nstruct Box<T> { T* data; };")
	if len(prog.Decls) != 2 {
		t.Fatalf("expected 2 decls, got %d", len(prog.Decls))
	}
	pair := prog.Decls[0].(*ast.StructDecl)
	if pair.Name != "Pair" || len(pair.TypeParams) != 2 || pair.TypeParams[1].Name != "V" {
		t.Fatalf("unexpected pair decl: %+v", pair)
	}
	box := prog.Decls[1].(*ast.StructDecl)
	if got := types.String(box.Fields[0].Type); got != "T*" {
		t.Fatalf("box field type = %q", got)
	}
}

func TestGenericFunctionAndCall(t *testing.T) {
	prog := parseOK(t, `T identity<T>(T x) { return x; }
int main() {
    int y = identity<int>(42);
    return y;
}`)
	fn := prog.Decls[0].(*ast.FuncDecl)
	if !fn.IsGeneric() || fn.Name != "identity" || types.String(fn.Result) != "T" {
		t.Fatalf("unexpected generic fn: %+v", fn)
	}
	body := funcBody(t, prog, "main")
	v := body[0].(*ast.VarDecl)
	call, ok := v.Vars[0].Init.(*ast.CallExpr)
	if !ok {
		t.Fatalf("init is %T, want *ast.CallExpr", v.Vars[0].Init)
	}
	if call.CalleeName() != "identity" || len(call.TypeArgs) != 1 || types.String(call.TypeArgs[0]) != "int" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if lit := call.Args[0].(*ast.BasicLit); lit.Value != "42" {
		t.Fatalf("arg = %q", lit.Value)
	}
}

func TestComparisonIsNotGenericCall(t *testing.T) {
	prog := parseOK(t, "int f(int a, int b, int c) { return a < b > (c); }")
	ret := funcBody(t, prog, "f")[0].(*ast.ReturnStmt)
	bin, ok := ret.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != token.Gt {
		t.Fatalf("expected '>' at the root, got %#v", ret.Value)
	}
	if inner, ok := bin.X.(*ast.BinaryExpr); !ok || inner.Op != token.Lt {
		t.Fatalf("expected '<' on the left, got %#v", bin.X)
	}
}

func TestNestedTypeArgumentsSplitShift(t *testing.T) {
	prog := parseOK(t, "int main() { Box<Pair<int, char>> b; int s = x >> 2; return 0; }")
	body := funcBody(t, prog, "main")
	v := body[0].(*ast.VarDecl)
	if got := types.String(v.Vars[0].Type); got != "Box<Pair<int, char>>" {
		t.Fatalf("type = %q", got)
	}
	shift := body[1].(*ast.VarDecl).Vars[0].Init.(*ast.BinaryExpr)
	if shift.Op != token.Shr {
		t.Fatalf("expected >> operator, got %v", shift.Op)
	}
}

func TestCTypeNames(t *testing.T) {
	prog := parseOK(t, "unsigned long int* p;\nconst char* s;\nstruct Point pt;\nint *a, b;")
	tests := []struct {
		name  string
		base  string
		depth int
	}{
		{"p", "unsigned long int", 1},
		{"s", "const char", 1},
		{"pt", "struct Point", 0},
		{"a", "int", 1},
		{"b", "int", 0},
	}
	var vars []*ast.Declarator
	for _, d := range prog.Decls {
		vars = append(vars, d.(*ast.VarDecl).Vars...)
	}
	if len(vars) != len(tests) {
		t.Fatalf("got %d declarators", len(vars))
	}
	for i, tt := range tests {
		v := vars[i]
		if v.Name != tt.name || types.BaseName(v.Type) != tt.base || types.PointerDepth(v.Type) != tt.depth {
			t.Errorf("decl %d = %s %s, want %s %s depth %d", i, types.String(v.Type), v.Name, tt.base, tt.name, tt.depth)
		}
	}
}

func TestDeclarationVersusExpression(t *testing.T) {
	prog := parseOK(t, `struct Point { int x; };
int main() {
    Foo x;
    a * b;
    Point* p;
    x = 3;
    return 0;
}`)
	body := funcBody(t, prog, "main")
	want := []string{"*ast.VarDecl", "*ast.ExprStmt", "*ast.VarDecl", "*ast.ExprStmt", "*ast.ReturnStmt"}
	for i, s := range body {
		if got := typeName(s); got != want[i] {
			t.Errorf("stmt %d is %s, want %s", i, got, want[i])
		}
	}
}

func typeName(s ast.Stmt) string {
	switch s.(type) {
	case *ast.VarDecl:
		return "*ast.VarDecl"
	case *ast.ExprStmt:
		return "*ast.ExprStmt"
	case *ast.ReturnStmt:
		return "*ast.ReturnStmt"
	}
	return "other"
}

func TestCastAndSizeof(t *testing.T) {
	prog := parseOK(t, `struct Box<T> { T data; };
int main() {
    int n = sizeof(Box<int>);
    char* c = (char*)malloc(n);
    int m = sizeof n;
    return (int)n;
}`)
	body := funcBody(t, prog, "main")
	sz := body[0].(*ast.VarDecl).Vars[0].Init.(*ast.SizeofExpr)
	if sz.Type == nil || types.String(sz.Type) != "Box<int>" {
		t.Fatalf("sizeof type = %v", sz.Type)
	}
	cast := body[1].(*ast.VarDecl).Vars[0].Init.(*ast.CastExpr)
	if types.String(cast.Type) != "char*" {
		t.Fatalf("cast type = %q", types.String(cast.Type))
	}
	if _, ok := cast.X.(*ast.CallExpr); !ok {
		t.Fatalf("cast operand is %T", cast.X)
	}
	if sz2 := body[2].(*ast.VarDecl).Vars[0].Init.(*ast.SizeofExpr); sz2.Type != nil || sz2.X == nil {
		t.Fatal("sizeof n must be the expression form")
	}
}

func TestDirectivesAndTypedefs(t *testing.T) {
	prog := parseOK(t, `#include <stdio.h>
#include "box.h"
#define N 4
typedef struct { int x; } Vec;
typedef unsigned int uint;
Vec v;
uint u;`)
	inc := prog.Decls[0].(*ast.IncludeDecl)
	if inc.Path != "stdio.h" || !inc.System {
		t.Fatalf("include = %+v", inc)
	}
	if local := prog.Decls[1].(*ast.IncludeDecl); local.System || local.Path != "box.h" {
		t.Fatalf("local include = %+v", local)
	}
	if def := prog.Decls[2].(*ast.DirectiveDecl); def.Text != "#define N 4" {
		t.Fatalf("directive = %q", def.Text)
	}
	td := prog.Decls[3].(*ast.TypedefDecl)
	if td.Struct == nil || td.Name != "Vec" || len(td.Struct.Fields) != 1 {
		t.Fatalf("typedef struct = %+v", td)
	}
	if td2 := prog.Decls[4].(*ast.TypedefDecl); types.String(td2.Type) != "unsigned int" {
		t.Fatalf("typedef = %q", types.String(td2.Type))
	}
}

func TestControlFlow(t *testing.T) {
	prog := parseOK(t, `int f(int n) {
    int s = 0;
    for (int i = 0; i < n; i++) { if (i % 2 == 0) continue; else s += i; }
    while (n > 0) n--;
    do { s = s ? s : 1; } while (0);
    for (;;) break;
    return s;
}`)
	body := funcBody(t, prog, "f")
	loop := body[1].(*ast.ForStmt)
	if _, ok := loop.Init.(*ast.VarDecl); !ok {
		t.Fatalf("for init is %T", loop.Init)
	}
	inner := loop.Body.(*ast.BlockStmt).Stmts[0].(*ast.IfStmt)
	if _, ok := inner.Then.(*ast.ContinueStmt); !ok || inner.Else == nil {
		t.Fatalf("unexpected if: %+v", inner)
	}
	if _, ok := body[2].(*ast.WhileStmt); !ok {
		t.Fatalf("stmt 2 is %T", body[2])
	}
	if _, ok := body[3].(*ast.DoWhileStmt); !ok {
		t.Fatalf("stmt 3 is %T", body[3])
	}
	empty := body[4].(*ast.ForStmt)
	if empty.Init != nil || empty.Cond != nil || empty.Post != nil {
		t.Fatal("expected empty for header")
	}
}

func TestPrototypesEnumsAndStorage(t *testing.T) {
	prog := parseOK(t, `int add(int, int);
int printf(const char* fmt, ...);
static inline int twice(int x) { return x * 2; }
enum Color { RED, GREEN = 2, BLUE, };
struct Point;`)
	add := prog.Decls[0].(*ast.FuncDecl)
	if add.Body != nil || len(add.Params) != 2 || add.Params[0].Name != "" {
		t.Fatalf("prototype = %+v", add)
	}
	if pf := prog.Decls[1].(*ast.FuncDecl); !pf.Variadic {
		t.Fatal("printf must be variadic")
	}
	if tw := prog.Decls[2].(*ast.FuncDecl); tw.Storage != ast.StorageStatic|ast.StorageInline {
		t.Fatalf("storage = %v", tw.Storage)
	}
	if en := prog.Decls[3].(*ast.EnumDecl); en.Name != "Color" || len(en.Items) != 3 || en.Items[1].Value == nil {
		t.Fatalf("enum = %+v", en)
	}
	if fwd := prog.Decls[4].(*ast.StructDecl); fwd.Fields != nil {
		t.Fatal("forward declaration must have nil fields")
	}
}

func TestMissingSemicolonRecovers(t *testing.T) {
	prog, bag := parse(t, "int main() { return 1 }\nint x;")
	if bag.Count(diag.SynExpectSemicolon) != 1 {
		t.Fatalf("expected one SynExpectSemicolon, got %v", bag.Items())
	}
	if len(prog.Decls) != 2 {
		t.Fatalf("expected parsing to continue, got %d decls", len(prog.Decls))
	}
	d := bag.Items()[0]
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("expected one insert fix, got %+v", d.Fixes)
	}
	edit := d.Fixes[0].Edits[0]
	// "int main() { return 1" заканчивается на байте 21
	if edit.NewText != ";" || edit.Span.Start != 21 || edit.Span.End != 21 {
		t.Fatalf("unexpected fix edit %+v", edit)
	}
}

func TestUnexpectedTopLevel(t *testing.T) {
	prog, bag := parse(t, "return 1;\nint ok;")
	if bag.Count(diag.SynUnexpectedTopLevel) != 1 {
		t.Fatalf("expected SynUnexpectedTopLevel, got %v", bag.Items())
	}
	if len(prog.Decls) != 1 {
		t.Fatalf("expected the valid declaration to survive, got %d", len(prog.Decls))
	}
}

func TestNestingLimit(t *testing.T) {
	src := "int x = " + strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300) + ";"
	_, bag := parse(t, src)
	if bag.Count(diag.SynTooDeep) != 1 {
		t.Fatalf("expected exactly one SynTooDeep, got %v", bag.Items())
	}
}

func TestTypeParameterErrors(t *testing.T) {
	_, bag := parse(t, "struct Bad<T, T> { T x; };")
	if bag.Count(diag.SynDuplicateTypeParam) != 1 {
		t.Fatalf("expected duplicate type param, got %v", bag.Items())
	}
}

func TestSpanInvariants(t *testing.T) {
	sources := []string{
		"struct Pair<K, V> { K key; V value; };\n",
		"#include <stdio.h>\ntypedef unsigned long size_t;\nenum Color { RED, GREEN = 2 };\n",
		"T max<T>(T a, T b) { return a > b ? a : b; }\nint main(void) { int x = max<int>(1, 2); return x; }\n",
		"static int counter;\nint add(int a, int b);\nint add(int a, int b) { for (int i = 0; i < b; i++) { a++; } return a; }\n",
	}
	for _, src := range sources {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("span.sc", []byte(src)))
		bag := diag.NewBag(64)
		prog := parser.ParseFile(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
		if bag.HasErrors() {
			t.Fatalf("unexpected diagnostics for %q: %d", src, bag.Len())
		}
		if err := testkit.CheckSpanInvariants(prog, file); err != nil {
			t.Errorf("span invariants for %q: %v", src, err)
		}
	}
}
