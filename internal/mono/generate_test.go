package mono_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/mono"
	"safec/internal/parser"
	"safec/internal/source"
	"safec/internal/types"
)

func parseProgram(t *testing.T, src string) (*ast.Program, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.sc", []byte(src)))
	bag := diag.NewBag(64)
	prog := parser.ParseFile(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.Len() != 0 {
		for _, d := range bag.Items() {
			t.Errorf("%s %s: %s", d.Code.ID(), d.Primary, d.Message)
		}
		t.FailNow()
	}
	return prog, fs
}

type result struct {
	out   string
	insts *mono.Instantiations
	bag   *diag.Bag
}

func generate(t *testing.T, src string, opts mono.Options) result {
	t.Helper()
	prog, _ := parseProgram(t, src)
	bag := diag.NewBag(64)
	opts.Reporter = diag.BagReporter{Bag: bag}
	var buf bytes.Buffer
	insts, err := mono.Generate(context.Background(), &buf, prog, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return result{out: buf.String(), insts: insts, bag: bag}
}

func mustContain(t *testing.T, out string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(out, p) {
			t.Fatalf("output lacks %q:\n%s", p, out)
		}
	}
}

func mustNotContain(t *testing.T, out string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if strings.Contains(out, p) {
			t.Fatalf("output unexpectedly contains %q:\n%s", p, out)
		}
	}
}

func noDiagnostics(t *testing.T, bag *diag.Bag) {
	t.Helper()
	for _, d := range bag.Items() {
		t.Errorf("unexpected %s: %s", d.Code.ID(), d.Message)
	}
}

func TestGenerateFullOutput(t *testing.T) {
	src := `#include <stdio.h>
struct Box<T> { T data; };
T identity<T>(T x) { return x; }
int main() {
    Box<int> b;
    b.data = identity<int>(42);
    printf("%d\n", b.data);
    return 0;
}
`
	want := `/* Generated by SafeC compiler */

#include <stdio.h>

typedef struct Box_int Box_int;

struct Box_int {
    int data;
};

int identity_int(int x);

int identity_int(int x) {
    return x;
}

int main(void) {
    Box_int b;
    b.data = identity_int(42);
    printf("%d\n", b.data);
    return 0;
}

`
	r := generate(t, src, mono.Options{})
	noDiagnostics(t, r.bag)
	if r.out != want {
		t.Fatalf("output mismatch\n--- got ---\n%s\n--- want ---\n%s", r.out, want)
	}
}

func TestRegisteringTwiceEmitsOnce(t *testing.T) {
	r := generate(t, `struct Wrapper<T> { T value; };
int main() { Wrapper<int> a; Wrapper<int> b; return 0; }`, mono.Options{})
	if n := strings.Count(r.out, "struct Wrapper_int {"); n != 1 {
		t.Fatalf("Wrapper_int defined %d times:\n%s", n, r.out)
	}
	if r.insts.Structs.Len() != 1 {
		t.Fatalf("expected 1 struct instantiation, got %d", r.insts.Structs.Len())
	}
}

func TestDistinctArgumentsDistinctStructs(t *testing.T) {
	r := generate(t, `struct Box<T> { T data; };
int main() { Box<int> a; Box<char> b; return 0; }`, mono.Options{})
	mustContain(t, r.out,
		"struct Box_int {\n    int data;\n};",
		"struct Box_char {\n    char data;\n};",
		"Box_int a;",
		"Box_char b;",
	)
}

func TestGenericCallIsRewritten(t *testing.T) {
	r := generate(t, `T identity<T>(T x) { return x; }
int main() { int v = identity<int>(42); return v; }`, mono.Options{})
	noDiagnostics(t, r.bag)
	mustContain(t, r.out, "int identity_int(int x) {", "int v = identity_int(42);")
	mustNotContain(t, r.out, "<int>", "identity<T>", "T identity", "<T>")
}

func TestPassThroughAndUnusedGenerics(t *testing.T) {
	r := generate(t, `struct Point { int x; int y; };
struct Unused<T> { T item; };
T never<T>(T x) { return x; }
int add(int a, int b) { return a + b; }
static int counter = 0;
`, mono.Options{})
	noDiagnostics(t, r.bag)
	mustContain(t, r.out,
		"struct Point {\n    int x;\n    int y;\n};",
		"int add(int a, int b) {\n    return a + b;\n}",
		"static int counter = 0;",
	)
	mustNotContain(t, r.out, "Unused", "never", "typedef struct")
}

func TestPointerArgument(t *testing.T) {
	r := generate(t, `struct Ptr<T> { T data; };
int main() { Ptr<int*> p; return 0; }`, mono.Options{})
	mustContain(t, r.out, "struct Ptr_int_ptr {\n    int* data;\n};", "Ptr_int_ptr p;")
}

func TestTwoParameters(t *testing.T) {
	r := generate(t, `struct Pair<K, V> { K key; V value; };
int main() { Pair<int, char> p; return 0; }`, mono.Options{})
	if n := strings.Count(r.out, "struct Pair_int_char {"); n != 1 {
		t.Fatalf("Pair_int_char defined %d times", n)
	}
	mustContain(t, r.out, "    int key;\n    char value;\n")
	mustNotContain(t, r.out, "<K", "K key", "V value")
}

func TestNestedArgumentEmittedFirst(t *testing.T) {
	r := generate(t, `struct Pair<K, V> { K key; V value; };
struct Box<T> { T data; };
int main() { Box<Pair<int, char>> b; return 0; }`, mono.Options{})
	noDiagnostics(t, r.bag)
	inner := strings.Index(r.out, "struct Pair_int_char {")
	outer := strings.Index(r.out, "struct Box_Pair_int_char {")
	if inner < 0 || outer < 0 || inner > outer {
		t.Fatalf("Pair_int_char must be defined before Box_Pair_int_char:\n%s", r.out)
	}
	mustContain(t, r.out, "    Pair_int_char data;", "Box_Pair_int_char b;")
}

func TestSelfReferentialStruct(t *testing.T) {
	r := generate(t, `struct Node<T> { T value; Node<T>* next; };
int main() { Node<int> head; return 0; }`, mono.Options{})
	noDiagnostics(t, r.bag)
	mustContain(t, r.out,
		"typedef struct Node_int Node_int;",
		"struct Node_int {\n    int value;\n    Node_int* next;\n};",
	)
	if r.insts.Structs.Len() != 1 {
		t.Fatalf("expected 1 instantiation, got %d", r.insts.Structs.Len())
	}
}

func TestStructAndFunctionShareGenericName(t *testing.T) {
	r := generate(t, `struct Box<T> { T data; };
int Box<T>(T x) { return 1; }
int main() { Box<int> b; Box<char> c; int r = Box<int>(1); return r; }`, mono.Options{})
	noDiagnostics(t, r.bag)
	mustContain(t, r.out,
		"typedef struct Box_char Box_char;",
		"struct Box_int {\n    int data;\n};",
		"int Box_int(int x);",
		"    struct Box_int b;",
		"    Box_char c;",
		"int r = Box_int(1);",
	)
	mustNotContain(t, r.out, "typedef struct Box_int Box_int;")
}

func TestUnusedGenericBodyInstantiatesNothing(t *testing.T) {
	r := generate(t, `struct Box<T> { T data; };
int unused<T>(T x) { Box<int> b; return 0; }
int main() { return 0; }`, mono.Options{})
	noDiagnostics(t, r.bag)
	if n := r.insts.Len(); n != 0 {
		t.Fatalf("expected no instantiations, got %d", n)
	}
	mustNotContain(t, r.out, "Box_int", "unused")
}

func TestGenericToGenericExpansion(t *testing.T) {
	r := generate(t, `struct Box<T> { T data; };
T identity<T>(T x) { return x; }
T unbox<T>(Box<T>* b) { return identity<T>(b->data); }
int main() { Box<long> b; b.data = 1; return (int)unbox<long>(&b); }`, mono.Options{})
	noDiagnostics(t, r.bag)
	mustContain(t, r.out,
		"long unbox_long(Box_long* b) {",
		"return identity_long(b->data);",
		"long identity_long(long x) {",
		"return (int)unbox_long(&b);",
	)
	id := r.insts.Funcs.Lookup("identity", []types.Type{types.NewNamed("long")})
	if id == nil || id.Depth != 1 || id.Parent == nil || id.Parent.Mangled != "unbox_long" {
		t.Fatalf("identity<long> should be expanded from unbox_long, got %+v", id)
	}
}

func TestArityMismatchIsAnError(t *testing.T) {
	r := generate(t, `struct Pair<K, V> { K key; V value; };
int main() { Pair<int> p; return 0; }`, mono.Options{})
	if r.bag.Count(diag.MonoArityMismatch) != 1 || !r.bag.HasErrors() {
		t.Fatalf("expected one MonoArityMismatch error, got %v", r.bag.Items())
	}
	if r.insts.Structs.Len() != 0 {
		t.Fatalf("mismatched use must not be registered")
	}
	mustNotContain(t, r.out, "struct Pair_int {")
}

func TestDepthLimit(t *testing.T) {
	r := generate(t, `struct Box<T> { T v; Box<Box<T>>* inner; };
int main() { Box<int> b; return 0; }`, mono.Options{MaxDepth: 3})
	if r.bag.Count(diag.MonoDepthExceeded) != 1 {
		t.Fatalf("expected one MonoDepthExceeded, got %v", r.bag.Items())
	}
	if r.insts.Structs.Len() != 4 {
		t.Fatalf("expected depths 0..3 to be registered, got %d", r.insts.Structs.Len())
	}
}

func TestNonGenericWithTypeArgsWarns(t *testing.T) {
	r := generate(t, `struct Point { int x; };
int main() { Point<int> p; return frob<int>(1); }`, mono.Options{})
	if r.bag.Count(diag.MonoNotGeneric) != 1 || r.bag.HasErrors() {
		t.Fatalf("expected one MonoNotGeneric warning, got %v", r.bag.Items())
	}
	mustContain(t, r.out, "Point p;", "return frob(1);")
}

func TestDanglingInstantiationSkipped(t *testing.T) {
	prog, _ := parseProgram(t, "int main() { return 0; }")
	bag := diag.NewBag(8)
	rep := diag.BagReporter{Bag: bag}
	insts := mono.NewInstantiations(rep)
	insts.Structs.Register("Ghost", []types.Type{types.NewNamed("int")}, mono.UseSite{})
	var buf bytes.Buffer
	if err := mono.Emit(context.Background(), &buf, prog, insts, mono.Options{Reporter: rep}); err != nil {
		t.Fatal(err)
	}
	if bag.Count(diag.MonoDanglingInstantiation) != 1 || bag.HasErrors() {
		t.Fatalf("expected one dangling warning, got %v", bag.Items())
	}
	mustNotContain(t, buf.String(), "Ghost")
}

func TestHeaderComment(t *testing.T) {
	r := generate(t, "int x;", mono.Options{HeaderComment: "/* custom */"})
	if !strings.HasPrefix(r.out, "/* custom */\n\nint x;") {
		t.Fatalf("unexpected output:\n%s", r.out)
	}
	r = generate(t, "int x;", mono.Options{NoHeaderComment: true})
	if r.out != "int x;\n" {
		t.Fatalf("unexpected output: %q", r.out)
	}
}

func TestGenerateHeader(t *testing.T) {
	prog, _ := parseProgram(t, `#include <stdlib.h>
struct Box<T> { T data; };
T identity<T>(T x) { return x; }
typedef unsigned int uint;
int counter = 3;
static int hidden;
static void helper(void) {}
int main() { Box<int> b; return identity<int>(counter); }
`)
	var buf bytes.Buffer
	guard := mono.GuardName("out/vec-int.c")
	if _, err := mono.GenerateHeader(context.Background(), &buf, prog, guard, mono.Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, mono.DefaultHeaderComment+"\n\n#ifndef VEC_INT_H\n#define VEC_INT_H\n\n#include <stdlib.h>\n") {
		t.Fatalf("bad header prologue:\n%s", out)
	}
	if !strings.HasSuffix(out, "#endif /* VEC_INT_H */\n") {
		t.Fatalf("bad header epilogue:\n%s", out)
	}
	mustContain(t, out,
		"struct Box_int {\n    int data;\n};",
		"typedef unsigned int uint;",
		"int identity_int(int x);",
		"int main(void);",
		"extern int counter;",
	)
	mustNotContain(t, out, "return", "hidden", "helper", "= 3")
}

func TestGuardName(t *testing.T) {
	tests := map[string]string{
		"out/vec-int.c":  "VEC_INT",
		"main.c":         "MAIN",
		"lib.v2/util.sc": "UTIL",
		"my lib.c":       "MY_LIB",
		"":               "SAFEC_OUTPUT",
	}
	for in, want := range tests {
		if got := mono.GuardName(in); got != want {
			t.Errorf("GuardName(%q) = %q, want %q", in, got, want)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteErrorIsWrapped(t *testing.T) {
	prog, _ := parseProgram(t, "int x;")
	_, err := mono.Generate(context.Background(), failingWriter{}, prog, mono.Options{})
	if err == nil || !strings.Contains(err.Error(), "mono: write output") {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	prog, _ := parseProgram(t, "struct Box<T> { T v; };\nint main() { Box<int> b; return 0; }")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if _, err := mono.Generate(ctx, &buf, prog, mono.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written after cancellation")
	}
}
