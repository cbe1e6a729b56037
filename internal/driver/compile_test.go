package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"safec/internal/diag"
	"safec/internal/observ"
	"safec/internal/project"
)

const vecSource = `#include <stdio.h>
struct Box<T> { T value; };
T unbox<T>(Box<T> b) { return b.value; }
int main(void) {
    Box<int> b;
    b.value = 7;
    printf("%d\n", unbox<int>(b));
    return 0;
}
`

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestCompileGeneratesC(t *testing.T) {
	path := writeSource(t, "vec.sc", vecSource)

	res, err := Compile(context.Background(), path, CompileOptions{MaxDiagnostics: 10})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Failed() {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
	out := string(res.Output)
	for _, want := range []string{
		"/* Generated by SafeC compiler */",
		"#include <stdio.h>",
		"struct Box_int {",
		"int unbox_int(Box_int b)",
		"unbox_int(b)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<T>") || strings.Contains(out, "<int>") {
		t.Errorf("generic syntax leaked into output:\n%s", out)
	}
	if res.Structs != 1 || res.Funcs != 1 {
		t.Errorf("Structs=%d Funcs=%d, want 1/1", res.Structs, res.Funcs)
	}
	if res.Header != nil {
		t.Errorf("header should not be generated without Header option")
	}
	if res.Program == nil || res.Insts == nil || res.Cached {
		t.Errorf("fresh compile must carry program and instantiations")
	}
}

func TestCompileHeader(t *testing.T) {
	path := writeSource(t, "vec.sc", vecSource)

	res, err := Compile(context.Background(), path, CompileOptions{Header: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	hdr := string(res.Header)
	for _, want := range []string{"#ifndef VEC_H", "#define VEC_H", "int unbox_int(Box_int b);", "#endif /* VEC_H */"} {
		if !strings.Contains(hdr, want) {
			t.Errorf("expected %q in header:\n%s", want, hdr)
		}
	}
	if strings.Contains(hdr, "return") {
		t.Errorf("header must not contain bodies:\n%s", hdr)
	}
}

func TestCompileStopsOnSyntaxErrors(t *testing.T) {
	path := writeSource(t, "bad.sc", "int main(void) { return 1 }\n")

	res, err := Compile(context.Background(), path, CompileOptions{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !res.Failed() {
		t.Fatal("expected syntax errors")
	}
	if res.Output != nil {
		t.Fatalf("no output expected after syntax errors, got %q", res.Output)
	}
	if res.Program == nil {
		t.Fatal("partial program should still be returned")
	}
}

func TestCompileMissingFile(t *testing.T) {
	_, err := Compile(context.Background(), filepath.Join(t.TempDir(), "missing.sc"), CompileOptions{})
	if err == nil {
		t.Fatal("expected load error")
	}
}

func TestCompileCanceled(t *testing.T) {
	path := writeSource(t, "vec.sc", vecSource)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Compile(ctx, path, CompileOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCompileUsesCache(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := "struct Point { int x; };\nint main() { Point<int> p; return 0; }\n"
	path := writeSource(t, "warn.sc", src)
	opts := CompileOptions{Cache: cache}

	first, err := Compile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("first Compile: %v", err)
	}
	if first.Cached || first.Bag.Count(diag.MonoNotGeneric) != 1 {
		t.Fatalf("first compile: cached=%v diags=%v", first.Cached, first.Bag.Items())
	}

	second, err := Compile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("second Compile: %v", err)
	}
	if !second.Cached {
		t.Fatal("second compile should hit the cache")
	}
	if !bytes.Equal(first.Output, second.Output) {
		t.Fatalf("cached output differs:\n%s\n---\n%s", first.Output, second.Output)
	}
	if second.Bag.Count(diag.MonoNotGeneric) != 1 {
		t.Fatalf("warnings must survive a cache hit, got %v", second.Bag.Items())
	}

	// другая опция, другой ключ
	third, err := Compile(context.Background(), path, CompileOptions{Cache: cache, NoHeaderComment: true})
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached {
		t.Fatal("changed options must miss the cache")
	}
}

func TestCompileDoesNotCacheErrors(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := writeSource(t, "arity.sc", "struct Box<T> { T v; };\nstruct Box<int, char> b;\n")
	for i := range 2 {
		res, err := Compile(context.Background(), path, CompileOptions{Cache: cache})
		if err != nil {
			t.Fatal(err)
		}
		if res.Cached || res.Bag.Count(diag.MonoArityMismatch) != 1 {
			t.Fatalf("run %d: cached=%v diags=%v", i, res.Cached, res.Bag.Items())
		}
	}
}

func TestCompileTimings(t *testing.T) {
	path := writeSource(t, "vec.sc", vecSource)
	res, err := Compile(context.Background(), path, CompileOptions{Timings: true})
	if err != nil {
		t.Fatal(err)
	}
	var found *diag.Diagnostic
	for i, d := range res.Bag.Items() {
		if d.Code == diag.ObsTimings {
			found = &res.Bag.Items()[i]
		}
	}
	if found == nil || len(found.Notes) != 1 {
		t.Fatalf("expected a timings diagnostic, got %v", res.Bag.Items())
	}
	var payload struct {
		Kind   string               `json:"kind"`
		Phases []observ.PhaseReport `json:"phases"`
	}
	if err := json.Unmarshal([]byte(found.Notes[0].Msg), &payload); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if payload.Kind != "compile" || len(payload.Phases) != 3 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if res.Failed() {
		t.Fatal("timings must not count as errors")
	}
}

func TestTokenizeAndParse(t *testing.T) {
	path := writeSource(t, "vec.sc", vecSource)

	tr, err := Tokenize(context.Background(), path, 10)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(tr.Tokens) == 0 || tr.Bag.HasErrors() {
		t.Fatalf("unexpected tokenize result: %d tokens, %v", len(tr.Tokens), tr.Bag.Items())
	}

	pr, err := Parse(context.Background(), path, 10)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(pr.Program.Decls) != 4 || pr.Bag.HasErrors() {
		t.Fatalf("unexpected parse result: %d decls, %v", len(pr.Program.Decls), pr.Bag.Items())
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := project.DigestOf("k")

	var miss DiskPayload
	if ok, err := cache.Get(key, &miss); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	in := &DiskPayload{Path: "a.sc", Output: []byte("int x;\n"), Structs: 2}
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var out DiskPayload
	if ok, err := cache.Get(key, &out); !ok || err != nil {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out.Path != "a.sc" || string(out.Output) != "int x;\n" || out.Structs != 2 || out.Schema != diskCacheSchemaVersion {
		t.Fatalf("unexpected payload: %+v", out)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if ok, _ := cache.Get(key, &out); ok {
		t.Fatal("DropAll must invalidate entries")
	}
}

func TestNilDiskCache(t *testing.T) {
	var cache *DiskCache
	if err := cache.Put(project.DigestOf("k"), &DiskPayload{}); err != nil {
		t.Fatal(err)
	}
	if ok, err := cache.Get(project.DigestOf("k"), &DiskPayload{}); ok || err != nil {
		t.Fatalf("nil cache: ok=%v err=%v", ok, err)
	}
}

func TestCacheKeyDependsOnOptions(t *testing.T) {
	content := project.DigestOf("int x;")
	base := cacheKey(content, CompileOptions{})
	for name, opts := range map[string]CompileOptions{
		"max depth":  {MaxDepth: 3},
		"header":     {Header: true},
		"guard":      {HeaderGuard: "X"},
		"comment":    {HeaderComment: "/* x */"},
		"no comment": {NoHeaderComment: true},
	} {
		if cacheKey(content, opts) == base {
			t.Errorf("%s: key must change", name)
		}
	}
	if cacheKey(content, CompileOptions{MaxDiagnostics: 5, Timings: true}) != base {
		t.Error("options that do not affect output must not change the key")
	}
}
