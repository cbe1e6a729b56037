package driver

import (
	"context"
	"strconv"

	"fortio.org/safecast"

	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/lexer"
	"safec/internal/parser"
	"safec/internal/source"
	"safec/internal/token"
	"safec/internal/trace"
)

// Frontend is what the tokenize and parse commands print: one loaded
// file, its diagnostics and either its tokens or its program.
type Frontend struct {
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag
	Tokens  []token.Token
	Program *ast.Program
}

func loadFrontend(path string, maxDiagnostics int) (*Frontend, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return &Frontend{FileSet: fs, File: fs.Get(id), Bag: diag.NewBag(maxDiagnostics)}, nil
}

// Tokenize loads path and lexes it. Only I/O failures are returned as
// errors; lexical problems end up in Bag.
func Tokenize(ctx context.Context, path string, maxDiagnostics int) (*Frontend, error) {
	fe, err := loadFrontend(path, maxDiagnostics)
	if err != nil {
		return nil, err
	}
	span, _ := trace.StartSpan(ctx, trace.ScopePass, "lex")
	fe.Tokens = lexer.Tokenize(fe.File, lexer.Options{Reporter: diag.BagReporter{Bag: fe.Bag}})
	span.WithExtra("tokens", strconv.Itoa(len(fe.Tokens)))
	span.End("")
	fe.Bag.Sort()
	return fe, nil
}

// Parse loads path and parses it; syntax errors end up in Bag.
func Parse(ctx context.Context, path string, maxDiagnostics int) (*Frontend, error) {
	fe, err := loadFrontend(path, maxDiagnostics)
	if err != nil {
		return nil, err
	}
	if fe.Program, err = parseFile(ctx, fe.File, fe.Bag, maxDiagnostics); err != nil {
		return nil, err
	}
	fe.Bag.Sort()
	return fe, nil
}

func parseFile(ctx context.Context, file *source.File, bag *diag.Bag, maxDiagnostics int) (*ast.Program, error) {
	maxErrors, err := safecast.Conv[uint](max(maxDiagnostics, 0))
	if err != nil {
		return nil, err
	}
	span, _ := trace.StartSpan(ctx, trace.ScopePass, "parse")
	defer span.End("")
	prog := parser.ParseFile(file, parser.Options{
		Reporter:  diag.BagReporter{Bag: bag},
		MaxErrors: maxErrors,
	})
	span.WithExtra("decls", strconv.Itoa(len(prog.Decls)))
	return prog, nil
}
