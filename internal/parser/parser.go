package parser

import (
	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/lexer"
	"safec/internal/source"
	"safec/internal/token"
)

// DefaultMaxNesting bounds recursion in types, statements and expressions.
const DefaultMaxNesting = 256

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	// MaxNesting limits how deep types, statements and expressions may nest;
	// zero means DefaultMaxNesting.
	MaxNesting int
	Reporter   diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Parser: состояние парсера на один файл.
// Tokens are buffered so the parser can backtrack when C syntax is
// ambiguous (declaration vs expression, cast vs parenthesis, generic call
// vs comparison).
type Parser struct {
	toks     []token.Token
	pos      int
	halfShr  bool // the first '>' of the current '>>' was consumed
	file     source.FileID
	opts     Options
	lastSpan source.Span

	typeNames  map[string]struct{}
	typeParams [][]string
	quiet      int
	depth      int
	tooDeep    bool
}

// ParseFile lexes and parses one file. Lexer diagnostics go to the same reporter.
func ParseFile(file *source.File, opts Options) *ast.Program {
	toks := lexer.Tokenize(file, lexer.Options{Reporter: opts.Reporter})
	return ParseTokens(file.ID, toks, opts)
}

// ParseTokens parses a token slice that ends with EOF.
func ParseTokens(file source.FileID, toks []token.Token, opts Options) *ast.Program {
	if opts.MaxNesting <= 0 {
		opts.MaxNesting = DefaultMaxNesting
	}
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		toks = append(toks, token.Token{Kind: token.EOF, Span: source.Span{File: file}})
	}
	p := &Parser{
		toks:      toks,
		file:      file,
		opts:      opts,
		lastSpan:  source.Span{File: file},
		typeNames: make(map[string]struct{}, 32),
	}
	p.prescanTypeNames()

	prog := &ast.Program{File: file}
	for !p.at(token.EOF) && !p.tooDeep {
		start := p.pos
		decls, ok := p.parseTopLevel()
		if ok {
			prog.Decls = append(prog.Decls, decls...)
			continue
		}
		p.resyncTop()
		if p.pos == start && !p.at(token.EOF) {
			p.advance()
		}
	}
	return prog
}

// resyncTop skips to the end of the broken declaration: a ';' at brace
// depth 0, or the '}' closing a body (plus an optional ';').
func (p *Parser) resyncTop() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth <= 1 {
				p.advance()
				p.eat(token.Semicolon)
				return
			}
			depth--
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		case token.Directive:
			if depth == 0 {
				return
			}
		}
		p.advance()
	}
}

// resyncStmt skips to the next ';' (consumed) or to a '}' (not consumed)
// at the current block level.
func (p *Parser) resyncStmt() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}
