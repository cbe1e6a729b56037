package parser

import (
	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/token"
	"safec/internal/types"
)

func (p *Parser) parseBlock() (*ast.BlockStmt, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return nil, false
	}
	block := &ast.BlockStmt{Stmts: []ast.Stmt{}}
	for !p.at(token.RBrace) {
		if p.at(token.EOF) || p.tooDeep {
			if !p.tooDeep {
				p.report(diag.SynUnclosedBrace, diag.SevError, open.Span, "unclosed '{'")
			}
			return nil, false
		}
		s, ok := p.parseStmt()
		if !ok {
			if p.tooDeep {
				return nil, false
			}
			p.resyncStmt()
			continue
		}
		block.Stmts = append(block.Stmts, s)
	}
	p.advance()
	block.Loc = p.spanFrom(open.Span)
	return block, true
}

func (p *Parser) parseStmt() (ast.Stmt, bool) {
	if !p.enter() {
		return nil, false
	}
	defer p.leave()

	tok := p.peek()
	switch tok.Kind {
	case token.LBrace:
		b, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		return b, true
	case token.Semicolon:
		p.advance()
		return &ast.EmptyStmt{Loc: tok.Span}, true
	case token.KwReturn:
		p.advance()
		ret := &ast.ReturnStmt{}
		if !p.at(token.Semicolon) {
			v, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			ret.Value = v
		}
		if !p.expectSemi("return") {
			return nil, false
		}
		ret.Loc = p.spanFrom(tok.Span)
		return ret, true
	case token.KwBreak, token.KwContinue:
		p.advance()
		if !p.expectSemi(tok.Text) {
			return nil, false
		}
		if tok.Kind == token.KwBreak {
			return &ast.BreakStmt{Loc: p.spanFrom(tok.Span)}, true
		}
		return &ast.ContinueStmt{Loc: p.spanFrom(tok.Span)}, true
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		p.advance()
		cond, ok := p.parseParenCond("while")
		if !ok {
			return nil, false
		}
		body, ok := p.parseStmt()
		if !ok {
			return nil, false
		}
		return &ast.WhileStmt{Cond: cond, Body: body, Loc: p.spanFrom(tok.Span)}, true
	case token.KwDo:
		p.advance()
		body, ok := p.parseStmt()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.KwWhile, diag.SynUnexpectedToken, "expected 'while' after do body"); !ok {
			return nil, false
		}
		cond, ok := p.parseParenCond("do-while")
		if !ok || !p.expectSemi("do-while") {
			return nil, false
		}
		return &ast.DoWhileStmt{Body: body, Cond: cond, Loc: p.spanFrom(tok.Span)}, true
	case token.KwFor:
		return p.parseFor()
	}

	if p.atLocalDecl() {
		v, ok := p.parseLocalDecl()
		if !ok {
			return nil, false
		}
		return v, true
	}
	x, ok := p.parseExpr()
	if !ok || !p.expectSemi("expression") {
		return nil, false
	}
	return &ast.ExprStmt{X: x, Loc: p.spanFrom(tok.Span)}, true
}

func (p *Parser) expectSemi(after string) bool {
	_, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after "+after)
	return ok
}

func (p *Parser) parseParenCond(what string) (ast.Expr, bool) {
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after "+what)
	if !ok {
		return nil, false
	}
	cond, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if !p.eat(token.RParen) {
		p.report(diag.SynUnclosedParen, diag.SevError, open.Span, "expected ')' to close "+what+" condition")
		return nil, false
	}
	return cond, true
}

func (p *Parser) parseIf() (ast.Stmt, bool) {
	kw := p.advance()
	cond, ok := p.parseParenCond("if")
	if !ok {
		return nil, false
	}
	then, ok := p.parseStmt()
	if !ok {
		return nil, false
	}
	s := &ast.IfStmt{Cond: cond, Then: then}
	if p.eat(token.KwElse) {
		els, ok := p.parseStmt()
		if !ok {
			return nil, false
		}
		s.Else = els
	}
	s.Loc = p.spanFrom(kw.Span)
	return s, true
}

func (p *Parser) parseFor() (ast.Stmt, bool) {
	kw := p.advance()
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after for")
	if !ok {
		return nil, false
	}
	s := &ast.ForStmt{}

	switch {
	case p.eat(token.Semicolon):
	case p.atLocalDecl():
		v, ok := p.parseLocalDecl()
		if !ok {
			return nil, false
		}
		s.Init = v
	default:
		start := p.peek().Span
		x, ok := p.parseExpr()
		if !ok || !p.expectSemi("for initializer") {
			return nil, false
		}
		s.Init = &ast.ExprStmt{X: x, Loc: p.spanFrom(start)}
	}

	if !p.at(token.Semicolon) {
		if s.Cond, ok = p.parseExpr(); !ok {
			return nil, false
		}
	}
	if !p.expectSemi("for condition") {
		return nil, false
	}
	if !p.at(token.RParen) {
		if s.Post, ok = p.parseExpr(); !ok {
			return nil, false
		}
	}
	if !p.eat(token.RParen) {
		p.report(diag.SynUnclosedParen, diag.SevError, open.Span, "expected ')' to close for header")
		return nil, false
	}
	if s.Body, ok = p.parseStmt(); !ok {
		return nil, false
	}
	s.Loc = p.spanFrom(kw.Span)
	return s, true
}

// atLocalDecl decides whether a statement is a declaration. Keywords
// settle it; for an identifier the parser tries a type followed by a name
// and accepts when the type is known, applied, or the `Name x;` shape.
func (p *Parser) atLocalDecl() bool {
	tok := p.peek()
	if tok.Kind.IsStorage() || (tok.Kind != token.Ident && p.atTypeStart()) {
		return true
	}
	if tok.Kind != token.Ident {
		return false
	}
	return p.lookahead(func() bool {
		t, ok := p.parseType()
		if !ok || !p.at(token.Ident) {
			return false
		}
		switch b := types.Base(t).(type) {
		case *types.Applied:
			return true
		case *types.Named:
			if p.isTypeName(b.Name) {
				return true
			}
		}
		if types.PointerDepth(t) > 0 {
			return false
		}
		switch p.peekN(1).Kind {
		case token.Semicolon, token.Assign, token.LBracket, token.Comma:
			return true
		}
		return false
	})
}

func (p *Parser) parseLocalDecl() (*ast.VarDecl, bool) {
	start := p.peek().Span
	storage := p.parseStorage()
	t, ok := p.parseType()
	if !ok {
		return nil, false
	}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name")
	if !ok {
		return nil, false
	}
	v, ok := p.parseVarRest(start, storage, t, name)
	if !ok || !p.expectSemi("declaration") {
		return nil, false
	}
	v.Loc = p.spanFrom(start)
	return v, true
}
