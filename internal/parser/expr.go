package parser

import (
	"strings"

	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/token"
	"safec/internal/types"
)

// parseExpr parses a full expression including the comma operator.
func (p *Parser) parseExpr() (ast.Expr, bool) {
	return p.parseBinaryExpr(precComma)
}

// parseAssign parses an assignment-expression (no top-level comma); used
// for call arguments and initializers.
func (p *Parser) parseAssign() (ast.Expr, bool) {
	return p.parseBinaryExpr(precAssignment)
}

// parseBinaryExpr реализует Pratt parsing; minPrec - минимальный приоритет уровня.
func (p *Parser) parseBinaryExpr(minPrec int) (ast.Expr, bool) {
	if !p.enter() {
		return nil, false
	}
	defer p.leave()

	left, ok := p.parseUnaryExpr()
	if !ok {
		return nil, false
	}
	for {
		op := p.peek()
		prec, rightAssoc := binaryPrec(op.Kind)
		if prec < minPrec || prec < 0 {
			return left, true
		}
		p.advance()

		if op.Kind == token.Question {
			then, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in conditional expression"); !ok {
				return nil, false
			}
			els, ok := p.parseBinaryExpr(precConditional)
			if !ok {
				return nil, false
			}
			left = &ast.ConditionalExpr{Cond: left, Then: then, Else: els, Loc: left.Span().Cover(els.Span())}
			continue
		}

		next := prec + 1
		if rightAssoc {
			next = prec
		}
		right, ok := p.parseBinaryExpr(next)
		if !ok {
			return nil, false
		}
		left = &ast.BinaryExpr{Op: op.Kind, X: left, Y: right, Loc: left.Span().Cover(right.Span())}
	}
}

func (p *Parser) parseUnaryExpr() (ast.Expr, bool) {
	if !p.enter() {
		return nil, false
	}
	defer p.leave()

	tok := p.peek()
	switch {
	case isPrefixOp(tok.Kind):
		p.advance()
		x, ok := p.parseUnaryExpr()
		if !ok {
			return nil, false
		}
		return &ast.UnaryExpr{Op: tok.Kind, X: x, Loc: tok.Span.Cover(x.Span())}, true

	case tok.Kind == token.KwSizeof:
		return p.parseSizeof()

	case tok.Kind == token.LParen:
		if cast, ok, isCast := p.tryCast(); isCast {
			return cast, ok
		}
	}
	return p.parsePostfixExpr()
}

func (p *Parser) parseSizeof() (ast.Expr, bool) {
	kw := p.advance()
	if p.at(token.LParen) {
		var t types.Type
		isType := p.try(func() bool {
			p.advance()
			if !p.atTypeStart() {
				return false
			}
			var ok bool
			t, ok = p.parseType()
			return ok && p.eat(token.RParen)
		})
		if isType {
			return &ast.SizeofExpr{Type: t, Loc: p.spanFrom(kw.Span)}, true
		}
	}
	x, ok := p.parseUnaryExpr()
	if !ok {
		return nil, false
	}
	return &ast.SizeofExpr{X: x, Loc: kw.Span.Cover(x.Span())}, true
}

// tryCast parses `(type) unary` when the parenthesis holds a type.
// isCast is false when the parenthesis is an ordinary expression.
func (p *Parser) tryCast() (ast.Expr, bool, bool) {
	open := p.peek()
	var t types.Type
	isCast := p.try(func() bool {
		p.advance()
		if !p.atTypeStart() {
			return false
		}
		var ok bool
		t, ok = p.parseType()
		return ok && p.eat(token.RParen)
	})
	if !isCast {
		return nil, false, false
	}
	var x ast.Expr
	var ok bool
	if p.at(token.LBrace) {
		x, ok = p.parseInitList()
	} else {
		x, ok = p.parseUnaryExpr()
	}
	if !ok {
		return nil, false, true
	}
	return &ast.CastExpr{Type: t, X: x, Loc: open.Span.Cover(x.Span())}, true, true
}

func (p *Parser) parsePostfixExpr() (ast.Expr, bool) {
	x, ok := p.parsePrimaryExpr()
	if !ok {
		return nil, false
	}
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.LParen:
			call, ok := p.parseCallArgs(x, nil)
			if !ok {
				return nil, false
			}
			x = call
		case token.LBracket:
			p.advance()
			idx, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			if !p.eat(token.RBracket) {
				p.report(diag.SynExpectRightBracket, diag.SevError, p.getDiagnosticSpan(), "expected ']' after index")
				return nil, false
			}
			x = &ast.IndexExpr{X: x, Index: idx, Loc: p.spanFrom(x.Span())}
		case token.Dot, token.Arrow:
			p.advance()
			name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected member name")
			if !ok {
				return nil, false
			}
			x = &ast.MemberExpr{X: x, Name: name.Text, Arrow: tok.Kind == token.Arrow, Loc: x.Span().Cover(name.Span)}
		case token.PlusPlus, token.MinusMinus:
			p.advance()
			x = &ast.UnaryExpr{Op: tok.Kind, X: x, Postfix: true, Loc: x.Span().Cover(tok.Span)}
		default:
			return x, true
		}
	}
}

func (p *Parser) parseCallArgs(fun ast.Expr, targs []types.Type) (*ast.CallExpr, bool) {
	open := p.advance()
	call := &ast.CallExpr{Fun: fun, TypeArgs: targs}
	if !p.at(token.RParen) {
		for {
			arg, ok := p.parseAssign()
			if !ok {
				return nil, false
			}
			call.Args = append(call.Args, arg)
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	if !p.eat(token.RParen) {
		p.report(diag.SynUnclosedParen, diag.SevError, open.Span, "expected ')' to close argument list, got "+p.peek().Describe())
		return nil, false
	}
	call.Loc = p.spanFrom(fun.Span())
	return call, true
}

func (p *Parser) parsePrimaryExpr() (ast.Expr, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		id := &ast.Ident{Name: tok.Text, Loc: tok.Span}
		if p.at(token.Lt) {
			if targs, ok := p.tryGenericCallArgs(); ok {
				return p.parseCallArgs(id, targs)
			}
		}
		return id, true

	case token.IntLit, token.FloatLit, token.CharLit:
		p.advance()
		return &ast.BasicLit{Kind: tok.Kind, Value: tok.Text, Loc: tok.Span}, true

	case token.StringLit:
		p.advance()
		parts := []string{tok.Text}
		for p.at(token.StringLit) {
			parts = append(parts, p.advance().Text)
		}
		return &ast.BasicLit{Kind: token.StringLit, Value: strings.Join(parts, " "), Loc: p.spanFrom(tok.Span)}, true

	case token.LParen:
		p.advance()
		x, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if !p.eat(token.RParen) {
			p.report(diag.SynUnclosedParen, diag.SevError, tok.Span, "expected ')' to close parenthesized expression")
			return nil, false
		}
		return &ast.ParenExpr{X: x, Loc: p.spanFrom(tok.Span)}, true
	}
	p.err(diag.SynExpectExpression, "expected expression, got "+tok.Describe())
	return nil, false
}

// tryGenericCallArgs recognizes `<types>(` after a callee name. Every
// argument must be unmistakably a type; otherwise the '<' is a comparison.
func (p *Parser) tryGenericCallArgs() ([]types.Type, bool) {
	var targs []types.Type
	ok := p.try(func() bool {
		args, ok := p.parseTypeArgs()
		if !ok || !p.at(token.LParen) {
			return false
		}
		for _, a := range args {
			if !p.typeLike(a) {
				return false
			}
		}
		targs = args
		return true
	})
	return targs, ok
}
