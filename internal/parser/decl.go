package parser

import (
	"strings"

	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/source"
	"safec/internal/token"
	"safec/internal/types"
)

// parseTopLevel выбирает по первому токену нужный распознаватель top-level конструкции.
func (p *Parser) parseTopLevel() ([]ast.Decl, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.Directive:
		p.advance()
		return []ast.Decl{directiveDecl(tok)}, true
	case token.Semicolon:
		p.advance()
		return nil, true
	case token.KwTypedef:
		d, ok := p.parseTypedef()
		return single(d, ok)
	case token.KwStruct, token.KwUnion:
		if p.atStructDecl() {
			d, ok := p.parseStructDecl()
			return single(d, ok)
		}
	case token.KwEnum:
		if n1 := p.peekN(1).Kind; n1 == token.LBrace || (n1 == token.Ident && p.peekN(2).Kind == token.LBrace) {
			d, ok := p.parseEnum()
			return single(d, ok)
		}
	}

	if !p.atTypeStart() && !tok.Kind.IsStorage() && tok.Kind != token.Ident {
		p.err(diag.SynUnexpectedTopLevel, "unexpected "+tok.Describe()+" at top level")
		return nil, false
	}
	return p.parseFuncOrVar()
}

func single[T ast.Decl](d T, ok bool) ([]ast.Decl, bool) {
	if !ok {
		return nil, false
	}
	return []ast.Decl{d}, true
}

func directiveDecl(tok token.Token) ast.Decl {
	if path, system, ok := ast.ParseInclude(tok.Text); ok {
		return &ast.IncludeDecl{Path: path, System: system, Text: tok.Text, Loc: tok.Span}
	}
	return &ast.DirectiveDecl{Text: tok.Text, Loc: tok.Span}
}

// atStructDecl distinguishes `struct Name [<params>] {` and `struct Name;`
// from a declaration whose type starts with a struct tag.
func (p *Parser) atStructDecl() bool {
	return p.lookahead(func() bool {
		p.advance()
		if p.at(token.LBrace) {
			return true
		}
		if !p.eat(token.Ident) {
			return false
		}
		if p.at(token.Lt) {
			if _, ok := p.parseTypeParams(); !ok {
				return false
			}
		}
		return p.at(token.LBrace) || p.at(token.Semicolon)
	})
}

func (p *Parser) parseStructDecl() (*ast.StructDecl, bool) {
	kw := p.advance()
	d := &ast.StructDecl{Union: kw.Kind == token.KwUnion}
	if p.at(token.Ident) {
		name := p.advance()
		d.Name, d.NameLoc = name.Text, name.Span
	} else if p.at(token.LBrace) {
		p.err(diag.SynExpectIdentifier, "anonymous "+kw.Text+" needs a typedef")
		return nil, false
	}
	if p.at(token.Lt) {
		params, ok := p.parseTypeParams()
		if !ok {
			return nil, false
		}
		d.TypeParams = params
	}
	if p.eat(token.Semicolon) {
		d.Loc = p.spanFrom(kw.Span)
		return d, true
	}

	p.pushTypeParams(ast.ParamNames(d.TypeParams))
	fields, ok := p.parseFieldBlock()
	p.popTypeParams()
	if !ok {
		return nil, false
	}
	d.Fields = fields
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after "+kw.Text+" declaration"); !ok {
		return nil, false
	}
	d.Loc = p.spanFrom(kw.Span)
	return d, true
}

// parseFieldBlock parses '{' { type declarator {',' declarator} ';' } '}'.
func (p *Parser) parseFieldBlock() ([]*ast.Field, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return nil, false
	}
	fields := []*ast.Field{}
	for !p.at(token.RBrace) {
		if p.at(token.EOF) {
			p.report(diag.SynUnclosedBrace, diag.SevError, open.Span, "unclosed '{'")
			return nil, false
		}
		start := p.peek().Span
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		for {
			name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected field name")
			if !ok {
				return nil, false
			}
			dims, ok := p.parseDims()
			if !ok {
				return nil, false
			}
			fields = append(fields, &ast.Field{Type: t, Name: name.Text, Dims: dims, Loc: p.spanFrom(start)})
			if !p.eat(token.Comma) {
				break
			}
			t = types.Ptr(types.Base(t), p.countStars())
		}
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after field"); !ok {
			return nil, false
		}
	}
	p.advance()
	return fields, true
}

func (p *Parser) countStars() int {
	n := 0
	for p.eat(token.Star) {
		n++
		for p.peek().Kind.IsQualifier() {
			p.advance()
		}
	}
	return n
}

// parseDims parses zero or more '[' expr? ']'.
func (p *Parser) parseDims() ([]ast.Expr, bool) {
	var dims []ast.Expr
	for p.at(token.LBracket) {
		open := p.advance()
		if p.eat(token.RBracket) {
			dims = append(dims, nil)
			continue
		}
		e, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if !p.eat(token.RBracket) {
			p.report(diag.SynUnclosedBracket, diag.SevError, open.Span, "expected ']' to close array dimension")
			return nil, false
		}
		dims = append(dims, e)
	}
	return dims, true
}

func (p *Parser) parseStorage() ast.StorageClass {
	var s ast.StorageClass
	for {
		switch p.peek().Kind {
		case token.KwStatic:
			s |= ast.StorageStatic
		case token.KwExtern:
			s |= ast.StorageExtern
		case token.KwInline:
			s |= ast.StorageInline
		default:
			return s
		}
		p.advance()
	}
}

// parseFuncOrVar parses a function definition, a prototype or a global variable.
func (p *Parser) parseFuncOrVar() ([]ast.Decl, bool) {
	start := p.peek().Span
	storage := p.parseStorage()
	t, ok := p.parseType()
	if !ok {
		return nil, false
	}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected declaration name")
	if !ok {
		return nil, false
	}

	var params []ast.TypeParam
	if p.at(token.Lt) {
		params, ok = p.parseTypeParams()
		if !ok {
			return nil, false
		}
		if !p.at(token.LParen) {
			p.err(diag.SynUnexpectedToken, "type parameters are only allowed on functions and structs")
			return nil, false
		}
	}
	if p.at(token.LParen) {
		fn, ok := p.parseFunc(start, storage, t, name, params)
		return single(fn, ok)
	}

	v, ok := p.parseVarRest(start, storage, t, name)
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after declaration"); !ok {
		return nil, false
	}
	v.Loc = p.spanFrom(start)
	return []ast.Decl{v}, true
}

func (p *Parser) parseFunc(start source.Span, storage ast.StorageClass, result types.Type, name token.Token, tparams []ast.TypeParam) (*ast.FuncDecl, bool) {
	fn := &ast.FuncDecl{
		Storage:    storage,
		Result:     result,
		Name:       name.Text,
		NameLoc:    name.Span,
		TypeParams: tparams,
	}
	p.pushTypeParams(ast.ParamNames(tparams))
	defer p.popTypeParams()

	if !p.parseParams(fn) {
		return nil, false
	}
	if p.eat(token.Semicolon) {
		fn.Loc = p.spanFrom(start)
		return fn, true
	}
	if !p.at(token.LBrace) {
		p.err(diag.SynExpectSemicolon, "expected ';' or function body, got "+p.peek().Describe())
		return nil, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	fn.Body = body
	fn.Loc = p.spanFrom(start)
	return fn, true
}

func (p *Parser) parseParams(fn *ast.FuncDecl) bool {
	open := p.advance()
	if p.eat(token.RParen) {
		return true
	}
	if p.at(token.KwVoid) && p.peekN(1).Kind == token.RParen {
		p.advance()
		p.advance()
		return true
	}
	for {
		if p.eat(token.Ellipsis) {
			fn.Variadic = true
			break
		}
		start := p.peek().Span
		t, ok := p.parseType()
		if !ok {
			return false
		}
		param := &ast.Param{Type: t}
		if p.at(token.Ident) {
			param.Name = p.advance().Text
		}
		if param.Dims, ok = p.parseDims(); !ok {
			return false
		}
		param.Loc = p.spanFrom(start)
		fn.Params = append(fn.Params, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	if !p.eat(token.RParen) {
		p.report(diag.SynUnclosedParen, diag.SevError, open.Span, "expected ')' to close parameter list, got "+p.peek().Describe())
		return false
	}
	return true
}

// parseVarRest parses the declarators after the first name; the caller
// consumes the terminating ';'.
func (p *Parser) parseVarRest(start source.Span, storage ast.StorageClass, t types.Type, name token.Token) (*ast.VarDecl, bool) {
	v := &ast.VarDecl{Storage: storage}
	for {
		d := &ast.Declarator{Type: t, Name: name.Text}
		var ok bool
		if d.Dims, ok = p.parseDims(); !ok {
			return nil, false
		}
		if p.eat(token.Assign) {
			if d.Init, ok = p.parseInitializer(); !ok {
				return nil, false
			}
		}
		d.Loc = name.Span.Cover(p.lastSpan)
		v.Vars = append(v.Vars, d)
		if !p.eat(token.Comma) {
			break
		}
		t = types.Ptr(types.Base(t), p.countStars())
		if name, ok = p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name"); !ok {
			return nil, false
		}
	}
	v.Loc = p.spanFrom(start)
	return v, true
}

func (p *Parser) parseInitializer() (ast.Expr, bool) {
	if p.at(token.LBrace) {
		return p.parseInitList()
	}
	return p.parseAssign()
}

func (p *Parser) parseInitList() (ast.Expr, bool) {
	if !p.enter() {
		return nil, false
	}
	defer p.leave()
	open := p.advance()
	list := &ast.InitList{}
	for !p.at(token.RBrace) {
		e, ok := p.parseInitializer()
		if !ok {
			return nil, false
		}
		list.Elems = append(list.Elems, e)
		if !p.eat(token.Comma) {
			break
		}
	}
	if !p.eat(token.RBrace) {
		p.report(diag.SynUnclosedBrace, diag.SevError, open.Span, "expected '}' to close initializer")
		return nil, false
	}
	list.Loc = p.spanFrom(open.Span)
	return list, true
}

func (p *Parser) parseTypedef() (*ast.TypedefDecl, bool) {
	kw := p.advance()
	td := &ast.TypedefDecl{}

	if (p.at(token.KwStruct) || p.at(token.KwUnion)) &&
		(p.peekN(1).Kind == token.LBrace || (p.peekN(1).Kind == token.Ident && p.peekN(2).Kind == token.LBrace)) {
		skw := p.advance()
		sd := &ast.StructDecl{Union: skw.Kind == token.KwUnion}
		if p.at(token.Ident) {
			tag := p.advance()
			sd.Name, sd.NameLoc = tag.Text, tag.Span
		}
		fields, ok := p.parseFieldBlock()
		if !ok {
			return nil, false
		}
		sd.Fields = fields
		sd.Loc = p.spanFrom(skw.Span)
		td.Struct = sd
		td.Type = &types.Named{Name: strings.TrimSpace(skw.Text + " " + sd.Name), Loc: sd.Loc}
	} else {
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		td.Type = t
	}

	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected typedef name")
	if !ok {
		return nil, false
	}
	td.Name = name.Text
	if td.Dims, ok = p.parseDims(); !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after typedef"); !ok {
		return nil, false
	}
	p.typeNames[td.Name] = struct{}{}
	td.Loc = p.spanFrom(kw.Span)
	return td, true
}

func (p *Parser) parseEnum() (*ast.EnumDecl, bool) {
	kw := p.advance()
	d := &ast.EnumDecl{}
	if p.at(token.Ident) {
		d.Name = p.advance().Text
	}
	open := p.advance()
	for !p.at(token.RBrace) {
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected enumerator name")
		if !ok {
			return nil, false
		}
		item := &ast.EnumItem{Name: name.Text}
		if p.eat(token.Assign) {
			if item.Value, ok = p.parseAssign(); !ok {
				return nil, false
			}
		}
		item.Loc = p.spanFrom(name.Span)
		d.Items = append(d.Items, item)
		if !p.eat(token.Comma) {
			break
		}
	}
	if !p.eat(token.RBrace) {
		p.report(diag.SynUnclosedBrace, diag.SevError, open.Span, "expected '}' to close enum")
		return nil, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after enum"); !ok {
		return nil, false
	}
	d.Loc = p.spanFrom(kw.Span)
	return d, true
}
