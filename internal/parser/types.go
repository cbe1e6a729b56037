package parser

import (
	"strings"

	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/token"
	"safec/internal/types"
)

// parseType parses a type expression:
//
//	qualifiers* base qualifiers* ('*' qualifiers*)*
//	base := keyword+ | (struct|union|enum) Ident ['<' args '>'] | Ident ['<' args '>']
//
// Multi-word keyword types become one Named with single spaces.
func (p *Parser) parseType() (types.Type, bool) {
	if !p.enter() {
		return nil, false
	}
	defer p.leave()

	start := p.peek().Span
	var quals []string
	for p.peek().Kind.IsQualifier() {
		quals = append(quals, p.advance().Text)
	}

	base, ok := p.parseBaseType()
	if !ok {
		return nil, false
	}
	for p.peek().Kind.IsQualifier() {
		quals = append(quals, p.advance().Text)
	}
	if len(quals) > 0 {
		base = qualify(base, quals)
	}

	t := base
	for p.at(token.Star) {
		p.advance()
		for p.peek().Kind.IsQualifier() {
			p.advance()
		}
		t = &types.Pointer{Elem: t, Loc: p.spanFrom(start)}
	}
	return t, true
}

func qualify(t types.Type, quals []string) types.Type {
	prefix := strings.Join(dedupWords(quals), " ") + " "
	switch x := t.(type) {
	case *types.Named:
		return &types.Named{Name: prefix + x.Name, Loc: x.Loc}
	case *types.Applied:
		// const Box<int> keeps the qualifier on the name; mangling sees it.
		return &types.Applied{Name: prefix + x.Name, Args: x.Args, Loc: x.Loc}
	}
	return t
}

func dedupWords(words []string) []string {
	out := words[:0:0]
	for _, w := range words {
		dup := false
		for _, o := range out {
			dup = dup || o == w
		}
		if !dup {
			out = append(out, w)
		}
	}
	return out
}

func (p *Parser) parseBaseType() (types.Type, bool) {
	tok := p.peek()
	switch {
	case tok.Kind.IsTypeKeyword():
		start := tok.Span
		var words []string
		for p.peek().Kind.IsTypeKeyword() {
			words = append(words, p.advance().Text)
		}
		return &types.Named{Name: strings.Join(words, " "), Loc: p.spanFrom(start)}, true

	case tok.Kind == token.KwStruct || tok.Kind == token.KwUnion || tok.Kind == token.KwEnum:
		kw := p.advance()
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected tag name after '"+kw.Text+"'")
		if !ok {
			return nil, false
		}
		if p.at(token.Lt) {
			// a generic instantiation names the specialized typedef, not the tag
			return p.parseApplied(name)
		}
		return &types.Named{Name: kw.Text + " " + name.Text, Loc: kw.Span.Cover(name.Span)}, true

	case tok.Kind == token.Ident:
		name := p.advance()
		if p.at(token.Lt) {
			return p.parseApplied(name)
		}
		return &types.Named{Name: name.Text, Loc: name.Span}, true
	}
	p.err(diag.SynExpectType, "expected type, got "+tok.Describe())
	return nil, false
}

// parseApplied parses '<' type {',' type} '>' after name.
func (p *Parser) parseApplied(name token.Token) (types.Type, bool) {
	args, ok := p.parseTypeArgs()
	if !ok {
		return nil, false
	}
	return &types.Applied{Name: name.Text, Args: args, Loc: p.spanFrom(name.Span)}, true
}

func (p *Parser) parseTypeArgs() ([]types.Type, bool) {
	if _, ok := p.expect(token.Lt, diag.SynUnexpectedToken, "expected '<'"); !ok {
		return nil, false
	}
	var args []types.Type
	for {
		arg, ok := p.parseType()
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		if !p.eat(token.Comma) {
			break
		}
	}
	if !p.eatCloseAngle() {
		p.report(diag.SynUnclosedAngleBracket, diag.SevError, p.getDiagnosticSpan(),
			"expected '>' to close type arguments, got "+p.peek().Describe())
		return nil, false
	}
	return args, true
}

// parseTypeParams parses '<' Ident {',' Ident} '>' on a generic declaration.
func (p *Parser) parseTypeParams() ([]ast.TypeParam, bool) {
	open := p.advance()
	var params []ast.TypeParam
	if p.at(token.Gt) {
		p.report(diag.SynEmptyTypeParams, diag.SevError, open.Span.Cover(p.peek().Span), "empty type parameter list")
		p.advance()
		return nil, false
	}
	for {
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected type parameter name")
		if !ok {
			return nil, false
		}
		for _, prev := range params {
			if prev.Name == name.Text {
				p.report(diag.SynDuplicateTypeParam, diag.SevError, name.Span, "duplicate type parameter "+name.Text)
			}
		}
		params = append(params, ast.TypeParam{Name: name.Text, Loc: name.Span})
		if !p.eat(token.Comma) {
			break
		}
	}
	if !p.eatCloseAngle() {
		p.report(diag.SynUnclosedAngleBracket, diag.SevError, p.getDiagnosticSpan(),
			"expected '>' to close type parameters, got "+p.peek().Describe())
		return nil, false
	}
	return params, true
}

// typeLike reports whether t can only be a type in expression context:
// its base is a keyword type or known name, or it is applied or a pointer.
func (p *Parser) typeLike(t types.Type) bool {
	if types.PointerDepth(t) > 0 {
		return true
	}
	switch b := types.Base(t).(type) {
	case *types.Applied:
		return true
	case *types.Named:
		if strings.ContainsRune(b.Name, ' ') {
			return true
		}
		if k, ok := token.LookupKeyword(b.Name); ok && k.IsTypeKeyword() {
			return true
		}
		return p.isTypeName(b.Name)
	}
	return false
}
