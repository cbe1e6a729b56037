package parser

import (
	"safec/internal/token"
)

// wellKnownTypedefs are typedef names from the C standard headers that a
// SafeC file may use after an #include the parser does not read.
var wellKnownTypedefs = []string{
	"size_t", "ssize_t", "ptrdiff_t", "intptr_t", "uintptr_t",
	"int8_t", "int16_t", "int32_t", "int64_t",
	"uint8_t", "uint16_t", "uint32_t", "uint64_t",
	"bool", "FILE", "va_list", "wchar_t", "off_t", "time_t",
}

// prescanTypeNames records every struct/union/enum tag and typedef name in
// the file before parsing, so uses that precede the declaration still
// parse as types.
func (p *Parser) prescanTypeNames() {
	for _, name := range wellKnownTypedefs {
		p.typeNames[name] = struct{}{}
	}
	for i := 0; i < len(p.toks)-1; i++ {
		switch p.toks[i].Kind {
		case token.KwStruct, token.KwUnion, token.KwEnum:
			if next := p.toks[i+1]; next.Kind == token.Ident {
				p.typeNames[next.Text] = struct{}{}
			}
		case token.KwTypedef:
			if name, ok := typedefNameFrom(p.toks[i+1:]); ok {
				p.typeNames[name] = struct{}{}
			}
		}
	}
}

// typedefNameFrom returns the last identifier at nesting depth 0 before the
// terminating ';'.
func typedefNameFrom(toks []token.Token) (string, bool) {
	depth := 0
	name := ""
	for _, tok := range toks {
		switch tok.Kind {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace, token.RParen, token.RBracket:
			depth--
		case token.Ident:
			if depth == 0 {
				name = tok.Text
			}
		case token.Semicolon:
			if depth == 0 {
				return name, name != ""
			}
		case token.EOF:
			return "", false
		}
	}
	return "", false
}

func (p *Parser) pushTypeParams(names []string) {
	p.typeParams = append(p.typeParams, names)
}

func (p *Parser) popTypeParams() {
	p.typeParams = p.typeParams[:len(p.typeParams)-1]
}

// isTypeName reports whether name is a known tag, typedef or in-scope type parameter.
func (p *Parser) isTypeName(name string) bool {
	if _, ok := p.typeNames[name]; ok {
		return true
	}
	for i := len(p.typeParams) - 1; i >= 0; i-- {
		for _, tp := range p.typeParams[i] {
			if tp == name {
				return true
			}
		}
	}
	return false
}

// atTypeStart reports whether the current token can only begin a type.
func (p *Parser) atTypeStart() bool {
	tok := p.peek()
	switch {
	case tok.Kind.IsTypeKeyword(), tok.Kind.IsQualifier():
		return true
	case tok.Kind == token.KwStruct || tok.Kind == token.KwUnion || tok.Kind == token.KwEnum:
		return true
	case tok.Kind == token.Ident:
		return p.isTypeName(tok.Text)
	}
	return false
}
