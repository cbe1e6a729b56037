package lexer

import (
	"safec/internal/token"
)

// scanIdentOrKeyword reads [A-Za-z_][A-Za-z0-9_]* and resolves keywords.
// Token.Text is the exact source slice.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	kind := token.Ident
	if k, ok := token.LookupKeyword(text); ok {
		kind = k
	}
	return token.Token{Kind: kind, Span: sp, Text: text}
}
