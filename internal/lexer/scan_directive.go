package lexer

import (
	"strings"

	"safec/internal/token"
)

// scanDirective consumes a preprocessor line starting at '#', including
// backslash-continued lines. The token text has trailing whitespace removed.
func (lx *Lexer) scanDirective() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\\' && lx.cursor.PeekAt(1) == '\n' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			continue
		}
		if b == '\n' {
			break
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	text := strings.TrimRight(lx.text(sp), " \t")
	sp.End = sp.Start + uint32(len(text)) //nolint:gosec // text is a prefix of the span
	return token.Token{Kind: token.Directive, Span: sp, Text: text}
}
