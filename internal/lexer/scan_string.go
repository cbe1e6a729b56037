package lexer

import (
	"safec/internal/diag"
	"safec/internal/token"
)

// scanString scans "..." keeping escapes verbatim; a raw newline or EOF
// before the closing quote is an error.
func (lx *Lexer) scanString() token.Token {
	return lx.scanQuoted('"', token.StringLit, diag.LexUnterminatedString, "string")
}

// scanChar scans '...'. Multi-character constants are accepted as C does.
func (lx *Lexer) scanChar() token.Token {
	tok := lx.scanQuoted('\'', token.CharLit, diag.LexUnterminatedChar, "character")
	if tok.Kind == token.CharLit && tok.Text == "''" {
		lx.errLex(diag.LexEmptyChar, tok.Span, "empty character literal")
		tok.Kind = token.Invalid
	}
	return tok
}

func (lx *Lexer) scanQuoted(quote byte, kind token.Kind, unterminated diag.Code, what string) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == quote {
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
		}
		if b == '\\' {
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				break
			}
			lx.cursor.Bump()
			continue
		}
		if b == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(unterminated, sp, "newline in "+what+" literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(unterminated, sp, "unterminated "+what+" literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
