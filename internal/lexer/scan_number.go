package lexer

import (
	"safec/internal/diag"
	"safec/internal/token"
)

// scanNumber accepts C literals: 0x1F, 017, 0b101, 42, 1.5, .5, 1e-3, 2.f,
// with any trailing u/U/l/L/f/F suffixes. The text is kept verbatim so the
// emitter can reproduce it exactly.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	switch {
	case lx.cursor.Peek() == '.':
		lx.cursor.Bump()
		kind = token.FloatLit
		lx.eatDigits(isDec)
	case lx.cursor.Peek() == '0' && (lx.cursor.PeekAt(1) == 'x' || lx.cursor.PeekAt(1) == 'X'):
		lx.cursor.Bump()
		lx.cursor.Bump()
		if !lx.eatDigits(isHex) {
			return lx.badNumber(start, "expected hex digit after '0x'")
		}
		lx.eatSuffix(false)
		return lx.emitNumber(start, kind)
	case lx.cursor.Peek() == '0' && (lx.cursor.PeekAt(1) == 'b' || lx.cursor.PeekAt(1) == 'B'):
		lx.cursor.Bump()
		lx.cursor.Bump()
		if !lx.eatDigits(func(b byte) bool { return b == '0' || b == '1' }) {
			return lx.badNumber(start, "expected binary digit after '0b'")
		}
		lx.eatSuffix(false)
		return lx.emitNumber(start, kind)
	default:
		lx.eatDigits(isDec)
		if lx.cursor.Peek() == '.' {
			if b1 := lx.cursor.PeekAt(1); b1 != '.' {
				lx.cursor.Bump()
				kind = token.FloatLit
				lx.eatDigits(isDec)
			}
		}
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		kind = token.FloatLit
		lx.cursor.Bump()
		if b := lx.cursor.Peek(); b == '+' || b == '-' {
			lx.cursor.Bump()
		}
		if !lx.eatDigits(isDec) {
			return lx.badNumber(start, "expected digit after exponent")
		}
	}
	lx.eatSuffix(kind == token.FloatLit)
	if b := lx.cursor.Peek(); b == 'f' || b == 'F' {
		// 1f is not valid C but 1.f is; accept both and let the C compiler judge.
		lx.cursor.Bump()
		kind = token.FloatLit
	}
	return lx.emitNumber(start, kind)
}

func (lx *Lexer) eatDigits(pred func(byte) bool) bool {
	ok := false
	for pred(lx.cursor.Peek()) {
		lx.cursor.Bump()
		ok = true
	}
	return ok
}

func (lx *Lexer) eatSuffix(float bool) {
	for {
		switch lx.cursor.Peek() {
		case 'u', 'U', 'l', 'L':
			lx.cursor.Bump()
		case 'f', 'F':
			if !float {
				return
			}
			lx.cursor.Bump()
		default:
			return
		}
	}
}

func (lx *Lexer) emitNumber(start Mark, kind token.Kind) token.Token {
	if isIdentStartByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		return lx.badNumber(start, "invalid suffix on numeric literal")
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) badNumber(start Mark, msg string) token.Token {
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexBadNumber, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
