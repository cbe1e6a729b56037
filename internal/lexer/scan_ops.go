package lexer

import (
	"safec/internal/diag"
	"safec/internal/token"
)

// multiByteOps is ordered longest first so matching is greedy.
var multiByteOps = [...]struct {
	text string
	kind token.Kind
}{
	{"...", token.Ellipsis},
	{"<<=", token.ShlAssign},
	{">>=", token.ShrAssign},
	{"->", token.Arrow},
	{"++", token.PlusPlus},
	{"--", token.MinusMinus},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"==", token.EqEq},
	{"!=", token.BangEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"+=", token.PlusAssign},
	{"-=", token.MinusAssign},
	{"*=", token.StarAssign},
	{"/=", token.SlashAssign},
	{"%=", token.PercentAssign},
	{"&=", token.AmpAssign},
	{"|=", token.PipeAssign},
	{"^=", token.CaretAssign},
}

// scanOperatorOrPunct emits the longest operator at the cursor. '>>' is
// kept whole here; the parser splits it when closing nested type arguments.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
	}

	for _, op := range multiByteOps {
		if lx.cursor.HasPrefix(op.text) {
			lx.cursor.Advance(uint32(len(op.text))) //nolint:gosec // длина оператора <= 3
			return emit(op.kind)
		}
	}

	if k, ok := singleByteKinds[lx.cursor.Peek()]; ok {
		lx.cursor.Bump()
		return emit(k)
	}

	// неизвестный символ; для UTF-8 съедаем руну целиком
	lx.cursor.Advance(lx.runeLen())
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnknownChar, sp, "unknown character "+quoteText(lx.text(sp)))
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

var singleByteKinds = map[byte]token.Kind{
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash, '%': token.Percent,
	'=': token.Assign, '!': token.Bang, '<': token.Lt, '>': token.Gt,
	'&': token.Amp, '|': token.Pipe, '^': token.Caret, '~': token.Tilde,
	'?': token.Question, ':': token.Colon, ';': token.Semicolon, ',': token.Comma, '.': token.Dot,
	'(': token.LParen, ')': token.RParen, '{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket,
}
