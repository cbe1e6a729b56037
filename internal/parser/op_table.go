package parser

import "safec/internal/token"

// Таблица приоритетов для бинарных операторов C.
// Чем больше число, тем выше приоритет.
const (
	precComma          = 1  // ,
	precAssignment     = 2  // = += -= *= /= %= &= |= ^= <<= >>=
	precConditional    = 3  // ?:
	precLogicalOr      = 4  // ||
	precLogicalAnd     = 5  // &&
	precBitwiseOr      = 6  // |
	precBitwiseXor     = 7  // ^
	precBitwiseAnd     = 8  // &
	precEquality       = 9  // == !=
	precComparison     = 10 // < <= > >=
	precShift          = 11 // << >>
	precAdditive       = 12 // + -
	precMultiplicative = 13 // * / %
)

// binaryPrec возвращает приоритет и правоассоциативность оператора; -1 для не-операторов.
func binaryPrec(kind token.Kind) (int, bool) {
	switch {
	case kind == token.Comma:
		return precComma, false
	case kind.IsAssign():
		return precAssignment, true
	case kind == token.Question:
		return precConditional, true
	}
	switch kind {
	case token.OrOr:
		return precLogicalOr, false
	case token.AndAnd:
		return precLogicalAnd, false
	case token.Pipe:
		return precBitwiseOr, false
	case token.Caret:
		return precBitwiseXor, false
	case token.Amp:
		return precBitwiseAnd, false
	case token.EqEq, token.BangEq:
		return precEquality, false
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison, false
	case token.Shl, token.Shr:
		return precShift, false
	case token.Plus, token.Minus:
		return precAdditive, false
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative, false
	}
	return -1, false
}

func isPrefixOp(kind token.Kind) bool {
	switch kind {
	case token.Minus, token.Plus, token.Bang, token.Tilde, token.Star, token.Amp,
		token.PlusPlus, token.MinusMinus:
		return true
	}
	return false
}
