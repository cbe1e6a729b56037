package token

import (
	"strconv"

	"safec/internal/source"
)

// Token is one significant token. Text is the exact source slice; Leading
// holds the comments, whitespace and newlines before it.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, string, or character literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, CharLit:
		return true
	default:
		return false
	}
}

func (t Token) IsKeyword() bool {
	return t.Kind >= KwStruct && t.Kind <= KwSizeof
}

// Describe names the token for "expected X, got Y" messages.
func (t Token) Describe() string {
	switch {
	case t.Kind == EOF:
		return "end of file"
	case t.Kind == Ident:
		return "identifier " + strconv.Quote(t.Text)
	case t.Kind == Directive:
		return "preprocessor directive"
	case t.IsKeyword():
		return "keyword '" + t.Text + "'"
	case t.IsLiteral():
		return "literal " + t.Text
	default:
		return "'" + t.Text + "'"
	}
}
