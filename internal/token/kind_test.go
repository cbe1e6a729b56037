package token_test

import (
	"testing"

	"safec/internal/source"
	"safec/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	for _, k := range []token.Kind{token.IntLit, token.FloatLit, token.StringLit, token.CharLit} {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	for _, k := range []token.Kind{token.Ident, token.KwInt, token.Plus, token.LParen} {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestKeywordsRoundTrip(t *testing.T) {
	for _, word := range []string{"struct", "int", "unsigned", "sizeof", "return", "typedef"} {
		k, ok := token.LookupKeyword(word)
		if !ok {
			t.Fatalf("%q should be a keyword", word)
		}
		if !tok(k).IsKeyword() {
			t.Errorf("%v should report IsKeyword", k)
		}
		if got := k.Text(); got != word {
			t.Errorf("%v.Text() = %q, want %q", k, got, word)
		}
	}
	if _, ok := token.LookupKeyword("Struct"); ok {
		t.Error("keywords are case-sensitive")
	}
}

func TestKindClassifiers(t *testing.T) {
	tests := []struct {
		kind           token.Kind
		assign, typeKw bool
	}{
		{token.Assign, true, false},
		{token.ShrAssign, true, false},
		{token.EqEq, false, false},
		{token.KwUnsigned, false, true},
		{token.KwConst, false, false},
	}
	for _, tt := range tests {
		if got := tt.kind.IsAssign(); got != tt.assign {
			t.Errorf("%v.IsAssign() = %v", tt.kind, got)
		}
		if got := tt.kind.IsTypeKeyword(); got != tt.typeKw {
			t.Errorf("%v.IsTypeKeyword() = %v", tt.kind, got)
		}
	}
	if got := token.Shl.Text(); got != "<<" {
		t.Errorf("Shl.Text() = %q", got)
	}
	if got := token.MinusMinus.String(); got != "MinusMinus" {
		t.Errorf("MinusMinus.String() = %q", got)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		tok  token.Token
		want string
	}{
		{token.Token{Kind: token.EOF}, "end of file"},
		{token.Token{Kind: token.Ident, Text: "box"}, `identifier "box"`},
		{token.Token{Kind: token.KwStruct, Text: "struct"}, "keyword 'struct'"},
		{token.Token{Kind: token.IntLit, Text: "42"}, "literal 42"},
		{token.Token{Kind: token.RBrace, Text: "}"}, "'}'"},
	}
	for _, tt := range tests {
		if got := tt.tok.Describe(); got != tt.want {
			t.Errorf("Describe(%v) = %q, want %q", tt.tok.Kind, got, tt.want)
		}
	}
}
