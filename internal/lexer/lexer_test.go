package lexer_test

import (
	"strings"
	"testing"

	"safec/internal/diag"
	"safec/internal/lexer"
	"safec/internal/source"
	"safec/internal/token"
)

func lexAll(t *testing.T, input string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.sc", []byte(input)))
	bag := diag.NewBag(32)
	toks := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func expectKinds(t *testing.T, input string, want ...token.Kind) []token.Token {
	t.Helper()
	toks, bag := lexAll(t, input)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics for %q: %v", input, bag.Items())
	}
	want = append(want, token.EOF)
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("%q: got %v, want %v", input, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: token %d is %v, want %v (all: %v)", input, i, got[i], want[i], got)
		}
	}
	return toks
}

func TestGenericStructHeader(t *testing.T) {
	toks := expectKinds(t, "struct Box<T> { T* data; };",
		token.KwStruct, token.Ident, token.Lt, token.Ident, token.Gt,
		token.LBrace, token.Ident, token.Star, token.Ident, token.Semicolon,
		token.RBrace, token.Semicolon)
	if toks[1].Text != "Box" || toks[3].Text != "T" {
		t.Fatalf("unexpected texts %q %q", toks[1].Text, toks[3].Text)
	}
}

func TestNestedCloseAnglesLexAsShift(t *testing.T) {
	// The parser splits '>>' inside type argument lists.
	expectKinds(t, "Box<Pair<int,char>> b;",
		token.Ident, token.Lt, token.Ident, token.Lt, token.KwInt, token.Comma,
		token.KwChar, token.Shr, token.Ident, token.Semicolon)
}

func TestOperators(t *testing.T) {
	tests := []struct {
		in   string
		want token.Kind
	}{
		{"->", token.Arrow},
		{"++", token.PlusPlus},
		{"--", token.MinusMinus},
		{"<<=", token.ShlAssign},
		{">>=", token.ShrAssign},
		{"...", token.Ellipsis},
		{"&&", token.AndAnd},
		{"||", token.OrOr},
		{"!=", token.BangEq},
		{"%=", token.PercentAssign},
		{"~", token.Tilde},
		{"?", token.Question},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			toks := expectKinds(t, tt.in, tt.want)
			if toks[0].Text != tt.in {
				t.Fatalf("text = %q", toks[0].Text)
			}
		})
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		in   string
		kind token.Kind
	}{
		{"42", token.IntLit},
		{"0x1Fu", token.IntLit},
		{"017", token.IntLit},
		{"10UL", token.IntLit},
		{"0b101", token.IntLit},
		{"1.5", token.FloatLit},
		{".5", token.FloatLit},
		{"1e-3", token.FloatLit},
		{"2.f", token.FloatLit},
		{"3.0L", token.FloatLit},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			toks := expectKinds(t, tt.in, tt.kind)
			if toks[0].Text != tt.in {
				t.Fatalf("text = %q, want verbatim", toks[0].Text)
			}
		})
	}
}

func TestBadNumbers(t *testing.T) {
	for _, in := range []string{"0x", "1e+", "12abc"} {
		toks, bag := lexAll(t, in)
		if toks[0].Kind != token.Invalid {
			t.Errorf("%q: expected Invalid, got %v", in, toks[0].Kind)
		}
		if bag.Count(diag.LexBadNumber) != 1 {
			t.Errorf("%q: expected LexBadNumber, got %v", in, bag.Items())
		}
	}
}

func TestStringsAndChars(t *testing.T) {
	toks := expectKinds(t, `"a\"b" '\n' 'x'`, token.StringLit, token.CharLit, token.CharLit)
	if toks[0].Text != `"a\"b"` || toks[1].Text != `'\n'` {
		t.Fatalf("texts = %q %q", toks[0].Text, toks[1].Text)
	}

	_, bag := lexAll(t, "\"abc\nx")
	if bag.Count(diag.LexUnterminatedString) != 1 {
		t.Fatalf("expected unterminated string, got %v", bag.Items())
	}
	_, bag = lexAll(t, "''")
	if bag.Count(diag.LexEmptyChar) != 1 {
		t.Fatalf("expected empty char, got %v", bag.Items())
	}
}

func TestDirectives(t *testing.T) {
	src := "#include <stdio.h>\n  #define MAX(a, b) \\\n  ((a) > (b))   \nint x;"
	toks := expectKinds(t, src, token.Directive, token.Directive, token.KwInt, token.Ident, token.Semicolon)
	if toks[0].Text != "#include <stdio.h>" {
		t.Fatalf("include text = %q", toks[0].Text)
	}
	if !strings.HasSuffix(toks[1].Text, "((a) > (b))") || !strings.Contains(toks[1].Text, "\\\n") {
		t.Fatalf("define text = %q", toks[1].Text)
	}
}

func TestHashOutsideLineStartIsUnknown(t *testing.T) {
	toks, bag := lexAll(t, "int # x;")
	if toks[1].Kind != token.Invalid {
		t.Fatalf("expected Invalid for '#', got %v", toks[1].Kind)
	}
	if bag.Count(diag.LexUnknownChar) != 1 {
		t.Fatalf("expected LexUnknownChar, got %v", bag.Items())
	}
}

func TestTriviaAttachment(t *testing.T) {
	toks := expectKinds(t, "// lead\n/* block */ int", token.KwInt)
	lead := toks[0].Leading
	want := []token.TriviaKind{token.TriviaLineComment, token.TriviaNewline, token.TriviaBlockComment, token.TriviaSpace}
	if len(lead) != len(want) {
		t.Fatalf("leading = %+v", lead)
	}
	for i := range want {
		if lead[i].Kind != want[i] {
			t.Fatalf("trivia %d = %v, want %v", i, lead[i].Kind, want[i])
		}
	}

	_, bag := lexAll(t, "/* never closed")
	if bag.Count(diag.LexUnterminatedBlockComment) != 1 {
		t.Fatalf("expected unterminated comment, got %v", bag.Items())
	}
}

func TestKeywordsVersusIdents(t *testing.T) {
	expectKinds(t, "unsigned int sizeof_x sizeof typedef",
		token.KwUnsigned, token.KwInt, token.Ident, token.KwSizeof, token.KwTypedef)
}

func TestPeekDoesNotConsume(t *testing.T) {
	fs := source.NewFileSet()
	lx := lexer.New(fs.Get(fs.AddVirtual("p.sc", []byte("a b"))), lexer.Options{})
	if p := lx.Peek(); p.Text != "a" {
		t.Fatalf("peek = %q", p.Text)
	}
	if n := lx.Next(); n.Text != "a" {
		t.Fatalf("next = %q", n.Text)
	}
	if n := lx.Next(); n.Text != "b" {
		t.Fatalf("next = %q", n.Text)
	}
	if n := lx.Next(); n.Kind != token.EOF {
		t.Fatalf("expected EOF, got %v", n.Kind)
	}
	if n := lx.Next(); n.Kind != token.EOF {
		t.Fatalf("expected EOF to repeat, got %v", n.Kind)
	}
}

func TestNonASCIIIsUnknownChar(t *testing.T) {
	toks, bag := lexAll(t, "int xπ;")
	want := []token.Kind{token.KwInt, token.Ident, token.Invalid, token.Semicolon, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens: %+v", len(toks), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d = %v, want %v", i, toks[i].Kind, k)
		}
	}
	if toks[1].Text != "x" || toks[2].Text != "π" {
		t.Errorf("texts = %q, %q", toks[1].Text, toks[2].Text)
	}
	if bag.Count(diag.LexUnknownChar) != 1 {
		t.Errorf("expected one LexUnknownChar, got %v", bag.Items())
	}
}
