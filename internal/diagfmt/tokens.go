package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"safec/internal/source"
	"safec/internal/token"
)

type TokenOutput struct {
	Kind    string      `json:"kind"`
	Text    string      `json:"text,omitempty"`
	Span    source.Span `json:"span"`
	Pos     string      `json:"pos,omitempty"` // "line:col-line:col"
	Leading []string    `json:"leading,omitempty"`
}

// tokenOutputs converts tokens up to and including the first EOF.
// Pos is filled only when fs is given.
func tokenOutputs(tokens []token.Token, fs *source.FileSet) []TokenOutput {
	out := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		rec := TokenOutput{
			Kind: tok.Kind.String(),
			Text: tok.Text,
			Span: tok.Span,
		}
		for _, trivia := range tok.Leading {
			rec.Leading = append(rec.Leading, trivia.Kind.String())
		}
		if fs != nil {
			start, end := fs.Resolve(tok.Span)
			rec.Pos = start.String() + "-" + end.String()
		}
		out = append(out, rec)
		if tok.Kind == token.EOF {
			break
		}
	}
	return out
}

// FormatTokensPretty выводит токены по одному на строку
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	for i, rec := range tokenOutputs(tokens, fs) {
		var b strings.Builder
		fmt.Fprintf(&b, "%3d: %-15s", i+1, rec.Kind)
		if rec.Text != "" {
			fmt.Fprintf(&b, " %q", rec.Text)
		}
		if rec.Pos != "" {
			b.WriteString(" at " + rec.Pos)
		}
		if len(rec.Leading) > 0 {
			fmt.Fprintf(&b, " (leading: %s)", strings.Join(rec.Leading, ", "))
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// FormatTokensJSON выводит токены JSON-массивом; fs может быть nil
func FormatTokensJSON(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tokenOutputs(tokens, fs))
}
