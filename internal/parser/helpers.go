package parser

import (
	"fmt"

	"safec/internal/diag"
	"safec/internal/source"
	"safec/internal/token"
)

// peek returns the current token; with halfShr set it is the second '>' of '>>'.
func (p *Parser) peek() token.Token {
	tok := p.toks[p.pos]
	if p.halfShr {
		tok.Kind = token.Gt
		tok.Text = ">"
		tok.Span.Start++
	}
	return tok
}

// peekN looks n tokens past the current one.
func (p *Parser) peekN(n int) token.Token {
	if n == 0 {
		return p.peek()
	}
	i := min(p.pos+n, len(p.toks)-1)
	return p.toks[i]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

// advance съедает текущий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.peek()
	p.halfShr = false
	if tok.Kind != token.EOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// eatCloseAngle consumes '>' or the first half of '>>'.
func (p *Parser) eatCloseAngle() bool {
	switch {
	case p.at(token.Gt):
		p.advance()
		return true
	case p.at(token.Shr):
		tok := p.peek()
		p.halfShr = true
		p.lastSpan = source.Span{File: tok.Span.File, Start: tok.Span.Start, End: tok.Span.Start + 1}
		return true
	}
	return false
}

// getDiagnosticSpan points past the last consumed token when the parser is at EOF.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect ожидает конкретный токен; иначе репортит и возвращает (invalid, false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	text := fmt.Sprintf("%s, got %s", msg, p.peek().Describe())
	if insert, ok := insertableCloser[k]; ok && p.lastSpan.End > 0 {
		at := source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
		p.reportWithFix(code, sp, text, diag.Fix{
			Title: fmt.Sprintf("insert '%s'", insert),
			Edits: []diag.FixEdit{{Span: at, NewText: insert}},
		})
	} else {
		p.report(code, diag.SevError, sp, text)
	}
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// insertableCloser lists tokens whose absence is fixed by inserting them
// right after the previous token.
var insertableCloser = map[token.Kind]string{
	token.Semicolon: ";",
	token.RParen:    ")",
	token.RBracket:  "]",
}

func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if p.quiet > 0 || p.opts.Reporter == nil {
		return
	}
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Enough() {
		return
	}
	p.opts.Reporter.Report(diag.New(sev, code, sp, msg))
}

func (p *Parser) reportWithFix(code diag.Code, sp source.Span, msg string, fix diag.Fix) {
	if p.quiet > 0 || p.opts.Reporter == nil {
		return
	}
	p.opts.CurrentErrors++
	if p.opts.Enough() {
		return
	}
	diag.ReportError(p.opts.Reporter, code, sp, msg).WithFix(fix.Title, fix.Edits...).Emit()
}

type mark struct {
	pos     int
	halfShr bool
	last    source.Span
}

func (p *Parser) mark() mark {
	return mark{pos: p.pos, halfShr: p.halfShr, last: p.lastSpan}
}

func (p *Parser) reset(m mark) {
	p.pos, p.halfShr, p.lastSpan = m.pos, m.halfShr, m.last
}

// try runs fn without reporting diagnostics and rewinds unless it succeeds.
func (p *Parser) try(fn func() bool) bool {
	m := p.mark()
	p.quiet++
	ok := fn()
	p.quiet--
	if !ok {
		p.reset(m)
	}
	return ok
}

// lookahead runs fn without reporting and always rewinds.
func (p *Parser) lookahead(fn func() bool) bool {
	m := p.mark()
	p.quiet++
	ok := fn()
	p.quiet--
	p.reset(m)
	return ok
}

// enter guards recursion depth; every successful enter needs a leave.
func (p *Parser) enter() bool {
	p.depth++
	if p.depth > p.opts.MaxNesting {
		p.depth--
		if !p.tooDeep {
			p.tooDeep = true
			// reported even while speculating: the parse cannot continue
			q := p.quiet
			p.quiet = 0
			p.err(diag.SynTooDeep, fmt.Sprintf("nesting exceeds %d levels", p.opts.MaxNesting))
			p.quiet = q
		}
		return false
	}
	return true
}

func (p *Parser) leave() { p.depth-- }

func (p *Parser) spanFrom(start source.Span) source.Span {
	return start.Cover(p.lastSpan)
}
