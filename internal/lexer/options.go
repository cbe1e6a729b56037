package lexer

import (
	"safec/internal/diag"
	"safec/internal/source"
)

type Options struct {
	Reporter diag.Reporter // nil: ошибки игнорируются, лексинг продолжается
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
	}
}
