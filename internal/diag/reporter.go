package diag

import (
	"sync"

	"safec/internal/source"
)

// Reporter receives diagnostics from the lexer, parser and expansion passes.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter пишет в *Bag; nil Bag молча отбрасывает всё.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// DedupReporter forwards the first diagnostic for each code, primary span
// and message. Expansion walks a generic body once per instantiation, so
// the same problem tends to come back several times.
type DedupReporter struct {
	next Reporter
	mu   sync.Mutex
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil || r.next == nil {
		return
	}
	k := dedupKey{d.Code, d.Primary, d.Message}
	r.mu.Lock()
	_, dup := r.seen[k]
	r.seen[k] = struct{}{}
	r.mu.Unlock()
	if !dup {
		r.next.Report(d)
	}
}

// ReportBuilder collects notes and fixes for one diagnostic and hands it
// to a Reporter on Emit.
type ReportBuilder struct {
	to      Reporter
	d       Diagnostic
	emitted bool
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: NewError(code, primary, msg)}
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(SevWarning, code, primary, msg)}
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	b.d = b.d.WithNote(sp, msg)
	return b
}

func (b *ReportBuilder) WithFix(title string, edits ...FixEdit) *ReportBuilder {
	b.d = b.d.WithFix(title, edits...)
	return b
}

// Emit reports the diagnostic; later calls do nothing.
func (b *ReportBuilder) Emit() {
	if b.emitted {
		return
	}
	b.emitted = true
	if b.to != nil {
		b.to.Report(b.d)
	}
}
