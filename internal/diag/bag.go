package diag

import (
	"cmp"
	"slices"

	"safec/internal/source"
)

// DefaultLimit caps a bag created with a non-positive limit.
const DefaultLimit = 1 << 16

// Bag collects diagnostics up to a fixed limit. It is owned by one
// compilation and is not safe for concurrent use.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
}

func NewBag(limit int) *Bag {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	return &Bag{items: make([]Diagnostic, 0, min(limit, 32)), limit: limit}
}

// Add сохраняет d, если лимит не исчерпан; иначе увеличивает счётчик Dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.limit {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Append stores d even when the bag is full. Run summaries such as
// timings go through here so a noisy file cannot hide them.
func (b *Bag) Append(d Diagnostic) {
	b.items = append(b.items, d)
}

func (b *Bag) Cap() int     { return b.limit }
func (b *Bag) Len() int     { return len(b.items) }
func (b *Bag) Dropped() int { return b.dropped }

// Items returns the backing slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

// Count returns the number of diagnostics with the given code.
func (b *Bag) Count(code Code) int {
	n := 0
	for _, d := range b.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Sort orders by file and position, then by severity (errors first) and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

type dedupKey struct {
	code Code
	span source.Span
	msg  string
}

// Dedup drops repeats of the same code, primary span and message,
// keeping the first occurrence.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := dedupKey{d.Code, d.Primary, d.Message}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
