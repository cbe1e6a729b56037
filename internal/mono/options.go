package mono

import "safec/internal/diag"

const (
	// DefaultMaxDepth bounds instantiation chains such as Box<Box<T>>.
	DefaultMaxDepth = 64
	// DefaultHeaderComment is the first line of every generated file.
	DefaultHeaderComment = "/* Generated by SafeC compiler */"
)

// Options configures collection, expansion and emission.
type Options struct {
	// MaxDepth limits how many instantiations may be chained through
	// expansion; 0 means DefaultMaxDepth.
	MaxDepth int
	// HeaderComment replaces DefaultHeaderComment when set.
	HeaderComment string
	// NoHeaderComment suppresses the header comment line.
	NoHeaderComment bool
	// Reporter receives MONO diagnostics; nil discards them. Expansion
	// revisits generic bodies, so repeats are filtered.
	Reporter diag.Reporter
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.HeaderComment == "" {
		o.HeaderComment = DefaultHeaderComment
	}
	switch o.Reporter.(type) {
	case nil:
		o.Reporter = diag.NopReporter{}
	case *diag.DedupReporter, diag.NopReporter:
	default:
		o.Reporter = diag.NewDedupReporter(o.Reporter)
	}
	return o
}
