package trace

import "errors"

// MultiTracer fans events out to several tracers, e.g. a live stream plus
// a ring kept for post-mortem dumps.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer emits to every non-nil tracer. A zero level takes the most
// detailed level among them.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	kept := make([]Tracer, 0, len(tracers))
	for _, tr := range tracers {
		if tr == nil {
			continue
		}
		kept = append(kept, tr)
		if tr.Level() > level {
			level = tr.Level()
		}
	}
	return &MultiTracer{tracers: kept, level: level}
}

// Emit hands each tracer its own copy; StreamTracer stamps Seq in place.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

// Flush flushes every tracer and joins their errors.
func (t *MultiTracer) Flush() error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

// Close closes every tracer even when one fails.
func (t *MultiTracer) Close() error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

// Level returns the configured level.
func (t *MultiTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *MultiTracer) Enabled() bool {
	return t.level > LevelOff
}
