package trace

// nopTracer drops everything. Spans started against it are not allocated,
// see StartSpan.
type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop is the tracer of a context without one and of --trace-level=off.
var Nop Tracer = nopTracer{}
