package trace

import (
	"io"
	"sync"
)

// DefaultRingSize is used when a ring is created with a non-positive size.
const DefaultRingSize = 4096

// RingTracer keeps the most recent events in memory. Older events are
// overwritten once the ring is full.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	total uint64 // events ever stored
	level Level

	out    io.Writer // dumped on Close when set
	format Format
}

func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingTracer{buf: make([]Event, size), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !admits(t.level, ev) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()
	t.mu.Lock()
	t.buf[t.total%uint64(len(t.buf))] = stored
	t.total++
	t.mu.Unlock()
}

// Snapshot copies the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := uint64(len(t.buf))
	n := min(t.total, size)
	out := make([]Event, 0, n)
	for i := t.total - n; i < t.total; i++ {
		out = append(out, t.buf[i%size])
	}
	return out
}

// Dump writes the retained events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

// DumpOnClose makes Close write the retained events to w.
func (t *RingTracer) DumpOnClose(w io.Writer, format Format) {
	t.mu.Lock()
	t.out, t.format = w, format
	t.mu.Unlock()
}

func (t *RingTracer) Flush() error { return nil }

// Close dumps to the DumpOnClose target, if any, and closes it unless it
// is stdout or stderr.
func (t *RingTracer) Close() error {
	t.mu.Lock()
	w, format := t.out, t.format
	t.out = nil
	t.mu.Unlock()
	if w == nil {
		return nil
	}
	if err := t.Dump(w, format); err != nil {
		return err
	}
	return closeOutput(w)
}

func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
