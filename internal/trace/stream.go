package trace

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// StreamTracer writes every admitted event as soon as it is emitted.
// Files are written through a buffer that heartbeats flush; stdout and
// stderr are written directly.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	buf    *bufio.Writer // nil for stdout/stderr
	level  Level
	format Format
	n      int // events written, drives chrome separators
	closed bool
}

// NewStreamTracer creates a StreamTracer writing to w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	st := &StreamTracer{out: w, level: level, format: format}
	if !isStdStream(w) {
		st.buf = bufio.NewWriter(w)
	}
	if format == FormatChrome {
		st.write([]byte("{\"traceEvents\":[\n"))
	}
	return st
}

// Emit formats ev and writes it. Trace output never fails a build, so
// write errors are dropped here and surface from Flush.
func (t *StreamTracer) Emit(ev *Event) {
	if !admits(t.level, ev) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.format == FormatChrome && t.n > 0 {
		t.write([]byte(",\n"))
	}
	t.write(data)
	t.n++
	// heartbeat должен быть виден снаружи сразу
	if ev.Kind == KindHeartbeat {
		_ = t.flushLocked() //nolint:errcheck // best effort
	}
}

func (t *StreamTracer) write(p []byte) {
	if t.buf != nil {
		_, _ = t.buf.Write(p) //nolint:errcheck // ошибка всплывёт во Flush
		return
	}
	_, _ = t.out.Write(p) //nolint:errcheck // stderr: писать больше некуда
}

// Flush pushes buffered events to the underlying writer.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushLocked()
}

func (t *StreamTracer) flushLocked() error {
	if t.buf != nil {
		if err := t.buf.Flush(); err != nil {
			return err
		}
	}
	if flusher, ok := t.out.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close terminates the chrome document, flushes and closes the output
// unless it is stdout or stderr. Later events are dropped.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	if t.format == FormatChrome {
		t.write([]byte("\n]}\n"))
	}
	t.closed = true
	if err := t.flushLocked(); err != nil {
		return err
	}
	return closeOutput(t.out)
}

// Level returns the current tracing level.
func (t *StreamTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *StreamTracer) Enabled() bool {
	return t.level > LevelOff
}

// admits reports whether a tracer at level records ev.
// Heartbeats pass every enabled level.
func admits(level Level, ev *Event) bool {
	if ev.Kind == KindHeartbeat {
		return level > LevelOff
	}
	return level.ShouldEmit(ev.Scope)
}

func isStdStream(w io.Writer) bool {
	return w == os.Stderr || w == os.Stdout
}

// closeOutput closes w unless it is a standard stream.
func closeOutput(w io.Writer) error {
	if isStdStream(w) {
		return nil
	}
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
