package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"", LevelOff, false},
		{"off", LevelOff, false},
		{"PHASE", LevelPhase, false},
		{" detail ", LevelDetail, false},
		{"debug", LevelDebug, false},
		{"error", LevelError, false},
		{"loud", LevelOff, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
	if LevelDetail.String() != "detail" || Level(42).String() != "unknown" {
		t.Error("unexpected Level.String")
	}
}

func TestShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeInst, false},
		{LevelDebug, ScopeInst, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []StorageMode{ModeStream, ModeRing, ModeBoth} {
		got, err := ParseMode(strings.ToUpper(m.String()))
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSpanNesting(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)

	outer, ctx := StartSpan(ctx, ScopeDriver, "build")
	inner, _ := StartSpan(ctx, ScopeFile, "compile")
	inner.WithExtra("path", "a.sc").Fail(errors.New("boom"))
	Point(ring, ScopeFile, "cache:miss", "a.sc", inner.ID())
	Point(ring, ScopeInst, "inst:Box_int", "Box<int>", inner.ID())
	inner.End("")
	outer.End("ok")

	events := ring.Snapshot()
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d: %+v", len(events), events)
	}
	if events[1].ParentID != outer.ID() {
		t.Errorf("inner span parent = %d, want %d", events[1].ParentID, outer.ID())
	}
	if events[2].Kind != KindPoint || events[2].Name != "cache:miss" {
		t.Errorf("unexpected point %+v", events[2])
	}
	end := events[3]
	if end.Kind != KindSpanEnd || end.Extra["path"] != "a.sc" || end.Extra["error"] != "boom" {
		t.Errorf("unexpected end event %+v", end)
	}
	if events[4].Detail != "ok" {
		t.Errorf("outer end detail = %q", events[4].Detail)
	}
}

func TestDisabledSpanIsSafe(t *testing.T) {
	sp, ctx := StartSpan(context.Background(), ScopePass, "parse")
	if sp.ID() != 0 {
		t.Fatal("span on Nop tracer must be disabled")
	}
	sp.WithExtra("k", "v").Fail(errors.New("x"))
	if d := sp.End(""); d != 0 {
		t.Errorf("disabled span duration = %v", d)
	}
	if CurrentSpan(ctx).SpanID != 0 {
		t.Error("disabled span must not enter the context")
	}
	var nilSpan *Span
	if nilSpan.ID() != 0 || nilSpan.End("") != 0 {
		t.Error("nil span must be inert")
	}
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for i := range 5 {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeInst, Name: string(rune('a' + i))})
	}
	events := ring.Snapshot()
	var names []string
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ""); got != "cde" {
		t.Errorf("snapshot = %q, want cde", got)
	}
}

func TestRingDumpOnClose(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(8, LevelPhase)
	ring.DumpOnClose(&buf, FormatNDJSON)
	Begin(ring, ScopePass, "collect", 0).End("")
	if buf.Len() != 0 {
		t.Fatal("ring must not write before Close")
	}
	if err := ring.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("invalid NDJSON: %v", err)
	}
	if ev["kind"] != "begin" || ev["name"] != "collect" || ev["scope"] != "pass" {
		t.Errorf("unexpected event %v", ev)
	}
}

func TestStreamTracerFormats(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		st := NewStreamTracer(&buf, LevelPhase, FormatText)
		Begin(st, ScopePass, "emit", 0).WithExtra("bytes", "42").End("")
		if buf.Len() != 0 {
			t.Fatalf("events must stay buffered until Flush, got %q", buf.String())
		}
		if err := st.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "→ pass:emit") || !strings.Contains(out, "← pass:emit {bytes=42}") {
			t.Errorf("unexpected text trace:\n%s", out)
		}
	})
	t.Run("chrome", func(t *testing.T) {
		var buf bytes.Buffer
		st := NewStreamTracer(&buf, LevelPhase, FormatChrome)
		Begin(st, ScopeDriver, "build", 0).End("")
		if err := st.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		var doc struct {
			TraceEvents []map[string]any `json:"traceEvents"`
		}
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("invalid chrome trace: %v\n%s", err, buf.String())
		}
		if len(doc.TraceEvents) != 2 || doc.TraceEvents[0]["ph"] != "B" || doc.TraceEvents[1]["ph"] != "E" {
			t.Errorf("unexpected events %v", doc.TraceEvents)
		}
	})
}

func TestNewPicksFormatFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.ndjson")
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, OutputPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopePass, "lex", 0).End("")
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "{") {
		t.Errorf("expected NDJSON, got %q", data)
	}

	off, err := New(Config{Level: LevelOff})
	if err != nil || off.Enabled() {
		t.Errorf("LevelOff must give a disabled tracer, got %v, %v", off, err)
	}
	if _, err := New(Config{Level: LevelPhase, Mode: StorageMode(9)}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(8, LevelPhase)
	multi := NewMultiTracer(LevelPhase, NewStreamTracer(&buf, LevelPhase, FormatText), ring)
	Point(multi, ScopeDriver, "start", "", 0)
	if err := multi.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(ring.Snapshot()) != 1 || !strings.Contains(buf.String(), "driver:start") {
		t.Errorf("event not delivered to every tracer")
	}
	if multi.Level() != LevelPhase {
		t.Errorf("Level = %v", multi.Level())
	}
	derived := NewMultiTracer(LevelOff, nil, NewRingTracer(4, LevelDebug))
	if derived.Level() != LevelDebug || !derived.Enabled() {
		t.Errorf("level must follow the most detailed tracer, got %v", derived.Level())
	}
}

func TestStreamTracerDropsAfterClose(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatText)
	Point(st, ScopeDriver, "before", "", 0)
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	Point(st, ScopeDriver, "after", "", 0)
	if err := st.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "driver:before") || strings.Contains(out, "driver:after") {
		t.Errorf("unexpected output after close:\n%s", out)
	}
}

type countingTracer struct {
	mu    sync.Mutex
	beats int
}

func (c *countingTracer) Emit(ev *Event) {
	if ev.Kind == KindHeartbeat {
		c.mu.Lock()
		c.beats++
		c.mu.Unlock()
	}
}
func (*countingTracer) Flush() error  { return nil }
func (*countingTracer) Close() error  { return nil }
func (*countingTracer) Level() Level  { return LevelPhase }
func (*countingTracer) Enabled() bool { return true }

func TestHeartbeat(t *testing.T) {
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("disabled tracer must not start a heartbeat")
	}
	ct := &countingTracer{}
	hb := StartHeartbeat(ct, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for {
		ct.mu.Lock()
		n := ct.beats
		ct.mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	hb.Stop()
	hb.Stop()
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if ct.beats < 2 {
		t.Errorf("expected at least 2 heartbeats, got %d", ct.beats)
	}
}

func TestRingCloseDumpsOnce(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(0, LevelPhase)
	ring.DumpOnClose(&buf, FormatText)
	Point(ring, ScopeDriver, "driver:start", "", 0)
	for range 2 {
		if err := ring.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	if n := strings.Count(buf.String(), "driver:start"); n != 1 {
		t.Errorf("event dumped %d times, want 1", n)
	}
}
