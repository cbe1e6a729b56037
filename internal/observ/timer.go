package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// PhaseReport is one measured phase of a compilation.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report lists phases in the order they were started.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Timer measures the phases of one compilation (parse, mono, emit, ...).
// A nil *Timer measures nothing. Safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	phases []phase
}

type phase struct {
	name string
	dur  time.Duration
	note string
}

func NewTimer() *Timer { return &Timer{} }

// Start opens a phase; the returned stop records its duration and note.
// Only the first call to stop counts.
func (t *Timer) Start(name string) (stop func(note string)) {
	if t == nil {
		return func(string) {}
	}
	t.mu.Lock()
	idx := len(t.phases)
	t.phases = append(t.phases, phase{name: name})
	t.mu.Unlock()

	began := time.Now()
	var once sync.Once
	return func(note string) {
		once.Do(func() {
			d := time.Since(began)
			t.mu.Lock()
			t.phases[idx].dur, t.phases[idx].note = d, note
			t.mu.Unlock()
		})
	}
}

// Measure runs fn as phase name and marks the phase "error" when fn fails.
func (t *Timer) Measure(name string, fn func() error) error {
	stop := t.Start(name)
	err := fn()
	if err != nil {
		stop("error")
	} else {
		stop("")
	}
	return err
}

func (t *Timer) Report() Report {
	var r Report
	if t == nil {
		return r
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, p := range t.phases {
		total += p.dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: millis(p.dur), Note: p.note})
	}
	r.TotalMS = millis(total)
	return r
}

// String renders the report as an aligned table.
func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	row := func(name string, ms float64, note string) {
		fmt.Fprintf(&sb, "  %-20s %7.2f ms", name, ms)
		if note != "" {
			sb.WriteString("  // " + note)
		}
		sb.WriteByte('\n')
	}
	for _, p := range r.Phases {
		row(p.Name, p.DurationMS, p.Note)
	}
	row("total", r.TotalMS, "")
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
