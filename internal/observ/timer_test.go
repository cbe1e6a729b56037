package observ

import (
	"errors"
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	stop := tm.Start("parse")
	stop("3 decls")
	stop("ignored")
	if err := tm.Measure("emit", func() error { return errors.New("boom") }); err == nil {
		t.Fatal("Measure must return fn's error")
	}
	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "parse" || r.Phases[1].Note != "error" {
		t.Fatalf("unexpected report: %+v", r)
	}
	if r.Phases[0].Note != "3 decls" {
		t.Errorf("stop must only count once, note = %q", r.Phases[0].Note)
	}
	s := r.String()
	for _, want := range []string{"timings:", "parse", "// 3 decls", "total"} {
		if !strings.Contains(s, want) {
			t.Errorf("report lacks %q:\n%s", want, s)
		}
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Start("a")("")
	if err := tm.Measure("b", func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if r := tm.Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("nil timer must report nothing: %+v", r)
	}
}
