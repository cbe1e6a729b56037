package buildpipeline

import "time"

// Stage is one step of building a file; StageBuild spans the whole run.
type Stage string

const (
	StageLoad    Stage = "load"    // read and normalize the source
	StageCompile Stage = "compile" // parse, monomorphize, emit
	StageWrite   Stage = "write"   // write .c, .h and .insts
	StageBuild   Stage = "build"
)

// Stages lists every stage in execution order.
var Stages = [...]Stage{StageLoad, StageCompile, StageWrite, StageBuild}

func (s Stage) index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Status is where a file (or the whole build) is within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
	// Cached is set on StageCompile events served from the output cache.
	Cached bool
}

// ProgressSink consumes progress events. Build calls OnEvent from
// several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds one duration per stage. The zero value is ready to use;
// unknown stages are ignored.
type Timings struct {
	d   [len(Stages)]time.Duration
	set [len(Stages)]bool
}

func (t *Timings) Set(stage Stage, dur time.Duration) {
	if i := stage.index(); t != nil && i >= 0 {
		t.d[i], t.set[i] = dur, true
	}
}

// Add accumulates dur into stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if i := stage.index(); t != nil && i >= 0 {
		t.d[i] += dur
		t.set[i] = true
	}
}

func (t Timings) Has(stage Stage) bool {
	i := stage.index()
	return i >= 0 && t.set[i]
}

func (t Timings) Duration(stage Stage) time.Duration {
	if i := stage.index(); i >= 0 {
		return t.d[i]
	}
	return 0
}

// Sum adds up the given stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.Duration(stage)
	}
	return total
}
