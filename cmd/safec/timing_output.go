package main

import (
	"fmt"
	"io"
	"time"

	"safec/internal/buildpipeline"
)

// printStageTimings prints the summed per-stage durations of a build.
// load/compile/write are totals across files; build is wall time.
func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		fmt.Fprintf(out, "%-8s %.1f ms\n", stage, toMillis(timings.Duration(stage)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
