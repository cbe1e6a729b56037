// Package trace records what the SafeC compiler is doing and how long it
// takes.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	safec build --trace=- --trace-level=phase main.sc
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer of the last events, dumped to the output on Close
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: nothing is recorded through spans and points
//   - LevelPhase: driver and pass boundaries (lex, parse, collect, expand, emit)
//   - LevelDetail: per-file events and cache decisions
//   - LevelDebug: adds one point per generic instantiation
//
// # Context Propagation
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.StartSpan(ctx, trace.ScopePass, "collect")
//	defer span.End("")
package trace
