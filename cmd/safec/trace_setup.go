package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"safec/internal/project"
	"safec/internal/trace"
)

func registerTraceFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("trace", "", "write trace events to file (\"-\" for stderr; .ndjson/.json pick the format)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace mode (stream|ring|both)")
	flags.Int("trace-ring-size", trace.DefaultRingSize, "ring buffer capacity for --trace-mode ring/both")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
}

// traceConfig merges the trace flags with [trace] from safec.toml; flags
// the user set win. enabled is false when tracing is off and there is
// nowhere to write. Naming an output with level off traces at phase.
func traceConfig(cmd *cobra.Command, manifest *project.Manifest) (cfg trace.Config, enabled bool, err error) {
	flags := cmd.Root().PersistentFlags()
	levelName, _ := flags.GetString("trace-level")
	modeName, _ := flags.GetString("trace-mode")
	cfg.OutputPath, _ = flags.GetString("trace")
	cfg.RingSize, _ = flags.GetInt("trace-ring-size")
	cfg.Heartbeat, _ = flags.GetDuration("trace-heartbeat")

	if !flags.Changed("trace-level") && manifest != nil && manifest.Config.Trace.Level != "" {
		levelName = manifest.Config.Trace.Level
	}
	if !flags.Changed("trace") && manifest.TraceOutput() != "" {
		cfg.OutputPath = manifest.TraceOutput()
	}

	if cfg.Level, err = trace.ParseLevel(levelName); err != nil {
		return cfg, false, fmt.Errorf("invalid trace level: %w", err)
	}
	if cfg.Level == trace.LevelOff {
		if cfg.OutputPath == "" {
			return cfg, false, nil
		}
		cfg.Level = trace.LevelPhase
	}
	if cfg.Mode, err = trace.ParseMode(modeName); err != nil {
		return cfg, false, fmt.Errorf("invalid trace mode: %w", err)
	}
	return cfg, true, nil
}

// setupTracing installs the tracer in the command context and returns
// the cleanup that stops the heartbeat and closes the output.
func setupTracing(cmd *cobra.Command, manifest *project.Manifest) (func(), error) {
	cfg, enabled, err := traceConfig(cmd, manifest)
	if err != nil {
		return nil, err
	}
	if !enabled {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	var heartbeat *trace.Heartbeat
	if cfg.Heartbeat > 0 {
		heartbeat = trace.StartHeartbeat(tracer, cfg.Heartbeat)
	}
	stderr := cmd.ErrOrStderr()
	return func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(stderr, "trace: flush: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(stderr, "trace: close: %v\n", err)
		}
	}, nil
}
