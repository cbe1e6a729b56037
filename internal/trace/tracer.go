package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer receives trace events. Implementations must be goroutine-safe:
// parallel builds emit from every worker.
type Tracer interface {
	Emit(ev *Event)
	// Flush writes out buffered events.
	Flush() error
	// Close flushes and releases the output.
	Close() error
	Level() Level
	// Enabled reports Level() > LevelOff.
	Enabled() bool
}

// StorageMode determines how events are stored.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // write each event immediately
	ModeRing                          // keep the last RingSize events, dump on Close
	ModeBoth                          // stream + ring
)

var modeNames = map[StorageMode]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

// String returns the flag spelling of m.
func (m StorageMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode converts a flag value to a StorageMode.
func ParseMode(s string) (StorageMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config holds tracer configuration.
type Config struct {
	Level  Level
	Mode   StorageMode
	Format Format // FormatAuto picks by OutputPath extension
	// Output wins over OutputPath when set.
	Output io.Writer
	// OutputPath is a file path; "" and "-" mean stderr.
	OutputPath string
	RingSize   int           // DefaultRingSize when <= 0
	Heartbeat  time.Duration // 0 disables
}

// resolveFormat maps "trace.ndjson" to NDJSON, "*.json" to Chrome and
// everything else to text.
func (cfg Config) resolveFormat() Format {
	if cfg.Format != FormatAuto {
		return cfg.Format
	}
	switch {
	case strings.HasSuffix(cfg.OutputPath, ".ndjson"):
		return FormatNDJSON
	case strings.HasSuffix(cfg.OutputPath, ".json"):
		return FormatChrome
	default:
		return FormatText
	}
}

// New creates a Tracer based on Config. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = DefaultRingSize
	}
	format := cfg.resolveFormat()

	switch cfg.Mode {
	case ModeStream, ModeRing, ModeBoth:
	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case ModeStream:
		return NewStreamTracer(w, cfg.Level, format), nil
	case ModeRing:
		ring := NewRingTracer(cfg.RingSize, cfg.Level)
		ring.DumpOnClose(w, format)
		return ring, nil
	default:
		stream := NewStreamTracer(w, cfg.Level, format)
		ring := NewRingTracer(cfg.RingSize, cfg.Level)
		return NewMultiTracer(cfg.Level, stream, ring), nil
	}
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}
