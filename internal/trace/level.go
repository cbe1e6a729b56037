package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff Level = iota
	// LevelError keeps only the ring buffer, dumped when a build fails.
	LevelError
	// LevelPhase records the build and every pass (lex, parse, collect, expand, emit).
	LevelPhase
	// LevelDetail adds per-file events.
	LevelDetail
	// LevelDebug adds one event per instantiation.
	LevelDebug
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// String returns the flag spelling of l.
func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level. The empty string means off.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return LevelOff, nil
	}
	for l, n := range levelNames {
		if n == name {
			return Level(l), nil //nolint:gosec // index of a five-element array
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass at this level.
// LevelError records nothing through the regular path.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeFile
	case LevelDebug:
		return true
	default:
		return false
	}
}
