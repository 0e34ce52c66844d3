package domain

import (
	"fmt"
	"strings"
)

// Level is a record severity. Wire values run 1..5 with ERROR the most
// severe, matching the on-wire encoding.
type Level uint8

const (
	LevelError Level = iota + 1
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// Valid reports whether l is one of the five defined severities.
func (l Level) Valid() bool {
	return l >= LevelError && l <= LevelTrace
}

// String returns the upper-case display name ("ERROR".."TRACE").
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return fmt.Sprintf("LEVEL(%d)", uint8(l))
	}
}

// Allows reports whether a record at level rec passes a threshold of l.
// A threshold of LevelInfo admits ERROR, WARN and INFO.
func (l Level) Allows(rec Level) bool {
	return rec <= l
}

// ParseLevel converts a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "INFO":
		return LevelInfo, nil
	case "DEBUG":
		return LevelDebug, nil
	case "TRACE":
		return LevelTrace, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}
