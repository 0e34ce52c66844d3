package domain

// Event is one ingested record together with its origin, as delivered to
// store subscribers.
type Event struct {
	PID   int32     `json:"pid"`
	TID   uint64    `json:"tid"`
	Entry StoredLog `json:"entry"`
}

// EventFilter defines criteria for filtering ingested records
type EventFilter struct {
	PIDs     []int32 // Filter to specific process ids
	MinLevel Level   // Least severe level to pass; zero means all levels
	Pattern  string  // Filter by message pattern match
	IsRegex  bool    // If true, Pattern is a regex; otherwise substring match
}

// IsEmpty returns true if no filters are set
func (f EventFilter) IsEmpty() bool {
	return len(f.PIDs) == 0 && f.MinLevel == 0 && f.Pattern == ""
}

// MatchesPID returns true if the process id matches the filter
func (f EventFilter) MatchesPID(pid int32) bool {
	if len(f.PIDs) == 0 {
		return true
	}
	for _, p := range f.PIDs {
		if p == pid {
			return true
		}
	}
	return false
}

// MatchesLevel returns true if the level passes the filter's floor
func (f EventFilter) MatchesLevel(level Level) bool {
	return f.MinLevel == 0 || f.MinLevel.Allows(level)
}
