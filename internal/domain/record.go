package domain

import "time"

// StoredLog is one record as kept by the aggregation store. The originating
// pid and tid are not part of the entry; they are implied by the lane the
// entry lives in.
type StoredLog struct {
	Seconds uint64 `json:"seconds"`
	Nanos   uint32 `json:"nanos"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Time reconstructs the client wall-clock timestamp.
func (s StoredLog) Time() time.Time {
	return time.Unix(int64(s.Seconds), int64(s.Nanos))
}

// Micros returns whole microseconds since the Unix epoch, the unit the
// log pane displays.
func (s StoredLog) Micros() uint64 {
	return s.Seconds*1_000_000 + uint64(s.Nanos)/1000
}

// RenderFrame is a consistent read of the store for one UI frame: the full
// process list, the lanes of the selected process, and a window of entries
// from the selected lane.
type RenderFrame struct {
	Processes []int32
	Threads   []uint64

	// Entries holds at most the requested number of rows from the selected
	// lane, starting at the frame's log offset. LaneLen is the lane's total
	// entry count before windowing.
	Entries []StoredLog
	LaneLen int
}
