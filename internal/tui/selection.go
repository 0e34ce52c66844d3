package tui

// sizer is the read-only view of the store the selection needs: how many
// processes exist, how many lanes a process has, and how long a lane is.
type sizer interface {
	ProcessCount() int
	LaneCount(processIdx int) int
	EntryCount(processIdx, threadIdx int) int
}

// Selection is the navigation cursor over the aggregation store: the current
// process, the current lane within it, and the number of leading log entries
// to skip when rendering. It is owned by the UI goroutine and never shared.
//
// The store's index-stability guarantee (positions never move or disappear)
// is what keeps a held cursor valid across ingests.
type Selection struct {
	process int // index into the process list, -1 before the first record
	thread  int // index into the selected process's lanes, -1 if none
	offset  int // leading entries to skip in the selected lane
}

// NewSelection returns the empty cursor used before any record has arrived.
func NewSelection() Selection {
	return Selection{process: -1, thread: -1}
}

// HasSelection reports whether a process is selected.
func (s *Selection) HasSelection() bool { return s.process >= 0 }

// Process returns the process cursor, or -1.
func (s *Selection) Process() int { return s.process }

// Thread returns the thread cursor, or -1.
func (s *Selection) Thread() int { return s.thread }

// Offset returns the log offset.
func (s *Selection) Offset() int { return s.offset }

// AutoSelect points the cursor at the first process and lane. The model
// calls this exactly once, on the store's empty-to-non-empty transition; it
// never overwrites an existing selection.
func (s *Selection) AutoSelect(sz sizer) {
	if s.HasSelection() || sz.ProcessCount() == 0 {
		return
	}
	s.process = 0
	s.thread = 0
	s.offset = 0
}

// NextProcess advances the process cursor, wrapping at the end. A no-op
// before the first record.
func (s *Selection) NextProcess(sz sizer) {
	s.moveProcess(sz, 1)
}

// PreviousProcess moves the process cursor back, wrapping at the start.
func (s *Selection) PreviousProcess(sz sizer) {
	s.moveProcess(sz, -1)
}

func (s *Selection) moveProcess(sz sizer, delta int) {
	n := sz.ProcessCount()
	if !s.HasSelection() || n == 0 {
		return
	}
	next := (s.process + delta + n) % n
	if next == s.process {
		return
	}
	s.process = next
	if sz.LaneCount(next) > 0 {
		s.thread = 0
	} else {
		s.thread = -1
	}
	s.offset = 0
}

// NextThread advances the thread cursor within the selected process,
// wrapping at the end.
func (s *Selection) NextThread(sz sizer) {
	s.moveThread(sz, 1)
}

// PreviousThread moves the thread cursor back, wrapping at the start.
func (s *Selection) PreviousThread(sz sizer) {
	s.moveThread(sz, -1)
}

func (s *Selection) moveThread(sz sizer, delta int) {
	if !s.HasSelection() || s.thread < 0 {
		return
	}
	n := sz.LaneCount(s.process)
	if n == 0 {
		return
	}
	next := (s.thread + delta + n) % n
	if next == s.thread {
		return
	}
	s.thread = next
	s.offset = 0
}

// NextLog skips one more leading entry. The offset may reach the lane's
// entry count, at which point the log pane renders zero rows.
func (s *Selection) NextLog(sz sizer) {
	if !s.HasSelection() || s.thread < 0 {
		return
	}
	if s.offset < sz.EntryCount(s.process, s.thread) {
		s.offset++
	}
}

// PreviousLog skips one less leading entry.
func (s *Selection) PreviousLog() {
	if s.offset > 0 {
		s.offset--
	}
}
