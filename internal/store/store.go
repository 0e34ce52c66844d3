// Package store holds the server's in-memory aggregation model: a two-level
// index from process id to thread id to an append-only sequence of log
// entries. Connection readers mutate it through Ingest; the TUI and the
// inspection API read it through snapshots.
package store

import (
	"sync"

	"github.com/charliek/mplog/internal/domain"
)

// threadLane is the ordered log of one (pid, tid) pair. Entries are in
// arrival order on the socket, never sorted by timestamp.
type threadLane struct {
	tid     uint64
	entries []domain.StoredLog
}

// processGroup owns the lanes of one process, in order of first observation
// of each tid.
type processGroup struct {
	pid         int32
	threadIndex map[uint64]int
	lanes       []*threadLane
}

// Config holds configuration for the store
type Config struct {
	SubscriptionBuffer int // Buffer size for subscription channels
}

// Store is the root aggregation entity. A single readers-writer lock guards
// the whole index: readers take the write lock briefly per ingested record,
// snapshot callers take the read lock for the duration of one frame.
//
// Index positions are stable for the lifetime of the store: new processes
// and threads always append, and nothing is ever removed. Cursors held by
// the UI therefore stay valid across ingests.
type Store struct {
	mu           sync.RWMutex
	processIndex map[int32]int
	processes    []*processGroup

	subscriptions *subscriptionManager
}

// New creates an empty store
func New(config Config) *Store {
	if config.SubscriptionBuffer <= 0 {
		config.SubscriptionBuffer = 100
	}
	return &Store{
		processIndex:  make(map[int32]int),
		subscriptions: newSubscriptionManager(config.SubscriptionBuffer),
	}
}

// Ingest appends one entry under the lane for (pid, tid), creating the
// process and lane on first sight. Lookup and insert happen under one lock
// acquisition so the index maps and the ordered slices never diverge.
func (s *Store) Ingest(pid int32, tid uint64, entry domain.StoredLog) {
	s.mu.Lock()

	pi, ok := s.processIndex[pid]
	if !ok {
		pi = len(s.processes)
		s.processes = append(s.processes, &processGroup{
			pid:         pid,
			threadIndex: make(map[uint64]int),
		})
		s.processIndex[pid] = pi
	}
	proc := s.processes[pi]

	ti, ok := proc.threadIndex[tid]
	if !ok {
		ti = len(proc.lanes)
		proc.lanes = append(proc.lanes, &threadLane{tid: tid})
		proc.threadIndex[tid] = ti
	}
	lane := proc.lanes[ti]
	lane.entries = append(lane.entries, entry)

	s.mu.Unlock()

	s.subscriptions.Broadcast(domain.Event{PID: pid, TID: tid, Entry: entry})
}

// Snapshot returns a consistent view for one UI frame: all process ids, the
// thread ids of the process at processCursor, and up to maxRows entries of
// the lane at threadCursor starting at offset. Negative cursors mean "no
// selection"; out-of-range cursors yield empty thread/entry lists.
func (s *Store) Snapshot(processCursor, threadCursor, offset, maxRows int) domain.RenderFrame {
	s.mu.RLock()
	defer s.mu.RUnlock()

	frame := domain.RenderFrame{Processes: make([]int32, len(s.processes))}
	for i, p := range s.processes {
		frame.Processes[i] = p.pid
	}

	if processCursor < 0 || processCursor >= len(s.processes) {
		return frame
	}
	proc := s.processes[processCursor]

	frame.Threads = make([]uint64, len(proc.lanes))
	for i, l := range proc.lanes {
		frame.Threads[i] = l.tid
	}

	if threadCursor < 0 || threadCursor >= len(proc.lanes) {
		return frame
	}
	lane := proc.lanes[threadCursor]
	frame.LaneLen = len(lane.entries)

	if offset < 0 {
		offset = 0
	}
	if offset >= len(lane.entries) {
		return frame
	}
	window := lane.entries[offset:]
	if maxRows > 0 && len(window) > maxRows {
		window = window[:maxRows]
	}
	frame.Entries = make([]domain.StoredLog, len(window))
	copy(frame.Entries, window)

	return frame
}

// ProcessCount returns the number of observed processes.
func (s *Store) ProcessCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.processes)
}

// LaneCount returns the number of lanes of the process at the given index,
// or 0 if the index is out of range.
func (s *Store) LaneCount(processIdx int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if processIdx < 0 || processIdx >= len(s.processes) {
		return 0
	}
	return len(s.processes[processIdx].lanes)
}

// EntryCount returns the entry count of the lane at (processIdx, threadIdx),
// or 0 if either index is out of range.
func (s *Store) EntryCount(processIdx, threadIdx int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if processIdx < 0 || processIdx >= len(s.processes) {
		return 0
	}
	proc := s.processes[processIdx]
	if threadIdx < 0 || threadIdx >= len(proc.lanes) {
		return 0
	}
	return len(proc.lanes[threadIdx].entries)
}

// LookupProcess returns the index of pid, or ErrUnknownProcess.
func (s *Store) LookupProcess(pid int32) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pi, ok := s.processIndex[pid]
	if !ok {
		return 0, domain.ErrUnknownProcess
	}
	return pi, nil
}

// LookupThread returns the lane index of tid within the process at
// processIdx, or ErrUnknownThread.
func (s *Store) LookupThread(processIdx int, tid uint64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if processIdx < 0 || processIdx >= len(s.processes) {
		return 0, domain.ErrUnknownProcess
	}
	ti, ok := s.processes[processIdx].threadIndex[tid]
	if !ok {
		return 0, domain.ErrUnknownThread
	}
	return ti, nil
}

// Threads returns the tid of every lane of the process at processIdx in
// first-observation order, with each lane's entry count.
func (s *Store) Threads(processIdx int) []ThreadInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if processIdx < 0 || processIdx >= len(s.processes) {
		return nil
	}
	proc := s.processes[processIdx]
	infos := make([]ThreadInfo, len(proc.lanes))
	for i, l := range proc.lanes {
		infos[i] = ThreadInfo{TID: l.tid, Entries: len(l.entries)}
	}
	return infos
}

// ThreadInfo describes one lane for listings.
type ThreadInfo struct {
	TID     uint64
	Entries int
}

// ProcessInfo describes one process for listings.
type ProcessInfo struct {
	PID     int32
	Threads int
	Entries int
}

// Processes returns every observed process in first-observation order with
// its lane and total entry counts.
func (s *Store) Processes() []ProcessInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]ProcessInfo, len(s.processes))
	for i, p := range s.processes {
		total := 0
		for _, l := range p.lanes {
			total += len(l.entries)
		}
		infos[i] = ProcessInfo{PID: p.pid, Threads: len(p.lanes), Entries: total}
	}
	return infos
}

// Lane returns up to limit entries from the end of the lane at
// (processIdx, threadIdx), plus the lane's total length.
func (s *Store) Lane(processIdx, threadIdx, limit int) ([]domain.StoredLog, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if processIdx < 0 || processIdx >= len(s.processes) {
		return nil, 0
	}
	proc := s.processes[processIdx]
	if threadIdx < 0 || threadIdx >= len(proc.lanes) {
		return nil, 0
	}
	entries := proc.lanes[threadIdx].entries
	total := len(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]domain.StoredLog, len(entries))
	copy(out, entries)
	return out, total
}

// Subscribe creates a subscription for ingested records matching the filter
func (s *Store) Subscribe(filter domain.EventFilter) (string, <-chan domain.Event, error) {
	return s.subscriptions.Subscribe(filter)
}

// Unsubscribe removes a subscription
func (s *Store) Unsubscribe(id string) {
	s.subscriptions.Unsubscribe(id)
}

// Stats returns counts for the status endpoint.
type Stats struct {
	Processes   int
	Threads     int
	Entries     int
	Subscribers int
}

// Stat computes aggregate counts under one read lock.
func (s *Store) Stat() Stats {
	s.mu.RLock()
	st := Stats{Processes: len(s.processes)}
	for _, p := range s.processes {
		st.Threads += len(p.lanes)
		for _, l := range p.lanes {
			st.Entries += len(l.entries)
		}
	}
	s.mu.RUnlock()
	st.Subscribers = s.subscriptions.Count()
	return st
}

// Close closes all subscriptions.
func (s *Store) Close() {
	s.subscriptions.Close()
}
