package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/store"
)

func entry(msg string) domain.StoredLog {
	return domain.StoredLog{Level: domain.LevelInfo, Message: msg}
}

// populated builds a store with pids 100 (lanes 1, 2) and 200 (lane 9).
func populated() *store.Store {
	st := store.New(store.Config{})
	st.Ingest(100, 1, entry("a"))
	st.Ingest(100, 1, entry("b"))
	st.Ingest(100, 1, entry("c"))
	st.Ingest(100, 2, entry("d"))
	st.Ingest(200, 9, entry("e"))
	return st
}

func TestSelection_NoOpBeforeFirstRecord(t *testing.T) {
	st := store.New(store.Config{})
	sel := NewSelection()

	sel.NextProcess(st)
	sel.PreviousProcess(st)
	sel.NextThread(st)
	sel.PreviousThread(st)
	sel.NextLog(st)
	sel.PreviousLog()

	assert.False(t, sel.HasSelection())
	assert.Equal(t, -1, sel.Process())
	assert.Equal(t, -1, sel.Thread())
	assert.Equal(t, 0, sel.Offset())
}

func TestSelection_AutoSelectOnce(t *testing.T) {
	st := populated()
	sel := NewSelection()

	sel.AutoSelect(st)
	assert.Equal(t, 0, sel.Process())
	assert.Equal(t, 0, sel.Thread())

	// A later auto-select never moves an existing cursor.
	sel.NextProcess(st)
	sel.AutoSelect(st)
	assert.Equal(t, 1, sel.Process())
}

func TestSelection_AutoSelectEmptyStore(t *testing.T) {
	st := store.New(store.Config{})
	sel := NewSelection()
	sel.AutoSelect(st)
	assert.False(t, sel.HasSelection())
}

func TestSelection_ProcessWrapsAndResets(t *testing.T) {
	st := populated()
	sel := NewSelection()
	sel.AutoSelect(st)

	sel.NextThread(st) // thread 1
	sel.NextLog(st)    // offset 1
	assert.Equal(t, 1, sel.Thread())
	assert.Equal(t, 1, sel.Offset())

	sel.NextProcess(st)
	assert.Equal(t, 1, sel.Process())
	assert.Equal(t, 0, sel.Thread())
	assert.Equal(t, 0, sel.Offset())

	// Wrap forward past the end.
	sel.NextProcess(st)
	assert.Equal(t, 0, sel.Process())

	// Wrap backwards past the start.
	sel.PreviousProcess(st)
	assert.Equal(t, 1, sel.Process())
}

func TestSelection_ThreadWrapsAndResetsOffset(t *testing.T) {
	st := populated()
	sel := NewSelection()
	sel.AutoSelect(st)

	sel.NextLog(st)
	assert.Equal(t, 1, sel.Offset())

	sel.NextThread(st)
	assert.Equal(t, 1, sel.Thread())
	assert.Equal(t, 0, sel.Offset())

	sel.NextThread(st) // wraps back to lane 0
	assert.Equal(t, 0, sel.Thread())

	sel.PreviousThread(st)
	assert.Equal(t, 1, sel.Thread())
}

func TestSelection_LogOffsetBounds(t *testing.T) {
	st := populated() // lane (100,1) has 3 entries
	sel := NewSelection()
	sel.AutoSelect(st)

	// The offset may advance up to the entry count, which renders zero rows.
	sel.NextLog(st)
	sel.NextLog(st)
	assert.Equal(t, 2, sel.Offset())
	sel.NextLog(st)
	assert.Equal(t, 3, sel.Offset())
	sel.NextLog(st)
	assert.Equal(t, 3, sel.Offset())

	frame := st.Snapshot(sel.Process(), sel.Thread(), sel.Offset(), 10)
	assert.Empty(t, frame.Entries)

	sel.PreviousLog()
	assert.Equal(t, 2, sel.Offset())
	sel.PreviousLog()
	sel.PreviousLog()
	assert.Equal(t, 0, sel.Offset())
	sel.PreviousLog()
	assert.Equal(t, 0, sel.Offset())
}

func TestSelection_InvariantsUnderArbitrarySequences(t *testing.T) {
	st := populated()
	sel := NewSelection()
	sel.AutoSelect(st)

	ops := []func(){
		func() { sel.NextProcess(st) },
		func() { sel.PreviousProcess(st) },
		func() { sel.NextThread(st) },
		func() { sel.PreviousThread(st) },
		func() { sel.NextLog(st) },
		func() { sel.PreviousLog() },
	}

	for i := 0; i < 500; i++ {
		ops[i%len(ops)]()
		ops[(i*7+3)%len(ops)]()

		assert.GreaterOrEqual(t, sel.Process(), 0)
		assert.Less(t, sel.Process(), st.ProcessCount())
		assert.GreaterOrEqual(t, sel.Thread(), 0)
		assert.Less(t, sel.Thread(), st.LaneCount(sel.Process()))
		assert.GreaterOrEqual(t, sel.Offset(), 0)
		assert.LessOrEqual(t, sel.Offset(), st.EntryCount(sel.Process(), sel.Thread()))
	}
}

func TestSelection_SingleProcessNextIsNoChange(t *testing.T) {
	st := store.New(store.Config{})
	st.Ingest(100, 1, entry("a"))
	st.Ingest(100, 1, entry("b"))

	sel := NewSelection()
	sel.AutoSelect(st)
	sel.NextLog(st)

	// With one process the cursor cannot change, so nothing resets.
	sel.NextProcess(st)
	assert.Equal(t, 0, sel.Process())
	assert.Equal(t, 1, sel.Offset())
}
