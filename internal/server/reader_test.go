//go:build linux

package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/store"
	"github.com/charliek/mplog/internal/wire"
)

const testMaxMessage = 16 * 1024 * 1024

// startReader wires a reader to one end of a socketpair and runs it. The
// returned fd is the client end; the channel yields the reader's terminal
// error once the peer end is closed.
func startReader(t *testing.T, st *store.Store) (int, <-chan error) {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)

	r, err := newReader(fds[0], st, testMaxMessage)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- r.run() }()

	return fds[1], errCh
}

func writeAll(t *testing.T, fd int, data []byte) {
	t.Helper()
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		require.NoError(t, err)
		data = data[n:]
	}
}

func record(pid int32, tid uint64, level domain.Level, msg string) []byte {
	return wire.EncodeRecord(wire.Header{
		Seconds: 1_700_000_000,
		Nanos:   42,
		PID:     pid,
		TID:     tid,
		Level:   level,
	}, []byte(msg))
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("reader did not terminate")
		return nil
	}
}

func TestReader_SingleRecord(t *testing.T) {
	st := store.New(store.Config{})
	fd, errCh := startReader(t, st)

	writeAll(t, fd, record(100, 7, domain.LevelInfo, "hello"))
	unix.Close(fd)

	// Clean close at a record boundary.
	assert.NoError(t, waitErr(t, errCh))

	frame := st.Snapshot(0, 0, 0, 0)
	assert.Equal(t, []int32{100}, frame.Processes)
	assert.Equal(t, []uint64{7}, frame.Threads)
	require.Len(t, frame.Entries, 1)
	assert.Equal(t, "hello", frame.Entries[0].Message)
	assert.Equal(t, domain.LevelInfo, frame.Entries[0].Level)
	assert.Equal(t, uint64(1_700_000_000), frame.Entries[0].Seconds)
	assert.Equal(t, uint32(42), frame.Entries[0].Nanos)
}

func TestReader_MultipleRecordsOneWrite(t *testing.T) {
	st := store.New(store.Config{})
	fd, errCh := startReader(t, st)

	var buf []byte
	buf = append(buf, record(1, 1, domain.LevelError, "a")...)
	buf = append(buf, record(1, 1, domain.LevelWarn, "b")...)
	buf = append(buf, record(1, 2, domain.LevelTrace, "c")...)
	writeAll(t, fd, buf)
	unix.Close(fd)

	assert.NoError(t, waitErr(t, errCh))

	entries, total := st.Lane(0, 0, 0)
	assert.Equal(t, 2, total)
	assert.Equal(t, "a", entries[0].Message)
	assert.Equal(t, "b", entries[1].Message)
	assert.Equal(t, 1, st.EntryCount(0, 1))
}

func TestReader_PartialWritesResume(t *testing.T) {
	st := store.New(store.Config{})
	fd, errCh := startReader(t, st)

	rec := record(5, 5, domain.LevelDebug, "resumed across many reads")

	// Dribble the record a few bytes at a time so the reader crosses
	// drain/wait cycles mid-header and mid-payload.
	for i := 0; i < len(rec); i += 3 {
		end := i + 3
		if end > len(rec) {
			end = len(rec)
		}
		writeAll(t, fd, rec[i:end])
		time.Sleep(time.Millisecond)
	}
	unix.Close(fd)

	assert.NoError(t, waitErr(t, errCh))
	entries, total := st.Lane(0, 0, 0)
	require.Equal(t, 1, total)
	assert.Equal(t, "resumed across many reads", entries[0].Message)
}

func TestReader_EmptyMessage(t *testing.T) {
	st := store.New(store.Config{})
	fd, errCh := startReader(t, st)

	writeAll(t, fd, record(1, 1, domain.LevelInfo, ""))
	unix.Close(fd)

	assert.NoError(t, waitErr(t, errCh))
	entries, total := st.Lane(0, 0, 0)
	require.Equal(t, 1, total)
	assert.Equal(t, "", entries[0].Message)
}

func TestReader_InvalidLevel(t *testing.T) {
	st := store.New(store.Config{})
	fd, errCh := startReader(t, st)

	writeAll(t, fd, record(1, 1, domain.Level(9), "bad"))

	err := waitErr(t, errCh)
	assert.ErrorIs(t, err, domain.ErrMalformedHeader)
	assert.Zero(t, st.ProcessCount())
	unix.Close(fd)
}

func TestReader_OversizeLength(t *testing.T) {
	st := store.New(store.Config{})

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	r, err := newReader(fds[0], st, 16)
	require.NoError(t, err)
	errCh := make(chan error, 1)
	go func() { errCh <- r.run() }()

	writeAll(t, fds[1], record(1, 1, domain.LevelInfo, "seventeen bytes!!"))

	assert.ErrorIs(t, waitErr(t, errCh), domain.ErrOversizeMessage)
	assert.Zero(t, st.ProcessCount())
	unix.Close(fds[1])
}

func TestReader_PeerClosedMidPayload(t *testing.T) {
	st := store.New(store.Config{})
	fd, errCh := startReader(t, st)

	// Valid header declaring a 1MB payload, then only a fragment of it.
	rec := wire.AppendRecord(nil, wire.Header{PID: 1, TID: 1, Level: domain.LevelInfo}, make([]byte, 1_000_000))
	writeAll(t, fd, rec[:wire.HeaderSize+10])
	unix.Close(fd)

	assert.ErrorIs(t, waitErr(t, errCh), domain.ErrPeerClosed)

	// No partial entry was stored.
	assert.Zero(t, st.ProcessCount())
}

func TestReader_PeerClosedMidHeader(t *testing.T) {
	st := store.New(store.Config{})
	fd, errCh := startReader(t, st)

	writeAll(t, fd, record(1, 1, domain.LevelInfo, "x")[:5])
	unix.Close(fd)

	assert.ErrorIs(t, waitErr(t, errCh), domain.ErrPeerClosed)
	assert.Zero(t, st.ProcessCount())
}

func TestReader_BadUTF8(t *testing.T) {
	st := store.New(store.Config{})
	fd, errCh := startReader(t, st)

	rec := wire.AppendRecord(nil, wire.Header{PID: 1, TID: 1, Level: domain.LevelInfo}, []byte{0xff, 0xfe, 0xfd})
	writeAll(t, fd, rec)

	assert.ErrorIs(t, waitErr(t, errCh), domain.ErrBadUTF8)
	assert.Zero(t, st.ProcessCount())
	unix.Close(fd)
}

func TestReader_LaneFIFO(t *testing.T) {
	st := store.New(store.Config{})
	fd, errCh := startReader(t, st)

	const n = 200
	var buf []byte
	for i := 0; i < n; i++ {
		buf = wire.AppendRecord(buf, wire.Header{
			Seconds: uint64(i), PID: 1, TID: 1, Level: domain.LevelInfo,
		}, []byte{byte('a' + i%26)})
	}
	writeAll(t, fd, buf)
	unix.Close(fd)

	assert.NoError(t, waitErr(t, errCh))

	entries, total := st.Lane(0, 0, 0)
	require.Equal(t, n, total)
	for i, e := range entries {
		assert.Equal(t, uint64(i), e.Seconds)
		assert.Equal(t, string(rune('a'+i%26)), e.Message)
	}
}

func TestReader_FailureKeepsPriorEntries(t *testing.T) {
	st := store.New(store.Config{})
	fd, errCh := startReader(t, st)

	var buf []byte
	buf = append(buf, record(1, 1, domain.LevelInfo, "kept")...)
	buf = append(buf, record(1, 1, domain.Level(0), "bad")...)
	writeAll(t, fd, buf)

	assert.ErrorIs(t, waitErr(t, errCh), domain.ErrMalformedHeader)

	entries, total := st.Lane(0, 0, 0)
	require.Equal(t, 1, total)
	assert.Equal(t, "kept", entries[0].Message)
	unix.Close(fd)
}
