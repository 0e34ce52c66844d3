//go:build linux

// Package integration exercises the full pipeline: emitters writing the
// binary protocol over a real Unix socket, the edge-triggered listener
// reassembling records, and the store and HTTP API serving them back.
package integration

import (
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charliek/mplog/internal/server"
	"github.com/charliek/mplog/internal/store"
)

// tempSocket returns a fresh socket path short enough for sun_path.
func tempSocket(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "mplog-it")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir + "/s.sock"
}

// startServer brings up a listener on a fresh socket and returns it with its
// backing store. Both are torn down with the test.
func startServer(t *testing.T, maxMessage uint64) (*store.Store, *server.Listener, string) {
	t.Helper()

	st := store.New(store.Config{})
	t.Cleanup(st.Close)

	path := tempSocket(t)
	l := server.NewListener(server.Config{SocketPath: path, MaxMessageBytes: maxMessage}, st)
	require.NoError(t, l.Start())
	t.Cleanup(l.Stop)

	return st, l, path
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// rawDial opens a plain connection for tests that write wire bytes directly.
func rawDial(t *testing.T, path string) net.Conn {
	t.Helper()
	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// writeAll writes the whole buffer.
func writeAll(t *testing.T, conn net.Conn, b []byte) {
	t.Helper()
	for len(b) > 0 {
		n, err := conn.Write(b)
		require.NoError(t, err)
		b = b[n:]
	}
}
