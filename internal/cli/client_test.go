package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charliek/mplog/internal/api"
)

func TestClient_GetStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/status", r.URL.Path)
		fmt.Fprint(w, `{"status":"running","uptime_seconds":12,"socket_path":"/tmp/s","api_version":"v1","processes":2,"threads":3,"entries":40,"subscribers":1}`)
	}))
	defer ts.Close()

	status, err := NewClient(ts.URL).GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "running", status.Status)
	assert.Equal(t, 2, status.Processes)
	assert.Equal(t, 40, status.Entries)
}

func TestClient_GetThreads(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/processes/4821/threads", r.URL.Path)
		fmt.Fprint(w, `{"pid":4821,"threads":[{"tid":139832,"tid_hex":"22238","entries":7}]}`)
	}))
	defer ts.Close()

	threads, err := NewClient(ts.URL).GetThreads(4821)
	require.NoError(t, err)
	assert.Equal(t, int32(4821), threads.PID)
	require.Len(t, threads.Threads, 1)
	assert.Equal(t, uint64(139832), threads.Threads[0].TID)
}

func TestClient_GetLogsPassesLines(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/processes/1/threads/2/logs", r.URL.Path)
		assert.Equal(t, "500", r.URL.Query().Get("lines"))
		fmt.Fprint(w, `{"pid":1,"tid":2,"logs":[],"total_count":0}`)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).GetLogs(1, 2, 500)
	require.NoError(t, err)
}

func TestClient_ErrorResponseDecoded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"process not observed","code":"PROCESS_NOT_OBSERVED"}`)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).GetThreads(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROCESS_NOT_OBSERVED")
}

func TestClient_StreamLogs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/logs/stream", r.URL.Path)
		assert.Equal(t, "7,9", r.URL.Query().Get("pid"))
		assert.Equal(t, "warn", r.URL.Query().Get("level"))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": connected\n\n")
		fmt.Fprint(w, `data: {"pid":7,"tid":1,"entry":{"timestamp":"2026-01-02T03:04:05Z","micros":1,"level":"WARN","message":"one"}}`+"\n\n")
		fmt.Fprint(w, `data: {"pid":9,"tid":2,"entry":{"timestamp":"2026-01-02T03:04:06Z","micros":2,"level":"ERROR","message":"two"}}`+"\n\n")
	}))
	defer ts.Close()

	var events []api.StreamEventResponse
	err := NewClient(ts.URL).StreamLogs(
		StreamParams{PIDs: []int32{7, 9}, Level: "warn"},
		func(ev api.StreamEventResponse) { events = append(events, ev) })
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, int32(7), events[0].PID)
	assert.Equal(t, "one", events[0].Entry.Message)
	assert.Equal(t, "ERROR", events[1].Entry.Level)
}

func TestClient_StreamLogsErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"bad filter","code":"BAD_FILTER"}`)
	}))
	defer ts.Close()

	err := NewClient(ts.URL).StreamLogs(StreamParams{}, func(api.StreamEventResponse) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD_FILTER")
}
