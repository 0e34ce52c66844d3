package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/charliek/mplog/internal/constants"
	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/store"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	store      *store.Store
	socketPath string
	configFile string
	startedAt  time.Time
	shutdownFn func()
}

// NewHandlers creates new HTTP handlers
func NewHandlers(st *store.Store, socketPath, configFile string, shutdownFn func()) *Handlers {
	return &Handlers{
		store:      st,
		socketPath: socketPath,
		configFile: configFile,
		startedAt:  time.Now(),
		shutdownFn: shutdownFn,
	}
}

// GetStatus handles GET /api/v1/status
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	stats := h.store.Stat()

	resp := StatusResponse{
		Status:        "running",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		SocketPath:    h.socketPath,
		ConfigFile:    h.configFile,
		APIVersion:    "v1",
		Processes:     stats.Processes,
		Threads:       stats.Threads,
		Entries:       stats.Entries,
		Subscribers:   stats.Subscribers,
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetProcesses handles GET /api/v1/processes
func (h *Handlers) GetProcesses(w http.ResponseWriter, r *http.Request) {
	processes := h.store.Processes()

	resp := ProcessListResponse{
		Processes: make([]ProcessResponse, len(processes)),
	}

	for i, p := range processes {
		resp.Processes[i] = ToProcessResponse(p)
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetProcess handles GET /api/v1/processes/{pid}
func (h *Handlers) GetProcess(w http.ResponseWriter, r *http.Request) {
	pid, err := parsePID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	idx, err := h.store.LookupProcess(pid)
	if err != nil {
		writeError(w, err)
		return
	}

	// The index is stable, so the listing still contains it.
	processes := h.store.Processes()
	if idx >= len(processes) {
		writeError(w, domain.ErrUnknownProcess)
		return
	}

	writeJSON(w, http.StatusOK, ToProcessResponse(processes[idx]))
}

// GetThreads handles GET /api/v1/processes/{pid}/threads
func (h *Handlers) GetThreads(w http.ResponseWriter, r *http.Request) {
	pid, err := parsePID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	idx, err := h.store.LookupProcess(pid)
	if err != nil {
		writeError(w, err)
		return
	}

	threads := h.store.Threads(idx)
	resp := ThreadListResponse{
		PID:     pid,
		Threads: make([]ThreadResponse, len(threads)),
	}
	for i, t := range threads {
		resp.Threads[i] = ToThreadResponse(t)
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetLogs handles GET /api/v1/processes/{pid}/threads/{tid}/logs
func (h *Handlers) GetLogs(w http.ResponseWriter, r *http.Request) {
	pid, err := parsePID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	tid, err := parseTID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	pIdx, err := h.store.LookupProcess(pid)
	if err != nil {
		writeError(w, err)
		return
	}
	tIdx, err := h.store.LookupThread(pIdx, tid)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, total := h.store.Lane(pIdx, tIdx, parseLimit(r))

	resp := LogsResponse{
		PID:        pid,
		TID:        tid,
		Logs:       make([]LogEntryResponse, len(entries)),
		TotalCount: total,
	}
	for i, e := range entries {
		resp.Logs[i] = ToLogEntryResponse(e)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Shutdown handles POST /api/v1/shutdown
func (h *Handlers) Shutdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})

	// Trigger shutdown asynchronously
	go func() {
		time.Sleep(100 * time.Millisecond) // Let response complete
		if h.shutdownFn != nil {
			h.shutdownFn()
		}
	}()
}

var errBadIdentifier = errors.New("identifier must be a decimal number")

// parsePID extracts the {pid} URL parameter
func parsePID(r *http.Request) (int32, error) {
	pid, err := strconv.ParseInt(chi.URLParam(r, "pid"), 10, 32)
	if err != nil {
		return 0, errBadIdentifier
	}
	return int32(pid), nil
}

// parseTID extracts the {tid} URL parameter
func parseTID(r *http.Request) (uint64, error) {
	tid, err := strconv.ParseUint(chi.URLParam(r, "tid"), 10, 64)
	if err != nil {
		return 0, errBadIdentifier
	}
	return tid, nil
}

// parseLimit extracts the lines query parameter
// (default 100, capped at 10000 to bound response size)
func parseLimit(r *http.Request) int {
	limit := constants.DefaultLogLimit
	if linesStr := r.URL.Query().Get("lines"); linesStr != "" {
		if l, err := strconv.Atoi(linesStr); err == nil && l > 0 {
			if l > constants.MaxLogLines {
				limit = constants.MaxLogLines
			} else {
				limit = l
			}
		}
	}
	return limit
}

// parseStreamFilter extracts SSE filter parameters from the request
func parseStreamFilter(r *http.Request) (domain.EventFilter, error) {
	filter := domain.EventFilter{}

	if pids := r.URL.Query().Get("pid"); pids != "" {
		for _, part := range strings.Split(pids, ",") {
			pid, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
			if err != nil {
				return filter, errBadIdentifier
			}
			filter.PIDs = append(filter.PIDs, int32(pid))
		}
	}

	if levelStr := r.URL.Query().Get("level"); levelStr != "" {
		level, err := domain.ParseLevel(levelStr)
		if err != nil {
			return filter, err
		}
		filter.MinLevel = level
	}

	filter.Pattern = r.URL.Query().Get("pattern")
	if r.URL.Query().Get("regex") == "true" {
		filter.IsRegex = true
	}

	return filter, nil
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// writeError writes an error response
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, domain.ErrUnknownProcess):
		status = http.StatusNotFound
		code = domain.ErrCodeUnknownProcess
		message = err.Error()
	case errors.Is(err, domain.ErrUnknownThread):
		status = http.StatusNotFound
		code = domain.ErrCodeUnknownThread
		message = err.Error()
	case errors.Is(err, domain.ErrInvalidPattern):
		status = http.StatusBadRequest
		code = domain.ErrCodeInvalidPattern
		message = err.Error()
	case errors.Is(err, errBadIdentifier):
		status = http.StatusBadRequest
		code = "BAD_IDENTIFIER"
		message = err.Error()
	default:
		// For unknown errors, log the actual error but return a sanitized
		// message to avoid leaking internal detail
		log.Printf("Internal error: %v", err)
	}

	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
