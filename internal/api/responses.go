package api

import (
	"fmt"
	"time"

	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/store"
)

// StatusResponse represents the response for GET /status
type StatusResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	SocketPath    string `json:"socket_path"`
	ConfigFile    string `json:"config_file,omitempty"`
	APIVersion    string `json:"api_version"`
	Processes     int    `json:"processes"`
	Threads       int    `json:"threads"`
	Entries       int    `json:"entries"`
	Subscribers   int    `json:"subscribers"`
}

// ProcessListResponse represents the response for GET /processes
type ProcessListResponse struct {
	Processes []ProcessResponse `json:"processes"`
}

// ProcessResponse represents a single observed process in responses
type ProcessResponse struct {
	PID     int32  `json:"pid"`
	PIDHex  string `json:"pid_hex"`
	Threads int    `json:"threads"`
	Entries int    `json:"entries"`
}

// ThreadListResponse represents the response for GET /processes/{pid}/threads
type ThreadListResponse struct {
	PID     int32            `json:"pid"`
	Threads []ThreadResponse `json:"threads"`
}

// ThreadResponse represents a single observed thread in responses
type ThreadResponse struct {
	TID     uint64 `json:"tid"`
	TIDHex  string `json:"tid_hex"`
	Entries int    `json:"entries"`
}

// LogsResponse represents the response for GET /processes/{pid}/threads/{tid}/logs
type LogsResponse struct {
	PID        int32              `json:"pid"`
	TID        uint64             `json:"tid"`
	Logs       []LogEntryResponse `json:"logs"`
	TotalCount int                `json:"total_count"`
}

// LogEntryResponse represents a single log entry
type LogEntryResponse struct {
	Timestamp string `json:"timestamp"`
	Micros    uint64 `json:"micros"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// StreamEventResponse represents one SSE event on /logs/stream
type StreamEventResponse struct {
	PID   int32            `json:"pid"`
	TID   uint64           `json:"tid"`
	Entry LogEntryResponse `json:"entry"`
}

// SuccessResponse represents a simple success response
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToProcessResponse converts store.ProcessInfo to ProcessResponse
func ToProcessResponse(info store.ProcessInfo) ProcessResponse {
	return ProcessResponse{
		PID:     info.PID,
		PIDHex:  fmt.Sprintf("%x", info.PID),
		Threads: info.Threads,
		Entries: info.Entries,
	}
}

// ToThreadResponse converts store.ThreadInfo to ThreadResponse
func ToThreadResponse(info store.ThreadInfo) ThreadResponse {
	return ThreadResponse{
		TID:     info.TID,
		TIDHex:  fmt.Sprintf("%x", info.TID),
		Entries: info.Entries,
	}
}

// ToLogEntryResponse converts domain.StoredLog to LogEntryResponse
func ToLogEntryResponse(entry domain.StoredLog) LogEntryResponse {
	return LogEntryResponse{
		Timestamp: entry.Time().UTC().Format(time.RFC3339Nano),
		Micros:    entry.Micros(),
		Level:     entry.Level.String(),
		Message:   entry.Message,
	}
}

// ToStreamEventResponse converts a subscription event to its SSE payload
func ToStreamEventResponse(ev domain.Event) StreamEventResponse {
	return StreamEventResponse{
		PID:   ev.PID,
		TID:   ev.TID,
		Entry: ToLogEntryResponse(ev.Entry),
	}
}
