// Package constants provides shared configuration values used across the mplog application.
package constants

import "time"

// Configuration file defaults
const (
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "mplog.yaml"

	// DefaultSocketPath is the default Unix socket path shared by server and clients
	DefaultSocketPath = "/tmp/mp-logger-socket"

	// DefaultAPIHost is the default host for the inspection API server
	DefaultAPIHost = "127.0.0.1"

	// DefaultAPIPort is the default port for the inspection API server
	DefaultAPIPort = 5656

	// DefaultAPIAddress is the default API address for client commands
	DefaultAPIAddress = "http://127.0.0.1:5656"
)

// Environment overrides
const (
	// EnvSocket overrides the socket path
	EnvSocket = "MPLOG_SOCKET"

	// EnvAPIAddr overrides the API address for client commands
	EnvAPIAddr = "MPLOG_API_ADDR"
)

// Wire limits
const (
	// DefaultMaxMessageBytes is the maximum accepted message payload length.
	// Headers declaring more are rejected before the payload is read.
	DefaultMaxMessageBytes = 16 * 1024 * 1024 // 16MiB

	// InitialPayloadCapacity is the starting size of a reader's payload buffer
	InitialPayloadCapacity = 1024
)

// Timeout and duration defaults
const (
	// DefaultRequestTimeout is the default timeout for API requests
	DefaultRequestTimeout = 30 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful API shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

// Log query limits
const (
	// DefaultLogLimit is the default number of log lines to return
	DefaultLogLimit = 100

	// MaxLogLines is the maximum number of log lines that can be requested
	// to prevent memory exhaustion
	MaxLogLines = 10000
)

// Buffer sizes
const (
	// DefaultSubscriptionBuffer is the default size for subscription channels
	DefaultSubscriptionBuffer = 100

	// ListenBacklog is the backlog passed to listen(2)
	ListenBacklog = 128
)
