//go:build linux

// Package emitter is the client side of mplog: a thin logger that serializes
// records and writes them to the server's Unix socket. Any goroutine may
// emit; a per-connection mutex spans each complete write so records from
// concurrent emitters never interleave on the wire.
package emitter

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/charliek/mplog/internal/constants"
	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/wire"
)

// truncationMarker is appended to messages cut down to the configured limit.
const truncationMarker = "…[truncated]"

// Config holds configuration for a Logger
type Config struct {
	// Threshold is the least severe level that is transmitted; records below
	// it are discarded before serialization. Zero means LevelTrace (send all).
	Threshold domain.Level

	// MaxMessageBytes caps the payload length; longer messages are truncated
	// with a marker. Zero means the wire default.
	MaxMessageBytes int
}

// Logger emits records over one shared connection to the log server.
type Logger struct {
	mu     sync.Mutex
	conn   net.Conn
	config Config
	pid    int32
}

// Dial connects to the server socket and returns a ready Logger.
func Dial(socketPath string, config Config) (*Logger, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectFailed, err)
	}
	return New(conn, config), nil
}

// New wraps an already-connected stream.
func New(conn net.Conn, config Config) *Logger {
	if config.Threshold == 0 {
		config.Threshold = domain.LevelTrace
	}
	if config.MaxMessageBytes <= 0 {
		config.MaxMessageBytes = constants.DefaultMaxMessageBytes
	}
	return &Logger{
		conn:   conn,
		config: config,
		pid:    int32(os.Getpid()),
	}
}

// Threshold returns the configured severity threshold.
func (l *Logger) Threshold() domain.Level {
	return l.config.Threshold
}

// Emit serializes one record and writes it to the connection. The timestamp
// and thread id are captured at the start of emission; the write happens as
// one call under the connection mutex, so concurrent emissions never
// interleave their bytes. Blocking is the transport contract; there is no
// buffering and no retry.
func (l *Logger) Emit(level domain.Level, message string) error {
	if !level.Valid() {
		return fmt.Errorf("emit: invalid level %d", uint8(level))
	}
	if !l.config.Threshold.Allows(level) {
		return nil
	}

	now := time.Now()
	tid := uint64(unix.Gettid())

	frame := wire.EncodeRecord(wire.Header{
		Seconds: uint64(now.Unix()),
		Nanos:   uint32(now.Nanosecond()),
		PID:     l.pid,
		TID:     tid,
		Level:   level,
	}, []byte(l.truncate(message)))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.conn.Write(frame); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransportFailed, err)
	}
	return nil
}

// Error emits at ERROR severity.
func (l *Logger) Error(message string) error { return l.Emit(domain.LevelError, message) }

// Warn emits at WARN severity.
func (l *Logger) Warn(message string) error { return l.Emit(domain.LevelWarn, message) }

// Info emits at INFO severity.
func (l *Logger) Info(message string) error { return l.Emit(domain.LevelInfo, message) }

// Debug emits at DEBUG severity.
func (l *Logger) Debug(message string) error { return l.Emit(domain.LevelDebug, message) }

// Trace emits at TRACE severity.
func (l *Logger) Trace(message string) error { return l.Emit(domain.LevelTrace, message) }

// Errorf emits a formatted message at ERROR severity.
func (l *Logger) Errorf(format string, args ...any) error {
	return l.Emit(domain.LevelError, fmt.Sprintf(format, args...))
}

// Warnf emits a formatted message at WARN severity.
func (l *Logger) Warnf(format string, args ...any) error {
	return l.Emit(domain.LevelWarn, fmt.Sprintf(format, args...))
}

// Infof emits a formatted message at INFO severity.
func (l *Logger) Infof(format string, args ...any) error {
	return l.Emit(domain.LevelInfo, fmt.Sprintf(format, args...))
}

// Debugf emits a formatted message at DEBUG severity.
func (l *Logger) Debugf(format string, args ...any) error {
	return l.Emit(domain.LevelDebug, fmt.Sprintf(format, args...))
}

// Tracef emits a formatted message at TRACE severity.
func (l *Logger) Tracef(format string, args ...any) error {
	return l.Emit(domain.LevelTrace, fmt.Sprintf(format, args...))
}

// Close closes the underlying connection.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.Close()
}

// truncate enforces the payload limit, cutting on a rune boundary so the
// transmitted message stays valid UTF-8, and appends the truncation marker.
func (l *Logger) truncate(message string) string {
	if len(message) <= l.config.MaxMessageBytes {
		return message
	}

	cut := l.config.MaxMessageBytes - len(truncationMarker)
	if cut <= 0 {
		// Limit too small for the marker: hard-cut the message instead.
		cut = l.config.MaxMessageBytes
		for cut > 0 && !utf8.RuneStart(message[cut]) {
			cut--
		}
		return message[:cut]
	}
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut] + truncationMarker
}
