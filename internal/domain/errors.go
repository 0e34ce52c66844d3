package domain

import "errors"

// Domain errors
var (
	// Server side.
	ErrAddressInUse    = errors.New("socket path already in use")
	ErrMalformedHeader = errors.New("malformed record header")
	ErrBadUTF8         = errors.New("message is not valid utf-8")
	ErrOversizeMessage = errors.New("message exceeds maximum length")
	ErrPeerClosed      = errors.New("peer closed connection")
	ErrUnknownProcess  = errors.New("process not observed")
	ErrUnknownThread   = errors.New("thread not observed")
	ErrInvalidPattern  = errors.New("invalid filter pattern")

	// Client side.
	ErrConnectFailed   = errors.New("cannot connect to log server")
	ErrTransportFailed = errors.New("write to log server failed")

	// Configuration.
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Error codes for API responses
const (
	ErrCodeUnknownProcess = "PROCESS_NOT_OBSERVED"
	ErrCodeUnknownThread  = "THREAD_NOT_OBSERVED"
	ErrCodeInvalidPattern = "INVALID_PATTERN"
)

// ErrorCode returns the API error code for a domain error
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnknownProcess):
		return ErrCodeUnknownProcess
	case errors.Is(err, ErrUnknownThread):
		return ErrCodeUnknownThread
	case errors.Is(err, ErrInvalidPattern):
		return ErrCodeInvalidPattern
	default:
		return "INTERNAL_ERROR"
	}
}
