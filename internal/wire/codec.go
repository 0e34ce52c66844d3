// Package wire implements the record framing shared by the client emitter
// and the server readers: a fixed 33-byte little-endian header followed by
// the message payload.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/charliek/mplog/internal/domain"
)

// HeaderSize is the fixed byte length of a record header on the wire.
const HeaderSize = 33

// Header offsets. The layout is little-endian with no padding regardless of
// host architecture.
const (
	offSeconds = 0  // u64
	offNanos   = 8  // u32
	offPID     = 12 // i32
	offTID     = 16 // u64
	offLength  = 24 // u64
	offLevel   = 32 // u8
)

// maxNanos is the exclusive upper bound for the sub-second field.
const maxNanos = 1_000_000_000

// Header is a decoded record header. Length is the byte count of the message
// payload that follows it on the wire.
type Header struct {
	Seconds uint64
	Nanos   uint32
	PID     int32
	TID     uint64
	Length  uint64
	Level   domain.Level
}

// AppendRecord appends a complete record (header and payload) to dst and
// returns the extended slice.
func AppendRecord(dst []byte, h Header, message []byte) []byte {
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[offSeconds:], h.Seconds)
	binary.LittleEndian.PutUint32(hdr[offNanos:], h.Nanos)
	binary.LittleEndian.PutUint32(hdr[offPID:], uint32(h.PID))
	binary.LittleEndian.PutUint64(hdr[offTID:], h.TID)
	binary.LittleEndian.PutUint64(hdr[offLength:], uint64(len(message)))
	hdr[offLevel] = byte(h.Level)

	dst = append(dst, hdr[:]...)
	return append(dst, message...)
}

// EncodeRecord serializes a complete record into a fresh buffer.
func EncodeRecord(h Header, message []byte) []byte {
	return AppendRecord(make([]byte, 0, HeaderSize+len(message)), h, message)
}

// DecodeHeader parses and validates a fixed-size header. maxLength bounds the
// declared payload length; oversize headers are rejected before any payload
// is read.
func DecodeHeader(b []byte, maxLength uint64) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, fmt.Errorf("%w: got %d header bytes, want %d",
			domain.ErrMalformedHeader, len(b), HeaderSize)
	}

	h := Header{
		Seconds: binary.LittleEndian.Uint64(b[offSeconds:]),
		Nanos:   binary.LittleEndian.Uint32(b[offNanos:]),
		PID:     int32(binary.LittleEndian.Uint32(b[offPID:])),
		TID:     binary.LittleEndian.Uint64(b[offTID:]),
		Length:  binary.LittleEndian.Uint64(b[offLength:]),
		Level:   domain.Level(b[offLevel]),
	}

	if h.Nanos >= maxNanos {
		return Header{}, fmt.Errorf("%w: nanos %d out of range", domain.ErrMalformedHeader, h.Nanos)
	}
	if !h.Level.Valid() {
		return Header{}, fmt.Errorf("%w: level %d out of range", domain.ErrMalformedHeader, uint8(h.Level))
	}
	if h.Length > maxLength {
		return Header{}, fmt.Errorf("%w: declared length %d exceeds maximum %d",
			domain.ErrOversizeMessage, h.Length, maxLength)
	}

	return h, nil
}
