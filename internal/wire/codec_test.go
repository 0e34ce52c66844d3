package wire

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charliek/mplog/internal/domain"
)

const testMax = 16 * 1024 * 1024

func TestEncodeRecord_Layout(t *testing.T) {
	msg := []byte("hello")
	buf := EncodeRecord(Header{
		Seconds: 1_700_000_000,
		Nanos:   123_456_789,
		PID:     100,
		TID:     7,
		Level:   domain.LevelInfo,
	}, msg)

	require.Len(t, buf, HeaderSize+len(msg))

	assert.Equal(t, uint64(1_700_000_000), binary.LittleEndian.Uint64(buf[0:8]))
	assert.Equal(t, uint32(123_456_789), binary.LittleEndian.Uint32(buf[8:12]))
	assert.Equal(t, uint32(100), binary.LittleEndian.Uint32(buf[12:16]))
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(buf[16:24]))
	assert.Equal(t, uint64(len(msg)), binary.LittleEndian.Uint64(buf[24:32]))
	assert.Equal(t, byte(3), buf[32]) // INFO
	assert.Equal(t, msg, buf[HeaderSize:])
}

func TestRoundTrip(t *testing.T) {
	for _, lvl := range []domain.Level{
		domain.LevelError, domain.LevelWarn, domain.LevelInfo,
		domain.LevelDebug, domain.LevelTrace,
	} {
		in := Header{
			Seconds: 42,
			Nanos:   999_999_999,
			PID:     -1, // pid is signed on the wire
			TID:     0xdeadbeefcafe,
			Level:   lvl,
		}
		msg := []byte("round trip §✓")
		buf := EncodeRecord(in, msg)

		out, err := DecodeHeader(buf[:HeaderSize], testMax)
		require.NoError(t, err)

		in.Length = uint64(len(msg))
		assert.Equal(t, in, out)
		assert.Equal(t, msg, buf[HeaderSize:])
	}
}

func TestDecodeHeader_EmptyMessage(t *testing.T) {
	buf := EncodeRecord(Header{Level: domain.LevelError}, nil)
	h, err := DecodeHeader(buf, testMax)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), h.Length)
}

func TestDecodeHeader_RejectsBadNanos(t *testing.T) {
	buf := EncodeRecord(Header{Nanos: 1_000_000_000, Level: domain.LevelInfo}, nil)
	_, err := DecodeHeader(buf, testMax)
	assert.ErrorIs(t, err, domain.ErrMalformedHeader)
}

func TestDecodeHeader_RejectsBadLevel(t *testing.T) {
	for _, lvl := range []byte{0, 6, 9, 255} {
		buf := EncodeRecord(Header{Level: domain.Level(lvl)}, nil)
		_, err := DecodeHeader(buf, testMax)
		assert.ErrorIs(t, err, domain.ErrMalformedHeader, "level %d", lvl)
	}
}

func TestDecodeHeader_RejectsOversizeLength(t *testing.T) {
	buf := EncodeRecord(Header{Level: domain.LevelInfo}, nil)
	binary.LittleEndian.PutUint64(buf[24:32], testMax+1)

	_, err := DecodeHeader(buf, testMax)
	assert.ErrorIs(t, err, domain.ErrOversizeMessage)

	// At exactly the maximum the header is accepted.
	binary.LittleEndian.PutUint64(buf[24:32], testMax)
	_, err = DecodeHeader(buf, testMax)
	assert.NoError(t, err)
}

func TestDecodeHeader_RejectsShortBuffer(t *testing.T) {
	_, err := DecodeHeader(make([]byte, HeaderSize-1), testMax)
	assert.ErrorIs(t, err, domain.ErrMalformedHeader)

	_, err = DecodeHeader(nil, testMax)
	assert.True(t, errors.Is(err, domain.ErrMalformedHeader))
}
