//go:build linux

package server

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/charliek/mplog/internal/constants"
	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/store"
	"github.com/charliek/mplog/internal/wire"
)

// reader drives one connected stream. The socket is non-blocking and
// registered with a private epoll instance in edge-triggered mode; the run
// loop alternates between draining reads until EAGAIN and parking in
// EpollWait for the next readiness edge. Partial reads of a header or
// payload resume across drain/wait cycles.
type reader struct {
	fd         int
	epfd       int
	store      *store.Store
	maxMessage uint64

	header  [wire.HeaderSize]byte
	payload []byte
}

func newReader(fd int, st *store.Store, maxMessage uint64) (*reader, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("set nonblock: %w", err)
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLET, Fd: int32(fd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("epoll_ctl: %w", err)
	}

	return &reader{
		fd:         fd,
		epfd:       epfd,
		store:      st,
		maxMessage: maxMessage,
		payload:    make([]byte, 0, constants.InitialPayloadCapacity),
	}, nil
}

// run reassembles records until the peer goes away. It returns nil when the
// peer closes cleanly on a record boundary and an error for every other
// termination (truncated record, malformed header, invalid UTF-8, read
// failure). Either way the connection's descriptors are released; the store
// keeps whatever was ingested before the failure.
func (r *reader) run() error {
	defer unix.Close(r.epfd)
	defer unix.Close(r.fd)

	for {
		n, err := r.readFull(r.header[:])
		if err != nil {
			if errors.Is(err, domain.ErrPeerClosed) && n == 0 {
				return nil
			}
			return fmt.Errorf("mid-header: %w", err)
		}

		hdr, err := wire.DecodeHeader(r.header[:], r.maxMessage)
		if err != nil {
			return err
		}

		if uint64(cap(r.payload)) < hdr.Length {
			r.payload = make([]byte, hdr.Length)
		} else {
			r.payload = r.payload[:hdr.Length]
		}
		if _, err := r.readFull(r.payload); err != nil {
			return fmt.Errorf("mid-payload: %w", err)
		}

		if !utf8.Valid(r.payload) {
			return domain.ErrBadUTF8
		}

		r.store.Ingest(hdr.PID, hdr.TID, domain.StoredLog{
			Seconds: hdr.Seconds,
			Nanos:   hdr.Nanos,
			Level:   hdr.Level,
			Message: string(r.payload),
		})
	}
}

// readFull fills buf completely. The drain phase reads until the kernel
// reports EWOULDBLOCK; the wait phase parks in EpollWait until the next
// edge. Returns the bytes read so far alongside any error so the caller can
// tell a close at a record boundary from one mid-record.
func (r *reader) readFull(buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		k, err := unix.Read(r.fd, buf[n:])
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			if werr := r.waitReadable(); werr != nil {
				return n, fmt.Errorf("epoll_wait: %w", werr)
			}
		case err != nil:
			return n, fmt.Errorf("read: %w", err)
		case k == 0:
			return n, domain.ErrPeerClosed
		default:
			n += k
		}
	}
	return n, nil
}

// waitReadable blocks until the socket reports a readiness edge. Edges are
// latched by the kernel, so bytes arriving between the EAGAIN and this call
// are not lost.
func (r *reader) waitReadable() error {
	var events [1]unix.EpollEvent
	for {
		_, err := unix.EpollWait(r.epfd, events[:], -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}
