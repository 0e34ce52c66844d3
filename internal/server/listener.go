//go:build linux

// Package server owns the Unix-socket side of mplog: a listener that accepts
// client connections and a per-connection reader that reassembles records and
// hands them to the aggregation store.
//
// The reader works on raw file descriptors with edge-triggered epoll, so the
// whole package is Linux-only.
package server

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/charliek/mplog/internal/constants"
	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/store"
)

// Config holds configuration for the listener
type Config struct {
	SocketPath      string
	MaxMessageBytes uint64
}

// Listener binds the Unix stream socket and spawns one reader goroutine per
// accepted connection.
type Listener struct {
	config Config
	store  *store.Store

	fd   int
	quit chan struct{}
	wg   sync.WaitGroup
}

// NewListener creates a listener bound to nothing yet.
func NewListener(config Config, st *store.Store) *Listener {
	if config.SocketPath == "" {
		config.SocketPath = constants.DefaultSocketPath
	}
	if config.MaxMessageBytes == 0 {
		config.MaxMessageBytes = constants.DefaultMaxMessageBytes
	}
	return &Listener{
		config: config,
		store:  st,
		fd:     -1,
		quit:   make(chan struct{}),
	}
}

// Start binds the socket path and begins accepting connections. The path
// must be free: an existing socket file is an error, never stolen.
func (l *Listener) Start() error {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("socket: %w", err)
	}

	addr := &unix.SockaddrUnix{Name: l.config.SocketPath}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		if errors.Is(err, unix.EADDRINUSE) {
			return fmt.Errorf("%w: %s", domain.ErrAddressInUse, l.config.SocketPath)
		}
		return fmt.Errorf("bind %s: %w", l.config.SocketPath, err)
	}

	if err := unix.Listen(fd, constants.ListenBacklog); err != nil {
		unix.Close(fd)
		os.Remove(l.config.SocketPath)
		return fmt.Errorf("listen %s: %w", l.config.SocketPath, err)
	}

	l.fd = fd
	l.wg.Add(1)
	go l.acceptLoop()

	log.Printf("listening on %s", l.config.SocketPath)
	return nil
}

// Stop closes the listening socket and unlinks its path. Connections already
// accepted are left to die with the process; their readers hold no state
// outside the store.
func (l *Listener) Stop() {
	close(l.quit)
	if l.fd >= 0 {
		unix.Close(l.fd)
	}
	l.wg.Wait()
	os.Remove(l.config.SocketPath)
}

// SocketPath returns the bound socket path.
func (l *Listener) SocketPath() string {
	return l.config.SocketPath
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()
	for {
		nfd, _, err := unix.Accept4(l.fd, unix.SOCK_CLOEXEC)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			select {
			case <-l.quit:
				return
			default:
			}
			log.Printf("accept error: %v", err)
			if errors.Is(err, unix.EBADF) || errors.Is(err, unix.EINVAL) {
				return
			}
			// Transient errors (fd limit etc) should not kill the accept loop.
			continue
		}

		r, err := newReader(nfd, l.store, l.config.MaxMessageBytes)
		if err != nil {
			log.Printf("connection setup failed: %v", err)
			unix.Close(nfd)
			continue
		}
		go func() {
			if err := r.run(); err != nil {
				log.Printf("connection failed: %v", err)
			}
		}()
	}
}
