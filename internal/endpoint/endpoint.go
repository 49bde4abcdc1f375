// Package endpoint provides the bound local datagram socket the display
// daemon receives telemetry records on.
//
// The endpoint claims exactly one filesystem path for its lifetime. A path
// left behind by a crashed instance is removed at open time; a path held by
// a running instance is detected with a probe dial and surfaces as a bind
// failure, so two displays never share a socket.
package endpoint

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/xtxerr/qosmon/config"
	"github.com/xtxerr/qosmon/internal/errors"
	"github.com/xtxerr/qosmon/internal/logging"
)

var log = logging.Component("endpoint")

// Endpoint owns a datagram socket bound to a filesystem path, and the path
// itself. Methods are not safe for concurrent use; the sampler loop is the
// only intended caller.
type Endpoint struct {
	conn *net.UnixConn
	path string
	buf  []byte

	closeOnce sync.Once
}

// =============================================================================
// Path Claim
// =============================================================================

// Open claims path and binds a datagram socket to it.
//
// A pre-existing object at path is treated as leftover from a crashed
// instance and removed before binding. A socket that still answers a probe
// dial belongs to a running instance and is left in place, so the bind
// collides on it. Removal failures wrap ErrResourceConflict, bind failures
// wrap ErrBindFailure; both are startup fatal (errors.IsStartupFatal).
//
// bufferSize caps the largest datagram TryReceive can drain whole. Values
// <= 0 use config.DefaultReceiveBufferSize.
func Open(path string, bufferSize int) (*Endpoint, error) {
	if bufferSize <= 0 {
		bufferSize = config.DefaultReceiveBufferSize
	}

	if err := clearStalePath(path); err != nil {
		return nil, err
	}

	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrBindFailure, path, err)
	}

	log.Debug("bound datagram endpoint", "path", path, "buffer_size", bufferSize)

	return &Endpoint{
		conn: conn,
		path: path,
		buf:  make([]byte, bufferSize),
	}, nil
}

// clearStalePath removes a leftover filesystem object at path so the bind can
// proceed.
func clearStalePath(path string) error {
	fi, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: inspect %s: %v", errors.ErrResourceConflict, path, err)
	}

	if fi.Mode()&os.ModeSocket != 0 && socketAlive(path) {
		// Another instance holds the path. Leave it; the bind reports the
		// conflict.
		return nil
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: remove %s: %v", errors.ErrResourceConflict, path, err)
	}

	log.Debug("removed stale bind path", "path", path)
	return nil
}

// socketAlive reports whether the datagram socket at path has a live owner.
// Connecting to an orphaned socket fails because no process holds the inode
// anymore, so a successful dial means another instance is bound there.
func socketAlive(path string) bool {
	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// =============================================================================
// Receive and Teardown
// =============================================================================

// TryReceive attempts to read at most one queued datagram.
//
// An empty queue is the expected steady state and returns (nil, nil). A
// successful read returns a slice into an internal buffer, valid only until
// the next call. Receive failures wrap ErrReceive (ErrClosed once the
// endpoint is closed); the caller logs and keeps polling.
func (e *Endpoint) TryReceive() ([]byte, error) {
	// An immediate deadline turns the read into a poll: either a datagram is
	// already queued or the call returns with a timeout.
	e.conn.SetReadDeadline(time.Now())

	n, _, err := e.conn.ReadFromUnix(e.buf)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrDeadlineExceeded):
			return nil, nil
		case errors.Is(err, net.ErrClosed):
			return nil, fmt.Errorf("%w: %s", errors.ErrClosed, e.path)
		default:
			return nil, fmt.Errorf("%w: %v", errors.ErrReceive, err)
		}
	}

	return e.buf[:n], nil
}

// Path returns the filesystem path the endpoint is bound to.
func (e *Endpoint) Path() string {
	return e.path
}

// Close releases the socket and removes the bound path so the next startup
// binds without conflict. Safe to call more than once; the path removal is
// best effort.
func (e *Endpoint) Close() error {
	var err error
	e.closeOnce.Do(func() {
		err = e.conn.Close()
		os.Remove(e.path)
	})
	return err
}
