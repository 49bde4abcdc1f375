// Package probe implements the producer side of the telemetry link.
//
// This file defines the datagram emitter.
package probe

import (
	"fmt"
	"net"

	"github.com/xtxerr/qosmon/internal/errors"
	"github.com/xtxerr/qosmon/internal/telemetry"
)

// Emitter sends encoded telemetry records to the display daemon's socket.
//
// The connection is dialed lazily and re-dialed after any send failure: the
// display may start after the probe, restart under it, or not run at all,
// and none of that should stop the probe.
//
// Not safe for concurrent use; the heartbeat loop is the only caller.
type Emitter struct {
	path string
	conn *net.UnixConn
	buf  []byte
}

// NewEmitter creates an emitter for the socket at path. No connection is
// made until the first Send.
func NewEmitter(path string) *Emitter {
	return &Emitter{
		path: path,
		buf:  make([]byte, 0, telemetry.RecordSize),
	}
}

// Send encodes sample and sends it as a single datagram. Failures wrap
// ErrSend and leave the emitter ready to redial on the next call.
func (e *Emitter) Send(sample telemetry.Sample) error {
	if e.conn == nil {
		conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: e.path, Net: "unixgram"})
		if err != nil {
			return fmt.Errorf("%w: dial %s: %v", errors.ErrSend, e.path, err)
		}
		e.conn = conn
	}

	e.buf = telemetry.AppendEncode(e.buf[:0], sample)

	if _, err := e.conn.Write(e.buf); err != nil {
		// The destination socket may have been re-created since the dial.
		// A fresh dial next call picks up the new one.
		e.conn.Close()
		e.conn = nil
		return fmt.Errorf("%w: %s: %v", errors.ErrSend, e.path, err)
	}

	return nil
}

// Path returns the destination socket path.
func (e *Emitter) Path() string {
	return e.path
}

// Close releases the connection if one is open.
func (e *Emitter) Close() error {
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}
