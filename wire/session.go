package wire

import (
	"net"
	"sync"
	"sync/atomic"

	"chatwave/domain"
	"chatwave/errors"
)

// Session wraps one transport connection with message framing.
//
// Send is safe for concurrent use: a handler's reply path and the
// registry's broadcast fan-out may target the same session, so frame
// writes are serialized under a mutex. Receive must only be called
// from the single owning reader goroutine.
//
// Close is idempotent and unblocks a pending Receive by closing the
// underlying connection.
type Session struct {
	conn      net.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
}

func NewSession(conn net.Conn) *Session {
	return &Session{conn: conn}
}

// Send blocks until the message is fully written. A transport failure
// closes the session; subsequent sends fail with ErrSessionClosed.
func (s *Session) Send(m domain.Message) error {
	if s.closed.Load() {
		return errors.ErrSessionClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed.Load() {
		return errors.ErrSessionClosed
	}
	if err := EncodeFrame(s.conn, m); err != nil {
		// An over-bound frame is rejected before any byte is written;
		// the session stays usable.
		if err == errors.ErrFrameTooLarge {
			return err
		}
		_ = s.Close()
		return err
	}
	return nil
}

// Receive blocks until one complete message is available. It returns
// io.EOF when the peer closes cleanly and a decode error on malformed
// input. Closing the session makes a pending Receive return promptly.
func (s *Session) Receive() (domain.Message, error) {
	return DecodeFrame(s.conn)
}

// Close releases the transport. Safe to call from any goroutine and
// any number of times.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		err = s.conn.Close()
	})
	return err
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// RemoteAddr returns the remote address for logging.
func (s *Session) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}
