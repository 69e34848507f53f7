// Package client implements the chat client core: a controller owning
// one session, with synchronous sends and a background receive loop
// pushing inbound messages to a display sink.
package client

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"chatwave/domain"
	"chatwave/errors"
	"chatwave/wire"
)

// Sink receives everything the controller wants displayed. It is the
// only coupling point to the presentation layer; implementations run
// on their own thread of control.
type Sink interface {
	OnMessage(m domain.Message)
	OnDisconnected()
}

// Controller owns one client-side session. Sends run on the caller's
// goroutine; a dedicated receive loop runs for the lifetime of the
// connection and notifies the sink of disconnection exactly once.
type Controller struct {
	log      *slog.Logger
	sink     Sink
	username string

	session    *wire.Session
	connected  atomic.Bool
	notifyOnce sync.Once
}

func NewController(log *slog.Logger, username string, sink Sink) *Controller {
	return &Controller{log: log, username: username, sink: sink}
}

// Connect dials the server and performs the username handshake: one
// message carrying the username, no reply awaited. A rejection, if
// any, arrives asynchronously on the receive loop like any other
// message.
func (c *Controller) Connect(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	c.session = wire.NewSession(conn)

	if err := c.session.Send(domain.NewText(c.username, c.username)); err != nil {
		_ = c.session.Close()
		return fmt.Errorf("username handshake: %w", err)
	}

	c.connected.Store(true)
	go c.receiveLoop()
	return nil
}

// SendText relays a chat line or a server command. Blank input is a
// no-op; a transport failure disconnects locally and surfaces through
// the sink.
func (c *Controller) SendText(content string) {
	if !c.connected.Load() || strings.TrimSpace(content) == "" {
		return
	}
	if err := c.session.Send(domain.NewText(content, c.username)); err != nil {
		if err == errors.ErrFrameTooLarge {
			c.sink.OnMessage(domain.NewNotice(
				fmt.Sprintf("Message too long. Maximum size is %dMB.", domain.MaxMessageSize/1024/1024)))
			return
		}
		c.log.Debug("Send failed", "error", err)
		c.handleDisconnection()
	}
}

// SendFile relays a file payload. Oversized payloads are rejected
// locally, before any network I/O, with a notice on the sink.
func (c *Controller) SendFile(filename string, payload []byte) {
	if !c.connected.Load() || filename == "" || payload == nil {
		return
	}
	if len(payload) > domain.MaxFileSize {
		c.sink.OnMessage(domain.NewNotice(fmt.Sprintf(
			"File too large. Maximum size is %dMB", domain.MaxFileSize/1024/1024)))
		return
	}
	if err := c.session.Send(domain.NewFile(filename, payload, c.username)); err != nil {
		c.log.Debug("Send failed", "error", err)
		c.handleDisconnection()
	}
}

// Disconnect closes the session. The receive loop observes the close
// and runs the usual disconnection path.
func (c *Controller) Disconnect() {
	if c.session != nil {
		_ = c.session.Close()
	}
}

// Connected reports whether the controller still considers the
// session usable.
func (c *Controller) Connected() bool {
	return c.connected.Load()
}

func (c *Controller) Username() string {
	return c.username
}

// receiveLoop forwards every inbound message to the sink until the
// stream ends or a frame fails to decode.
func (c *Controller) receiveLoop() {
	for {
		m, err := c.session.Receive()
		if err != nil {
			c.log.Debug("Receive loop ended", "reason", err)
			break
		}
		c.sink.OnMessage(m)
	}
	c.handleDisconnection()
}

func (c *Controller) handleDisconnection() {
	c.connected.Store(false)
	if c.session != nil {
		_ = c.session.Close()
	}
	c.notifyOnce.Do(c.sink.OnDisconnected)
}
