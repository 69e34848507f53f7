package wire

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chatwave/domain"
	"chatwave/errors"
)

func pipeSessions(t *testing.T) (*Session, *Session) {
	t.Helper()
	left, right := net.Pipe()
	a, b := NewSession(left), NewSession(right)
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}

func TestSession_SendReceive(t *testing.T) {
	a, b := pipeSessions(t)

	go func() {
		_ = a.Send(domain.NewText("ping", "alice"))
	}()

	msg, err := b.Receive()
	require.NoError(t, err)
	require.Equal(t, "ping", msg.Content)
	require.Equal(t, "alice", msg.Sender)
}

func TestSession_SendAfterCloseFails(t *testing.T) {
	a, _ := pipeSessions(t)

	require.NoError(t, a.Close())
	err := a.Send(domain.NewText("too late", "alice"))
	require.ErrorIs(t, err, errors.ErrSessionClosed)
}

func TestSession_OversizedSendLeavesSessionOpen(t *testing.T) {
	a, b := pipeSessions(t)

	err := a.Send(domain.NewText(strings.Repeat("a", domain.MaxMessageSize+1), "alice"))
	require.ErrorIs(t, err, errors.ErrFrameTooLarge)
	require.False(t, a.Closed())

	go func() {
		_ = a.Send(domain.NewText("still here", "alice"))
	}()
	msg, err := b.Receive()
	require.NoError(t, err)
	require.Equal(t, "still here", msg.Content)
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	a, _ := pipeSessions(t)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	require.True(t, a.Closed())
}

func TestSession_CloseUnblocksPendingReceive(t *testing.T) {
	a, _ := pipeSessions(t)

	errs := make(chan error, 1)
	go func() {
		_, err := a.Receive()
		errs <- err
	}()

	// Give the receiver a moment to block before closing from another
	// goroutine.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, a.Close())

	select {
	case err := <-errs:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Receive did not return after Close")
	}
}

func TestSession_PeerCloseEndsReceive(t *testing.T) {
	a, b := pipeSessions(t)

	require.NoError(t, b.Close())
	_, err := a.Receive()
	require.Error(t, err)
}

func TestSession_ConcurrentSendsAllArrive(t *testing.T) {
	a, b := pipeSessions(t)

	const senders = 8
	for i := 0; i < senders; i++ {
		go func() {
			_ = a.Send(domain.NewText("hi", "alice"))
		}()
	}

	for i := 0; i < senders; i++ {
		msg, err := b.Receive()
		require.NoError(t, err)
		require.Equal(t, "hi", msg.Content)
	}
}
