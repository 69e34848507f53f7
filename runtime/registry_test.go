package runtime

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chatwave/domain"
	"chatwave/errors"
	"chatwave/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSink collects everything delivered to it.
type recordingSink struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func (s *recordingSink) Send(m domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, m)
	return nil
}

func (s *recordingSink) byKind(kind domain.Kind) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Message
	for _, m := range s.msgs {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func (s *recordingSink) all() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.msgs...)
}

// brokenSink simulates a permanently failed transport.
type brokenSink struct{}

func (brokenSink) Send(domain.Message) error { return errors.ErrSessionClosed }

func TestRegistry_Register_FirstJoinSucceeds(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())
	alice := &recordingSink{}

	// When alice registers on an empty registry
	req.True(registry.Register("alice", alice))

	// Then she is listed
	req.Equal([]string{"alice"}, registry.Usernames())
	req.Equal(1, registry.Online())

	// And she received the welcome and the listing, but not her own join
	req.Empty(alice.byKind(domain.KindUserJoin))
	notices := alice.byKind(domain.KindServerNotice)
	req.Len(notices, 2)
	req.Equal(domain.WelcomeMessage, notices[0].Content)
	req.Equal("Online users: alice", notices[1].Content)
}

func TestRegistry_Register_DuplicateNameIsRejectedWithoutMutation(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())
	alice := &recordingSink{}
	impostor := &recordingSink{}

	req.True(registry.Register("alice", alice))
	before := len(alice.all())

	// When a second session claims the same name
	req.False(registry.Register("alice", impostor))

	// Then nothing changed: no new broadcast, no listing mutation,
	// and the impostor got nothing from the registry
	req.Equal([]string{"alice"}, registry.Usernames())
	req.Len(alice.all(), before)
	req.Empty(impostor.all())
}

func TestRegistry_Register_JoinIsBroadcastToOthersOnly(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())
	alice := &recordingSink{}
	bob := &recordingSink{}

	req.True(registry.Register("alice", alice))
	req.True(registry.Register("bob", bob))

	// alice hears about bob; bob never hears about himself
	joins := alice.byKind(domain.KindUserJoin)
	req.Len(joins, 1)
	req.Equal("bob joined the chat", joins[0].Content)
	req.Empty(bob.byKind(domain.KindUserJoin))

	// bob's listing reflects both users
	notices := bob.byKind(domain.KindServerNotice)
	req.Len(notices, 2)
	req.Equal("Online users: alice, bob", notices[1].Content)
}

func TestRegistry_Unregister_BroadcastsLeaveOnce(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())
	alice := &recordingSink{}
	bob := &recordingSink{}
	req.True(registry.Register("alice", alice))
	req.True(registry.Register("bob", bob))

	// When alice leaves, twice
	registry.Unregister("alice")
	registry.Unregister("alice")

	// Then bob heard it exactly once and alice is gone
	leaves := bob.byKind(domain.KindUserLeave)
	req.Len(leaves, 1)
	req.Equal("alice left the chat", leaves[0].Content)
	req.Equal([]string{"bob"}, registry.Usernames())
}

func TestRegistry_Unregister_UnknownNameIsNoOp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())
	alice := &recordingSink{}
	req.True(registry.Register("alice", alice))

	registry.Unregister("nobody")

	req.Empty(alice.byKind(domain.KindUserLeave))
	req.Equal([]string{"alice"}, registry.Usernames())
}

func TestRegistry_Broadcast_ExcludesNamedUser(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())
	alice := &recordingSink{}
	bob := &recordingSink{}
	carol := &recordingSink{}
	req.True(registry.Register("alice", alice))
	req.True(registry.Register("bob", bob))
	req.True(registry.Register("carol", carol))

	registry.Broadcast(domain.NewText("hey", "alice"), "alice")

	req.Empty(alice.byKind(domain.KindText))
	req.Len(bob.byKind(domain.KindText), 1)
	req.Len(carol.byKind(domain.KindText), 1)
}

func TestRegistry_Broadcast_FailureIsIsolated(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())
	alice := &recordingSink{}
	carol := &recordingSink{}
	req.True(registry.Register("alice", alice))
	req.True(registry.Register("bob", brokenSink{}))
	req.True(registry.Register("carol", carol))

	// When a broadcast hits bob's permanently broken transport
	registry.Broadcast(domain.NewText("still here?", "server"), "")

	// Then the other recipients still got the message
	req.Len(alice.byKind(domain.KindText), 1)
	req.Len(carol.byKind(domain.KindText), 1)
}

func TestRegistry_Register_NameFreedAfterUnregister(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())

	req.True(registry.Register("alice", &recordingSink{}))
	req.False(registry.Register("alice", &recordingSink{}))

	registry.Unregister("alice")

	req.True(registry.Register("alice", &recordingSink{}))
}

func TestRegistry_Register_ConcurrentSameNameOnlyOneWins(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- registry.Register("alice", &recordingSink{})
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	req.Equal(1, wins)
	req.Equal([]string{"alice"}, registry.Usernames())
}

func TestRegistry_Register_DeliversThroughSinkContract(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := NewRegistry(testLogger())
	alice := mocks.NewMockMessageSink(ctrl)
	bob := mocks.NewMockMessageSink(ctrl)

	// Given alice is registered (welcome notice plus online listing)
	alice.EXPECT().Send(gomock.Any()).Return(nil).Times(2)
	req.True(registry.Register("alice", alice))

	// When bob joins, alice sees exactly one join broadcast
	alice.EXPECT().Send(gomock.Any()).Do(func(m domain.Message) {
		req.Equal(domain.KindUserJoin, m.Kind)
		req.Equal("bob joined the chat", m.Content)
	}).Return(nil).Times(1)
	bob.EXPECT().Send(gomock.Any()).Return(nil).Times(2)
	req.True(registry.Register("bob", bob))

	// Then both usernames are held
	req.ElementsMatch([]string{"alice", "bob"}, registry.Usernames())
}
