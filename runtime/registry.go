package runtime

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"chatwave/contract"
	"chatwave/domain"
)

// Registry is the authoritative mapping of username to delivery sink.
// A username is present if and only if its handler is connected.
//
// Register runs the presence check, the insertion and the join
// broadcast as one critical section so that two simultaneous joins of
// the same name cannot both succeed and nobody observes a partially
// updated member list. Broadcast failures are isolated per recipient:
// a failed send closes that recipient's own session, whose handler
// then runs its disconnect path.
type Registry struct {
	mu       sync.Mutex
	log      *slog.Logger
	sessions map[string]contract.MessageSink
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:      log,
		sessions: make(map[string]contract.MessageSink),
	}
}

// Register claims username for sink. It returns false without any
// mutation when the name is already taken. On success the join notice
// goes to every other session, then the newcomer receives the welcome
// notice and the online listing.
func (r *Registry) Register(username string, sink contract.MessageSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.sessions[username]; taken {
		return false
	}
	r.sessions[username] = sink

	r.broadcastLocked(domain.NewJoin(username), username)
	r.sendLocked(username, domain.NewNotice(domain.WelcomeMessage))
	r.sendLocked(username, domain.NewNotice(r.listingLocked()))

	r.log.Info("User joined", "username", username, "online", len(r.sessions))
	return true
}

// Unregister removes username and announces the departure to the
// remaining sessions. Calling it for an absent name is a no-op.
func (r *Registry) Unregister(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[username]; !ok {
		return
	}
	delete(r.sessions, username)
	r.broadcastLocked(domain.NewLeave(username), "")

	r.log.Info("User left", "username", username, "online", len(r.sessions))
}

// Broadcast delivers m to every registered session except exclude.
// Pass an empty string to exclude nobody.
func (r *Registry) Broadcast(m domain.Message, exclude string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(m, exclude)
}

// Usernames returns a point-in-time snapshot of the online users.
func (r *Registry) Usernames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := lo.Keys(r.sessions)
	sort.Strings(names)
	return names
}

// Online returns the number of registered sessions.
func (r *Registry) Online() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll drops every session, announcing nothing. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for username, sink := range r.sessions {
		_ = sink.Send(domain.NewNotice(domain.GoodbyeMessage))
		if closer, ok := sink.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		delete(r.sessions, username)
	}
}

func (r *Registry) broadcastLocked(m domain.Message, exclude string) {
	for username, sink := range r.sessions {
		if username == exclude {
			continue
		}
		if err := sink.Send(m); err != nil {
			// The failed sink closed itself; its handler's blocked read
			// returns next and runs the disconnect path. Delivery to
			// the other recipients continues.
			r.log.Warn("Delivery failed", "username", username, "error", err)
		}
	}
}

func (r *Registry) sendLocked(username string, m domain.Message) {
	sink, ok := r.sessions[username]
	if !ok {
		return
	}
	if err := sink.Send(m); err != nil {
		r.log.Warn("Delivery failed", "username", username, "error", err)
	}
}

func (r *Registry) listingLocked() string {
	names := lo.Keys(r.sessions)
	sort.Strings(names)
	return fmt.Sprintf("Online users: %s", strings.Join(names, ", "))
}
