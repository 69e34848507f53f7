package runtime

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"chatwave/contract"
	"chatwave/domain"
	"chatwave/moderation"
	"chatwave/wire"
)

// Handler owns one server-side session and drives it through the
// handshake, the active read loop and the terminal disconnect.
//
// AWAITING_HANDSHAKE -> ACTIVE -> DISCONNECTED. Disconnect is
// idempotent; a handler that never registered its username releases
// the session without triggering a leave broadcast.
type Handler struct {
	log       *slog.Logger
	session   *wire.Session
	registry  contract.IRegistry
	store     contract.FileStore
	index     contract.FileIndex
	moderator *moderation.Moderator

	username       string
	registered     bool
	disconnectOnce sync.Once
}

func NewHandler(log *slog.Logger, session *wire.Session, registry contract.IRegistry,
	store contract.FileStore, index contract.FileIndex, moderator *moderation.Moderator) *Handler {
	return &Handler{
		log:       log,
		session:   session,
		registry:  registry,
		store:     store,
		index:     index,
		moderator: moderator,
	}
}

// Run performs the join handshake and then serves the session until it
// disconnects. It is the only goroutine reading from the session.
func (h *Handler) Run() {
	defer h.Disconnect()

	if !h.handshake() {
		return
	}

	for {
		m, err := h.session.Receive()
		if err != nil {
			// Peer closed, transport fault or malformed frame:
			// all resolve to this handler's own disconnect.
			h.log.Debug("Session read ended", "username", h.username, "reason", err)
			return
		}
		h.handle(m)
	}
}

// handshake reads the first message, which must carry the proposed
// username as its content, and attempts registration. On rejection the
// handler sends an explanatory notice and never reaches ACTIVE.
func (h *Handler) handshake() bool {
	m, err := h.session.Receive()
	if err != nil {
		h.log.Debug("Handshake read failed", "remote", h.session.RemoteAddr(), "reason", err)
		return false
	}

	username := strings.TrimSpace(m.Content)
	if err := domain.ValidateUsername(username); err != nil {
		_ = h.session.Send(domain.NewNotice(
			fmt.Sprintf("Username %q is not allowed. Pick 1-32 printable characters without spaces.", username)))
		return false
	}

	if !h.registry.Register(username, h.session) {
		_ = h.session.Send(domain.NewNotice(
			fmt.Sprintf("Username '%s' is already taken. Please try again.", username)))
		return false
	}

	h.username = username
	h.registered = true
	return true
}

func (h *Handler) handle(m domain.Message) {
	switch {
	case m.IsCommand():
		h.handleCommand(m.Content)
	case m.Kind == domain.KindFile:
		h.handleFile(m)
	default:
		h.handleText(m)
	}
}

// handleCommand answers slash commands. Commands never reach other
// sessions.
func (h *Handler) handleCommand(command string) {
	cmd := strings.ToLower(strings.Fields(command)[0])

	switch cmd {
	case domain.CommandUsers:
		h.notify(fmt.Sprintf("Online users: %s", strings.Join(h.registry.Usernames(), ", ")))
	case domain.CommandHelp:
		h.notify(domain.HelpText)
	case domain.CommandLeave:
		h.Disconnect()
	default:
		h.notify(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
}

// handleText censors and relays a chat message to everyone but the
// sender, who already sees their own input locally.
func (h *Handler) handleText(m domain.Message) {
	m.Content = h.moderator.Censor(m.Content)
	h.registry.Broadcast(m.WithSender(h.username), h.username)
}

// handleFile validates, persists and relays a file payload. The relay
// includes the uploader: the echoed copy is their confirmation that the
// server accepted the file.
func (h *Handler) handleFile(m domain.Message) {
	if m.Filename == "" || len(m.Payload) == 0 {
		h.notify("File message is missing a filename or payload.")
		return
	}
	if len(m.Payload) > domain.MaxFileSize {
		h.notify(fmt.Sprintf("File too large. Maximum size is %dMB.", domain.MaxFileSize/1024/1024))
		return
	}

	stored, err := h.store.Save(m.Filename, m.Payload)
	if err != nil {
		h.log.Error("File persist failed", "username", h.username, "filename", m.Filename, "error", err)
		h.notify(fmt.Sprintf("Error processing file: %v", err))
		return
	}
	stored.Sender = h.username
	if err := h.index.Add(stored); err != nil {
		// The payload itself is safe on disk; a missing index row only
		// hides it from the viewer tool.
		h.log.Warn("File index update failed", "stored_name", stored.StoredName, "error", err)
	}

	h.log.Info("File relayed", "username", h.username, "filename", m.Filename,
		"stored_name", stored.StoredName, "mime", stored.MimeType, "size", stored.Size)
	h.registry.Broadcast(m.WithSender(h.username), "")
}

// Disconnect is the terminal state: it unregisters the username if one
// was ever registered and releases the session. Safe to call from any
// path and any number of times.
func (h *Handler) Disconnect() {
	h.disconnectOnce.Do(func() {
		if h.registered {
			h.registry.Unregister(h.username)
		}
		_ = h.session.Close()
		h.log.Debug("Handler disconnected", "username", h.username, "remote", h.session.RemoteAddr())
	})
}

func (h *Handler) notify(content string) {
	_ = h.session.Send(domain.NewNotice(content))
}
