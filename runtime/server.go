package runtime

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"chatwave/contract"
	"chatwave/moderation"
	"chatwave/wire"
)

//go:embed censored/*
var censoredFolder embed.FS

// Server accepts inbound connections and spawns one Handler per
// accepted connection. It runs as a supervised worker: Run blocks
// until the context is canceled or the listener faults.
type Server struct {
	log       *slog.Logger
	registry  *Registry
	store     contract.FileStore
	index     contract.FileIndex
	moderator *moderation.Moderator
	listener  net.Listener
}

func NewServer(log *slog.Logger, registry *Registry, store contract.FileStore,
	index contract.FileIndex, moderator *moderation.Moderator) *Server {
	return &Server{
		log:       log,
		registry:  registry,
		store:     store,
		index:     index,
		moderator: moderator,
	}
}

// Listen binds the TCP listener. Kept separate from Run so callers can
// learn the bound address before serving, e.g. with port 0 in tests.
func (s *Server) Listen(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.log.Info("Server listening", "address", listener.Addr().String())
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Run serves the listener until ctx is canceled. A failure on one
// accepted connection never stops the accept loop; only a listener
// fault does.
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		return fmt.Errorf("server is not listening")
	}

	// Closing the listener is the only way to unblock Accept.
	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.registry.CloseAll()
				s.log.Info("Server stopped")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.log.Debug("Connection accepted", "remote", conn.RemoteAddr().String())
		handler := NewHandler(s.log, wire.NewSession(conn), s.registry, s.store, s.index, s.moderator)
		go handler.Run()
	}
}

// NewEmbeddedModerator builds the moderator from the word lists shipped
// with the binary.
func NewEmbeddedModerator(log *slog.Logger, maskChar rune) (*moderation.Moderator, error) {
	loader := NewCensoredLoader(censoredFolder)
	data, err := loader.LoadAll("censored")
	if err != nil {
		return nil, err
	}

	log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))

	return moderation.NewModerator(data.Words, maskChar)
}
