// Package domain contains core concepts of the chat system.
// This file defines the Message record exchanged on the wire.
// Messages are immutable and validated by the domain.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the message variants carried by the protocol.
type Kind string

const (
	KindText         Kind = "TEXT"
	KindFile         Kind = "FILE"
	KindUserJoin     Kind = "USER_JOIN"
	KindUserLeave    Kind = "USER_LEAVE"
	KindServerNotice Kind = "SERVER_NOTICE"
)

// Message represents an immutable chat event.
// Filename and Payload are only meaningful when Kind == KindFile;
// the constructors below keep the variants well-formed.
// Sender is the only field the server rewrites when relaying.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
	Filename  string    `json:"filename,omitempty"`
	Payload   []byte    `json:"payload,omitempty"`
}

// NewText builds a plain chat message. The server restamps Sender with
// the authenticated username before relaying.
func NewText(content, sender string) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindText,
		Content:   content,
		Sender:    sender,
		CreatedAt: time.Now().UTC(),
	}
}

// NewFile builds a file relay message. Content carries a human-readable
// summary so clients without file handling can still display something.
func NewFile(filename string, payload []byte, sender string) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindFile,
		Content:   "Sent file: " + filename,
		Sender:    sender,
		CreatedAt: time.Now().UTC(),
		Filename:  filename,
		Payload:   payload,
	}
}

// NewNotice builds a system-originated message (errors, welcomes, listings).
func NewNotice(content string) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindServerNotice,
		Content:   content,
		Sender:    ServerName,
		CreatedAt: time.Now().UTC(),
	}
}

// NewJoin announces that username entered the chat.
func NewJoin(username string) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindUserJoin,
		Content:   username + " joined the chat",
		Sender:    ServerName,
		CreatedAt: time.Now().UTC(),
	}
}

// NewLeave announces that username left the chat.
func NewLeave(username string) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindUserLeave,
		Content:   username + " left the chat",
		Sender:    ServerName,
		CreatedAt: time.Now().UTC(),
	}
}

// WithSender returns a copy re-addressed to the given sender.
// Everything else, including CreatedAt, is preserved.
func (m Message) WithSender(sender string) Message {
	m.Sender = sender
	return m
}

// IsCommand reports whether the message content is a slash command
// addressed to the server rather than to other participants.
func (m Message) IsCommand() bool {
	return len(m.Content) > 0 && m.Content[0] == '/'
}

func (m Message) String() string {
	return fmt.Sprintf("[%s] %s: %s", m.CreatedAt.Format(time.TimeOnly), m.Sender, m.Content)
}
