// Package wire implements the framing layer: discrete Message records
// over a persistent, ordered byte stream. Each frame is a 4-byte
// big-endian length followed by the JSON encoding of the message.
package wire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"chatwave/domain"
	"chatwave/errors"
)

// MaxFrameSize bounds a file frame. File payloads are base64 encoded
// by the JSON layer, so the bound leaves headroom above the raw limit.
// Every other kind is bounded by domain.MaxMessageSize.
const MaxFrameSize = domain.MaxFileSize*4/3 + domain.MaxMessageSize

// frameBound returns the wire budget for one message kind.
func frameBound(kind domain.Kind) int {
	if kind == domain.KindFile {
		return MaxFrameSize
	}
	return domain.MaxMessageSize
}

// EncodeFrame writes one length-prefixed message to w.
func EncodeFrame(w io.Writer, m domain.Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if len(body) > frameBound(m.Kind) {
		return errors.ErrFrameTooLarge
	}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// DecodeFrame reads exactly one message from r. It returns io.EOF when
// the stream ends cleanly before a prefix, ErrFrameTooLarge when the
// frame exceeds the bound for its kind, and a decode error when the
// bytes do not parse as a well-formed message.
func DecodeFrame(r io.Reader) (domain.Message, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		// io.ReadFull yields io.EOF only when not a single prefix byte
		// arrived; a partially read prefix is a cut connection, not a
		// clean close.
		if err == io.EOF {
			return domain.Message{}, io.EOF
		}
		return domain.Message{}, fmt.Errorf("decode frame: %w", err)
	}
	size := binary.BigEndian.Uint32(prefix[:])
	if size > MaxFrameSize {
		return domain.Message{}, errors.ErrFrameTooLarge
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return domain.Message{}, fmt.Errorf("decode frame: %w", err)
	}
	var m domain.Message
	if err := json.Unmarshal(body, &m); err != nil {
		return domain.Message{}, fmt.Errorf("decode frame: %w", err)
	}
	if len(body) > frameBound(m.Kind) {
		return domain.Message{}, errors.ErrFrameTooLarge
	}
	return m, nil
}
