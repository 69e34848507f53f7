package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"chatwave/errors"
)

var validate = validator.New()

// usernameRequest exists so the handshake can reuse struct-level
// validation instead of ad hoc checks scattered through the handler.
type usernameRequest struct {
	Username string `validate:"required,min=1,max=32,printascii"`
}

// ValidateUsername checks the shape of a proposed username.
// Uniqueness is the registry's concern, not the domain's.
func ValidateUsername(username string) error {
	if strings.HasPrefix(username, "/") || strings.ContainsAny(username, " \t") {
		return errors.ErrInvalidUsername
	}
	if err := validate.Struct(usernameRequest{Username: username}); err != nil {
		return errors.ErrInvalidUsername
	}
	return nil
}
