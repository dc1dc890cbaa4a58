// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (bad credentials or token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUsernameTaken is reported when the username belongs to another user.
	ErrUsernameTaken = fmt.Errorf("username is already taken: %w", ErrAlreadyExists)

	// ErrEmailTaken is reported when the email belongs to another user.
	ErrEmailTaken = fmt.Errorf("email is already in use: %w", ErrAlreadyExists)
)

// Validation wraps msg as an ErrValidation.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
