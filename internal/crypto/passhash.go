// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/and161185/gratitude-journal/internal/errs"
)

// MaxPasswordLen is the longest password bcrypt accepts.
const MaxPasswordLen = 72

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher; a non-positive cost selects bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the salted bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errs.Validation("empty password")
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", errs.Validation("password is too long")
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether password matches the stored hash.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
