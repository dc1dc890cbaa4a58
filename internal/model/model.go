// Package model defines domain entities used by services and repositories.
package model

import (
	"time"
)

// Default role names provisioned at start-up.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Tokens collects issued access/refresh tokens (refresh optional).
type Tokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// User represents an account (principal). The password hash never leaves the server.
type User struct {
	ID           int64  // PK, immutable
	Username     string // unique
	Email        string // unique
	PasswordHash string // bcrypt
	Bio          string // empty when unset
	Roles        []string
	CreatedAt    time.Time
}

// Role is a named authority shared by many users.
type Role struct {
	ID   int64
	Name string
}

// Session is the outcome of register/sign-in: tokens plus the public profile.
type Session struct {
	Tokens Tokens
	User   User
}

// Identity is the per-request authenticated principal.
type Identity struct {
	UserID   int64
	Username string
	Roles    []string
}

// HasRole reports whether the identity carries role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Validation is the result of a token liveness check.
type Validation struct {
	Valid    bool
	UserID   int64
	Username string
}

// ProfileUpdate holds optional profile changes; blank fields are left untouched.
type ProfileUpdate struct {
	Username string
	Email    string
	Bio      string
}

// Entry is a dated gratitude journal entry.
type Entry struct {
	ID        int64
	UserID    int64 // FK -> users.id
	Title     string
	Content   string
	EntryDate time.Time // calendar date, UTC midnight
	CreatedAt time.Time
}

// EntryInput is a create/update intent for an entry.
type EntryInput struct {
	Title     string
	Content   string
	EntryDate time.Time
}
