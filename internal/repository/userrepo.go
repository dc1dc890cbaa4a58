// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/gratitude-journal/internal/model"
)

// UserRepository provides access to accounts and their roles.
type UserRepository interface {
	// Create inserts a new user together with its role links and fills
	// u.ID and u.CreatedAt. Missing roles are created on the fly.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID, including role names.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByUsername loads a user by username, including role names.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// ExistsByUsername reports whether the username is taken.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByEmail reports whether the email is taken.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id int64, hash string) error
	// UpdateProfile overwrites the non-blank fields of p and returns the result.
	UpdateProfile(ctx context.Context, id int64, p model.ProfileUpdate) (*model.User, error)
	// Delete removes the user; entries and role links go with it.
	Delete(ctx context.Context, id int64) error
}

// RoleRepository provisions named roles.
type RoleRepository interface {
	// EnsureRoles creates the named roles that do not exist yet.
	EnsureRoles(ctx context.Context, names ...string) error
}
