package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/gratitude-journal/internal/errs"
	"github.com/and161185/gratitude-journal/internal/model"
	"github.com/and161185/gratitude-journal/internal/repository"
)

// IdentityLoader looks up principals. errs.ErrNotFound is returned as is;
// every other error is a store fault.
type IdentityLoader struct {
	users repository.UserRepository
}

// NewIdentityLoader constructs an IdentityLoader.
func NewIdentityLoader(users repository.UserRepository) *IdentityLoader {
	return &IdentityLoader{users: users}
}

// LoadByID loads the user and its current roles.
func (l *IdentityLoader) LoadByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := l.users.GetByID(ctx, id)
	return checkLoaded(u, err)
}

// LoadByUsername loads the user and its current roles.
func (l *IdentityLoader) LoadByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := l.users.GetByUsername(ctx, username)
	return checkLoaded(u, err)
}

func checkLoaded(u *model.User, err error) (*model.User, error) {
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
