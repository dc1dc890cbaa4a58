package service

import (
	"context"
	"fmt"

	"github.com/and161185/gratitude-journal/internal/model"
	"github.com/and161185/gratitude-journal/internal/repository"
)

// EnsureDefaultRoles provisions the USER and ADMIN roles.
func EnsureDefaultRoles(ctx context.Context, roles repository.RoleRepository) error {
	if err := roles.EnsureRoles(ctx, model.RoleUser, model.RoleAdmin); err != nil {
		return fmt.Errorf("ensure roles: %w", err)
	}
	return nil
}
