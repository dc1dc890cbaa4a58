package repository

import (
	"context"

	"github.com/and161185/gratitude-journal/internal/model"
)

// EntryRepository provides owner-scoped access to journal entries.
// An entry owned by someone else is reported as not found.
type EntryRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Entry, error)
	Get(ctx context.Context, userID, id int64) (*model.Entry, error)
	Create(ctx context.Context, userID int64, in model.EntryInput) (*model.Entry, error)
	// Update changes title and content; the entry date is kept.
	Update(ctx context.Context, userID, id int64, in model.EntryInput) (*model.Entry, error)
	Delete(ctx context.Context, userID, id int64) error
}
