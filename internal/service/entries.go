package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/gratitude-journal/internal/errs"
	"github.com/and161185/gratitude-journal/internal/model"
	"github.com/and161185/gratitude-journal/internal/repository"
)

// EntryService defines owner-scoped journal entry operations.
type EntryService interface {
	List(ctx context.Context, userID int64) ([]model.Entry, error)
	Get(ctx context.Context, userID, id int64) (model.Entry, error)
	Create(ctx context.Context, userID int64, in model.EntryInput) (model.Entry, error)
	Update(ctx context.Context, userID, id int64, in model.EntryInput) (model.Entry, error)
	Delete(ctx context.Context, userID, id int64) error
}

// EntryServiceImpl implements EntryService.
type EntryServiceImpl struct {
	entries repository.EntryRepository
}

// NewEntryService constructs an EntryService.
func NewEntryService(entries repository.EntryRepository) *EntryServiceImpl {
	return &EntryServiceImpl{entries: entries}
}

// List returns all entries of the user, newest first.
func (s *EntryServiceImpl) List(ctx context.Context, userID int64) ([]model.Entry, error) {
	out, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

// Get returns one entry of the user.
func (s *EntryServiceImpl) Get(ctx context.Context, userID, id int64) (model.Entry, error) {
	e, err := s.entries.Get(ctx, userID, id)
	if err != nil {
		return model.Entry{}, wrapEntryErr("get entry", err)
	}
	return *e, nil
}

// Create validates and stores a new entry.
func (s *EntryServiceImpl) Create(ctx context.Context, userID int64, in model.EntryInput) (model.Entry, error) {
	in = trimEntry(in)
	if err := validateEntry(in.Title, in.Content); err != nil {
		return model.Entry{}, err
	}
	if in.EntryDate.IsZero() {
		return model.Entry{}, errs.Validation("entryDate: cannot be blank")
	}
	y, m, d := in.EntryDate.Date()
	in.EntryDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	e, err := s.entries.Create(ctx, userID, in)
	if err != nil {
		return model.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	return *e, nil
}

// Update changes title and content; the date is kept.
func (s *EntryServiceImpl) Update(ctx context.Context, userID, id int64, in model.EntryInput) (model.Entry, error) {
	in = trimEntry(in)
	if err := validateEntry(in.Title, in.Content); err != nil {
		return model.Entry{}, err
	}
	e, err := s.entries.Update(ctx, userID, id, in)
	if err != nil {
		return model.Entry{}, wrapEntryErr("update entry", err)
	}
	return *e, nil
}

// Delete removes one entry of the user.
func (s *EntryServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	if err := s.entries.Delete(ctx, userID, id); err != nil {
		return wrapEntryErr("delete entry", err)
	}
	return nil
}

func trimEntry(in model.EntryInput) model.EntryInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	return in
}

func wrapEntryErr(op string, err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return errs.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
