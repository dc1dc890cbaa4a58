package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/and161185/gratitude-journal/internal/errs"
	"github.com/and161185/gratitude-journal/internal/model"
)

func TestEntries_CRUD(t *testing.T) {
	t.Parallel()
	repo := newFakeEntries()
	s := NewEntryService(repo)
	ctx := context.Background()
	day := time.Date(2024, 5, 17, 15, 30, 0, 0, time.FixedZone("X", 3*3600))

	list, err := s.List(ctx, 1)
	if err != nil || len(list) != 0 {
		t.Fatalf("empty list: %v %v", list, err)
	}

	e, err := s.Create(ctx, 1, model.EntryInput{Title: " sun ", Content: "warm morning", EntryDate: day})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.Title != "sun" {
		t.Fatalf("title not trimmed: %q", e.Title)
	}
	if !e.EntryDate.Equal(time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date not normalized: %v", e.EntryDate)
	}

	got, err := s.Get(ctx, 1, e.ID)
	if err != nil || got.ID != e.ID {
		t.Fatalf("Get: %+v %v", got, err)
	}

	upd, err := s.Update(ctx, 1, e.ID, model.EntryInput{Title: "rain", Content: "cosy", EntryDate: day.AddDate(1, 0, 0)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.Title != "rain" || !upd.EntryDate.Equal(e.EntryDate) {
		t.Fatalf("update must change text and keep date: %+v", upd)
	}

	if err := s.Delete(ctx, 1, e.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, 1, e.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Get after delete: %v", err)
	}
}

func TestEntries_OwnerScoped(t *testing.T) {
	t.Parallel()
	repo := newFakeEntries()
	s := NewEntryService(repo)
	ctx := context.Background()

	e, err := s.Create(ctx, 1, model.EntryInput{Title: "t", Content: "c", EntryDate: time.Now()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Get(ctx, 2, e.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("foreign get: %v", err)
	}
	if _, err := s.Update(ctx, 2, e.ID, model.EntryInput{Title: "x", Content: "y"}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("foreign update: %v", err)
	}
	if err := s.Delete(ctx, 2, e.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("foreign delete: %v", err)
	}
	list, _ := s.List(ctx, 2)
	if len(list) != 0 {
		t.Fatalf("foreign entries listed: %v", list)
	}
}

func TestEntries_Validation(t *testing.T) {
	t.Parallel()
	s := NewEntryService(newFakeEntries())
	ctx := context.Background()

	cases := []model.EntryInput{
		{Title: "", Content: "c", EntryDate: time.Now()},
		{Title: "t", Content: "   ", EntryDate: time.Now()},
		{Title: "t", Content: "c"},
	}
	for i, in := range cases {
		if _, err := s.Create(ctx, 1, in); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("case %d: want ErrValidation, got %v", i, err)
		}
	}
	if _, err := s.Update(ctx, 1, 1, model.EntryInput{Title: "", Content: ""}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("update: want ErrValidation, got %v", err)
	}
}

func TestEntries_StoreFault(t *testing.T) {
	t.Parallel()
	repo := newFakeEntries()
	repo.err = errors.New("db down")
	s := NewEntryService(repo)

	_, err := s.List(context.Background(), 1)
	if err == nil || errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want store fault, got %v", err)
	}
	if _, err := s.Get(context.Background(), 1, 1); errors.Is(err, errs.ErrNotFound) || err == nil {
		t.Fatalf("want store fault, got %v", err)
	}
}
