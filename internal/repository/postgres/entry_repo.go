package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/gratitude-journal/internal/errs"
	"github.com/and161185/gratitude-journal/internal/model"
)

const entryColumns = `id, user_id, title, content, entry_date, created_at`

// EntryRepo implements EntryRepository using PostgreSQL.
type EntryRepo struct{ db *DB }

// NewEntryRepo constructs an entry repository.
func NewEntryRepo(db *DB) *EntryRepo { return &EntryRepo{db: db} }

// ListByUser returns the user's entries, newest date first.
func (r *EntryRepo) ListByUser(ctx context.Context, userID int64) ([]model.Entry, error) {
	const q = `
SELECT ` + entryColumns + `
FROM calendar_entries
WHERE user_id=$1
ORDER BY entry_date DESC, id DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &e.EntryDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns a single entry owned by userID.
func (r *EntryRepo) Get(ctx context.Context, userID, id int64) (*model.Entry, error) {
	const q = `SELECT ` + entryColumns + ` FROM calendar_entries WHERE user_id=$1 AND id=$2`
	return scanEntry(r.db.Pool.QueryRow(ctx, q, userID, id))
}

// Create inserts a new entry for userID.
func (r *EntryRepo) Create(ctx context.Context, userID int64, in model.EntryInput) (*model.Entry, error) {
	const q = `
INSERT INTO calendar_entries (user_id, title, content, entry_date)
VALUES ($1, $2, $3, $4)
RETURNING ` + entryColumns
	return scanEntry(r.db.Pool.QueryRow(ctx, q, userID, in.Title, in.Content, in.EntryDate))
}

// Update changes title and content of an entry owned by userID.
func (r *EntryRepo) Update(ctx context.Context, userID, id int64, in model.EntryInput) (*model.Entry, error) {
	const q = `
UPDATE calendar_entries SET title=$3, content=$4
WHERE user_id=$1 AND id=$2
RETURNING ` + entryColumns
	return scanEntry(r.db.Pool.QueryRow(ctx, q, userID, id, in.Title, in.Content))
}

// Delete removes an entry owned by userID.
func (r *EntryRepo) Delete(ctx context.Context, userID, id int64) error {
	const q = `DELETE FROM calendar_entries WHERE user_id=$1 AND id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanEntry(row pgx.Row) (*model.Entry, error) {
	var e model.Entry
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &e.EntryDate, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
