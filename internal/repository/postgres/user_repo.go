package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/gratitude-journal/internal/errs"
	"github.com/and161185/gratitude-journal/internal/model"
)

const userColumns = `id, username, email, password_hash, bio, created_at`

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts the user and links its roles in one transaction.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const ins = `
INSERT INTO users (username, email, password_hash, bio)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	const ensure = `INSERT INTO roles (name) SELECT unnest($1::text[]) ON CONFLICT (name) DO NOTHING`
	const link = `
INSERT INTO user_roles (user_id, role_id)
SELECT $1, id FROM roles WHERE name = ANY($2::text[])`

	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, ins, u.Username, u.Email, u.PasswordHash, u.Bio).Scan(&u.ID, &u.CreatedAt); err != nil {
			return mapUniqueViolation(err)
		}
		if len(u.Roles) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, ensure, u.Roles); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, link, u.ID, u.Roles)
		return err
	})
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.getOne(ctx, q, id)
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return r.getOne(ctx, q, username)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, arg))
	if err != nil {
		return nil, err
	}
	if u.Roles, err = r.roleNames(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) roleNames(ctx context.Context, userID int64) ([]string, error) {
	const q = `
SELECT r.name
FROM roles r JOIN user_roles ur ON ur.role_id = r.id
WHERE ur.user_id = $1
ORDER BY r.name`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ExistsByUsername reports whether a user with the username exists.
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username=$1)`
	var ok bool
	err := r.db.Pool.QueryRow(ctx, q, username).Scan(&ok)
	return ok, err
}

// ExistsByEmail reports whether a user with the email exists.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`
	var ok bool
	err := r.db.Pool.QueryRow(ctx, q, email).Scan(&ok)
	return ok, err
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	const q = `UPDATE users SET password_hash=$2 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// UpdateProfile overwrites the non-blank profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, p model.ProfileUpdate) (*model.User, error) {
	const q = `
UPDATE users SET
	username = COALESCE(NULLIF($2::text, ''), username),
	email = COALESCE(NULLIF($3::text, ''), email),
	bio = COALESCE(NULLIF($4::text, ''), bio)
WHERE id=$1
RETURNING ` + userColumns
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id, p.Username, p.Email, p.Bio))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	if u.Roles, err = r.roleNames(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes the user row; dependent rows cascade.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// RoleRepo implements RoleRepository using PostgreSQL.
type RoleRepo struct{ db *DB }

// NewRoleRepo constructs a role repository.
func NewRoleRepo(db *DB) *RoleRepo { return &RoleRepo{db: db} }

// EnsureRoles inserts the missing role names.
func (r *RoleRepo) EnsureRoles(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	const q = `INSERT INTO roles (name) SELECT unnest($1::text[]) ON CONFLICT (name) DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, q, names)
	return err
}
