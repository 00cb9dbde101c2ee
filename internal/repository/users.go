package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"task-manager-api/internal/models"

	"github.com/lib/pq"
)

const userColumns = "id, email, hashed_password, is_active, is_admin, created_at"

// UserRepository persists accounts in the users table.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.IsAdmin, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u and fills in the server-assigned id and created_at.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	created := *u
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (email, hashed_password, is_active, is_admin) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		u.Email, u.HashedPassword, u.IsActive, u.IsAdmin,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, mapWriteError("create user", err)
	}
	return &created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		return nil, mapReadError("get user", err)
	}
	return u, nil
}

// GetByEmail matches the email exactly, case included.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		return nil, mapReadError("get user by email", err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, page models.Page) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id OFFSET $1 LIMIT $2",
		page.Skip, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Update applies the non-nil fields of p in one statement and returns the
// stored row.
func (r *UserRepository) Update(ctx context.Context, id int64, p models.UserPatch) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users
		SET email = COALESCE($1::text, email),
			hashed_password = COALESCE($2::text, hashed_password),
			is_active = COALESCE($3::boolean, is_active),
			is_admin = COALESCE($4::boolean, is_admin)
		WHERE id = $5
		RETURNING `+userColumns,
		p.Email, p.HashedPassword, p.IsActive, p.IsAdmin, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, mapWriteError("update user", err)
	}
	return u, nil
}

// Delete removes the account; its tasks go with it through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func mapReadError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return models.ErrDuplicateEmail
	}
	return fmt.Errorf("%s: %w", op, err)
}
