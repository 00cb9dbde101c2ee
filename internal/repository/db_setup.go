package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"task-manager-api/internal/models"
	"task-manager-api/pkg/logger"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Migrate brings the schema up to date with the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	logger.SystemLogger.Info("Tables 'users', 'tasks' are ready")
	return nil
}

// Reset rolls every migration back, leaving an empty database.
func Reset(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.ResetContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("migrate reset: %w", err)
	}
	return nil
}

// EnsureAdmin creates an active admin account with the given email unless one
// already exists. An existing account with that email is promoted.
func EnsureAdmin(ctx context.Context, users *UserRepository, email, hashedPassword string) (*models.User, error) {
	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin && existing.IsActive {
			return existing, nil
		}
		yes := true
		return users.Update(ctx, existing.ID, models.UserPatch{IsAdmin: &yes, IsActive: &yes})
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	admin, err := users.Create(ctx, &models.User{
		Email:          email,
		HashedPassword: hashedPassword,
		IsActive:       true,
		IsAdmin:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("create admin user: %w", err)
	}
	logger.AuditLogger.Info("Admin user created", zap.Int64("user_id", admin.ID))
	return admin, nil
}
