// Package service holds the task and account operations. Every method takes
// the acting account and applies the access rules before touching the store.
package service

import (
	"context"
	"errors"

	"task-manager-api/internal/auth"
	"task-manager-api/internal/models"
)

var (
	ErrNotFound           = models.ErrNotFound
	ErrEmailTaken         = models.ErrDuplicateEmail
	ErrForbidden          = auth.ErrForbidden
	ErrSelfDelete         = errors.New("cannot delete yourself")
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, page models.Page) ([]models.User, error)
	Update(ctx context.Context, id int64, p models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type TaskStore interface {
	Create(ctx context.Context, ownerID int64, in models.NewTask) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	OwnerOf(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, owner *int64, page models.Page) ([]models.Task, error)
	Update(ctx context.Context, id int64, p models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}

// EventPublisher receives committed task changes.
type EventPublisher interface {
	Publish(event models.TaskEvent)
}

type discardEvents struct{}

func (discardEvents) Publish(models.TaskEvent) {}
