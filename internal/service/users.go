package service

import (
	"context"
	"errors"
	"fmt"

	"task-manager-api/internal/auth"
	"task-manager-api/internal/models"
)

// UserUpdate is an admin edit of another account. Nil fields are left alone.
type UserUpdate struct {
	Email    *string
	Password *string
	IsActive *bool
	IsAdmin  *bool
}

// ProfileUpdate is what an account may change about itself.
type ProfileUpdate struct {
	Email    *string
	Password *string
}

type UserService struct {
	store  UserStore
	hasher PasswordHasher
	// set by AnnounceCascade
	tasks  TaskStore
	events EventPublisher
	// compared against when the email is unknown so both paths pay for bcrypt
	dummyHash string
}

func NewUserService(ctx context.Context, store UserStore, hasher PasswordHasher) (*UserService, error) {
	dummy, err := hasher.Hash(ctx, "not-a-real-password-0")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &UserService{store: store, hasher: hasher, events: discardEvents{}, dummyHash: dummy}, nil
}

// AnnounceCascade makes Delete publish a task.deleted event for every task
// removed together with the account.
func (s *UserService) AnnounceCascade(tasks TaskStore, events EventPublisher) {
	if events == nil {
		events = discardEvents{}
	}
	s.tasks, s.events = tasks, events
}

// Register creates an active, non-admin account.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	// the unique index still decides when two registrations race
	return s.store.Create(ctx, &models.User{
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
	})
}

// Authenticate checks credentials. Unknown email and wrong password are the
// same error; a deactivated account gets auth.ErrInactive.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if _, err := s.hasher.Verify(ctx, password, s.dummyHash); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, password, user.HashedPassword)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return auth.RequireActive(user)
}

func (s *UserService) Get(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	if _, err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, actor *models.User, page models.Page) ([]models.User, error) {
	if _, err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.List(ctx, page)
}

func (s *UserService) Update(ctx context.Context, actor *models.User, id int64, in UserUpdate) (*models.User, error) {
	if _, err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	patch := models.UserPatch{Email: in.Email, IsActive: in.IsActive, IsAdmin: in.IsAdmin}
	if err := s.hashInto(ctx, &patch, in.Password); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, patch)
}

// UpdateSelf lets an active account change its own email or password.
func (s *UserService) UpdateSelf(ctx context.Context, actor *models.User, in ProfileUpdate) (*models.User, error) {
	if _, err := auth.RequireActive(actor); err != nil {
		return nil, err
	}
	patch := models.UserPatch{Email: in.Email}
	if err := s.hashInto(ctx, &patch, in.Password); err != nil {
		return nil, err
	}
	return s.apply(ctx, actor.ID, patch)
}

// Delete removes an account and, through the foreign key, its tasks.
// Deleting yourself is refused before the admin check.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if actor == nil {
		return auth.ErrUnauthenticated
	}
	if !auth.CanDeleteAccount(id, actor.ID) {
		return ErrSelfDelete
	}
	if _, err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	var owned []int64
	if s.tasks != nil {
		ids, err := ownedIDs(ctx, s.tasks, id)
		if err != nil {
			return fmt.Errorf("list owned tasks: %w", err)
		}
		owned = ids
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	// tasks created between the listing and the delete go unannounced
	for _, taskID := range owned {
		s.events.Publish(models.TaskEvent{Type: models.TaskDeleted, Task: models.Task{ID: taskID, OwnerID: id}})
	}
	return nil
}

func (s *UserService) hashInto(ctx context.Context, patch *models.UserPatch, password *string) error {
	if password == nil {
		return nil
	}
	hashed, err := s.hasher.Hash(ctx, *password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	patch.HashedPassword = &hashed
	return nil
}

func (s *UserService) apply(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if patch.Empty() {
		return s.store.GetByID(ctx, id)
	}
	return s.store.Update(ctx, id, patch)
}
