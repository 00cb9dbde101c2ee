package service

import (
	"context"
	"errors"

	"task-manager-api/internal/auth"
	"task-manager-api/internal/models"
)

type TaskService struct {
	store  TaskStore
	events EventPublisher
}

func NewTaskService(store TaskStore, events EventPublisher) *TaskService {
	if events == nil {
		events = discardEvents{}
	}
	return &TaskService{store: store, events: events}
}

// Create stores a task owned by actor, whatever the input says.
func (s *TaskService) Create(ctx context.Context, actor *models.User, in models.NewTask) (*models.Task, error) {
	if in.Status == "" {
		in.Status = models.StatusTodo
	}
	task, err := s.store.Create(ctx, actor.ID, in)
	if err != nil {
		return nil, err
	}
	s.events.Publish(models.TaskEvent{Type: models.TaskCreated, Task: *task})
	return task, nil
}

// Get loads the task first, so a missing id is ErrNotFound for everyone.
func (s *TaskService) Get(ctx context.Context, actor *models.User, id int64) (*models.Task, error) {
	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(task.OwnerID, actor.ID, actor.IsAdmin) {
		return nil, ErrForbidden
	}
	return task, nil
}

// List returns every task for admins and only the caller's tasks otherwise.
func (s *TaskService) List(ctx context.Context, actor *models.User, page models.Page) ([]models.Task, error) {
	if actor.IsAdmin {
		return s.store.List(ctx, nil, page)
	}
	return s.store.List(ctx, &actor.ID, page)
}

// Update applies p to a task the actor may access. An empty patch returns the
// task unchanged and publishes nothing.
func (s *TaskService) Update(ctx context.Context, actor *models.User, id int64, p models.TaskPatch) (*models.Task, error) {
	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}
	if p.Empty() {
		return s.store.GetByID(ctx, id)
	}
	task, err := s.store.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.events.Publish(models.TaskEvent{Type: models.TaskUpdated, Task: *task})
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, actor *models.User, id int64) error {
	owner, err := s.ownerFor(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Publish(models.TaskEvent{Type: models.TaskDeleted, Task: models.Task{ID: id, OwnerID: owner}})
	return nil
}

func (s *TaskService) authorize(ctx context.Context, actor *models.User, id int64) error {
	_, err := s.ownerFor(ctx, actor, id)
	return err
}

// ownerFor decides access before existence: a non-admin asking about a
// missing task is refused rather than told it does not exist.
func (s *TaskService) ownerFor(ctx context.Context, actor *models.User, id int64) (int64, error) {
	owner, err := s.store.OwnerOf(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) && !actor.IsAdmin {
			return 0, ErrForbidden
		}
		return 0, err
	}
	if !auth.CanAccess(owner, actor.ID, actor.IsAdmin) {
		return 0, ErrForbidden
	}
	return owner, nil
}

// ownedIDs pages through every task of owner.
func ownedIDs(ctx context.Context, store TaskStore, owner int64) ([]int64, error) {
	var ids []int64
	for skip := 0; ; skip += models.MaxLimit {
		page, err := store.List(ctx, &owner, models.Page{Skip: skip, Limit: models.MaxLimit})
		if err != nil {
			return nil, err
		}
		for _, t := range page {
			ids = append(ids, t.ID)
		}
		if len(page) < models.MaxLimit {
			return ids, nil
		}
	}
}
