// Package memstore is an in-process account and task store with the same
// semantics as the PostgreSQL repositories, including the cascade on account
// delete. It backs handler and service tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"task-manager-api/internal/models"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
	tasks  map[int64]models.Task
}

func New() *Store {
	return &Store{users: map[int64]models.User{}, tasks: map[int64]models.Task{}}
}

// Users is the account view of a Store.
type Users struct{ *Store }

// Tasks is the task view of a Store.
type Tasks struct{ *Store }

func (s *Store) Users() Users { return Users{s} }

func (s *Store) Tasks() Tasks { return Tasks{s} }

func (m Users) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, models.ErrDuplicateEmail
		}
	}
	m.nextID++
	created := *u
	created.ID = m.nextID
	created.CreatedAt = time.Now()
	m.users[created.ID] = created
	return &created, nil
}

func (m Users) GetByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (m Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m Users) List(_ context.Context, page models.Page) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, page), nil
}

func (m Users) Update(_ context.Context, id int64, p models.UserPatch) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.Email != nil {
		for otherID, other := range m.users {
			if otherID != id && other.Email == *p.Email {
				return nil, models.ErrDuplicateEmail
			}
		}
		u.Email = *p.Email
	}
	if p.HashedPassword != nil {
		u.HashedPassword = *p.HashedPassword
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
	m.users[id] = u
	return &u, nil
}

func (m Users) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.users, id)
	for tid, t := range m.tasks {
		if t.OwnerID == id {
			delete(m.tasks, tid)
		}
	}
	return nil
}

func (m Tasks) Create(_ context.Context, ownerID int64, in models.NewTask) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := models.Task{
		ID:          m.nextID,
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		CreatedAt:   time.Now(),
	}
	m.tasks[t.ID] = t
	return &t, nil
}

func (m Tasks) GetByID(_ context.Context, id int64) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (m Tasks) OwnerOf(ctx context.Context, id int64) (int64, error) {
	t, err := m.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return t.OwnerID, nil
}

func (m Tasks) List(_ context.Context, owner *int64, page models.Page) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if owner == nil || t.OwnerID == *owner {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, page), nil
}

func (m Tasks) Update(_ context.Context, id int64, p models.TaskPatch) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	m.tasks[id] = t
	return &t, nil
}

func (m Tasks) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func paginate[T any](items []T, page models.Page) []T {
	if page.Skip >= len(items) {
		return []T{}
	}
	items = items[page.Skip:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}
