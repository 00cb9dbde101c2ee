package service

import (
	"context"
	"testing"

	"task-manager-api/internal/models"
	"task-manager-api/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	svc    *TaskService
	events *recordedEvents
	alice  *models.User
	bob    *models.User
	admin  *models.User
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	store := memstore.New()
	users := store.Users()
	ctx := context.Background()

	mk := func(email string, admin bool) *models.User {
		u, err := users.Create(ctx, &models.User{Email: email, HashedPassword: "x", IsActive: true, IsAdmin: admin})
		require.NoError(t, err)
		return u
	}
	events := &recordedEvents{}
	return &taskFixture{
		svc:    NewTaskService(store.Tasks(), events),
		events: events,
		alice:  mk("alice@example.com", false),
		bob:    mk("bob@example.com", false),
		admin:  mk("admin@example.com", true),
	}
}

func TestTaskCreateDefaultsAndOwnership(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.alice, models.NewTask{Title: "X"})
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, task.OwnerID)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Nil(t, task.Description)
	assert.Equal(t, []models.TaskEventType{models.TaskCreated}, f.events.types())
}

func TestTaskGetOwnershipIsolation(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.alice, models.NewTask{Title: "private"})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Title)

	_, err = f.svc.Get(ctx, f.bob, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err = f.svc.Get(ctx, f.admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	// reads look the task up first
	_, err = f.svc.Get(ctx, f.bob, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskListScoping(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	for _, title := range []string{"a1", "a2"} {
		_, err := f.svc.Create(ctx, f.alice, models.NewTask{Title: title})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, f.bob, models.NewTask{Title: "b1"})
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, f.alice, models.Page{Limit: 100})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, task := range mine {
		assert.Equal(t, f.alice.ID, task.OwnerID)
	}

	all, err := f.svc.List(ctx, f.admin, models.Page{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	paged, err := f.svc.List(ctx, f.admin, models.Page{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "a2", paged[0].Title)
}

func TestTaskUpdate(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.alice, models.NewTask{Title: "X"})
	require.NoError(t, err)

	done := models.StatusDone
	updated, err := f.svc.Update(ctx, f.alice, task.ID, models.TaskPatch{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)
	assert.Equal(t, "X", updated.Title)

	// any transition is allowed
	todo := models.StatusTodo
	_, err = f.svc.Update(ctx, f.alice, task.ID, models.TaskPatch{Status: &todo})
	require.NoError(t, err)

	title := "stolen"
	_, err = f.svc.Update(ctx, f.bob, task.ID, models.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Get(ctx, f.alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Title)

	title = "by admin"
	updated, err = f.svc.Update(ctx, f.admin, task.ID, models.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, updated.OwnerID)
}

func TestTaskEmptyUpdateIsSilent(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.alice, models.NewTask{Title: "X"})
	require.NoError(t, err)

	got, err := f.svc.Update(ctx, f.alice, task.ID, models.TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, []models.TaskEventType{models.TaskCreated}, f.events.types())

	// access is still checked
	_, err = f.svc.Update(ctx, f.bob, task.ID, models.TaskPatch{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTaskMissingTaskErrorDependsOnRole(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	title := "t"

	_, err := f.svc.Update(ctx, f.bob, 404, models.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.bob, 404), ErrForbidden)

	_, err = f.svc.Update(ctx, f.admin, 404, models.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.admin, 404), ErrNotFound)
}

func TestTaskDelete(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.alice, models.NewTask{Title: "X"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.bob, task.ID), ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.alice, task.ID))

	_, err = f.svc.Get(ctx, f.alice, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []models.TaskEventType{models.TaskCreated, models.TaskDeleted}, f.events.types())
	assert.Equal(t, f.alice.ID, f.events.events[1].Task.OwnerID)
}

func TestTaskServiceWithoutPublisher(t *testing.T) {
	store := memstore.New()
	svc := NewTaskService(store.Tasks(), nil)
	_, err := svc.Create(context.Background(), &models.User{ID: 1, IsActive: true}, models.NewTask{Title: "X"})
	assert.NoError(t, err)
}
