package handlers

import (
	"task-manager-api/internal/middleware"
	"task-manager-api/internal/models"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type createTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Status      string  `json:"status" validate:"omitempty,oneof=todo in_progress done"`
}

// updateTaskRequest serves both PUT and PATCH: absent fields stay unchanged.
type updateTaskRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Status      *string `json:"status" validate:"omitnil,oneof=todo in_progress done"`
}

func (r updateTaskRequest) patch() models.TaskPatch {
	p := models.TaskPatch{Title: r.Title, Description: r.Description}
	if r.Status != nil {
		s := models.TaskStatus(*r.Status)
		p.Status = &s
	}
	return p
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	user := middleware.CurrentUser(c)
	task, err := h.deps.Tasks.Create(c.UserContext(), user, models.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
	})
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("Task created", zap.Int64("task_id", task.ID), zap.Int64("owner_id", task.OwnerID))
	return success(c, "Task created successfully", task)
}

// ListTasks returns the caller's tasks, or every task for an admin.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	page, err := h.page(c)
	if err != nil {
		return err
	}
	tasks, err := h.deps.Tasks.List(c.UserContext(), middleware.CurrentUser(c), page)
	if err != nil {
		return err
	}
	return success(c, "Tasks fetched successfully", tasks)
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	task, err := h.deps.Tasks.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return success(c, "Task fetched successfully", task)
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	user := middleware.CurrentUser(c)
	task, err := h.deps.Tasks.Update(c.UserContext(), user, id, req.patch())
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("Task updated", zap.Int64("task_id", id), zap.Int64("user_id", user.ID))
	return success(c, "Task updated successfully", task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user := middleware.CurrentUser(c)
	if err := h.deps.Tasks.Delete(c.UserContext(), user, id); err != nil {
		return err
	}

	logger.AuditLogger.Info("Task deleted", zap.Int64("task_id", id), zap.Int64("user_id", user.ID))
	return success(c, "Task deleted successfully", nil)
}
