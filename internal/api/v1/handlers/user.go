package handlers

import (
	"task-manager-api/internal/middleware"
	"task-manager-api/internal/service"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type updateUserRequest struct {
	Email    *string `json:"email" validate:"omitnil,email"`
	Password *string `json:"password" validate:"omitnil,password"`
	IsActive *bool   `json:"is_active"`
	IsAdmin  *bool   `json:"is_admin"`
}

type updateProfileRequest struct {
	Email    *string `json:"email" validate:"omitnil,email"`
	Password *string `json:"password" validate:"omitnil,password"`
}

// Me returns the caller's own profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	return success(c, "User fetched successfully", middleware.CurrentUser(c))
}

func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.deps.Users.UpdateSelf(c.UserContext(), middleware.CurrentUser(c), service.ProfileUpdate{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	logger.AuditLogger.Info("Profile updated", zap.Int64("user_id", user.ID), zap.Bool("password_changed", req.Password != nil))
	return success(c, "User updated successfully", user)
}

// GetAllUsers is admin only.
func (h *Handler) GetAllUsers(c *fiber.Ctx) error {
	page, err := h.page(c)
	if err != nil {
		return err
	}
	users, err := h.deps.Users.List(c.UserContext(), middleware.CurrentUser(c), page)
	if err != nil {
		return err
	}
	return success(c, "Users fetched successfully", users)
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.deps.Users.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return success(c, "User fetched successfully", user)
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	actor := middleware.CurrentUser(c)
	user, err := h.deps.Users.Update(c.UserContext(), actor, id, service.UserUpdate{
		Email:    req.Email,
		Password: req.Password,
		IsActive: req.IsActive,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("User updated", zap.Int64("user_id", id), zap.Int64("by", actor.ID))
	return success(c, "User updated successfully", user)
}

// DeleteUser removes an account and its tasks. Deleting yourself is refused
// for every role, so this route is not behind the admin middleware.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	actor := middleware.CurrentUser(c)
	if err := h.deps.Users.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}

	logger.AuditLogger.Info("User deleted", zap.Int64("user_id", id), zap.Int64("by", actor.ID))
	return success(c, "User deleted successfully", nil)
}
