package handlers

import (
	"strings"

	"task-manager-api/internal/middleware"
	"task-manager-api/internal/service"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func sessionData(s *service.Session) fiber.Map {
	return fiber.Map{
		"access_token": s.AccessToken,
		"token_type":   s.TokenType,
		"user_id":      s.User.ID,
		"is_admin":     s.User.IsAdmin,
	}
}

// Register creates a regular account and logs it in.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.deps.Auth.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("User registered", zap.Int64("user_id", session.User.ID))
	return success(c, "User registered successfully", sessionData(session))
}

// Login accepts JSON {email,password} or an OAuth2-style form with
// username and password fields.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if isForm(c) {
		req.Email = c.FormValue("username")
		req.Password = c.FormValue("password")
		if err := h.validate(&req); err != nil {
			return err
		}
	} else if err := h.parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.deps.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		logger.SecurityLogger.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		return err
	}

	logger.AuditLogger.Info("Login success", zap.Int64("user_id", session.User.ID), zap.Bool("is_admin", session.User.IsAdmin))
	return success(c, "Login success", sessionData(session))
}

// Logout revokes the presented token.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.deps.Auth.Logout(c.UserContext(), middleware.CurrentClaims(c)); err != nil {
		return err
	}
	logger.AuditLogger.Info("Logout", zap.Int64("user_id", middleware.CurrentUser(c).ID))
	return success(c, "Logged out", nil)
}

func isForm(c *fiber.Ctx) bool {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	return strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm)
}
