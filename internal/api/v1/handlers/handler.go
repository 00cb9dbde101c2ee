// Package handlers translates HTTP requests into service calls and renders
// results in the {"message","success","status","data"} envelope.
package handlers

import (
	"errors"
	"fmt"
	"strings"

	"task-manager-api/internal/auth"
	"task-manager-api/internal/config"
	"task-manager-api/internal/models"
	"task-manager-api/internal/service"
	"task-manager-api/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	deps *config.Dependencies
}

func New(deps *config.Dependencies) *Handler {
	return &Handler{deps: deps}
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is rendered as 422 with per-field detail.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// parseBody decodes the request body into dst and validates it.
func (h *Handler) parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return &ValidationError{Message: "Invalid request body", Fields: []FieldError{{Field: "body", Rule: "json", Message: err.Error()}}}
	}
	return h.validate(dst)
}

func (h *Handler) validate(dst interface{}) error {
	err := h.deps.Validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Message: "Validation error"}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "password":
		return "password must be 8 to 72 bytes and contain a letter and a digit"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// pathID reads the :id route parameter.
func pathID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, &ValidationError{Message: "Validation error", Fields: []FieldError{{Field: "id", Rule: "int", Message: "must be an integer"}}}
	}
	return int64(id), nil
}

type pageQuery struct {
	Skip  int `query:"skip" json:"skip" validate:"min=0"`
	Limit int `query:"limit" json:"limit" validate:"min=1,max=100"`
}

func (h *Handler) page(c *fiber.Ctx) (models.Page, error) {
	q := pageQuery{Limit: models.DefaultLimit}
	if err := c.QueryParser(&q); err != nil {
		return models.Page{}, &ValidationError{Message: "Invalid query", Fields: []FieldError{{Field: "query", Rule: "int", Message: err.Error()}}}
	}
	if err := h.validate(&q); err != nil {
		return models.Page{}, err
	}
	return models.Page{Skip: q.Skip, Limit: q.Limit}, nil
}

func success(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": message,
		"success": true,
		"status":  fiber.StatusOK,
		"data":    data,
	})
}

func failure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	})
}

// ErrorHandler is the fiber app error handler. It is the only place where
// errors become status codes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var verr *ValidationError
	var ferr *fiber.Error

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": verr.Message,
			"success": false,
			"status":  fiber.StatusUnprocessableEntity,
			"errors":  verr.Fields,
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		return failure(c, fiber.StatusUnauthorized, "Incorrect email or password")
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInactive):
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return failure(c, fiber.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, auth.ErrForbidden):
		return failure(c, fiber.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, models.ErrNotFound):
		return failure(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrEmailTaken):
		return failure(c, fiber.StatusBadRequest, "Email already registered")
	case errors.Is(err, service.ErrSelfDelete):
		return failure(c, fiber.StatusBadRequest, "Cannot delete yourself")
	case errors.As(err, &ferr):
		if ferr.Code == fiber.StatusUnprocessableEntity || ferr.Code == fiber.StatusBadRequest {
			return failure(c, fiber.StatusUnprocessableEntity, ferr.Message)
		}
		return failure(c, ferr.Code, ferr.Message)
	default:
		logger.ErrorLogger.Error("Unhandled error",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
		)
		return failure(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
