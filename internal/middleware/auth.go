package middleware

import (
	"strings"

	"task-manager-api/internal/auth"
	"task-manager-api/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	UserLocal   = "user"
	ClaimsLocal = "claims"
	TokenLocal  = "token"
)

// Authenticate resolves the bearer token into an account and stores the
// account, the claims and the raw token in Locals. Failures are returned as
// errors for the app error handler to render.
func Authenticate(resolver *auth.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := token(c)
		user, claims, err := resolver.Resolve(c.UserContext(), raw)
		if err != nil {
			return err
		}
		c.Locals(UserLocal, user)
		c.Locals(ClaimsLocal, claims)
		c.Locals(TokenLocal, raw)
		return c.Next()
	}
}

// RequireActive must run after Authenticate.
func RequireActive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := auth.RequireActive(CurrentUser(c)); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := auth.RequireAdmin(CurrentUser(c)); err != nil {
			return err
		}
		return c.Next()
	}
}

// CurrentUser returns the account resolved by Authenticate, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserLocal).(*models.User)
	return user
}

func CurrentClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(ClaimsLocal).(*auth.Claims)
	return claims
}

// token reads "Authorization: Bearer <token>". Browsers cannot set headers on
// a websocket handshake, so upgrades may pass ?token= instead.
func token(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(value)
	}
	if websocket.IsWebSocketUpgrade(c) {
		return c.Query("token")
	}
	return ""
}
