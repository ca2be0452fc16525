package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"stockbook/internal/domain"
	applog "stockbook/internal/log"
	"stockbook/internal/services"
)

const tokenCookie = "token"

func bearer(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Cookies(tokenCookie)
}

// Authenticate attaches the actor of a valid token to the request. The
// account is looked up on every request. It never rejects; RequireUser and
// RequireAdmin do.
func Authenticate(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := bearer(c); tok != "" {
			a, err := auth.Current(c.UserContext(), tok)
			switch {
			case err == nil:
				c.Locals("actor", a)
				c.Locals("user_id", a.UserID)
			case !errors.Is(err, domain.ErrBadCreds):
				applog.Error(c, "auth.token.lookup", err, nil)
			}
		}
		return c.Next()
	}
}

func actorOf(c *fiber.Ctx) domain.Actor {
	a, _ := c.Locals("actor").(domain.Actor)
	return a
}

func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if actorOf(c).UserID == "" {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "sign in required"})
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		a := actorOf(c)
		if a.UserID == "" {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "sign in required"})
		}
		if !a.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": a.UserID})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin only"})
		}
		return c.Next()
	}
}
