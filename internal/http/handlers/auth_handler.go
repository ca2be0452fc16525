package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"stockbook/internal/log"
	"stockbook/internal/services"
	"stockbook/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
	TTL  time.Duration
}

type loginBody struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginBody
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "auth.login", err)
	}
	if _, ok := validate.Email(in.Email); !ok || in.Password == "" {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}
	tok, u, err := h.Auth.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return fail(c, "auth.login", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    tok,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(h.TTL),
	})
	c.Locals("user_id", u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": u.Email})
	return c.JSON(fiber.Map{"token": tok, "user": u})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return c.JSON(fiber.Map{"ok": true})
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "auth.register", err)
	}
	u, err := h.Auth.Register(c.UserContext(), in)
	if err != nil {
		return fail(c, "auth.register", err)
	}
	c.Status(fiber.StatusCreated)
	log.Audit(c, "auth.register", map[string]any{"email": u.Email})
	return c.JSON(fiber.Map{"id": u.ID, "status": u.Status})
}
