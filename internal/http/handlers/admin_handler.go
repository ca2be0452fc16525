package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "stockbook/internal/log"
	"stockbook/internal/services"
)

type AdminHandler struct {
	Auth  *services.AuthService
	Audit *services.AuditService
}

// GET /api/admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	us, err := h.Auth.ListUsers(c.UserContext(), actorOf(c))
	if err != nil {
		return fail(c, "admin.users.list", err)
	}
	return c.JSON(us)
}

// GET /api/admin/registrations
func (h *AdminHandler) Registrations(c *fiber.Ctx) error {
	us, err := h.Auth.Pending(c.UserContext(), actorOf(c))
	if err != nil {
		return fail(c, "admin.registrations.list", err)
	}
	return c.JSON(us)
}

type approveBody struct {
	Role string `json:"role"`
}

// POST /api/admin/registrations/:id/approve
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	var in approveBody
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return fail(c, "admin.registrations.approve", err)
		}
	}
	id := c.Params("id")
	if err := h.Auth.Approve(c.UserContext(), actorOf(c), id, in.Role); err != nil {
		return fail(c, "admin.registrations.approve", err)
	}
	applog.Audit(c, "admin.registrations.approve", map[string]any{"target_id": id, "role": in.Role})
	return c.JSON(fiber.Map{"ok": true})
}

// POST /api/admin/registrations/:id/reject
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Auth.Reject(c.UserContext(), actorOf(c), id); err != nil {
		return fail(c, "admin.registrations.reject", err)
	}
	applog.Audit(c, "admin.registrations.reject", map[string]any{"target_id": id})
	return c.JSON(fiber.Map{"ok": true})
}

// POST /api/admin/users/:id/delete
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Auth.DeleteUser(c.UserContext(), actorOf(c), id); err != nil {
		return fail(c, "admin.users.delete", err)
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"target_id": id})
	return c.JSON(fiber.Map{"ok": true})
}

type passwordBody struct {
	Password string `json:"password"`
}

// POST /api/admin/users/:id/reset-password
func (h *AdminHandler) ResetPassword(c *fiber.Ctx) error {
	var in passwordBody
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "admin.users.reset_password", err)
	}
	id := c.Params("id")
	if err := h.Auth.ResetPassword(c.UserContext(), actorOf(c), id, in.Password); err != nil {
		return fail(c, "admin.users.reset_password", err)
	}
	applog.Audit(c, "admin.users.reset_password", map[string]any{"target_id": id})
	return c.JSON(fiber.Map{"ok": true})
}

// GET /api/admin/logs?limit=100
func (h *AdminHandler) Logs(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	entries, err := h.Audit.Recent(c.UserContext(), actorOf(c), limit)
	if err != nil {
		return fail(c, "admin.logs", err)
	}
	return c.JSON(entries)
}
