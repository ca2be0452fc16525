package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockbook/internal/services"
)

type DashboardHandler struct {
	Dash *services.DashboardService
}

// GET /api/dashboard
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	sum, err := h.Dash.Summary(c.UserContext(), actorOf(c))
	if err != nil {
		return fail(c, "dashboard", err)
	}
	return c.JSON(sum)
}
