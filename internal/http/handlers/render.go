package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stockbook/internal/domain"
	applog "stockbook/internal/log"
	"stockbook/internal/repos"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if a, ok := c.Locals("actor").(domain.Actor); ok {
		data["User"] = a
	}
	return c.Render(tmpl, data)
}

func notFoundPage(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}

// fail maps a service error onto a status code and a JSON body. Internals
// are logged, never returned.
func fail(c *fiber.Ctx, action string, err error) error {
	var vErr *domain.ValidationError
	var capErr *domain.CapacityError
	switch {
	case errors.As(err, &vErr):
		applog.Info(c, action+".invalid", map[string]any{"field": vErr.Field})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vErr.Error(), "field": vErr.Field})
	case errors.As(err, &capErr):
		applog.Info(c, action+".insufficient", map[string]any{"product": capErr.ProductID, "requested": capErr.Requested, "available": capErr.Available})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     capErr.Error(),
			"productId": capErr.ProductID,
			"requested": capErr.Requested,
			"available": capErr.Available,
			"shortfall": capErr.Shortfall(),
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, domain.ErrClosed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repos.ErrStale):
		applog.Security(c, action+".stale", nil)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": repos.ErrStale.Error()})
	case errors.Is(err, domain.ErrForbidden):
		applog.Security(c, "access.denied", map[string]any{"action": action})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrBadCreds):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": domain.ErrBadCreds.Error()})
	}
	applog.Error(c, action+".fail", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
}

// bindJSON parses the body into v; a malformed body is a validation error.
func bindJSON(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return domain.Invalid("body", "malformed request body")
	}
	return nil
}

type idsBody struct {
	IDs []string `json:"ids"`
}
