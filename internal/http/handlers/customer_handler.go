package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockbook/internal/log"
	"stockbook/internal/services"
)

type CustomerHandler struct {
	Customers *services.CustomerService
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	cs, err := h.Customers.List(c.UserContext())
	if err != nil {
		return fail(c, "customers.list", err)
	}
	return c.JSON(cs)
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in services.CustomerInput
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "customers.create", err)
	}
	cust, err := h.Customers.Create(c.UserContext(), actorOf(c), in)
	if err != nil {
		return fail(c, "customers.create", err)
	}
	c.Status(fiber.StatusCreated)
	log.Audit(c, "customers.create", map[string]any{"customer_id": cust.ID})
	return c.JSON(cust)
}

func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in services.CustomerInput
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "customers.update", err)
	}
	cust, err := h.Customers.Update(c.UserContext(), actorOf(c), c.Params("id"), in)
	if err != nil {
		return fail(c, "customers.update", err)
	}
	log.Audit(c, "customers.update", map[string]any{"customer_id": cust.ID})
	return c.JSON(cust)
}

func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	var in idsBody
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "customers.delete", err)
	}
	n, err := h.Customers.Delete(c.UserContext(), actorOf(c), in.IDs)
	if err != nil {
		return fail(c, "customers.delete", err)
	}
	log.Audit(c, "customers.delete", map[string]any{"count": n})
	return c.JSON(fiber.Map{"deleted": n})
}
