package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockbook/internal/log"
	"stockbook/internal/services"
)

type DeliveryHandler struct {
	Deliveries *services.DeliveryService
}

// GET /api/deliveries?status=Open
func (h *DeliveryHandler) List(c *fiber.Ctx) error {
	ds, err := h.Deliveries.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return fail(c, "deliveries.list", err)
	}
	return c.JSON(ds)
}

// GET /api/deliveries/next-number
func (h *DeliveryHandler) NextNumber(c *fiber.Ctx) error {
	n, err := h.Deliveries.PeekNumber(c.UserContext())
	if err != nil {
		return fail(c, "deliveries.next", err)
	}
	return c.JSON(fiber.Map{"drNo": n})
}

func (h *DeliveryHandler) Get(c *fiber.Ctx) error {
	d, err := h.Deliveries.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "deliveries.get", err)
	}
	return c.JSON(d)
}

func (h *DeliveryHandler) Create(c *fiber.Ctx) error {
	var in services.DeliveryInput
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "deliveries.create", err)
	}
	d, err := h.Deliveries.Create(c.UserContext(), actorOf(c), in)
	if err != nil {
		return fail(c, "deliveries.create", err)
	}
	c.Status(fiber.StatusCreated)
	log.Audit(c, "deliveries.create", map[string]any{"delivery_id": d.ID, "dr_no": d.DRNo, "items": len(d.Items)})
	return c.JSON(d)
}

func (h *DeliveryHandler) Update(c *fiber.Ctx) error {
	var in services.DeliveryInput
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "deliveries.update", err)
	}
	d, err := h.Deliveries.Update(c.UserContext(), actorOf(c), c.Params("id"), in)
	if err != nil {
		return fail(c, "deliveries.update", err)
	}
	log.Audit(c, "deliveries.update", map[string]any{"delivery_id": d.ID, "dr_no": d.DRNo})
	return c.JSON(d)
}

// POST /api/deliveries/:id/close
func (h *DeliveryHandler) Close(c *fiber.Ctx) error {
	d, err := h.Deliveries.Close(c.UserContext(), actorOf(c), c.Params("id"))
	if err != nil {
		return fail(c, "deliveries.close", err)
	}
	log.Audit(c, "deliveries.close", map[string]any{"delivery_id": d.ID, "dr_no": d.DRNo})
	return c.JSON(d)
}

// POST /api/deliveries/discard
func (h *DeliveryHandler) Discard(c *fiber.Ctx) error {
	var in idsBody
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "deliveries.discard", err)
	}
	n, err := h.Deliveries.Discard(c.UserContext(), actorOf(c), in.IDs)
	if err != nil {
		return fail(c, "deliveries.discard", err)
	}
	log.Audit(c, "deliveries.discard", map[string]any{"count": n})
	return c.JSON(fiber.Map{"deleted": n})
}

// POST /api/deliveries/check-line
func (h *DeliveryHandler) CheckLine(c *fiber.Ctx) error {
	var in services.LineCheck
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "deliveries.check_line", err)
	}
	avail, err := h.Deliveries.CheckLine(c.UserContext(), in)
	if err != nil {
		return fail(c, "deliveries.check_line", err)
	}
	return c.JSON(fiber.Map{"ok": true, "available": avail})
}

// GET /deliveries/:id/print renders the printable delivery receipt.
func (h *DeliveryHandler) Print(c *fiber.Ctx) error {
	d, err := h.Deliveries.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return notFoundPage(c, "Delivery not found")
	}
	return render(c, "delivery", fiber.Map{"D": d, "Subtotal": d.Subtotal().StringFixed(2)})
}
