package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockbook/internal/log"
	"stockbook/internal/services"
	"stockbook/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Inv     *services.InventoryService
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	ps, err := h.Catalog.ListProducts(c.UserContext())
	if err != nil {
		return fail(c, "products.list", err)
	}
	return c.JSON(ps)
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, "products.get", err)
	}
	return c.JSON(p)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "products.create", err)
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), actorOf(c), in)
	if err != nil {
		return fail(c, "products.create", err)
	}
	c.Status(fiber.StatusCreated)
	log.Audit(c, "products.create", map[string]any{"product_id": p.ID, "qty": p.TotalQty})
	return c.JSON(p)
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "products.update", err)
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), actorOf(c), c.Params("id"), in)
	if err != nil {
		return fail(c, "products.update", err)
	}
	log.Audit(c, "products.update", map[string]any{"product_id": p.ID})
	return c.JSON(p)
}

// POST /api/products/delete
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	var in idsBody
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "products.delete", err)
	}
	n, err := h.Catalog.DeleteProducts(c.UserContext(), actorOf(c), in.IDs)
	if err != nil {
		return fail(c, "products.delete", err)
	}
	log.Audit(c, "products.delete", map[string]any{"count": n})
	return c.JSON(fiber.Map{"deleted": n})
}

// GET /products/:id/card renders a printable stock card.
func (h *ProductHandler) Card(c *fiber.Ctx) error {
	l, err := h.Inv.Ledger(c.UserContext(), c.Params("id"))
	if err != nil {
		return notFoundPage(c, "This product is no longer available")
	}
	return render(c, "product_card", fiber.Map{"P": l.Product, "Ledger": l.Ledger})
}
