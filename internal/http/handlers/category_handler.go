package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockbook/internal/log"
	"stockbook/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

type nameBody struct {
	Name string `json:"name"`
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, "categories.list", err)
	}
	return c.JSON(cats)
}

// POST /api/categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in nameBody
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "categories.create", err)
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), actorOf(c), in.Name)
	if err != nil {
		return fail(c, "categories.create", err)
	}
	c.Status(fiber.StatusCreated)
	log.Audit(c, "categories.create", map[string]any{"category_id": cat.ID})
	return c.JSON(cat)
}

// PUT /api/categories/:id
func (h *CategoryHandler) Rename(c *fiber.Ctx) error {
	var in nameBody
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "categories.rename", err)
	}
	cat, err := h.Catalog.RenameCategory(c.UserContext(), actorOf(c), c.Params("id"), in.Name)
	if err != nil {
		return fail(c, "categories.rename", err)
	}
	log.Audit(c, "categories.rename", map[string]any{"category_id": cat.ID})
	return c.JSON(cat)
}

// POST /api/categories/delete
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	var in idsBody
	if err := bindJSON(c, &in); err != nil {
		return fail(c, "categories.delete", err)
	}
	n, err := h.Catalog.DeleteCategories(c.UserContext(), actorOf(c), in.IDs)
	if err != nil {
		return fail(c, "categories.delete", err)
	}
	log.Audit(c, "categories.delete", map[string]any{"count": n})
	return c.JSON(fiber.Map{"deleted": n})
}
