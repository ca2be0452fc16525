package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"stockbook/internal/domain"
	"stockbook/internal/log"
	"stockbook/internal/services"
	"stockbook/internal/stock"
	"stockbook/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

type adjustBody struct {
	Type        string      `json:"type"`
	Qty         json.Number `json:"qty"`
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
	Date        string      `json:"date"`
	Reference   string      `json:"reference"`
}

func (h *InventoryHandler) adjust(c *fiber.Ctx, incoming bool) error {
	action := "stock.outgoing"
	if incoming {
		action = "stock.incoming"
	}
	var in adjustBody
	if err := bindJSON(c, &in); err != nil {
		return fail(c, action, err)
	}
	qty, ok := validate.WholeQty(in.Qty.String())
	if !ok {
		return fail(c, action, domain.Invalid("qty", "quantity must be a positive whole number"))
	}
	kind := in.Type
	tag := in.Destination
	if incoming {
		tag = in.Source
		if kind == "" {
			kind = string(stock.Restock)
		}
	} else if kind == "" {
		kind = string(stock.Sale)
	}
	if k, ok := stock.ParseKind(kind); !ok || k.Incoming() != incoming {
		return fail(c, action, domain.Invalid("type", "movement type does not match this endpoint"))
	}

	p, err := h.Inv.Adjust(c.UserContext(), actorOf(c), services.AdjustInput{
		ProductID: c.Params("id"),
		Kind:      kind,
		Qty:       qty,
		Tag:       tag,
		Date:      in.Date,
		Reference: in.Reference,
	})
	if err != nil {
		return fail(c, action, err)
	}
	log.Audit(c, action, map[string]any{"product_id": p.ID, "type": kind, "qty": qty, "onhand": p.OnhandQty})
	return c.JSON(p)
}

// POST /api/products/:id/incoming
func (h *InventoryHandler) Incoming(c *fiber.Ctx) error { return h.adjust(c, true) }

// POST /api/products/:id/outgoing
func (h *InventoryHandler) Outgoing(c *fiber.Ctx) error { return h.adjust(c, false) }

// GET /api/products/:id/ledger
func (h *InventoryHandler) Ledger(c *fiber.Ctx) error {
	l, err := h.Inv.Ledger(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "stock.ledger", err)
	}
	return c.JSON(l)
}

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GET /api/products/:id/ledger.xlsx
func (h *InventoryHandler) LedgerXLSX(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, xlsxType)
	name, err := h.Inv.ExportLedger(c.UserContext(), c.Params("id"), c.Response().BodyWriter())
	if err != nil {
		c.Response().ResetBody()
		return fail(c, "stock.ledger.export", err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return nil
}

// GET /api/products/export.xlsx
func (h *InventoryHandler) ExportProducts(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, xlsxType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
	if err := h.Inv.ExportProducts(c.UserContext(), c.Response().BodyWriter()); err != nil {
		c.Response().ResetBody()
		return fail(c, "products.export", err)
	}
	return nil
}
