package services

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheet = "Sheet1"

func writeRows(w io.Writer, header []any, rows [][]any) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// ExportProducts writes the product list as an xlsx workbook.
func (s *InventoryService) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := s.Products.List(ctx)
	if err != nil {
		return err
	}
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		price, _ := p.UnitPrice.Float64()
		value, _ := p.OnhandValue().Float64()
		rows = append(rows, []any{p.Category, p.Name, p.SKU, p.Unit, p.TotalQty, p.OnhandQty, price, value})
	}
	header := []any{"Category", "Product", "SKU", "Unit", "Total Qty", "Onhand Qty", "Unit Price", "Onhand Value"}
	return writeRows(w, header, rows)
}

// ExportLedger writes a product's ledger, newest first, as an xlsx workbook.
func (s *InventoryService) ExportLedger(ctx context.Context, productID string, w io.Writer) (string, error) {
	l, err := s.Ledger(ctx, productID)
	if err != nil {
		return "", err
	}
	rows := make([][]any, 0, len(l.Rows)+1)
	for _, r := range l.Rows {
		in, out := 0, 0
		if r.Direction == "in" {
			in = r.Qty
		} else {
			out = r.Qty
		}
		rows = append(rows, []any{r.Date, r.Type, r.Ref, in, out, r.Balance})
	}
	rows = append(rows, []any{"", "Opening balance", "", "", "", l.Opening})
	name := fmt.Sprintf("ledger-%s.xlsx", l.Product.SKU)
	if l.Product.SKU == "" {
		name = fmt.Sprintf("ledger-%s.xlsx", l.Product.ID)
	}
	return name, writeRows(w, []any{"Date", "Type", "Reference", "In", "Out", "Balance"}, rows)
}
