package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"stockbook/internal/domain"
	"stockbook/internal/repos"
	"stockbook/internal/stock"
	"stockbook/internal/validate"
)

type InventoryService struct {
	DB        *sqlx.DB
	Products  *repos.ProductRepo
	Movements *repos.MovementRepo
	Audit     *AuditService
	Clock     clock
}

func NewInventoryService(db *sqlx.DB, audit *AuditService) *InventoryService {
	return &InventoryService{
		DB:        db,
		Products:  repos.NewProductRepo(db),
		Movements: repos.NewMovementRepo(db),
		Audit:     audit,
	}
}

// AdjustInput is a manual stock movement. Tag is the free-text source of
// incoming stock or destination of outgoing stock.
type AdjustInput struct {
	ProductID string
	Kind      string
	Qty       int
	Tag       string
	Date      string
	Reference string
}

// Adjust applies one manual movement to a product. The stock update and
// its movement row commit together; the update only lands if the product
// still has the quantities read at the start of the transaction.
func (s *InventoryService) Adjust(ctx context.Context, actor domain.Actor, in AdjustInput) (domain.Product, error) {
	kind, ok := stock.ParseKind(in.Kind)
	if !ok {
		return domain.Product{}, domain.Invalid("type", "unknown movement type "+strconv.Quote(in.Kind))
	}
	if in.Qty <= 0 {
		return domain.Product{}, domain.Invalid("qty", "quantity must be a positive integer")
	}
	date, ok := validate.Date(in.Date, s.Clock.now())
	if !ok {
		return domain.Product{}, domain.Invalid("date", "use YYYY-MM-DD")
	}
	tag := strings.TrimSpace(in.Tag)

	var updated domain.Product
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		products := s.Products.With(tx)
		p, err := products.Get(ctx, in.ProductID)
		if err != nil {
			return err
		}
		next, err := stock.Apply(stock.Level{Onhand: p.OnhandQty, Total: p.TotalQty}, kind, in.Qty)
		if err != nil {
			return named(err, map[string]domain.Product{p.ID: p})
		}
		if err := products.SetStock(ctx, p, next.Onhand, next.Total); err != nil {
			return err
		}
		ref := strings.TrimSpace(in.Reference)
		if ref == "" {
			ref = kind.Label()
		}
		if err := s.Movements.With(tx).Append(ctx, &domain.Movement{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Kind:         string(kind),
			Direction:    string(kind.Direction()),
			Qty:          in.Qty,
			BalanceAfter: next.Onhand,
			Reference:    ref,
			Tag:          tag,
			MovementDate: date,
			ActorID:      actor.UserID,
			ActorName:    actor.Name,
		}); err != nil {
			return err
		}
		p.OnhandQty, p.TotalQty, p.Version = next.Onhand, next.Total, p.Version+1
		updated = p
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	details := map[string]any{"qty": in.Qty, "type": string(kind)}
	if kind.Incoming() {
		details["source"] = tag
	} else {
		details["destination"] = tag
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{
		Action:     adjustVerb(kind) + " " + updated.Name,
		Entity:     "product",
		EntityID:   updated.ID,
		EntityName: updated.Name,
		Details:    details,
	})
	return updated, nil
}

func adjustVerb(k stock.Kind) string {
	switch k {
	case stock.Restock:
		return "Restocked"
	case stock.Return:
		return "Returned"
	}
	return "Outgoing"
}

// ProductLedger is a product with its reconstructed movement history.
type ProductLedger struct {
	Product domain.Product `json:"product"`
	stock.Ledger
}

func (s *InventoryService) Ledger(ctx context.Context, productID string) (ProductLedger, error) {
	p, err := s.Products.Get(ctx, productID)
	if err != nil {
		return ProductLedger{}, err
	}
	moves, err := s.Movements.ByProduct(ctx, productID)
	if err != nil {
		return ProductLedger{}, err
	}
	records := make([]stock.Record, 0, len(moves))
	for _, m := range moves {
		records = append(records, toRecord(m))
	}
	onhand := p.OnhandQty
	return ProductLedger{Product: p, Ledger: stock.Reconstruct(&onhand, records)}, nil
}

func toRecord(m domain.Movement) stock.Record {
	ref := m.Reference
	if m.Tag != "" {
		ref += " · " + m.Tag
	}
	return stock.Record{
		ID:        strconv.FormatInt(m.ID, 10),
		Type:      stock.Kind(m.Kind).Label(),
		Direction: stock.Direction(m.Direction),
		Qty:       m.Qty,
		Date:      m.MovementDate,
		Ref:       ref,
	}
}
