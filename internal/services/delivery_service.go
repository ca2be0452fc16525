package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockbook/internal/domain"
	"stockbook/internal/repos"
	"stockbook/internal/stock"
	"stockbook/internal/validate"
)

type DeliveryService struct {
	DB         *sqlx.DB
	Deliveries *repos.DeliveryRepo
	Products   *repos.ProductRepo
	Customers  *repos.CustomerRepo
	Movements  *repos.MovementRepo
	Sequences  *repos.SequenceRepo
	Audit      *AuditService
	Prefix     string
	Clock      clock
}

func NewDeliveryService(db *sqlx.DB, audit *AuditService, prefix string) *DeliveryService {
	if prefix == "" {
		prefix = "DR-ZK"
	}
	return &DeliveryService{
		DB:         db,
		Deliveries: repos.NewDeliveryRepo(db),
		Products:   repos.NewProductRepo(db),
		Customers:  repos.NewCustomerRepo(db),
		Movements:  repos.NewMovementRepo(db),
		Sequences:  repos.NewSequenceRepo(db),
		Audit:      audit,
		Prefix:     prefix,
	}
}

type LineInput struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type DeliveryInput struct {
	CustomerID string      `json:"customerId"`
	DRDate     string      `json:"drDate"`
	Items      []LineInput `json:"items"`
}

func (s *DeliveryService) year() string { return s.Clock.now().Format("06") }

func formatDR(prefix, yy string, n int) string { return fmt.Sprintf("%s-%s-%04d", prefix, yy, n) }

// PeekNumber previews the DR number the next saved delivery will get. The
// number is only reserved on save.
func (s *DeliveryService) PeekNumber(ctx context.Context) (string, error) {
	yy := s.year()
	n, err := s.Sequences.Peek(ctx, s.Prefix, yy)
	if err != nil {
		return "", err
	}
	return formatDR(s.Prefix, yy, n), nil
}

func (s *DeliveryService) List(ctx context.Context, status string) ([]domain.Delivery, error) {
	switch status {
	case "", domain.StatusOpen, domain.StatusClosed:
	default:
		return nil, domain.Invalid("status", "must be Open or Closed")
	}
	return s.Deliveries.List(ctx, status)
}

func (s *DeliveryService) Get(ctx context.Context, id string) (domain.Delivery, error) {
	return s.Deliveries.Get(ctx, id)
}

func (s *DeliveryService) checkInput(in DeliveryInput) (string, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return "", domain.Invalid("customerId", "please select a customer")
	}
	date, ok := validate.Date(in.DRDate, s.Clock.now())
	if !ok {
		return "", domain.Invalid("drDate", "use YYYY-MM-DD")
	}
	if len(in.Items) == 0 {
		return "", domain.Invalid("items", "add at least one item")
	}
	for _, it := range in.Items {
		if it.ProductID == "" {
			return "", domain.Invalid("productId", "please select a product")
		}
		if it.Quantity <= 0 {
			return "", domain.Invalid("quantity", "quantity must be a positive integer")
		}
	}
	return date, nil
}

func linesOf(items []domain.LineItem) []stock.Line {
	out := make([]stock.Line, 0, len(items))
	for _, it := range items {
		out = append(out, stock.Line{ProductID: it.ProductID, Qty: it.Quantity})
	}
	return out
}

func productIDs(groups ...[]stock.Line) []string {
	seen := map[string]bool{}
	var ids []string
	for _, g := range groups {
		for _, l := range g {
			if !seen[l.ProductID] {
				seen[l.ProductID] = true
				ids = append(ids, l.ProductID)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

func onhandOf(products map[string]domain.Product) map[string]int {
	out := make(map[string]int, len(products))
	for id, p := range products {
		out[id] = p.OnhandQty
	}
	return out
}

// buildItems snapshots product details into the delivery's line items.
func buildItems(in []LineInput, products map[string]domain.Product) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(in))
	for _, l := range in {
		p, ok := products[l.ProductID]
		if !ok {
			return nil, domain.Invalid("productId", "unknown product "+l.ProductID)
		}
		id := l.ID
		if id == "" {
			id = uuid.NewString()
		}
		items = append(items, domain.LineItem{
			ID: id, ProductID: p.ID, ProductName: p.Name, Category: p.Category,
			Unit: p.Unit, Price: p.UnitPrice, Quantity: l.Quantity,
		})
	}
	return items, nil
}

// applyChanges writes planned on-hand values and one movement per product.
// products is updated in place so several plans can run in one transaction.
func (s *DeliveryService) applyChanges(ctx context.Context, tx *sqlx.Tx, actor domain.Actor, d domain.Delivery,
	kind stock.Kind, changes []stock.Change, products map[string]domain.Product) error {
	prods, moves := s.Products.With(tx), s.Movements.With(tx)
	for _, ch := range changes {
		p := products[ch.ProductID]
		if err := prods.SetStock(ctx, p, ch.After, p.TotalQty); err != nil {
			return err
		}
		dir, qty := stock.Out, -ch.Delta()
		if ch.Delta() > 0 {
			dir, qty = stock.In, ch.Delta()
		}
		if err := moves.Append(ctx, &domain.Movement{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Kind:         string(kind),
			Direction:    string(dir),
			Qty:          qty,
			BalanceAfter: ch.After,
			Reference:    d.DRNo,
			Tag:          d.CustomerName,
			DeliveryID:   d.ID,
			MovementDate: d.DRDate,
			ActorID:      actor.UserID,
			ActorName:    actor.Name,
		}); err != nil {
			return err
		}
		p.OnhandQty, p.Version = ch.After, p.Version+1
		products[p.ID] = p
	}
	return nil
}

func newLines(in []LineInput) []stock.Line {
	out := make([]stock.Line, 0, len(in))
	for _, l := range in {
		out = append(out, stock.Line{ProductID: l.ProductID, Qty: l.Quantity})
	}
	return out
}

// Create saves a new Open delivery and reserves its lines. Either every
// product is decremented and the delivery stored, or nothing is.
func (s *DeliveryService) Create(ctx context.Context, actor domain.Actor, in DeliveryInput) (domain.Delivery, error) {
	date, err := s.checkInput(in)
	if err != nil {
		return domain.Delivery{}, err
	}
	cust, err := s.Customers.Get(ctx, in.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Delivery{}, domain.Invalid("customerId", "unknown customer")
		}
		return domain.Delivery{}, err
	}

	d := domain.Delivery{
		DRYear:       s.year(),
		DRDate:       date,
		Status:       domain.StatusOpen,
		CustomerID:   cust.ID,
		CustomerName: cust.Name,
		Address:      cust.Address,
		ContactNo:    cust.ContactNo,
		CreatedBy:    actor.Name,
	}
	lines := newLines(in.Items)
	err = inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		products, err := s.Products.With(tx).ByIDs(ctx, productIDs(lines))
		if err != nil {
			return err
		}
		if d.Items, err = buildItems(in.Items, products); err != nil {
			return err
		}
		changes, err := stock.PlanCommit(onhandOf(products), nil, lines)
		if err != nil {
			return named(err, products)
		}
		if d.Series, err = s.Sequences.With(tx).Next(ctx, s.Prefix, d.DRYear); err != nil {
			return err
		}
		d.DRNo = formatDR(s.Prefix, d.DRYear, d.Series)
		if err := s.Deliveries.With(tx).Insert(ctx, &d); err != nil {
			return err
		}
		return s.applyChanges(ctx, tx, actor, d, stock.DeliveryOut, changes, products)
	})
	if err != nil {
		return domain.Delivery{}, err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{
		Action: "Created delivery " + d.DRNo, Entity: "delivery", EntityID: d.ID, EntityName: d.DRNo,
		Details: map[string]any{"customer": d.CustomerName, "items": len(d.Items)},
	})
	return d, nil
}

// Update replaces an Open delivery's header and lines. Stock moves by the
// net difference between the stored lines and the new ones.
func (s *DeliveryService) Update(ctx context.Context, actor domain.Actor, id string, in DeliveryInput) (domain.Delivery, error) {
	date, err := s.checkInput(in)
	if err != nil {
		return domain.Delivery{}, err
	}
	cust, err := s.Customers.Get(ctx, in.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Delivery{}, domain.Invalid("customerId", "unknown customer")
		}
		return domain.Delivery{}, err
	}

	var d domain.Delivery
	lines := newLines(in.Items)
	err = inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		var err error
		deliveries := s.Deliveries.With(tx)
		if d, err = deliveries.Get(ctx, id); err != nil {
			return err
		}
		if d.Closed() {
			return fmt.Errorf("%s: %w", d.DRNo, domain.ErrClosed)
		}
		products, err := s.Products.With(tx).ByIDs(ctx, productIDs(linesOf(d.Items), lines))
		if err != nil {
			return err
		}
		// a product deleted since the delivery was saved has nothing to credit back
		var old []stock.Line
		for _, l := range linesOf(d.Items) {
			if _, ok := products[l.ProductID]; ok {
				old = append(old, l)
			}
		}
		if d.Items, err = buildItems(in.Items, products); err != nil {
			return err
		}
		changes, err := stock.PlanCommit(onhandOf(products), old, lines)
		if err != nil {
			return named(err, products)
		}
		d.DRDate = date
		d.CustomerID, d.CustomerName, d.Address, d.ContactNo = cust.ID, cust.Name, cust.Address, cust.ContactNo
		if err := deliveries.UpdateOpen(ctx, &d); err != nil {
			return err
		}
		return s.applyChanges(ctx, tx, actor, d, stock.DeliveryEdit, changes, products)
	})
	if err != nil {
		return domain.Delivery{}, err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{
		Action: "Edited delivery " + d.DRNo, Entity: "delivery", EntityID: d.ID, EntityName: d.DRNo,
		Details: map[string]any{"customer": d.CustomerName, "items": len(d.Items)},
	})
	return d, nil
}

// Close moves an Open delivery to Closed. There is no way back.
func (s *DeliveryService) Close(ctx context.Context, actor domain.Actor, id string) (domain.Delivery, error) {
	d, err := s.Deliveries.Get(ctx, id)
	if err != nil {
		return d, err
	}
	if d.Closed() {
		return d, fmt.Errorf("%s: %w", d.DRNo, domain.ErrClosed)
	}
	if err := s.Deliveries.Close(ctx, id); err != nil {
		if errors.Is(err, repos.ErrStale) {
			return d, fmt.Errorf("%s: %w", d.DRNo, domain.ErrClosed)
		}
		return d, err
	}
	d.Status = domain.StatusClosed
	s.Audit.Record(ctx, actor, domain.AuditEntry{
		Action: "Closed delivery " + d.DRNo, Entity: "delivery", EntityID: d.ID, EntityName: d.DRNo,
	})
	return d, nil
}

// Discard deletes Open deliveries and returns their reserved stock. A
// Closed or unknown id rejects the whole batch.
func (s *DeliveryService) Discard(ctx context.Context, actor domain.Actor, ids []string) (int, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, domain.Invalid("ids", "select at least one delivery")
	}
	var gone []domain.Delivery
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		deliveries := s.Deliveries.With(tx)
		ds, err := deliveries.ByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(ds) != len(ids) {
			return fmt.Errorf("delivery: %w", domain.ErrNotFound)
		}
		var all []stock.Line
		for _, d := range ds {
			if d.Closed() {
				return fmt.Errorf("%s: %w", d.DRNo, domain.ErrClosed)
			}
			all = append(all, linesOf(d.Items)...)
		}
		products, err := s.Products.With(tx).ByIDs(ctx, productIDs(all))
		if err != nil {
			return err
		}
		for _, d := range ds {
			var held []stock.Line
			for _, l := range linesOf(d.Items) {
				if _, ok := products[l.ProductID]; ok {
					held = append(held, l)
				}
			}
			changes, err := stock.PlanCommit(onhandOf(products), held, nil)
			if err != nil {
				return err
			}
			if err := s.applyChanges(ctx, tx, actor, d, stock.DeliveryRelease, changes, products); err != nil {
				return err
			}
		}
		n, err := deliveries.DeleteOpen(ctx, ids)
		if err != nil {
			return err
		}
		if int(n) != len(ds) {
			return repos.ErrStale
		}
		gone = ds
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, d := range gone {
		s.Audit.Record(ctx, actor, domain.AuditEntry{
			Action: "Deleted delivery " + d.DRNo, Entity: "delivery", EntityID: d.ID, EntityName: d.DRNo,
			Details: map[string]any{"customer": d.CustomerName, "items": len(d.Items)},
		})
	}
	return len(gone), nil
}

func uniqueIDs(ids []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// LineCheck asks whether one form line fits. DeliveryID is empty for a
// delivery that has not been saved yet.
type LineCheck struct {
	DeliveryID string `json:"deliveryId"`
	ItemID     string `json:"itemId"`
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
}

// CheckLine validates a single line against current stock, crediting the
// delivery's own stored reservation. It returns the line's ceiling.
func (s *DeliveryService) CheckLine(ctx context.Context, in LineCheck) (int, error) {
	var original []stock.DraftItem
	if in.DeliveryID != "" {
		d, err := s.Deliveries.Get(ctx, in.DeliveryID)
		if err != nil {
			return 0, err
		}
		if d.Closed() {
			return 0, fmt.Errorf("%s: %w", d.DRNo, domain.ErrClosed)
		}
		for _, it := range d.Items {
			original = append(original, stock.DraftItem{ID: it.ID, ProductID: it.ProductID, Qty: it.Quantity})
		}
	}
	ids := []string{in.ProductID}
	for _, it := range original {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Products.ByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	draft := stock.NewDraft(onhandOf(products), original)
	avail, _ := draft.Available(in.ItemID, in.ProductID)
	if err := draft.Put(in.ItemID, in.ProductID, in.Quantity); err != nil {
		return avail, named(err, products)
	}
	return avail, nil
}
