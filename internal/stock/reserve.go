package stock

import (
	"sort"

	"stockbook/internal/domain"
)

// Line is a requested quantity of one product.
type Line struct {
	ProductID string
	Qty       int
}

// Change is the planned on-hand update for one product.
type Change struct {
	ProductID string
	Before    int
	After     int
}

// Delta is the signed on-hand movement of the change.
func (c Change) Delta() int { return c.After - c.Before }

func sumByProduct(lines []Line) map[string]int {
	out := make(map[string]int, len(lines))
	for _, l := range lines {
		out[l.ProductID] += l.Qty
	}
	return out
}

// PlanCommit computes, for every product touched by old or next, the
// on-hand value after replacing the old reservation with the next one:
//
//	after = onhand + old - next
//
// A new delivery has no old lines. If any product would go negative the
// whole plan is rejected and no change is returned. Products whose
// quantity does not change are left out of the plan.
func PlanCommit(onhand map[string]int, old, next []Line) ([]Change, error) {
	oldQty := sumByProduct(old)
	newQty := sumByProduct(next)

	ids := make([]string, 0, len(oldQty)+len(newQty))
	seen := map[string]bool{}
	for _, m := range []map[string]int{oldQty, newQty} {
		for id := range m {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)

	changes := make([]Change, 0, len(ids))
	for _, id := range ids {
		cur, ok := onhand[id]
		if !ok {
			return nil, domain.Invalid("items", "unknown product "+id)
		}
		o, n := oldQty[id], newQty[id]
		if o == n {
			continue
		}
		after := cur + o - n
		if after < 0 {
			return nil, &domain.CapacityError{ProductID: id, Requested: n, Available: cur + o}
		}
		changes = append(changes, Change{ProductID: id, Before: cur, After: after})
	}
	return changes, nil
}

// DraftItem is a line item held in an uncommitted delivery form.
type DraftItem struct {
	ID        string
	ProductID string
	Qty       int
}

// Draft is the local, uncommitted line-item state of a delivery being
// created or edited. Nothing in a draft touches stored quantities; those
// change only when the draft's lines go through PlanCommit.
type Draft struct {
	onhand   map[string]int
	original map[string]int
	items    []DraftItem
}

// NewDraft starts a draft from an on-hand snapshot. original holds the
// lines the delivery already reserved (nil for a new delivery) and seeds
// the draft's items.
func NewDraft(onhand map[string]int, original []DraftItem) *Draft {
	d := &Draft{onhand: onhand, original: map[string]int{}}
	for _, it := range original {
		d.original[it.ProductID] += it.Qty
		d.items = append(d.items, it)
	}
	return d
}

// Available is the ceiling for a single line of productID. The item being
// edited and the delivery's own original reservation are credited back.
func (d *Draft) Available(itemID, productID string) (int, bool) {
	cur, ok := d.onhand[productID]
	if !ok {
		return 0, false
	}
	avail := cur + d.original[productID]
	if it, found := d.find(itemID); found && it.ProductID == productID {
		avail += it.Qty
	}
	return avail, true
}

// Put adds a line or replaces the line with the same id after checking it
// against Available.
func (d *Draft) Put(itemID, productID string, qty int) error {
	if productID == "" {
		return domain.Invalid("productId", "please select a product")
	}
	if qty <= 0 {
		return domain.Invalid("quantity", "quantity must be a positive integer")
	}
	avail, ok := d.Available(itemID, productID)
	if !ok {
		return domain.Invalid("productId", "unknown product "+productID)
	}
	if qty > avail {
		return &domain.CapacityError{ProductID: productID, Requested: qty, Available: avail}
	}
	next := DraftItem{ID: itemID, ProductID: productID, Qty: qty}
	for i := range d.items {
		if d.items[i].ID == itemID {
			d.items[i] = next
			return nil
		}
	}
	d.items = append(d.items, next)
	return nil
}

// Remove drops a line from the draft and reports whether it existed.
func (d *Draft) Remove(itemID string) bool {
	for i := range d.items {
		if d.items[i].ID == itemID {
			d.items = append(d.items[:i], d.items[i+1:]...)
			return true
		}
	}
	return false
}

func (d *Draft) find(itemID string) (DraftItem, bool) {
	if itemID == "" {
		return DraftItem{}, false
	}
	for _, it := range d.items {
		if it.ID == itemID {
			return it, true
		}
	}
	return DraftItem{}, false
}

func (d *Draft) Items() []DraftItem {
	out := make([]DraftItem, len(d.items))
	copy(out, d.items)
	return out
}

// Lines returns the draft's items as reservation lines.
func (d *Draft) Lines() []Line {
	out := make([]Line, 0, len(d.items))
	for _, it := range d.items {
		out = append(out, Line{ProductID: it.ProductID, Qty: it.Qty})
	}
	return out
}

// Original returns the reservation the draft started from.
func (d *Draft) Original() []Line {
	out := make([]Line, 0, len(d.original))
	for id, q := range d.original {
		out = append(out, Line{ProductID: id, Qty: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Plan runs PlanCommit for the draft against its snapshot.
func (d *Draft) Plan() ([]Change, error) {
	return PlanCommit(d.onhand, d.Original(), d.Lines())
}
