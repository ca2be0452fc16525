// Package stock holds the inventory reconciliation rules: how on-hand and
// lifetime quantities move, how delivery lines reserve stock, and how a
// running-balance ledger is rebuilt from movement records. It does no I/O;
// callers supply point-in-time quantities and commit the results.
package stock

import (
	"stockbook/internal/domain"
)

type Kind string

const (
	Restock Kind = "Restock"
	Return  Kind = "Return"
	Sale    Kind = "Sale"
	Other   Kind = "Other"

	// Delivery kinds are produced by delivery saves, never by manual adjustment.
	DeliveryOut     Kind = "Delivery"
	DeliveryEdit    Kind = "DeliveryEdit"
	DeliveryRelease Kind = "DeliveryRelease"
)

type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// ParseKind accepts the manual adjustment kinds only.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case Restock, Return, Sale, Other:
		return Kind(s), true
	}
	return "", false
}

func (k Kind) Incoming() bool { return k == Restock || k == Return || k == DeliveryRelease }

func (k Kind) Direction() Direction {
	if k.Incoming() {
		return In
	}
	return Out
}

// Label is the human-readable ledger type for a kind.
func (k Kind) Label() string {
	switch k {
	case Restock:
		return "Incoming (Restock)"
	case Return:
		return "Incoming (Return)"
	case Sale, Other:
		return "Outgoing"
	case DeliveryOut:
		return "Outgoing (Delivery)"
	case DeliveryEdit:
		return "Delivery (Edited)"
	case DeliveryRelease:
		return "Incoming (Delivery Release)"
	}
	return string(k)
}

// Level is a product's quantity pair at a point in time.
type Level struct {
	Onhand int
	Total  int
}

// Apply returns the level after moving qty units of the given kind. The
// input is never modified; on error the caller keeps its current level.
func Apply(l Level, kind Kind, qty int) (Level, error) {
	if qty <= 0 {
		return l, domain.Invalid("qty", "quantity must be a positive integer")
	}
	switch kind {
	case Restock:
		l.Total += qty
		l.Onhand += qty
	case Return, DeliveryRelease:
		l.Onhand += qty
	case Sale, Other, DeliveryOut, DeliveryEdit:
		if qty > l.Onhand {
			return l, &domain.CapacityError{Requested: qty, Available: l.Onhand}
		}
		l.Onhand -= qty
	default:
		return l, domain.Invalid("kind", "unknown movement kind "+string(kind))
	}
	return l, nil
}
