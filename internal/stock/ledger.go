package stock

import "sort"

// Record is one movement for a product as read from a source collection.
// Date has day granularity (YYYY-MM-DD).
type Record struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Direction Direction `json:"direction"`
	Qty       int       `json:"qty"`
	Date      string    `json:"date"`
	Ref       string    `json:"ref"`
}

func (r Record) delta() int {
	if r.Direction == In {
		return r.Qty
	}
	return -r.Qty
}

type Row struct {
	Record
	Balance int `json:"balance"`
}

type Ledger struct {
	Pending bool  `json:"pending"`
	Opening int   `json:"opening"`
	Closing int   `json:"closing"`
	Rows    []Row `json:"rows"`
}

// Reconstruct rebuilds a running-balance ledger for one product. current
// is the product's on-hand quantity; nil means it has not been read yet and
// the ledger is returned pending. Records sharing an ID are merged (the
// first position is kept, the last value wins). Balances are computed
// oldest first, anchored so the newest row ends at current; rows are
// returned newest first.
func Reconstruct(current *int, records []Record) Ledger {
	if current == nil {
		return Ledger{Pending: true}
	}

	pos := make(map[string]int, len(records))
	uniq := make([]Record, 0, len(records))
	for _, r := range records {
		if i, ok := pos[r.ID]; ok {
			uniq[i] = r
			continue
		}
		pos[r.ID] = len(uniq)
		uniq = append(uniq, r)
	}

	sort.SliceStable(uniq, func(i, j int) bool { return uniq[i].Date < uniq[j].Date })

	net := 0
	for _, r := range uniq {
		net += r.delta()
	}
	opening := *current - net

	rows := make([]Row, len(uniq))
	balance := opening
	for i, r := range uniq {
		balance += r.delta()
		// newest first
		rows[len(uniq)-1-i] = Row{Record: r, Balance: balance}
	}
	return Ledger{Opening: opening, Closing: balance, Rows: rows}
}
