package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type Product struct {
	ID        string          `db:"id" json:"id"`
	Category  string          `db:"category" json:"category"`
	Name      string          `db:"name" json:"product"`
	SKU       string          `db:"sku" json:"sku"`
	Unit      string          `db:"unit" json:"unit"`
	TotalQty  int             `db:"total_qty" json:"totalQty"`
	OnhandQty int             `db:"onhand_qty" json:"onhandQty"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Notes     string          `db:"notes" json:"notes,omitempty"`
	Version   int             `db:"version" json:"-"`
	CreatedAt string          `db:"created_at" json:"createdAt"`
	UpdatedAt string          `db:"updated_at" json:"updatedAt,omitempty"`
}

// OnhandValue is the value of the stock currently available.
func (p Product) OnhandValue() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.OnhandQty)))
}

type Customer struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Address   string `db:"address" json:"address"`
	ContactNo string `db:"contact_no" json:"contactNo"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

// Delivery statuses. A delivery starts Open and may only move to Closed.
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// LineItem is embedded in its delivery; product fields are copied at save time.
type LineItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func (it LineItem) Amount() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Delivery struct {
	ID           string     `db:"id" json:"id"`
	DRNo         string     `db:"dr_no" json:"drNo"`
	DRYear       string     `db:"dr_year" json:"drYear"`
	Series       int        `db:"series" json:"series"`
	DRDate       string     `db:"dr_date" json:"drDate"`
	Status       string     `db:"status" json:"status"`
	CustomerID   string     `db:"customer_id" json:"customerId"`
	CustomerName string     `db:"customer_name" json:"customerName"`
	Address      string     `db:"address" json:"address"`
	ContactNo    string     `db:"contact_no" json:"contactNo"`
	ItemsJSON    string     `db:"items_json" json:"-"`
	Items        []LineItem `db:"-" json:"items"`
	CreatedBy    string     `db:"created_by" json:"createdBy"`
	CreatedAt    string     `db:"created_at" json:"createdAt"`
	UpdatedAt    string     `db:"updated_at" json:"updatedAt,omitempty"`
}

func (d Delivery) Closed() bool { return d.Status == StatusClosed }

func (d Delivery) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range d.Items {
		total = total.Add(it.Amount())
	}
	return total
}

// Movement is one entry of the append-only stock movement store.
type Movement struct {
	ID           int64  `db:"id" json:"id,string"`
	ProductID    string `db:"product_id" json:"productId"`
	ProductName  string `db:"product_name" json:"productName"`
	Kind         string `db:"kind" json:"kind"`
	Direction    string `db:"direction" json:"direction"`
	Qty          int    `db:"qty" json:"qty"`
	BalanceAfter int    `db:"balance_after" json:"balanceAfter"`
	Reference    string `db:"reference" json:"reference"`
	Tag          string `db:"tag" json:"tag"`
	DeliveryID   string `db:"delivery_id" json:"deliveryId,omitempty"`
	MovementDate string `db:"movement_date" json:"date"`
	ActorID      string `db:"actor_id" json:"actorId"`
	ActorName    string `db:"actor_name" json:"actorName"`
	CreatedAt    string `db:"created_at" json:"createdAt"`
}

type AuditEntry struct {
	ID          int64          `db:"id" json:"id,string"`
	ActorID     string         `db:"actor_id" json:"userId"`
	ActorName   string         `db:"actor_name" json:"userName"`
	ActorEmail  string         `db:"actor_email" json:"userEmail"`
	Action      string         `db:"action" json:"action"`
	Entity      string         `db:"entity" json:"entity"`
	EntityID    string         `db:"entity_id" json:"entityId,omitempty"`
	EntityName  string         `db:"entity_name" json:"entityName,omitempty"`
	DetailsJSON string         `db:"details" json:"-"`
	Details     map[string]any `db:"-" json:"details,omitempty"`
	CreatedAt   string         `db:"created_at" json:"createdAt"`
}
