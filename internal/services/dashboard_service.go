package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
	"stockbook/internal/repos"
)

type DashboardService struct {
	Products   *repos.ProductRepo
	Deliveries *repos.DeliveryRepo
	Audit      *AuditService
	LowStock   int
	Clock      clock
}

func NewDashboardService(products *repos.ProductRepo, deliveries *repos.DeliveryRepo, audit *AuditService, lowStock int) *DashboardService {
	return &DashboardService{Products: products, Deliveries: deliveries, Audit: audit, LowStock: lowStock}
}

type ProductValue struct {
	ID     string          `json:"id"`
	Name   string          `json:"product"`
	Onhand int             `json:"onhandQty"`
	Value  decimal.Decimal `json:"value"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Products int    `json:"products"`
	Onhand   int    `json:"onhandQty"`
}

type Dashboard struct {
	TotalProducts    int                 `json:"totalProducts"`
	LowStock         int                 `json:"lowStock"`
	LowStockItems    []domain.Product    `json:"lowStockItems"`
	OpenDeliveries   int                 `json:"openDeliveries"`
	ClosedThisMonth  int                 `json:"closedThisMonth"`
	InventoryValue   decimal.Decimal     `json:"inventoryValue"`
	TopProducts      []ProductValue      `json:"topProducts"`
	Categories       []CategoryCount     `json:"categories"`
	RecentDeliveries []domain.Delivery   `json:"recentDeliveries"`
	RecentActivity   []domain.AuditEntry `json:"recentActivity,omitempty"`
}

// Summary computes the dashboard from point-in-time reads. Activity is
// only included for admins.
func (s *DashboardService) Summary(ctx context.Context, actor domain.Actor) (Dashboard, error) {
	var out Dashboard
	products, err := s.Products.List(ctx)
	if err != nil {
		return out, err
	}
	out.TotalProducts = len(products)
	out.InventoryValue = decimal.Zero
	out.LowStockItems = []domain.Product{}

	byCat := map[string]*CategoryCount{}
	values := make([]ProductValue, 0, len(products))
	for _, p := range products {
		if p.OnhandQty <= s.LowStock {
			out.LowStock++
			out.LowStockItems = append(out.LowStockItems, p)
		}
		v := p.OnhandValue()
		out.InventoryValue = out.InventoryValue.Add(v)
		values = append(values, ProductValue{ID: p.ID, Name: p.Name, Onhand: p.OnhandQty, Value: v})

		cat := p.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		c, ok := byCat[cat]
		if !ok {
			c = &CategoryCount{Category: cat}
			byCat[cat] = c
		}
		c.Products++
		c.Onhand += p.OnhandQty
	}

	sort.SliceStable(values, func(i, j int) bool { return values[i].Value.GreaterThan(values[j].Value) })
	if len(values) > 5 {
		values = values[:5]
	}
	out.TopProducts = values

	out.Categories = make([]CategoryCount, 0, len(byCat))
	for _, c := range byCat {
		out.Categories = append(out.Categories, *c)
	}
	sort.Slice(out.Categories, func(i, j int) bool { return out.Categories[i].Category < out.Categories[j].Category })

	if out.OpenDeliveries, err = s.Deliveries.Count(ctx, domain.StatusOpen, ""); err != nil {
		return out, err
	}
	monthStart := s.Clock.now().Format("2006-01") + "-01"
	if out.ClosedThisMonth, err = s.Deliveries.Count(ctx, domain.StatusClosed, monthStart); err != nil {
		return out, err
	}
	if out.RecentDeliveries, err = s.Deliveries.Recent(ctx, 5); err != nil {
		return out, err
	}
	if actor.IsAdmin() && s.Audit != nil {
		if out.RecentActivity, err = s.Audit.Recent(ctx, actor, 10); err != nil {
			return out, err
		}
	}
	return out, nil
}
