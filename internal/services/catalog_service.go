package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
	"stockbook/internal/repos"
	"stockbook/internal/validate"
)

type CatalogService struct {
	DB    *sqlx.DB
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
	Audit *AuditService
}

func NewCatalogService(db *sqlx.DB, audit *AuditService) *CatalogService {
	return &CatalogService{DB: db, Cats: repos.NewCategoryRepo(db), Prods: repos.NewProductRepo(db), Audit: audit}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor domain.Actor, name string) (domain.Category, error) {
	name, ok := validate.Name(name)
	if !ok {
		return domain.Category{}, domain.Invalid("name", "category name is required")
	}
	taken, err := s.Cats.NameTaken(ctx, name, "")
	if err != nil {
		return domain.Category{}, err
	}
	if taken {
		return domain.Category{}, fmt.Errorf("category %q: %w", name, domain.ErrConflict)
	}
	c := domain.Category{Name: name}
	if err := s.Cats.Create(ctx, &c); err != nil {
		return domain.Category{}, err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{Action: "Added category " + name, Entity: "category", EntityID: c.ID, EntityName: name})
	return c, nil
}

// RenameCategory renames a category and the products filed under it.
func (s *CatalogService) RenameCategory(ctx context.Context, actor domain.Actor, id, name string) (domain.Category, error) {
	name, ok := validate.Name(name)
	if !ok {
		return domain.Category{}, domain.Invalid("name", "category name is required")
	}
	var c domain.Category
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		var err error
		cats := s.Cats.With(tx)
		if c, err = cats.Get(ctx, id); err != nil {
			return err
		}
		taken, err := cats.NameTaken(ctx, name, id)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("category %q: %w", name, domain.ErrConflict)
		}
		if err := cats.Rename(ctx, id, name); err != nil {
			return err
		}
		if err := s.Prods.With(tx).RenameCategory(ctx, c.Name, name); err != nil {
			return err
		}
		c.Name = name
		return nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{Action: "Edited category " + name, Entity: "category", EntityID: id, EntityName: name})
	return c, nil
}

func (s *CatalogService) DeleteCategories(ctx context.Context, actor domain.Actor, ids []string) (int, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, domain.Invalid("ids", "select at least one category")
	}
	n, err := s.Cats.Delete(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{
		Action: fmt.Sprintf("Deleted %d categories", n), Entity: "category",
		Details: map[string]any{"ids": ids},
	})
	return int(n), nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.Prods.List(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

// ProductInput is the product form. Qty is the starting quantity on create
// and the lifetime total on edit.
type ProductInput struct {
	Category  string `json:"category"`
	Name      string `json:"product" validate:"required"`
	SKU       string `json:"sku"`
	Unit      string `json:"unit"`
	Qty       int    `json:"qty" validate:"gte=0"`
	UnitPrice string `json:"unitPrice"`
	Notes     string `json:"notes"`
}

func (in ProductInput) toProduct() (domain.Product, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Product{}, err
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.Product{}, domain.Invalid("product", "product name is required")
	}
	price := decimal.Zero
	if p := strings.TrimSpace(in.UnitPrice); p != "" {
		var err error
		if price, err = decimal.NewFromString(p); err != nil || price.IsNegative() {
			return domain.Product{}, domain.Invalid("unitPrice", "must be a non-negative amount")
		}
	}
	return domain.Product{
		Category:  strings.TrimSpace(in.Category),
		Name:      name,
		SKU:       strings.TrimSpace(in.SKU),
		Unit:      strings.TrimSpace(in.Unit),
		TotalQty:  in.Qty,
		UnitPrice: price.Round(2),
		Notes:     strings.TrimSpace(in.Notes),
	}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor domain.Actor, in ProductInput) (domain.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return domain.Product{}, err
	}
	p.OnhandQty = p.TotalQty
	if err := s.Prods.Create(ctx, &p); err != nil {
		return domain.Product{}, err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{
		Action: "Added " + p.Name, Entity: "product", EntityID: p.ID, EntityName: p.Name,
		Details: map[string]any{"qty": p.TotalQty, "category": p.Category},
	})
	return p, nil
}

// UpdateProduct edits descriptive fields and the lifetime total. The
// on-hand quantity only moves through stock adjustments and deliveries.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor domain.Actor, id string, in ProductInput) (domain.Product, error) {
	next, err := in.toProduct()
	if err != nil {
		return domain.Product{}, err
	}
	cur, err := s.Prods.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	next.ID, next.OnhandQty, next.CreatedAt = cur.ID, cur.OnhandQty, cur.CreatedAt
	if err := s.Prods.UpdateDetails(ctx, next); err != nil {
		return domain.Product{}, err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{
		Action: "Edited " + next.Name, Entity: "product", EntityID: id, EntityName: next.Name,
	})
	return s.Prods.Get(ctx, id)
}

// DeleteProducts removes all selected products in one transaction.
func (s *CatalogService) DeleteProducts(ctx context.Context, actor domain.Actor, ids []string) (int, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, domain.Invalid("ids", "select at least one product")
	}
	var removed []domain.Product
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		prods := s.Prods.With(tx)
		found, err := prods.ByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(found) != len(ids) {
			return fmt.Errorf("product: %w", domain.ErrNotFound)
		}
		if _, err := prods.Delete(ctx, ids); err != nil {
			return err
		}
		for _, id := range ids {
			removed = append(removed, found[id])
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, p := range removed {
		s.Audit.Record(ctx, actor, domain.AuditEntry{Action: "Deleted " + p.Name, Entity: "product", EntityID: p.ID, EntityName: p.Name})
	}
	return len(removed), nil
}
