package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"stockbook/internal/domain"
)

const productCols = `id, category, name, sku, unit, total_qty, onhand_qty, unit_price, notes, version, created_at, updated_at`

type ProductRepo struct{ db sqlx.ExtContext }

func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

// With returns a copy bound to tx.
func (r *ProductRepo) With(tx sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: tx} }

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.db, &out, `SELECT `+productCols+` FROM products ORDER BY LOWER(name), id`)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	return p, notFound(err)
}

// ByIDs loads the given products keyed by id. Missing ids are simply absent.
func (r *ProductRepo) ByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := map[string]domain.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := inQuery(r.db, `SELECT `+productCols+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = newID()
	}
	p.Version = 1
	p.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO products(`+productCols+`)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`),
		p.ID, p.Category, p.Name, p.SKU, p.Unit, p.TotalQty, p.OnhandQty, p.UnitPrice.String(), p.Notes, p.Version, p.CreatedAt, "")
	return err
}

// UpdateDetails writes descriptive fields and total_qty. onhand_qty is
// only ever changed through SetStock.
func (r *ProductRepo) UpdateDetails(ctx context.Context, p domain.Product) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products
		SET category=?, name=?, sku=?, unit=?, total_qty=?, unit_price=?, notes=?, version=version+1, updated_at=?
		WHERE id=?`),
		p.Category, p.Name, p.SKU, p.Unit, p.TotalQty, p.UnitPrice.String(), p.Notes, now(), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStock writes new stock levels only if the row still holds the on-hand
// and version values the caller read; otherwise ErrStale.
func (r *ProductRepo) SetStock(ctx context.Context, p domain.Product, onhand, total int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products
		SET onhand_qty=?, total_qty=?, version=version+1, updated_at=?
		WHERE id=? AND onhand_qty=? AND version=?`),
		onhand, total, now(), p.ID, p.OnhandQty, p.Version)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStale
	}
	return nil
}

func (r *ProductRepo) RenameCategory(ctx context.Context, from, to string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE products SET category=?, updated_at=? WHERE category=?`), to, now(), from)
	return err
}

func (r *ProductRepo) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := inQuery(r.db, `DELETE FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
