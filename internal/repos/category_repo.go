package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"stockbook/internal/domain"
)

type CategoryRepo struct{ db sqlx.ExtContext }

func NewCategoryRepo(db sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) With(tx sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{db: tx} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := sqlx.SelectContext(ctx, r.db, &out, `SELECT id, name, created_at FROM categories ORDER BY LOWER(name)`)
	return out, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := sqlx.GetContext(ctx, r.db, &c, r.db.Rebind(`SELECT id, name, created_at FROM categories WHERE id=?`), id)
	return c, notFound(err)
}

// NameTaken reports whether another category already uses name (case-insensitive).
func (r *CategoryRepo) NameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM categories WHERE LOWER(name)=LOWER(?) AND id<>?`), name, exceptID)
	return n > 0, err
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = newID()
	}
	c.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO categories(id,name,created_at) VALUES(?,?,?)`), c.ID, c.Name, c.CreatedAt)
	return err
}

func (r *CategoryRepo) Rename(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE categories SET name=? WHERE id=?`), name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := inQuery(r.db, `DELETE FROM categories WHERE id IN (?)`, ids)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
