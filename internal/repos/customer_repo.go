package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"stockbook/internal/domain"
)

type CustomerRepo struct{ db sqlx.ExtContext }

func NewCustomerRepo(db sqlx.ExtContext) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	out := []domain.Customer{}
	err := sqlx.SelectContext(ctx, r.db, &out, `SELECT id, name, address, contact_no, created_at FROM customers ORDER BY LOWER(name)`)
	return out, err
}

func (r *CustomerRepo) Get(ctx context.Context, id string) (domain.Customer, error) {
	var c domain.Customer
	err := sqlx.GetContext(ctx, r.db, &c, r.db.Rebind(`SELECT id, name, address, contact_no, created_at FROM customers WHERE id=?`), id)
	return c, notFound(err)
}

func (r *CustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	if c.ID == "" {
		c.ID = newID()
	}
	c.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO customers(id,name,address,contact_no,created_at) VALUES(?,?,?,?,?)`),
		c.ID, c.Name, c.Address, c.ContactNo, c.CreatedAt)
	return err
}

func (r *CustomerRepo) Update(ctx context.Context, c domain.Customer) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE customers SET name=?, address=?, contact_no=? WHERE id=?`),
		c.Name, c.Address, c.ContactNo, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := inQuery(r.db, `DELETE FROM customers WHERE id IN (?)`, ids)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
