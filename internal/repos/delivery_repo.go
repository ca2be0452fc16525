package repos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stockbook/internal/domain"
)

const deliveryCols = `id, dr_no, dr_year, series, dr_date, status, customer_id, customer_name, address, contact_no, items_json, created_by, created_at, updated_at`

type DeliveryRepo struct{ db sqlx.ExtContext }

func NewDeliveryRepo(db sqlx.ExtContext) *DeliveryRepo { return &DeliveryRepo{db: db} }

func (r *DeliveryRepo) With(tx sqlx.ExtContext) *DeliveryRepo { return &DeliveryRepo{db: tx} }

func decodeItems(d *domain.Delivery) error {
	d.Items = []domain.LineItem{}
	if d.ItemsJSON == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(d.ItemsJSON), &d.Items); err != nil {
		return fmt.Errorf("delivery %s items: %w", d.DRNo, err)
	}
	return nil
}

func encodeItems(d *domain.Delivery) error {
	if d.Items == nil {
		d.Items = []domain.LineItem{}
	}
	b, err := json.Marshal(d.Items)
	if err != nil {
		return err
	}
	d.ItemsJSON = string(b)
	return nil
}

func (r *DeliveryRepo) selectMany(ctx context.Context, q string, args ...any) ([]domain.Delivery, error) {
	out := []domain.Delivery{}
	if err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for i := range out {
		if err := decodeItems(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// List returns deliveries newest first. An empty status means all.
func (r *DeliveryRepo) List(ctx context.Context, status string) ([]domain.Delivery, error) {
	if status == "" {
		return r.selectMany(ctx, `SELECT `+deliveryCols+` FROM deliveries ORDER BY dr_date DESC, dr_no DESC`)
	}
	return r.selectMany(ctx, `SELECT `+deliveryCols+` FROM deliveries WHERE status=? ORDER BY dr_date DESC, dr_no DESC`, status)
}

func (r *DeliveryRepo) Recent(ctx context.Context, limit int) ([]domain.Delivery, error) {
	return r.selectMany(ctx, `SELECT `+deliveryCols+` FROM deliveries ORDER BY created_at DESC, dr_no DESC LIMIT ?`, limit)
}

func (r *DeliveryRepo) Get(ctx context.Context, id string) (domain.Delivery, error) {
	var d domain.Delivery
	if err := sqlx.GetContext(ctx, r.db, &d, r.db.Rebind(`SELECT `+deliveryCols+` FROM deliveries WHERE id=?`), id); err != nil {
		return d, notFound(err)
	}
	return d, decodeItems(&d)
}

func (r *DeliveryRepo) ByIDs(ctx context.Context, ids []string) ([]domain.Delivery, error) {
	if len(ids) == 0 {
		return []domain.Delivery{}, nil
	}
	q, args, err := sqlx.In(`SELECT `+deliveryCols+` FROM deliveries WHERE id IN (?) ORDER BY dr_no`, ids)
	if err != nil {
		return nil, err
	}
	return r.selectMany(ctx, q, args...)
}

func (r *DeliveryRepo) Insert(ctx context.Context, d *domain.Delivery) error {
	if d.ID == "" {
		d.ID = newID()
	}
	if err := encodeItems(d); err != nil {
		return err
	}
	d.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO deliveries(`+deliveryCols+`)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`),
		d.ID, d.DRNo, d.DRYear, d.Series, d.DRDate, d.Status, d.CustomerID, d.CustomerName,
		d.Address, d.ContactNo, d.ItemsJSON, d.CreatedBy, d.CreatedAt, "")
	return err
}

// UpdateOpen rewrites an Open delivery. A row that is no longer Open is
// reported as ErrStale.
func (r *DeliveryRepo) UpdateOpen(ctx context.Context, d *domain.Delivery) error {
	if err := encodeItems(d); err != nil {
		return err
	}
	d.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE deliveries
		SET dr_date=?, customer_id=?, customer_name=?, address=?, contact_no=?, items_json=?, updated_at=?
		WHERE id=? AND status='Open'`),
		d.DRDate, d.CustomerID, d.CustomerName, d.Address, d.ContactNo, d.ItemsJSON, d.UpdatedAt, d.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStale
	}
	return nil
}

func (r *DeliveryRepo) Close(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE deliveries SET status='Closed', updated_at=? WHERE id=? AND status='Open'`), now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStale
	}
	return nil
}

// DeleteOpen removes Open deliveries; Closed ones are never touched.
func (r *DeliveryRepo) DeleteOpen(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := inQuery(r.db, `DELETE FROM deliveries WHERE status='Open' AND id IN (?)`, ids)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *DeliveryRepo) Count(ctx context.Context, status, since string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM deliveries WHERE status=? AND dr_date>=?`), status, since)
	return n, err
}
