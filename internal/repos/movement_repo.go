package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"stockbook/internal/domain"
	"stockbook/internal/idgen"
)

const movementCols = `id, product_id, product_name, kind, direction, qty, balance_after, reference, tag, delivery_id, movement_date, actor_id, actor_name, created_at`

// MovementRepo is the append-only store of stock movements. Rows are
// never updated or deleted.
type MovementRepo struct{ db sqlx.ExtContext }

func NewMovementRepo(db sqlx.ExtContext) *MovementRepo { return &MovementRepo{db: db} }

func (r *MovementRepo) With(tx sqlx.ExtContext) *MovementRepo { return &MovementRepo{db: tx} }

func (r *MovementRepo) Append(ctx context.Context, m *domain.Movement) error {
	if m.ID == 0 {
		m.ID = idgen.GenerateID()
	}
	m.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO movements(`+movementCols+`)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`),
		m.ID, m.ProductID, m.ProductName, m.Kind, m.Direction, m.Qty, m.BalanceAfter, m.Reference,
		m.Tag, m.DeliveryID, m.MovementDate, m.ActorID, m.ActorName, m.CreatedAt)
	return err
}

// ByProduct returns a product's movements in insertion order.
func (r *MovementRepo) ByProduct(ctx context.Context, productID string) ([]domain.Movement, error) {
	out := []domain.Movement{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`SELECT `+movementCols+` FROM movements WHERE product_id=? ORDER BY id`), productID)
	return out, err
}
