package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SequenceRepo hands out per-name, per-year counters.
type SequenceRepo struct{ db sqlx.ExtContext }

func NewSequenceRepo(db sqlx.ExtContext) *SequenceRepo { return &SequenceRepo{db: db} }

func (r *SequenceRepo) With(tx sqlx.ExtContext) *SequenceRepo { return &SequenceRepo{db: tx} }

// Next increments and returns the counter in a single statement, so two
// writers can never receive the same value.
func (r *SequenceRepo) Next(ctx context.Context, name, year string) (int, error) {
	var v int
	err := sqlx.GetContext(ctx, r.db, &v, r.db.Rebind(`
		INSERT INTO sequences(name, year, value) VALUES(?, ?, 1)
		ON CONFLICT(name, year) DO UPDATE SET value = sequences.value + 1
		RETURNING value`), name, year)
	return v, err
}

// Peek returns the value Next would hand out, without consuming it.
func (r *SequenceRepo) Peek(ctx context.Context, name, year string) (int, error) {
	var v int
	err := sqlx.GetContext(ctx, r.db, &v, r.db.Rebind(`SELECT COALESCE(MAX(value), 0) FROM sequences WHERE name=? AND year=?`), name, year)
	return v + 1, err
}
