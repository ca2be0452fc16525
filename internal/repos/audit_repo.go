package repos

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"stockbook/internal/domain"
	"stockbook/internal/idgen"
)

type AuditRepo struct{ db sqlx.ExtContext }

func NewAuditRepo(db sqlx.ExtContext) *AuditRepo { return &AuditRepo{db: db} }

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == 0 {
		e.ID = idgen.GenerateID()
	}
	e.CreatedAt = now()
	details := "{}"
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = string(b)
	}
	e.DetailsJSON = details
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO audit_log(id,actor_id,actor_name,actor_email,action,entity,entity_id,entity_name,details,created_at)
		VALUES(?,?,?,?,?,?,?,?,?,?)`),
		e.ID, e.ActorID, e.ActorName, e.ActorEmail, e.Action, e.Entity, e.EntityID, e.EntityName, e.DetailsJSON, e.CreatedAt)
	return err
}

// Recent returns the newest entries first.
func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	out := []domain.AuditEntry{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
		SELECT id,actor_id,actor_name,actor_email,action,entity,entity_id,entity_name,details,created_at
		FROM audit_log ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].DetailsJSON != "" && out[i].DetailsJSON != "{}" {
			_ = json.Unmarshal([]byte(out[i].DetailsJSON), &out[i].Details)
		}
	}
	return out, nil
}
