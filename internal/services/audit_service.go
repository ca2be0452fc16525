package services

import (
	"context"

	"stockbook/internal/domain"
	applog "stockbook/internal/log"
	"stockbook/internal/repos"
)

// AuditService keeps the user activity log. Writes are best effort: they
// run after the business commit and a failure only produces a warning.
type AuditService struct {
	Repo *repos.AuditRepo
}

func NewAuditService(repo *repos.AuditRepo) *AuditService { return &AuditService{Repo: repo} }

func (s *AuditService) Record(ctx context.Context, actor domain.Actor, e domain.AuditEntry) {
	if s == nil || s.Repo == nil {
		return
	}
	e.ActorID = actor.UserID
	e.ActorName = actor.Name
	e.ActorEmail = actor.Email
	if err := s.Repo.Insert(ctx, &e); err != nil {
		applog.Warn(nil, "audit.write.fail", err, map[string]any{"action": e.Action, "entity_id": e.EntityID})
		return
	}
	applog.Audit(nil, e.Action, map[string]any{"user_id": actor.UserID, "entity": e.Entity, "entity_id": e.EntityID})
}

// Recent returns the newest activity entries. Admins only.
func (s *AuditService) Recent(ctx context.Context, actor domain.Actor, limit int) ([]domain.AuditEntry, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.Repo.Recent(ctx, limit)
}
