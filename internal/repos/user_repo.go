package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"stockbook/internal/domain"
)

const userCols = `id, email, name, password_hash, role, status, created_at`

type UserRepo struct{ DB sqlx.ExtContext }

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.DB, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`), email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.DB, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE id=?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// List returns users with the given status, or all users when status is empty.
func (r *UserRepo) List(ctx context.Context, status string) ([]domain.User, error) {
	out := []domain.User{}
	if status == "" {
		err := sqlx.SelectContext(ctx, r.DB, &out, `SELECT `+userCols+` FROM users ORDER BY created_at, email`)
		return out, err
	}
	err := sqlx.SelectContext(ctx, r.DB, &out, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE status=? ORDER BY created_at, email`), status)
	return out, err
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = now()
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO users(`+userCols+`) VALUES(?,?,?,?,?,?,?)`),
		u.ID, u.Email, u.Name, u.Hash, u.Role, u.Status, u.CreatedAt)
	return err
}

func (r *UserRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(q), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Activate moves a PENDING registration to ACTIVE with the given role.
func (r *UserRepo) Activate(ctx context.Context, id, role string) error {
	return r.exec(ctx, `UPDATE users SET status='ACTIVE', role=? WHERE id=? AND status='PENDING'`, role, id)
}

func (r *UserRepo) SetPassword(ctx context.Context, id, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash=? WHERE id=?`, hash, id)
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id=?`, id)
}
