package domain

const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"

	UserActive  = "ACTIVE"
	UserPending = "PENDING"
)

type User struct {
	ID        string `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	Name      string `db:"name" json:"name"`
	Hash      string `db:"password_hash" json:"-"`
	Role      string `db:"role" json:"role"`
	Status    string `db:"status" json:"status"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

// Actor is the signed-in user on whose behalf an operation runs.
type Actor struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
