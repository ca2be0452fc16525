package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"stockbook/internal/domain"
	"stockbook/internal/repos"
	"stockbook/internal/validate"
)

// Claims carried by an access token.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c Claims) Actor() domain.Actor {
	return domain.Actor{UserID: c.UserID, Name: c.Name, Email: c.Email, Role: c.Role}
}

type AuthService struct {
	Users  *repos.UserRepo
	Audit  *AuditService
	Secret []byte
	TTL    time.Duration
}

func NewAuthService(users *repos.UserRepo, audit *AuditService, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{Users: users, Audit: audit, Secret: []byte(secret), TTL: ttl}
}

// Login checks the password of an ACTIVE account and issues a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.Users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrBadCreds
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", nil, domain.ErrBadCreds
	}
	if u.Status != domain.UserActive {
		return "", nil, fmt.Errorf("account awaiting approval: %w", domain.ErrForbidden)
	}
	tok, err := s.Issue(u)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

func (s *AuthService) Issue(u *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Parse verifies a token and returns the actor it was issued to.
func (s *AuthService) Parse(token string) (domain.Actor, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !t.Valid {
		return domain.Actor{}, domain.ErrBadCreds
	}
	return claims.Actor(), nil
}

// Current resolves a token to the account it was issued to. The user row
// is re-read so deleted or deactivated accounts lose access immediately and
// the role always comes from the store, not the claim.
func (s *AuthService) Current(ctx context.Context, token string) (domain.Actor, error) {
	a, err := s.Parse(token)
	if err != nil {
		return domain.Actor{}, err
	}
	u, err := s.Users.ByID(ctx, a.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Actor{}, domain.ErrBadCreds
		}
		return domain.Actor{}, err
	}
	if u.Status != domain.UserActive {
		return domain.Actor{}, domain.ErrBadCreds
	}
	return domain.Actor{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register files a PENDING account that an admin must approve.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, domain.Invalid("email", "enter a valid email")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, domain.Invalid("name", "name is required")
	}
	if !validate.Password(in.Password) {
		return nil, domain.Invalid("password", "8+ characters with upper, lower, digit and symbol")
	}
	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s: %w", email, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Email: email, Name: name, Hash: string(h), Role: domain.RoleEmployee, Status: domain.UserPending}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func requireAdmin(actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Users.List(ctx, domain.UserActive)
}

func (s *AuthService) Pending(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Users.List(ctx, domain.UserPending)
}

func (s *AuthService) Approve(ctx context.Context, actor domain.Actor, id, role string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if role == "" {
		role = domain.RoleEmployee
	}
	if role != domain.RoleEmployee && role != domain.RoleAdmin {
		return domain.Invalid("role", "must be ADMIN or EMPLOYEE")
	}
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Users.Activate(ctx, id, role); err != nil {
		return err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{Action: "Approved " + u.Email, Entity: "user", EntityID: id, EntityName: u.Name, Details: map[string]any{"role": role}})
	return nil
}

// Reject discards a PENDING registration.
func (s *AuthService) Reject(ctx context.Context, actor domain.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Status != domain.UserPending {
		return domain.Invalid("id", "only pending registrations can be rejected")
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{Action: "Rejected " + u.Email, Entity: "user", EntityID: id, EntityName: u.Name})
	return nil
}

func (s *AuthService) DeleteUser(ctx context.Context, actor domain.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return domain.Invalid("id", "you cannot delete your own account")
	}
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{Action: "Deleted user " + u.Email, Entity: "user", EntityID: id, EntityName: u.Name})
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, actor domain.Actor, id, password string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if !validate.Password(password) {
		return domain.Invalid("password", "8+ characters with upper, lower, digit and symbol")
	}
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.Users.SetPassword(ctx, id, string(h)); err != nil {
		return err
	}
	s.Audit.Record(ctx, actor, domain.AuditEntry{Action: "Reset password for " + u.Email, Entity: "user", EntityID: id, EntityName: u.Name})
	return nil
}
