package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"stockbook/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = domain.ErrNotFound
	// ErrStale means a conditional update matched no row: somebody else
	// wrote the row after it was read.
	ErrStale = errors.New("record changed since it was read, reload and try again")
)

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func newID() string { return uuid.NewString() }

// OpenDB opens the store and makes sure the schema exists. driver is
// "sqlite" (modernc, default) or "pgx" (postgres).
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	if driver == "" {
		driver = "sqlite"
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one writer; also keeps a ":memory:" database alive on a single connection
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('ADMIN','EMPLOYEE')),
  status TEXT NOT NULL CHECK (status IN ('ACTIVE','PENDING')),
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories((LOWER(name)));

CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL,
  sku TEXT NOT NULL DEFAULT '',
  unit TEXT NOT NULL DEFAULT '',
  total_qty INTEGER NOT NULL DEFAULT 0,
  onhand_qty INTEGER NOT NULL DEFAULT 0 CHECK (onhand_qty >= 0),
  unit_price TEXT NOT NULL DEFAULT '0',
  notes TEXT NOT NULL DEFAULT '',
  version INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

CREATE TABLE IF NOT EXISTS customers(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  contact_no TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS deliveries(
  id TEXT PRIMARY KEY,
  dr_no TEXT NOT NULL UNIQUE,
  dr_year TEXT NOT NULL,
  series INTEGER NOT NULL,
  dr_date TEXT NOT NULL,
  status TEXT NOT NULL CHECK (status IN ('Open','Closed')),
  customer_id TEXT NOT NULL DEFAULT '',
  customer_name TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  contact_no TEXT NOT NULL DEFAULT '',
  items_json TEXT NOT NULL DEFAULT '[]',
  created_by TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status);

CREATE TABLE IF NOT EXISTS movements(
  id BIGINT PRIMARY KEY,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL DEFAULT '',
  kind TEXT NOT NULL,
  direction TEXT NOT NULL CHECK (direction IN ('in','out')),
  qty INTEGER NOT NULL CHECK (qty > 0),
  balance_after INTEGER NOT NULL,
  reference TEXT NOT NULL DEFAULT '',
  tag TEXT NOT NULL DEFAULT '',
  delivery_id TEXT NOT NULL DEFAULT '',
  movement_date TEXT NOT NULL,
  actor_id TEXT NOT NULL DEFAULT '',
  actor_name TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_movements_product ON movements(product_id);

CREATE TABLE IF NOT EXISTS audit_log(
  id BIGINT PRIMARY KEY,
  actor_id TEXT NOT NULL DEFAULT '',
  actor_name TEXT NOT NULL DEFAULT '',
  actor_email TEXT NOT NULL DEFAULT '',
  action TEXT NOT NULL,
  entity TEXT NOT NULL DEFAULT '',
  entity_id TEXT NOT NULL DEFAULT '',
  entity_name TEXT NOT NULL DEFAULT '',
  details TEXT NOT NULL DEFAULT '{}',
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sequences(
  name TEXT NOT NULL,
  year TEXT NOT NULL,
  value INTEGER NOT NULL,
  PRIMARY KEY (name, year)
);
`

// ensureSchema runs the DDL one statement at a time so the same text works
// on both drivers.
func ensureSchema(db *sqlx.DB) error {
	if db.DriverName() == "sqlite" {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return err
		}
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i > 0 {
		return s[:i]
	}
	return s
}

// Seed makes sure the admin account and a few starter categories exist.
// Safe to run on every startup.
func Seed(ctx context.Context, db *sqlx.DB, adminEmail, adminPassword string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?)`), adminEmail); err != nil {
		return err
	}
	if n == 0 {
		h, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		logrus.WithField("email", adminEmail).Info("[seed] creating admin user")
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO users(id,email,name,password_hash,role,status,created_at)
			VALUES(?,?,?,?,?,?,?)`),
			newID(), strings.ToLower(adminEmail), "Administrator", string(h), domain.RoleAdmin, domain.UserActive, now()); err != nil {
			return err
		}
	}

	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n == 0 {
		logrus.Info("[seed] inserting starter categories")
		for _, name := range []string{"Hardware", "Electrical", "Plumbing"} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO categories(id,name,created_at) VALUES(?,?,?)`),
				newID(), name, now()); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// inQuery expands a query containing "IN (?)" for the store's placeholder style.
func inQuery(ext sqlx.ExtContext, query string, args ...any) (string, []any, error) {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return ext.Rebind(q), a, nil
}
