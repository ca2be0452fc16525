package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"stockbook/internal/domain"
)

// inTx runs fn in one transaction. Nothing is written unless fn returns nil
// and the commit succeeds.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// named fills in the product name of a capacity error raised by the stock
// package, which only knows ids.
func named(err error, names map[string]domain.Product) error {
	var capErr *domain.CapacityError
	if errors.As(err, &capErr) && capErr.ProductName == "" {
		capErr.ProductName = names[capErr.ProductID].Name
	}
	return err
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func (c clock) today() string { return c.now().Format("2006-01-02") }
