package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrClosed    = errors.New("delivery is closed")
	ErrForbidden = errors.New("forbidden")
	ErrBadCreds  = errors.New("invalid email or password")
	ErrConflict  = errors.New("already exists")
)

// ValidationError reports bad input detected before any store interaction.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func Invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

// CapacityError reports a quantity above what the product has available.
type CapacityError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *CapacityError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient onhand for %s (need %d, have %d)", name, e.Requested, e.Available)
}

// Shortfall is how many units are missing to satisfy the request.
func (e *CapacityError) Shortfall() int { return e.Requested - e.Available }
