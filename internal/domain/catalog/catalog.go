// Package catalog describes the menu of products that can be added to a cart.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a menu item available for ordering.
type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Category    string
	Image       string
	Description string
}

// Repository defines read operations for the menu.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
}
