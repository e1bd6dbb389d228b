// Package catalog defines the product and postcard records the checkout
// flow prices against. Records are owned by the admin side; this package
// only reads them.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product or postcard does not exist.
var ErrNotFound = errors.New("not found")

// Product is a sellable catalog item.
type Product struct {
	ID        string
	Name      string
	Slug      string
	Category  string
	Price     decimal.Decimal
	Stock     int
	Available bool
}

// Postcard is a catalog greeting-card design with its own price.
type Postcard struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Repository provides read access to the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}

// PostcardRepository provides lookup of catalog postcards.
type PostcardRepository interface {
	GetByID(ctx context.Context, id string) (*Postcard, error)
}
