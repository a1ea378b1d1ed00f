package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item. Catalog data is read-only reference data for
// the storefront; only the ingest tool writes to it.
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Img         string
	Description string
}

// Repository defines operations on the remote product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	// Upsert creates the product or replaces an existing one with the same
	// ID. Used only by catalog ingest.
	Upsert(ctx context.Context, p Product) error
}
