package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a cart line does not exist in the remote
// collection, including a delete of an already-deleted line.
var ErrNotFound = errors.New("cart line not found")

// Item is one line in the remote cart collection: a product snapshot plus
// an optional size and a quantity. The line shares its ID space with the
// product it was created from.
type Item struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Img      string
	Size     string
	Quantity int
}

// Qty returns the effective quantity of the line. Documents written by
// older clients may omit the field entirely; those count as one unit.
func (i Item) Qty() int {
	if i.Quantity < 1 {
		return 1
	}
	return i.Quantity
}

// Subtotal is the line price times its effective quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty())))
}

// Repository defines operations on the remote cart collection.
//
// UpdateQuantity is a partial update by ID: the line keeps its identity
// across quantity edits, so callers may hold on to the ID they already have.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Add(ctx context.Context, item Item) (*Item, error)
	Remove(ctx context.Context, id string) error
	UpdateQuantity(ctx context.Context, id string, quantity int) (*Item, error)
}
