package wishlist

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a wishlist entry does not exist.
var ErrNotFound = errors.New("wishlist entry not found")

// Item is a saved product in the remote wishlist collection. Same shape as
// a product; wishlist entries carry no quantity.
type Item struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Img         string
	Description string
}

// Repository defines operations on the remote wishlist collection.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Add(ctx context.Context, item Item) (*Item, error)
	Remove(ctx context.Context, id string) error
}
