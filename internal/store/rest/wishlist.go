package rest

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rosewear/storefront/internal/domain/wishlist"
)

var _ wishlist.Repository = (*WishlistRepository)(nil)

// wishlistDoc is the wire shape of a wishlist entry.
type wishlistDoc struct {
	ID          docID           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Img         string          `json:"img,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (d wishlistDoc) domain() wishlist.Item {
	return wishlist.Item{
		ID:          string(d.ID),
		Name:        d.Name,
		Price:       d.Price,
		Img:         d.Img,
		Description: d.Description,
	}
}

// WishlistRepository implements wishlist.Repository over the remote
// wishlist collection.
type WishlistRepository struct {
	c *Client
}

// NewWishlistRepository returns a WishlistRepository using c.
func NewWishlistRepository(c *Client) *WishlistRepository {
	return &WishlistRepository{c: c}
}

func (r *WishlistRepository) List(ctx context.Context) ([]wishlist.Item, error) {
	var docs []wishlistDoc
	if err := r.c.do(ctx, http.MethodGet, "/wishlist", nil, nil, &docs); err != nil {
		return nil, err
	}
	out := make([]wishlist.Item, len(docs))
	for i, d := range docs {
		out[i] = d.domain()
	}
	return out, nil
}

func (r *WishlistRepository) Add(ctx context.Context, item wishlist.Item) (*wishlist.Item, error) {
	doc := wishlistDoc{
		ID:          docID(item.ID),
		Name:        item.Name,
		Price:       item.Price,
		Img:         item.Img,
		Description: item.Description,
	}
	var created wishlistDoc
	if err := r.c.do(ctx, http.MethodPost, "/wishlist", nil, doc, &created); err != nil {
		return nil, err
	}
	out := created.domain()
	return &out, nil
}

func (r *WishlistRepository) Remove(ctx context.Context, id string) error {
	err := r.c.do(ctx, http.MethodDelete, "/wishlist/"+id, nil, nil, nil)
	if isNotFound(err) {
		return wishlist.ErrNotFound
	}
	return err
}
