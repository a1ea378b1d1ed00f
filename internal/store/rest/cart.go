package rest

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rosewear/storefront/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// cartDoc is the wire shape of a cart line document.
type cartDoc struct {
	ID       docID           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Img      string          `json:"img,omitempty"`
	Size     string          `json:"size,omitempty"`
	Quantity int             `json:"quantity,omitempty"`
}

func (d cartDoc) domain() cart.Item {
	return cart.Item{
		ID:       string(d.ID),
		Name:     d.Name,
		Price:    d.Price,
		Img:      d.Img,
		Size:     d.Size,
		Quantity: d.Quantity,
	}
}

func cartToDoc(i cart.Item) cartDoc {
	return cartDoc{
		ID:       docID(i.ID),
		Name:     i.Name,
		Price:    i.Price,
		Img:      i.Img,
		Size:     i.Size,
		Quantity: i.Quantity,
	}
}

// CartRepository implements cart.Repository over the remote cart collection.
type CartRepository struct {
	c *Client
}

// NewCartRepository returns a CartRepository using c.
func NewCartRepository(c *Client) *CartRepository {
	return &CartRepository{c: c}
}

// List fetches the current cart contents.
func (r *CartRepository) List(ctx context.Context) ([]cart.Item, error) {
	var docs []cartDoc
	if err := r.c.do(ctx, http.MethodGet, "/cart", nil, nil, &docs); err != nil {
		return nil, err
	}
	out := make([]cart.Item, len(docs))
	for i, d := range docs {
		out[i] = d.domain()
	}
	return out, nil
}

// Add creates a cart line and returns the stored document.
func (r *CartRepository) Add(ctx context.Context, item cart.Item) (*cart.Item, error) {
	var created cartDoc
	if err := r.c.do(ctx, http.MethodPost, "/cart", nil, cartToDoc(item), &created); err != nil {
		return nil, err
	}
	out := created.domain()
	return &out, nil
}

// Remove deletes a cart line. Deleting a line that is already gone maps to
// cart.ErrNotFound.
func (r *CartRepository) Remove(ctx context.Context, id string) error {
	err := r.c.do(ctx, http.MethodDelete, "/cart/"+id, nil, nil, nil)
	if isNotFound(err) {
		return cart.ErrNotFound
	}
	return err
}

// UpdateQuantity patches a line's quantity in place, preserving its ID.
func (r *CartRepository) UpdateQuantity(ctx context.Context, id string, quantity int) (*cart.Item, error) {
	body := map[string]int{"quantity": quantity}
	var updated cartDoc
	err := r.c.do(ctx, http.MethodPatch, "/cart/"+id, nil, body, &updated)
	if isNotFound(err) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out := updated.domain()
	return &out, nil
}
