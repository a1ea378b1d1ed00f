package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/rosewear/storefront/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// productDoc is the wire shape of a catalog document.
type productDoc struct {
	ID          docID           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Img         string          `json:"img,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (d productDoc) domain() product.Product {
	return product.Product{
		ID:          string(d.ID),
		Name:        d.Name,
		Price:       d.Price,
		Img:         d.Img,
		Description: d.Description,
	}
}

func productToDoc(p product.Product) productDoc {
	return productDoc{
		ID:          docID(p.ID),
		Name:        p.Name,
		Price:       p.Price,
		Img:         p.Img,
		Description: p.Description,
	}
}

// ProductRepository implements product.Repository over the remote products
// collection.
type ProductRepository struct {
	c *Client
}

// NewProductRepository returns a ProductRepository using c.
func NewProductRepository(c *Client) *ProductRepository {
	return &ProductRepository{c: c}
}

// List fetches the whole catalog.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	var docs []productDoc
	if err := r.c.do(ctx, http.MethodGet, "/products", nil, nil, &docs); err != nil {
		return nil, err
	}
	out := make([]product.Product, len(docs))
	for i, d := range docs {
		out[i] = d.domain()
	}
	return out, nil
}

// GetByID looks a product up via the id query parameter. The store answers
// with a (possibly empty) array.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	q := url.Values{"id": []string{id}}
	var docs []productDoc
	if err := r.c.do(ctx, http.MethodGet, "/products", q, nil, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, product.ErrNotFound
	}
	p := docs[0].domain()
	return &p, nil
}

// Upsert creates the product, or replaces the stored document when one with
// the same ID already exists.
func (r *ProductRepository) Upsert(ctx context.Context, p product.Product) error {
	doc := productToDoc(p)

	_, err := r.GetByID(ctx, p.ID)
	switch {
	case err == nil:
		if err := r.c.do(ctx, http.MethodPut, "/products/"+p.ID, nil, doc, nil); err != nil {
			return errors.Wrapf(err, "replace product %s", p.ID)
		}
		return nil
	case errors.Is(err, product.ErrNotFound):
		if err := r.c.do(ctx, http.MethodPost, "/products", nil, doc, nil); err != nil {
			return errors.Wrapf(err, "create product %s", p.ID)
		}
		return nil
	default:
		return errors.Wrapf(err, "look up product %s", p.ID)
	}
}
