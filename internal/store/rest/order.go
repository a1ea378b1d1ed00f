package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rosewear/storefront/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// lineDoc is the wire shape of an order line item: a product snapshot plus
// size and quantity. The snapshot keeps the product's own id field.
type lineDoc struct {
	ProductID docID           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Img       string          `json:"img,omitempty"`
	Size      string          `json:"size,omitempty"`
	Quantity  int             `json:"quantity,omitempty"`
}

func (d lineDoc) domain() order.Line {
	return order.Line{
		ProductID: string(d.ProductID),
		Name:      d.Name,
		Price:     d.Price,
		Img:       d.Img,
		Size:      d.Size,
		Quantity:  d.Quantity,
	}
}

func lineToDoc(l order.Line) lineDoc {
	return lineDoc{
		ProductID: docID(l.ProductID),
		Name:      l.Name,
		Price:     l.Price,
		Img:       l.Img,
		Size:      l.Size,
		Quantity:  l.Quantity,
	}
}

type addressDoc struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// orderDoc is the wire shape of an order. Two legacy variants exist in old
// data: a single-item order written as {"product": ...} instead of
// "products", and a timestamp under "orderDate" instead of "date". Both
// normalize on decode; writes always use the canonical shape.
type orderDoc struct {
	ID        docID            `json:"id,omitempty"`
	Reference string           `json:"reference,omitempty"`
	Products  []lineDoc        `json:"products"`
	Address   addressDoc       `json:"address"`
	Date      string           `json:"date,omitempty"`
	Total     *decimal.Decimal `json:"total,omitempty"`
	Status    string           `json:"status"`
}

func (d *orderDoc) UnmarshalJSON(data []byte) error {
	type plain orderDoc
	var raw struct {
		plain
		Product   *lineDoc `json:"product"`
		OrderDate string   `json:"orderDate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = orderDoc(raw.plain)
	if len(d.Products) == 0 && raw.Product != nil {
		d.Products = []lineDoc{*raw.Product}
	}
	if d.Date == "" {
		d.Date = raw.OrderDate
	}
	return nil
}

func (d orderDoc) domain() order.Order {
	o := order.Order{
		ID:        string(d.ID),
		Reference: d.Reference,
		Products:  make([]order.Line, len(d.Products)),
		Address: order.Address{
			Name:    d.Address.Name,
			Phone:   d.Address.Phone,
			Street:  d.Address.Street,
			City:    d.Address.City,
			Pincode: d.Address.Pincode,
		},
		Status: order.Status(d.Status),
	}
	for i, l := range d.Products {
		o.Products[i] = l.domain()
	}
	if d.Total != nil {
		o.Total = *d.Total
	}
	if ts, err := time.Parse(time.RFC3339, d.Date); err == nil {
		o.Date = ts
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}
	return o
}

func orderToDoc(o *order.Order) orderDoc {
	doc := orderDoc{
		ID:        docID(o.ID),
		Reference: o.Reference,
		Products:  make([]lineDoc, len(o.Products)),
		Address: addressDoc{
			Name:    o.Address.Name,
			Phone:   o.Address.Phone,
			Street:  o.Address.Street,
			City:    o.Address.City,
			Pincode: o.Address.Pincode,
		},
		Status: string(o.Status),
	}
	for i, l := range o.Products {
		doc.Products[i] = lineToDoc(l)
	}
	if !o.Date.IsZero() {
		doc.Date = o.Date.UTC().Format(time.RFC3339)
	}
	total := o.Total
	doc.Total = &total
	return doc
}

// OrderRepository implements order.Repository over the remote orders
// collection.
type OrderRepository struct {
	c *Client
}

// NewOrderRepository returns an OrderRepository using c.
func NewOrderRepository(c *Client) *OrderRepository {
	return &OrderRepository{c: c}
}

// List fetches all orders, normalizing legacy single-product documents into
// one-element products sequences.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	var docs []orderDoc
	if err := r.c.do(ctx, http.MethodGet, "/orders", nil, nil, &docs); err != nil {
		return nil, err
	}
	out := make([]order.Order, len(docs))
	for i, d := range docs {
		out[i] = d.domain()
	}
	return out, nil
}

// Create records a new order and fills in the store-assigned ID.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	doc := orderToDoc(o)
	doc.ID = ""

	var created orderDoc
	if err := r.c.do(ctx, http.MethodPost, "/orders", nil, doc, &created); err != nil {
		return err
	}
	o.ID = string(created.ID)
	return nil
}

// Update replaces the stored order document.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	err := r.c.do(ctx, http.MethodPut, "/orders/"+o.ID, nil, orderToDoc(o), nil)
	if isNotFound(err) {
		return order.ErrNotFound
	}
	return err
}

// Remove deletes an order.
func (r *OrderRepository) Remove(ctx context.Context, id string) error {
	err := r.c.do(ctx, http.MethodDelete, "/orders/"+id, nil, nil, nil)
	if isNotFound(err) {
		return order.ErrNotFound
	}
	return err
}
