package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for the orders collection.
var (
	ErrNotFound = errors.New("order not found")
)

// Status is the lifecycle state of an order. Orders are created pending and
// move to exactly one of the terminal states; there is no way back.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// InvalidTransitionError reports a status change the order lifecycle does
// not allow.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return "invalid order status transition: " + string(e.From) + " -> " + string(e.To)
}

// Line is one line item inside an order: a product snapshot plus size and
// quantity, copied from the cart (or detail view) at checkout time.
type Line struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Img       string
	Size      string
	Quantity  int
}

// Qty returns the effective quantity of the line, defaulting to one.
func (l Line) Qty() int {
	if l.Quantity < 1 {
		return 1
	}
	return l.Quantity
}

// Address is the shipping address captured at checkout and embedded into
// the order. It is never stored standalone.
type Address struct {
	Name    string
	Phone   string
	Street  string
	City    string
	Pincode string
}

// Complete reports whether every address field is non-blank.
func (a Address) Complete() bool {
	return a.Name != "" && a.Phone != "" && a.Street != "" && a.City != "" && a.Pincode != ""
}

// Order is a recorded purchase. ID is assigned by the store on create;
// Reference is stamped by the client before submission so a duplicate
// submission after a lost response can be recognized when listing.
type Order struct {
	ID        string
	Reference string
	Products  []Line
	Address   Address
	Date      time.Time
	Total     decimal.Decimal
	Status    Status
}

// TransitionTo applies a status change, enforcing pending -> delivered or
// pending -> cancelled as the only legal moves.
func (o *Order) TransitionTo(s Status) error {
	if o.Status.Terminal() || s == StatusPending || !s.Valid() {
		return &InvalidTransitionError{From: o.Status, To: s}
	}
	o.Status = s
	return nil
}

// LineTotal recomputes the order total from its line items with the same
// price x quantity rule checkout uses.
func (o *Order) LineTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Products {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Qty()))))
	}
	return total
}

// EffectiveTotal returns the stored total, or the recomputed line total for
// legacy orders that were written without one.
func (o *Order) EffectiveTotal() decimal.Decimal {
	if !o.Total.IsZero() {
		return o.Total
	}
	return o.LineTotal()
}

// Repository defines persistence operations for orders. Create fills in the
// store-assigned ID on success.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	Remove(ctx context.Context, id string) error
}
