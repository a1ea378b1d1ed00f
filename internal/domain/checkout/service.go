package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rosewear/storefront/internal/domain/cart"
	"github.com/rosewear/storefront/internal/domain/order"
	"github.com/rosewear/storefront/internal/domain/product"
	"github.com/rosewear/storefront/internal/domain/wishlist"
)

// Validation errors, raised before any network call is made.
var (
	ErrEmptyCart         = errors.New("cart empty")
	ErrIncompleteAddress = errors.New("incomplete address")
	ErrNoSize            = errors.New("no size selected")
)

// SubmitError indicates the order-create call failed. The cart has not been
// touched: no retirement is attempted before the order is durably recorded.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return "submit order: " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// RetirementFailure records one cart line that could not be deleted after
// the order was recorded.
type RetirementFailure struct {
	LineID string
	Err    error
}

// Result is the outcome of a cart checkout: the recorded order plus a
// reconciliation log of which cart lines were retired and which survive.
type Result struct {
	Order   *order.Order
	Retired []string
	Failed  []RetirementFailure
}

// Clean reports whether every cart line was retired.
func (r *Result) Clean() bool {
	return len(r.Failed) == 0
}

// Leftover returns the IDs of cart lines that survived retirement.
func (r *Result) Leftover() []string {
	if len(r.Failed) == 0 {
		return nil
	}
	ids := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		ids[i] = f.LineID
	}
	return ids
}

// Service is the order-assembly workflow: it turns a cart snapshot (or a
// single selected product) plus a shipping address into a recorded order,
// and reconciles the cart afterwards. The remote store offers no
// transactions, so the one ordering the service guarantees is that the
// order-create call strictly precedes every retirement delete.
type Service struct {
	cart     cart.Repository
	wishlist wishlist.Repository
	orders   order.Repository
}

// NewService creates a checkout Service over the three remote collections.
func NewService(cart cart.Repository, wishlist wishlist.Repository, orders order.Repository) *Service {
	return &Service{
		cart:     cart,
		wishlist: wishlist,
		orders:   orders,
	}
}

// Total computes the order total for a cart snapshot: the sum over lines of
// price times quantity, quantity defaulting to one. The snapshot is taken
// at call time and never re-fetched, so quantity edits racing a checkout
// are not reflected in the submitted total.
func Total(snapshot []cart.Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range snapshot {
		total = total.Add(it.Subtotal())
	}
	return total
}

// PlaceOrderFromCart records an order built from the cart snapshot, then
// retires every cart line. Retirement deletes run sequentially in snapshot
// order and each is attempted exactly once; a failure deleting one line
// does not stop the rest. The returned Result carries the full
// reconciliation log, so the caller can tell a clean checkout from one
// that left lines behind.
func (s *Service) PlaceOrderFromCart(ctx context.Context, snapshot []cart.Item, addr order.Address) (*Result, error) {
	if len(snapshot) == 0 {
		return nil, ErrEmptyCart
	}
	if !addr.Complete() {
		return nil, ErrIncompleteAddress
	}

	lines := make([]order.Line, len(snapshot))
	for i, it := range snapshot {
		lines[i] = order.Line{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Img:       it.Img,
			Size:      it.Size,
			Quantity:  it.Qty(),
		}
	}

	o := &order.Order{
		Reference: uuid.New().String(),
		Products:  lines,
		Address:   addr,
		Date:      time.Now().UTC(),
		Total:     Total(snapshot),
		Status:    order.StatusPending,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, &SubmitError{Err: err}
	}

	res := &Result{Order: o}
	for _, it := range snapshot {
		if err := s.cart.Remove(ctx, it.ID); err != nil {
			res.Failed = append(res.Failed, RetirementFailure{LineID: it.ID, Err: err})
			continue
		}
		res.Retired = append(res.Retired, it.ID)
	}

	if !res.Clean() {
		zctx.From(ctx).Warn("Order recorded but cart not fully retired",
			zap.String("order_id", o.ID),
			zap.String("reference", o.Reference),
			zap.Strings("leftover", res.Leftover()),
		)
	}

	return res, nil
}

// PlaceOrderFromProduct is the buy-now path: a one-line order built
// directly from a detail view. The cart collection is never touched.
func (s *Service) PlaceOrderFromProduct(ctx context.Context, p product.Product, size string, addr order.Address) (*order.Order, error) {
	if size == "" {
		return nil, ErrNoSize
	}
	if !addr.Complete() {
		return nil, ErrIncompleteAddress
	}

	o := &order.Order{
		Reference: uuid.New().String(),
		Products: []order.Line{{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Img:       p.Img,
			Size:      size,
			Quantity:  1,
		}},
		Address: addr,
		Date:    time.Now().UTC(),
		Total:   p.Price,
		Status:  order.StatusPending,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, &SubmitError{Err: err}
	}
	return o, nil
}

// AdjustCartQuantity changes a cart line's quantity by delta with a single
// partial update, preserving the line's identity. A delta that would take
// the quantity below one is a no-op: the call is not issued and the line is
// returned unchanged.
func (s *Service) AdjustCartQuantity(ctx context.Context, item cart.Item, delta int) (*cart.Item, error) {
	next := item.Qty() + delta
	if next < 1 {
		unchanged := item
		return &unchanged, nil
	}

	updated, err := s.cart.UpdateQuantity(ctx, item.ID, next)
	if err != nil {
		return nil, errors.Wrapf(err, "update quantity of line %s", item.ID)
	}
	return updated, nil
}

// AddToCart puts one unit of a product (in the chosen size) into the cart.
// An existing line for the same product and size gets its quantity bumped
// instead of a second line being created.
func (s *Service) AddToCart(ctx context.Context, p product.Product, size string) (*cart.Item, error) {
	if size == "" {
		return nil, ErrNoSize
	}

	lines, err := s.cart.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list cart")
	}
	for _, l := range lines {
		if l.ID == p.ID && l.Size == size {
			updated, err := s.cart.UpdateQuantity(ctx, l.ID, l.Qty()+1)
			if err != nil {
				return nil, errors.Wrapf(err, "bump quantity of line %s", l.ID)
			}
			return updated, nil
		}
	}

	added, err := s.cart.Add(ctx, cart.Item{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Img:      p.Img,
		Size:     size,
		Quantity: 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "add cart line")
	}
	return added, nil
}

// MoveWishlistItemToCart moves a wishlist entry into the cart. The additive
// step is idempotent: an existing cart line for the same product is reused,
// so a retried move cannot duplicate the line. The wishlist entry is
// deleted only after the cart mutation is confirmed; if that delete fails,
// the cart line stands and the error reports the entry left behind.
func (s *Service) MoveWishlistItemToCart(ctx context.Context, item wishlist.Item) (*cart.Item, error) {
	lines, err := s.cart.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list cart")
	}

	var line *cart.Item
	for _, l := range lines {
		if l.ID == item.ID && l.Size == "" {
			found := l
			line = &found
			break
		}
	}
	if line == nil {
		line, err = s.cart.Add(ctx, cart.Item{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Img:      item.Img,
			Quantity: 1,
		})
		if err != nil {
			return nil, errors.Wrap(err, "add cart line")
		}
	}

	if err := s.wishlist.Remove(ctx, item.ID); err != nil {
		return line, errors.Wrapf(err, "cart line created but wishlist entry %s remains", item.ID)
	}
	return line, nil
}

// RetireLeftovers retries the retirement deletes recorded by a previous
// partially failed checkout. A line that is already gone counts as retired.
func (s *Service) RetireLeftovers(ctx context.Context, ids []string) (retired []string, failed []RetirementFailure) {
	for _, id := range ids {
		err := s.cart.Remove(ctx, id)
		if err != nil && !errors.Is(err, cart.ErrNotFound) {
			failed = append(failed, RetirementFailure{LineID: id, Err: err})
			continue
		}
		retired = append(retired, id)
	}
	return retired, failed
}
