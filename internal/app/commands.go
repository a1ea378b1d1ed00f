package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-faster/errors"

	"github.com/rosewear/storefront/internal/domain/cart"
	"github.com/rosewear/storefront/internal/domain/checkout"
	"github.com/rosewear/storefront/internal/domain/order"
	"github.com/rosewear/storefront/internal/domain/product"
	"github.com/rosewear/storefront/internal/domain/wishlist"
)

const usageText = `Usage: storefront <command> [args]

Catalog:
  products [-dump]            list the product catalog
  product <id>                show one product

Cart:
  cart [-dump]                show cart lines and total
  cart-add <productID> <size> add one unit of a product to the cart
  cart-qty <lineID> <delta>   change a line quantity (never below 1)
  cart-rm <lineID>            remove a cart line

Wishlist:
  wishlist [-dump]            show the wishlist
  wishlist-add <productID>    save a product to the wishlist
  wishlist-rm <id>            remove a wishlist entry
  wishlist-move <id>          move a wishlist entry into the cart

Orders:
  checkout -name .. -phone .. -street .. -city .. -pincode ..
                              place an order from the current cart
  buy <productID> -size .. -name .. -phone .. -street .. -city .. -pincode ..
                              order a single product directly
  orders [-dump]              list orders
  order-status <id> <status>  mark an order delivered or cancelled
  order-rm <id>               delete an order
  reconcile                   retry retiring cart lines left by a failed checkout
`

type commands struct {
	products product.Repository
	cart     cart.Repository
	wishlist wishlist.Repository
	orders   order.Repository
	checkout *checkout.Service
	journal  *checkout.Journal
	out      io.Writer
}

func (c *commands) usage() {
	fmt.Fprint(c.out, usageText)
}

func (c *commands) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "products":
		return c.listProducts(ctx, args)
	case "product":
		return c.showProduct(ctx, args)
	case "cart":
		return c.showCart(ctx, args)
	case "cart-add":
		return c.cartAdd(ctx, args)
	case "cart-qty":
		return c.cartQty(ctx, args)
	case "cart-rm":
		return c.cartRemove(ctx, args)
	case "wishlist":
		return c.showWishlist(ctx, args)
	case "wishlist-add":
		return c.wishlistAdd(ctx, args)
	case "wishlist-rm":
		return c.wishlistRemove(ctx, args)
	case "wishlist-move":
		return c.wishlistMove(ctx, args)
	case "checkout":
		return c.checkoutCart(ctx, args)
	case "buy":
		return c.buyNow(ctx, args)
	case "orders":
		return c.listOrders(ctx, args)
	case "order-status":
		return c.orderStatus(ctx, args)
	case "order-rm":
		return c.orderRemove(ctx, args)
	case "reconcile":
		return c.reconcile(ctx)
	case "help", "-h", "--help":
		c.usage()
		return nil
	default:
		c.usage()
		return errors.Errorf("unknown command %q", cmd)
	}
}

// parseDump handles the -dump flag shared by the listing commands.
func parseDump(name string, args []string) (bool, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	dump := fs.Bool("dump", false, "dump raw documents instead of a table")
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	return *dump, nil
}

// addressFlags registers the five shipping address flags on fs.
func addressFlags(fs *flag.FlagSet) *order.Address {
	a := &order.Address{}
	fs.StringVar(&a.Name, "name", "", "recipient name")
	fs.StringVar(&a.Phone, "phone", "", "contact phone")
	fs.StringVar(&a.Street, "street", "", "street address")
	fs.StringVar(&a.City, "city", "", "city")
	fs.StringVar(&a.Pincode, "pincode", "", "postal code")
	return a
}

func (c *commands) listProducts(ctx context.Context, args []string) error {
	dump, err := parseDump("products", args)
	if err != nil {
		return err
	}

	items, err := c.products.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	if dump {
		spew.Fdump(c.out, items)
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Price)
	}
	return tw.Flush()
}

func (c *commands) showProduct(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: product <id>")
	}
	p, err := c.products.GetByID(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s  %s  %s\n%s\n", p.ID, p.Name, p.Price, p.Description)
	return nil
}

func (c *commands) showCart(ctx context.Context, args []string) error {
	dump, err := parseDump("cart", args)
	if err != nil {
		return err
	}

	lines, err := c.cart.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list cart")
	}
	if dump {
		spew.Fdump(c.out, lines)
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", l.ID, l.Name, l.Size, l.Qty(), l.Price, l.Subtotal())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Total: %s\n", checkout.Total(lines))
	return nil
}

func (c *commands) cartAdd(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: cart-add <productID> <size>")
	}
	p, err := c.products.GetByID(ctx, args[0])
	if err != nil {
		return err
	}
	line, err := c.checkout.AddToCart(ctx, *p, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added %s (%s), quantity %d\n", line.Name, line.Size, line.Qty())
	return nil
}

func (c *commands) cartQty(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: cart-qty <lineID> <delta>")
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Wrap(err, "parse delta")
	}

	lines, err := c.cart.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list cart")
	}
	for _, l := range lines {
		if l.ID != args[0] {
			continue
		}
		updated, err := c.checkout.AdjustCartQuantity(ctx, l, delta)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s: quantity %d\n", updated.Name, updated.Qty())
		return nil
	}
	return cart.ErrNotFound
}

func (c *commands) cartRemove(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: cart-rm <lineID>")
	}
	if err := c.cart.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Removed line %s\n", args[0])
	return nil
}

func (c *commands) showWishlist(ctx context.Context, args []string) error {
	dump, err := parseDump("wishlist", args)
	if err != nil {
		return err
	}

	items, err := c.wishlist.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list wishlist")
	}
	if dump {
		spew.Fdump(c.out, items)
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Name, it.Price)
	}
	return tw.Flush()
}

func (c *commands) wishlistAdd(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: wishlist-add <productID>")
	}
	p, err := c.products.GetByID(ctx, args[0])
	if err != nil {
		return err
	}
	saved, err := c.wishlist.Add(ctx, wishlist.Item{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Img:         p.Img,
		Description: p.Description,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %s to wishlist\n", saved.Name)
	return nil
}

func (c *commands) wishlistRemove(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: wishlist-rm <id>")
	}
	if err := c.wishlist.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Removed wishlist entry %s\n", args[0])
	return nil
}

func (c *commands) wishlistMove(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: wishlist-move <id>")
	}
	items, err := c.wishlist.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list wishlist")
	}
	for _, it := range items {
		if it.ID != args[0] {
			continue
		}
		line, err := c.checkout.MoveWishlistItemToCart(ctx, it)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Moved %s to cart, quantity %d\n", line.Name, line.Qty())
		return nil
	}
	return wishlist.ErrNotFound
}

func (c *commands) checkoutCart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	addr := addressFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	snapshot, err := c.cart.List(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch cart")
	}

	res, err := c.checkout.PlaceOrderFromCart(ctx, snapshot, *addr)
	if err != nil {
		return err
	}
	if err := c.journal.Record(res); err != nil {
		return errors.Wrap(err, "record reconcile journal")
	}

	fmt.Fprintf(c.out, "Order %s placed, total %s, %d item(s)\n",
		res.Order.ID, res.Order.Total, len(res.Order.Products))
	if !res.Clean() {
		fmt.Fprintf(c.out, "Warning: %d cart line(s) could not be retired, run `storefront reconcile`\n",
			len(res.Failed))
	}
	return nil
}

func (c *commands) buyNow(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: buy <productID> -size .. [address flags]")
	}
	fs := flag.NewFlagSet("buy", flag.ContinueOnError)
	size := fs.String("size", "", "product size")
	addr := addressFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	p, err := c.products.GetByID(ctx, args[0])
	if err != nil {
		return err
	}
	o, err := c.checkout.PlaceOrderFromProduct(ctx, *p, *size, *addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Order %s placed for %s (%s), total %s\n", o.ID, p.Name, *size, o.Total)
	return nil
}

func (c *commands) listOrders(ctx context.Context, args []string) error {
	dump, err := parseDump("orders", args)
	if err != nil {
		return err
	}

	all, err := c.orders.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list orders")
	}
	if dump {
		spew.Fdump(c.out, all)
		return nil
	}

	for _, o := range all {
		fmt.Fprintf(c.out, "Order %s  %s  %s  total %s\n", o.ID, o.Date.Format("2006-01-02 15:04"), o.Status, o.EffectiveTotal())
		for _, l := range o.Products {
			fmt.Fprintf(c.out, "  %s x%d  %s", l.Name, l.Qty(), l.Price)
			if l.Size != "" {
				fmt.Fprintf(c.out, "  size %s", l.Size)
			}
			fmt.Fprintln(c.out)
		}
	}
	return nil
}

func (c *commands) orderStatus(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: order-status <id> <delivered|cancelled>")
	}
	all, err := c.orders.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list orders")
	}
	for i := range all {
		if all[i].ID != args[0] {
			continue
		}
		if err := all[i].TransitionTo(order.Status(args[1])); err != nil {
			return err
		}
		if err := c.orders.Update(ctx, &all[i]); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Order %s is now %s\n", all[i].ID, all[i].Status)
		return nil
	}
	return order.ErrNotFound
}

func (c *commands) orderRemove(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: order-rm <id>")
	}
	if err := c.orders.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Removed order %s\n", args[0])
	return nil
}

func (c *commands) reconcile(ctx context.Context) error {
	pending, err := c.journal.Load()
	if err != nil {
		return errors.Wrap(err, "load reconcile journal")
	}
	if pending == nil {
		fmt.Fprintln(c.out, "Nothing to reconcile")
		return nil
	}

	retired, failed := c.checkout.RetireLeftovers(ctx, pending.Leftover)
	fmt.Fprintf(c.out, "Retired %d of %d leftover cart line(s) for order %s\n",
		len(retired), len(pending.Leftover), pending.OrderID)

	if len(failed) == 0 {
		return c.journal.Clear()
	}

	res := &checkout.Result{
		Order:   &order.Order{ID: pending.OrderID, Reference: pending.Reference},
		Retired: retired,
		Failed:  failed,
	}
	if err := c.journal.Record(res); err != nil {
		return errors.Wrap(err, "update reconcile journal")
	}
	return errors.Errorf("%d cart line(s) still not retired", len(failed))
}
