package app

import (
	"context"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/rosewear/storefront/internal/domain/checkout"
	"github.com/rosewear/storefront/internal/store/rest"
	"github.com/rosewear/storefront/pkg/httpclient"
)

// Run creates all dependencies and dispatches the requested command. It is
// the single wiring point for the CLI.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config, args []string) error {
	ctx = zctx.Base(ctx, lg)

	transport := httpclient.Wrap(
		otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
		httpclient.Throttle(httpclient.ThrottleConfig{
			Max:    cfg.Throttle.Max,
			Window: cfg.Throttle.Window,
		}),
		httpclient.RequestID(),
		httpclient.LogRequests(),
	)

	client, err := rest.NewClient(cfg.StoreURL, &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	})
	if err != nil {
		return errors.Wrap(err, "create store client")
	}

	cartRepo := rest.NewCartRepository(client)
	wishlistRepo := rest.NewWishlistRepository(client)
	orderRepo := rest.NewOrderRepository(client)
	journal := checkout.NewJournal(cfg.JournalPath)

	c := &commands{
		products: rest.NewProductRepository(client),
		cart:     cartRepo,
		wishlist: wishlistRepo,
		orders:   orderRepo,
		checkout: checkout.NewService(cartRepo, wishlistRepo, orderRepo),
		journal:  journal,
		out:      os.Stdout,
	}

	if len(args) == 0 {
		c.usage()
		return errors.New("no command given")
	}
	cmd, cmdArgs := args[0], args[1:]

	// A pending reconcile journal from an earlier session is surfaced
	// before anything else runs.
	if cmd != "reconcile" {
		if pending, err := journal.Load(); err != nil {
			lg.Warn("Cannot read reconcile journal", zap.Error(err))
		} else if pending != nil {
			lg.Warn("Previous checkout left cart lines behind, run `storefront reconcile`",
				zap.String("order_id", pending.OrderID),
				zap.Strings("leftover", pending.Leftover),
			)
		}
	}

	return c.dispatch(ctx, cmd, cmdArgs)
}
