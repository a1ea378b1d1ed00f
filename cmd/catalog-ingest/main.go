package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rosewear/storefront/internal/domain/product"
	"github.com/rosewear/storefront/internal/store/rest"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.0001
	progressEvery = 1_000
)

// feedProduct is one record of a gzipped catalog feed file: a JSON array of
// product objects.
type feedProduct struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Img         string
	Description string
}

func (p feedProduct) domain() product.Product {
	return product.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Img:         p.Img,
		Description: p.Description,
	}
}

func main() {
	var (
		storeURL string
		timeout  time.Duration
	)

	flag.StringVar(&storeURL, "store-url", "", "document store base URL (or STORE_URL env)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	if storeURL == "" {
		storeURL = os.Getenv("STORE_URL")
	}
	if storeURL == "" {
		storeURL = "http://localhost:3000"
	}

	feeds := flag.Args()
	if len(feeds) == 0 {
		slog.Error("at least one feed file is required: catalog-ingest [flags] feed1.gz [feed2.gz ...]")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, storeURL, timeout, feeds); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, storeURL string, timeout time.Duration, feeds []string) error {
	for _, f := range feeds {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check feed %s", f)
		}
	}

	client, err := rest.NewClient(storeURL, &http.Client{Timeout: timeout})
	if err != nil {
		return errors.Wrap(err, "create store client")
	}
	catalog := rest.NewProductRepository(client)

	// Pass 1: build a bloom filter of product IDs per feed, concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("feeds", len(feeds)))

	filters, err := buildBloomFilters(ctx, feeds)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: upsert each feed, skipping products already carried by an
	// earlier feed (first feed wins). A bloom false positive only skips a
	// duplicate-looking record, it never corrupts the catalog.
	slog.Info("pass 2: upserting products")

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range feeds {
		g.Go(ingestFeed(ctx, i, f, filters, catalog))
	}
	return g.Wait()
}

// buildBloomFilters creates one bloom filter of product IDs per feed file.
func buildBloomFilters(ctx context.Context, feeds []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(feeds))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range feeds {
		g.Go(buildFilterForFeed(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

func buildFilterForFeed(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamFeed(ctx, path, func(p feedProduct) error {
			filter.AddString(p.ID)
			count++
			return nil
		}); err != nil {
			return errors.Wrapf(err, "build filter for feed %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("feed", idx+1),
			slog.Uint64("products", count),
		)

		filters[idx] = filter
		return nil
	}
}

func ingestFeed(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	catalog product.Repository,
) func() error {
	return func() error {
		var upserted, skipped uint64

		if err := streamFeed(ctx, path, func(p feedProduct) error {
			// Skip records an earlier feed already carries.
			for j := range idx {
				if filters[j].TestString(p.ID) {
					skipped++
					return nil
				}
			}

			if err := catalog.Upsert(ctx, p.domain()); err != nil {
				return errors.Wrapf(err, "upsert product %s", p.ID)
			}
			upserted++
			if upserted%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("feed", idx+1),
					slog.Uint64("upserted", upserted),
				)
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "ingest feed %d", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("feed", idx+1),
			slog.Uint64("upserted", upserted),
			slog.Uint64("skipped", skipped),
		)
		return nil
	}
}

// streamFeed opens a gzip-compressed feed and calls fn for each product in
// its JSON array without loading the whole feed into memory.
func streamFeed(ctx context.Context, path string, fn func(p feedProduct) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	d := jx.Decode(gz, 1<<16)
	return d.Arr(func(d *jx.Decoder) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := decodeFeedProduct(d)
		if err != nil {
			return err
		}
		return fn(p)
	})
}

// decodeFeedProduct reads one product object. IDs may be numbers or
// strings; unknown keys are skipped.
func decodeFeedProduct(d *jx.Decoder) (feedProduct, error) {
	var p feedProduct
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			if d.Next() == jx.String {
				s, err := d.Str()
				if err != nil {
					return err
				}
				p.ID = s
				return nil
			}
			n, err := d.Num()
			if err != nil {
				return err
			}
			p.ID = n.String()
			return nil
		case "name":
			s, err := d.Str()
			p.Name = s
			return err
		case "price":
			n, err := d.Num()
			if err != nil {
				return err
			}
			price, err := decimal.NewFromString(n.String())
			if err != nil {
				return errors.Wrapf(err, "parse price of product %s", p.ID)
			}
			p.Price = price
			return nil
		case "img":
			s, err := d.Str()
			p.Img = s
			return err
		case "description":
			s, err := d.Str()
			p.Description = s
			return err
		default:
			return d.Skip()
		}
	})
	return p, err
}
