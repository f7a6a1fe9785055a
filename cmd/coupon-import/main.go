// Command coupon-import loads coupon codes from gzip campaign exports. Each
// line is "CODE" or "CODE,PERCENT". Codes that appear in more than one export
// are ambiguous and skipped; the rest are upserted with the given window.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/storage/postgres"
)

const batchSize = 500

// options are the parsed command line flags.
type options struct {
	databaseURL string
	percent     decimal.Decimal
	startsAt    time.Time
	expiresAt   time.Time
	dryRun      bool
	files       []string
}

func main() {
	var (
		opts    options
		percent float64
		starts  string
		expires string
	)

	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Float64Var(&percent, "percent", 10, "discount percent for lines without one")
	flag.StringVar(&starts, "starts", "", "validity start, RFC 3339 or YYYY-MM-DD (default now)")
	flag.StringVar(&expires, "expires", "", "validity end, RFC 3339 or YYYY-MM-DD (required)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "scan and report without writing")
	flag.Parse()
	opts.files = flag.Args()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}

	if err := opts.resolve(percent, starts, expires, time.Now().UTC()); err != nil {
		slog.Error("invalid arguments", slog.String("error", err.Error()))
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		slog.Error("coupon import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon import completed successfully")
}

func (o *options) resolve(percent float64, starts, expires string, now time.Time) error {
	if len(o.files) == 0 {
		return errors.New("at least one export file is required")
	}
	if !o.dryRun && o.databaseURL == "" {
		return errors.New("database URL is required: set --database-url or DATABASE_URL")
	}

	o.percent = decimal.NewFromFloat(percent).Round(2)
	if o.percent.LessThan(decimal.NewFromInt(1)) || o.percent.GreaterThan(decimal.NewFromInt(100)) {
		return coupon.ErrPercentOutOfRange
	}

	o.startsAt = now
	if starts != "" {
		t, err := parseDate(starts)
		if err != nil {
			return errors.Wrap(err, "parse --starts")
		}
		o.startsAt = t
	}
	if expires == "" {
		return coupon.ErrExpiryRequired
	}
	t, err := parseDate(expires)
	if err != nil {
		return errors.Wrap(err, "parse --expires")
	}
	o.expiresAt = t
	if o.startsAt.After(o.expiresAt) {
		return coupon.ErrInvalidWindow
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func run(ctx context.Context, opts options) error {
	p, err := scanExports(ctx, opts.files, opts.percent)
	if err != nil {
		return err
	}

	slog.Info("scan complete",
		slog.Int("importable", len(p.Import)),
		slog.Int("conflicts", len(p.Conflicts)),
		slog.Int("rejected_lines", p.Rejected),
	)
	for _, code := range p.Conflicts {
		slog.Warn("skipping code present in several exports", slog.String("code", code))
	}

	if opts.dryRun || len(p.Import) == 0 {
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return writeCoupons(ctx, postgres.NewTxManager(pool), postgres.NewCouponRepository(pool), p.Import, opts)
}

// transactor runs fn in one transaction.
type transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// upserter stores coupons by code.
type upserter interface {
	Upsert(ctx context.Context, c *coupon.Coupon) error
}

// writeCoupons upserts entries in batches, one transaction per batch.
func writeCoupons(ctx context.Context, tx transactor, repo upserter, entries []entry, opts options) error {
	slog.Info("writing coupons to database", slog.Int("count", len(entries)))

	now := time.Now().UTC()
	for start := 0; start < len(entries); start += batchSize {
		batch := entries[start:min(start+batchSize, len(entries))]

		if err := tx.Do(ctx, func(ctx context.Context) error {
			for _, e := range batch {
				c := &coupon.Coupon{
					ID:              uuid.NewString(),
					Code:            e.Code,
					DiscountPercent: e.Percent,
					StartsAt:        opts.startsAt,
					ExpiresAt:       opts.expiresAt,
					Active:          true,
					CreatedAt:       now,
					UpdatedAt:       now,
				}
				if err := repo.Upsert(ctx, c); err != nil {
					return errors.Wrapf(err, "upsert coupon %s", e.Code)
				}
			}
			return nil
		}); err != nil {
			return err
		}

		slog.Info("write progress", slog.Int("written", start+len(batch)), slog.Int("total", len(entries)))
	}

	return nil
}
