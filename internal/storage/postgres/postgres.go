// Package postgres implements the domain repositories on PostgreSQL.
//
// Repositories never hold a connection of their own: every query goes through
// the transaction stored in the context by the transaction manager, falling
// back to the pool outside a transaction.
package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	trmpgx "github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/avito-tech/go-transaction-manager/trm/manager"
	"github.com/eapache/go-resiliency/retrier"
	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/xenking/storefront/db"
)

const uniqueViolation = "23505"

// NewPool creates a pgxpool.Pool configured with shopspring/decimal support
// for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// WaitReady pings the database until it answers, trying up to tries times
// with a constant interval.
func WaitReady(ctx context.Context, pool *pgxpool.Pool, tries int, interval time.Duration) error {
	r := retrier.New(retrier.ConstantBackoff(tries, interval), nil)
	if err := r.RunCtx(ctx, pool.Ping); err != nil {
		return errors.Wrap(err, "database not reachable")
	}
	return nil
}

// RunMigrations applies the embedded goose migrations and returns the ones
// that ran.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) ([]*goose.MigrationResult, error) {
	fsys, err := fs.Sub(db.Migrations, db.MigrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "migrations fs")
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() { _ = sqlDB.Close() }()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return nil, errors.Wrap(err, "goose provider")
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return results, nil
}

// NewTxManager returns the transaction manager whose transactions the
// repositories join through the context.
func NewTxManager(pool *pgxpool.Pool) *manager.Manager {
	return manager.Must(trmpgx.NewDefaultFactory(pool))
}

// conn is embedded by every repository.
type conn struct {
	pool *pgxpool.Pool
}

// q returns the transaction bound to ctx, or the pool.
func (c conn) q(ctx context.Context) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, c.pool)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
