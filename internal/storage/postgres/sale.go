package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/sale"
)

const (
	saleColumns = `id, client_id, client_name, items, subtotal, discount_amount,
		coupon_code, total, payment_method, status, created_at`

	insertSaleSQL = `INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	getSaleByIDSQL = `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`

	listRecentSalesSQL = `SELECT ` + saleColumns + ` FROM sales
		ORDER BY created_at DESC, id LIMIT $1`

	updateSaleStatusSQL = `UPDATE sales SET status = $2 WHERE id = $1`
)

var _ sale.Repository = (*SaleRepository)(nil)

// SaleRepository implements sale.Repository backed by PostgreSQL. Line
// items are stored as a JSONB snapshot.
type SaleRepository struct {
	conn
}

// NewSaleRepository returns a SaleRepository that uses the given pool.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{conn{pool: pool}}
}

// Create inserts a sale.
func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("marshaling sale items: %w", err)
	}

	_, err = r.q(ctx).Exec(ctx, insertSaleSQL,
		s.ID, s.ClientID, s.ClientName, items, s.Subtotal, s.DiscountAmount,
		s.CouponCode, s.Total, string(s.Payment), string(s.Status), s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating sale %q: %w", s.ID, err)
	}
	return nil
}

// GetByID returns a sale by id.
func (r *SaleRepository) GetByID(ctx context.Context, id string) (*sale.Sale, error) {
	rows, err := r.q(ctx).Query(ctx, getSaleByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting sale %q: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sale.ErrNotFound
		}
		return nil, fmt.Errorf("getting sale %q: %w", id, err)
	}
	return &s, nil
}

// ListRecent returns up to limit sales, newest first.
func (r *SaleRepository) ListRecent(ctx context.Context, limit int) ([]sale.Sale, error) {
	rows, err := r.q(ctx).Query(ctx, listRecentSalesSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	return pgx.CollectRows(rows, scanSale)
}

// UpdateStatus changes the status of a sale.
func (r *SaleRepository) UpdateStatus(ctx context.Context, id string, status sale.Status) error {
	tag, err := r.q(ctx).Exec(ctx, updateSaleStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating sale %q status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sale.ErrNotFound
	}
	return nil
}

func scanSale(row pgx.CollectableRow) (sale.Sale, error) {
	var (
		s       sale.Sale
		items   []byte
		payment string
		status  string
	)
	if err := row.Scan(
		&s.ID, &s.ClientID, &s.ClientName, &items, &s.Subtotal, &s.DiscountAmount,
		&s.CouponCode, &s.Total, &payment, &status, &s.CreatedAt,
	); err != nil {
		return s, err
	}
	if err := json.Unmarshal(items, &s.Items); err != nil {
		return s, fmt.Errorf("unmarshaling sale items: %w", err)
	}
	s.Payment = sale.PaymentMethod(payment)
	s.Status = sale.Status(status)
	return s, nil
}
