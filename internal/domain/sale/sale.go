// Package sale holds the sale ledger: one record per completed transaction,
// carrying client, price and coupon snapshots taken at sale time.
package sale

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// CounterClientName is the client name snapshot of sales with no client.
const CounterClientName = "Cliente Balcão"

var (
	// ErrNotFound is returned when a sale does not exist.
	ErrNotFound = errors.New("sale not found")
	// ErrInvalidStatus is returned for unknown status labels.
	ErrInvalidStatus = errors.New("invalid sale status")
)

// PaymentMethod is the canonical payment enum.
type PaymentMethod string

const (
	PaymentPix    PaymentMethod = "pix"
	PaymentCash   PaymentMethod = "cash"
	PaymentDebit  PaymentMethod = "debit"
	PaymentCredit PaymentMethod = "credit"
)

// ParsePaymentMethod maps a free-text payment label to the canonical enum,
// case-insensitively. Unrecognized labels map to PaymentPix.
func ParsePaymentMethod(label string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "dinheiro", "cash":
		return PaymentCash
	case "cartão", "cartao", "card", "credito", "crédito", "credit":
		return PaymentCredit
	case "debito", "débito", "debit":
		return PaymentDebit
	default:
		return PaymentPix
	}
}

// Status is the lifecycle state of a sale.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus accepts the canonical status values and their Portuguese
// back-office labels.
func ParseStatus(label string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "pending", "pendente":
		return StatusPending, nil
	case "completed", "concluida", "concluída":
		return StatusCompleted, nil
	case "cancelled", "canceled", "cancelada":
		return StatusCancelled, nil
	default:
		return "", errors.Wrapf(ErrInvalidStatus, "%q", label)
	}
}

// LineItem is a product snapshot at sale time.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Amount returns UnitPrice × Quantity.
func (li LineItem) Amount() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Sale is an immutable record of a completed transaction. ClientID is nil
// for counter sales.
type Sale struct {
	ID             string
	ClientID       *string
	ClientName     string
	Items          []LineItem
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	CouponCode     string
	Total          decimal.Decimal
	Payment        PaymentMethod
	Status         Status
	CreatedAt      time.Time
}

// Repository defines persistence operations for the sale ledger.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, id string) (*Sale, error)
	ListRecent(ctx context.Context, limit int) ([]Sale, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
