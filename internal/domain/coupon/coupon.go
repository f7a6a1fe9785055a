package coupon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the derived state of a coupon. It is computed at read time and
// never stored.
type Status string

const (
	// StatusActive means the coupon can be applied now.
	StatusActive Status = "ativo"
	// StatusInactive means the coupon was switched off by an admin.
	StatusInactive Status = "inativo"
	// StatusScheduled means the validity window has not started yet.
	StatusScheduled Status = "agendado"
	// StatusExpired means the validity window is over.
	StatusExpired Status = "expirado"
)

var (
	// ErrNotFound is returned when no coupon has the requested code or id.
	ErrNotFound = errors.New("coupon not found")
	// ErrDuplicateCode is returned when creating or renaming a coupon onto an existing code.
	ErrDuplicateCode = errors.New("coupon code already exists")
)

var hundred = decimal.NewFromInt(100)

// Coupon is a percentage discount valid within [StartsAt, ExpiresAt].
type Coupon struct {
	ID              string
	Code            string
	DiscountPercent decimal.Decimal
	StartsAt        time.Time
	ExpiresAt       time.Time
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StatusAt derives the coupon status at the given instant.
func (c *Coupon) StatusAt(now time.Time) Status {
	switch {
	case !c.Active:
		return StatusInactive
	case now.Before(c.StartsAt):
		return StatusScheduled
	case now.After(c.ExpiresAt):
		return StatusExpired
	default:
		return StatusActive
	}
}

// Discount returns subtotal × percent / 100 rounded to cents.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.DiscountPercent).Div(hundred).Round(2)
}

// StatusError reports a coupon that exists but cannot be applied.
type StatusError struct {
	Code   string
	Status Status
}

func (e *StatusError) Error() string {
	switch e.Status {
	case StatusInactive:
		return "coupon inactive"
	case StatusScheduled:
		return "coupon scheduled"
	case StatusExpired:
		return "coupon expired"
	default:
		return fmt.Sprintf("coupon %s", e.Status)
	}
}

// NormalizeCode trims and uppercases a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Repository provides lookup and mutation of coupons. Codes are stored
// normalized, so FindByCode expects a normalized code.
type Repository interface {
	List(ctx context.Context) ([]Coupon, error)
	GetByID(ctx context.Context, id string) (*Coupon, error)
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id string) error
}
