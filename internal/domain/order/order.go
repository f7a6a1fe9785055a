// Package order implements checkout: client resolution, per-line stock
// validation and decrement, coupon application and sale persistence, all
// inside one storage transaction.
package order

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/client"
	"github.com/xenking/storefront/internal/domain/product"
)

// Sentinel errors for order validation.
var (
	ErrInvalidCustomer = errors.New("invalid customer name")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrPaymentRequired = errors.New("payment method is required")
)

// ProductNotFoundError indicates a cart line that resolves to no active product.
type ProductNotFoundError struct {
	Ref string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.Ref)
}

// InsufficientStockError indicates a cart line asking for more units than
// are available.
type InsufficientStockError struct {
	ProductID string
	Product   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.Product, e.Available, e.Requested)
}

// Transactor runs fn inside a single storage transaction. Returning an error
// from fn rolls back every write made through ctx.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// ClientResolver attributes orders to client records.
type ClientResolver interface {
	Resolve(ctx context.Context, s client.Submission) (*client.Client, error)
	Get(ctx context.Context, id string) (*client.Client, error)
}

// Line is one cart entry.
type Line struct {
	Ref      product.Ref
	Quantity int
}

// CheckoutRequest is the canonical storefront order.
type CheckoutRequest struct {
	Customer      client.Submission
	Lines         []Line
	PaymentMethod string
	CouponCode    string
}

// SaleRequest is a back-office sale. An empty ClientID records a counter sale.
type SaleRequest struct {
	ClientID      string
	Lines         []Line
	PaymentMethod string
	CouponCode    string
	Status        string
}

// ParseQuantity coerces a submitted quantity to an integer ≥ 1. Fractions are
// truncated; anything non-numeric or below one becomes 1.
func ParseQuantity(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
