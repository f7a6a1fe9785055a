package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist or is inactive.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string
	Name        string
	Description string
	Slug        string
	Weight      string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Images      []string
	Benefits    []string
	InStock     bool
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines persistence operations for the product catalog.
//
// Lookups return ErrNotFound for missing rows. DecrementStock is a conditional
// write: it reports ok=false without modifying anything when the product has
// fewer than qty units left or is inactive.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Deactivate(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, id string, qty int) (remaining int, ok bool, err error)
	Count(ctx context.Context) (int, error)
}
