// Package handler exposes the storefront and back-office HTTP API on a gin
// router.
package handler

import (
	"context"
	"time"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/client"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/sale"
)

// Catalog is the product service used by the handlers.
type Catalog interface {
	List(ctx context.Context) ([]product.Product, error)
	Get(ctx context.Context, ref string) (*product.Product, error)
	Create(ctx context.Context, p product.Product) (*product.Product, error)
	Update(ctx context.Context, id string, p product.Product) (*product.Product, error)
	Delete(ctx context.Context, id string) error
}

// Clients is the client directory used by the back-office handlers.
type Clients interface {
	List(ctx context.Context) ([]client.Client, error)
	Create(ctx context.Context, c client.Client) (*client.Client, error)
	Update(ctx context.Context, id string, patch client.Client) (*client.Client, error)
	Delete(ctx context.Context, id string) error
}

// Coupons is the coupon registry used by the back-office handlers.
type Coupons interface {
	Now() time.Time
	List(ctx context.Context) ([]coupon.Coupon, error)
	Create(ctx context.Context, in coupon.Input) (*coupon.Coupon, error)
	Update(ctx context.Context, id string, in coupon.Input) (*coupon.Coupon, error)
	Delete(ctx context.Context, id string) error
}

// Sales is the sale ledger used by the back-office handlers.
type Sales interface {
	Recent(ctx context.Context) ([]sale.Sale, error)
	SetStatus(ctx context.Context, id, label string) (*sale.Sale, error)
}

// Orders places storefront checkouts and back-office sales.
type Orders interface {
	Checkout(ctx context.Context, req order.CheckoutRequest) (*order.Result, error)
	RecordSale(ctx context.Context, req order.SaleRequest) (*sale.Sale, error)
}

// Authenticator validates back-office API keys.
type Authenticator interface {
	Authenticate(ctx context.Context, key, scope string) (*auth.APIKeyInfo, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Deps groups the domain services the Handler delegates to.
type Deps struct {
	Catalog   Catalog
	Clients   Clients
	Coupons   Coupons
	Validator coupon.Validator
	Sales     Sales
	Orders    Orders
}

// Handler serves the HTTP API, delegating business logic to the domain
// services.
type Handler struct {
	catalog   Catalog
	clients   Clients
	coupons   Coupons
	validator coupon.Validator
	sales     Sales
	orders    Orders

	imageBaseURL string
}

// New constructs a Handler.
func New(cfg Config, deps Deps) *Handler {
	return &Handler{
		catalog:      deps.Catalog,
		clients:      deps.Clients,
		coupons:      deps.Coupons,
		validator:    deps.Validator,
		sales:        deps.Sales,
		orders:       deps.Orders,
		imageBaseURL: cfg.ImageBaseURL,
	}
}
