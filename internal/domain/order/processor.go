package order

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/client"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/sale"
)

const instrumentationName = "github.com/xenking/storefront/internal/domain/order"

// Result is the outcome of a successful checkout.
type Result struct {
	Sale   *sale.Sale
	Client *client.Client
}

// Option configures a Processor.
type Option func(*Processor)

// WithTracerProvider sets the tracer provider used for checkout spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Processor) { p.tracer = tp.Tracer(instrumentationName) }
}

// WithMeterProvider sets the meter provider used for checkout counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Processor) { p.meter = mp.Meter(instrumentationName) }
}

// Processor orchestrates checkout. It owns the transaction boundary and is
// the only writer of sales.
type Processor struct {
	tx       Transactor
	products product.Repository
	clients  ClientResolver
	coupons  coupon.Validator
	sales    sale.Repository
	now      func() time.Time

	tracer    trace.Tracer
	meter     metric.Meter
	completed metric.Int64Counter
	rejected  metric.Int64Counter
	revenue   metric.Float64Counter
}

// NewProcessor creates a Processor with the required domain dependencies.
func NewProcessor(
	tx Transactor,
	products product.Repository,
	clients ClientResolver,
	coupons coupon.Validator,
	sales sale.Repository,
	opts ...Option,
) (*Processor, error) {
	p := &Processor{
		tx:       tx,
		products: products,
		clients:  clients,
		coupons:  coupons,
		sales:    sales,
		now:      time.Now,
		tracer:   tracenoop.NewTracerProvider().Tracer(instrumentationName),
		meter:    metricnoop.NewMeterProvider().Meter(instrumentationName),
	}
	for _, o := range opts {
		o(p)
	}

	var err error
	if p.completed, err = p.meter.Int64Counter("storefront.checkout.completed",
		metric.WithDescription("Completed sales"),
	); err != nil {
		return nil, errors.Wrap(err, "completed counter")
	}
	if p.rejected, err = p.meter.Int64Counter("storefront.checkout.rejected",
		metric.WithDescription("Rejected orders by reason"),
	); err != nil {
		return nil, errors.Wrap(err, "rejected counter")
	}
	if p.revenue, err = p.meter.Float64Counter("storefront.checkout.revenue",
		metric.WithDescription("Sale totals"),
	); err != nil {
		return nil, errors.Wrap(err, "revenue counter")
	}
	return p, nil
}

// Checkout validates the order, then in one transaction resolves the client,
// validates and decrements stock line by line, applies the coupon and writes
// the sale. Any failure rolls back everything, so a rejected order leaves no
// stock change, client change or sale behind.
func (p *Processor) Checkout(ctx context.Context, req CheckoutRequest) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "order.Checkout",
		trace.WithAttributes(attribute.Int("order.lines", len(req.Lines))),
	)
	defer span.End()

	if utf8.RuneCountInString(strings.TrimSpace(req.Customer.Name)) < 2 {
		return nil, p.reject(ctx, span, ErrInvalidCustomer)
	}
	if len(req.Lines) == 0 {
		return nil, p.reject(ctx, span, ErrEmptyCart)
	}

	var res Result
	if err := p.tx.Do(ctx, func(ctx context.Context) error {
		c, err := p.clients.Resolve(ctx, req.Customer)
		if err != nil {
			return errors.Wrap(err, "resolve client")
		}

		s, err := p.settle(ctx, req.Lines, req.CouponCode)
		if err != nil {
			return err
		}
		s.ClientID = &c.ID
		s.ClientName = c.Name
		s.Payment = sale.ParsePaymentMethod(req.PaymentMethod)
		s.Status = sale.StatusCompleted

		if err := p.sales.Create(ctx, s); err != nil {
			return errors.Wrap(err, "create sale")
		}
		res = Result{Sale: s, Client: c}
		return nil
	}); err != nil {
		return nil, p.reject(ctx, span, err)
	}

	p.complete(ctx, span, res.Sale)
	return &res, nil
}

// RecordSale writes a back-office sale through the same stock, pricing and
// coupon rules as Checkout. Without a client id the sale is a counter sale.
func (p *Processor) RecordSale(ctx context.Context, req SaleRequest) (*sale.Sale, error) {
	ctx, span := p.tracer.Start(ctx, "order.RecordSale",
		trace.WithAttributes(attribute.Int("order.lines", len(req.Lines))),
	)
	defer span.End()

	if len(req.Lines) == 0 {
		return nil, p.reject(ctx, span, ErrEmptyCart)
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, p.reject(ctx, span, ErrPaymentRequired)
	}
	status := sale.StatusCompleted
	if strings.TrimSpace(req.Status) != "" {
		var err error
		if status, err = sale.ParseStatus(req.Status); err != nil {
			return nil, p.reject(ctx, span, err)
		}
	}

	var out *sale.Sale
	if err := p.tx.Do(ctx, func(ctx context.Context) error {
		var (
			clientID   *string
			clientName = sale.CounterClientName
		)
		if id := strings.TrimSpace(req.ClientID); id != "" {
			c, err := p.clients.Get(ctx, id)
			if err != nil {
				return errors.Wrap(err, "get client")
			}
			clientID = &c.ID
			clientName = c.Name
		}

		s, err := p.settle(ctx, req.Lines, req.CouponCode)
		if err != nil {
			return err
		}
		s.ClientID = clientID
		s.ClientName = clientName
		s.Payment = sale.ParsePaymentMethod(req.PaymentMethod)
		s.Status = status

		if err := p.sales.Create(ctx, s); err != nil {
			return errors.Wrap(err, "create sale")
		}
		out = s
		return nil
	}); err != nil {
		return nil, p.reject(ctx, span, err)
	}

	p.complete(ctx, span, out)
	return out, nil
}

// settle resolves every line, checks and decrements stock, and prices the
// sale. It must run inside a transaction.
func (p *Processor) settle(ctx context.Context, lines []Line, couponCode string) (*sale.Sale, error) {
	items := make([]sale.LineItem, 0, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}

		prod, err := product.Resolve(ctx, p.products, line.Ref)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, &ProductNotFoundError{Ref: line.Ref.String()}
			}
			return nil, err
		}
		if prod.Stock < qty {
			return nil, &InsufficientStockError{
				ProductID: prod.ID,
				Product:   prod.Name,
				Available: prod.Stock,
				Requested: qty,
			}
		}

		if _, ok, err := p.products.DecrementStock(ctx, prod.ID, qty); err != nil {
			return nil, errors.Wrapf(err, "decrement stock %s", prod.ID)
		} else if !ok {
			// Lost a race against a concurrent checkout or a deactivation:
			// report what the product looks like now.
			fresh, err := p.products.GetByID(ctx, prod.ID)
			switch {
			case errors.Is(err, product.ErrNotFound):
				return nil, &ProductNotFoundError{Ref: line.Ref.String()}
			case err != nil:
				return nil, errors.Wrapf(err, "reload product %s", prod.ID)
			case !fresh.Active:
				return nil, &ProductNotFoundError{Ref: line.Ref.String()}
			}
			return nil, &InsufficientStockError{
				ProductID: prod.ID,
				Product:   prod.Name,
				Available: fresh.Stock,
				Requested: qty,
			}
		}

		item := sale.LineItem{
			ProductID: prod.ID,
			Name:      prod.Name,
			UnitPrice: prod.Price,
			Quantity:  qty,
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.Amount())
	}
	subtotal = subtotal.Round(2)

	discount := decimal.Zero
	code := coupon.NormalizeCode(couponCode)
	if code != "" {
		c, err := p.coupons.Validate(ctx, code)
		if err != nil {
			return nil, err
		}
		code = c.Code
		discount = c.Discount(subtotal)
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return &sale.Sale{
		ID:             uuid.New().String(),
		Items:          items,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		CouponCode:     code,
		Total:          total.Round(2),
		CreatedAt:      p.now(),
	}, nil
}

func (p *Processor) complete(ctx context.Context, span trace.Span, s *sale.Sale) {
	span.SetAttributes(
		attribute.String("sale.id", s.ID),
		attribute.String("sale.payment", string(s.Payment)),
	)
	attrs := metric.WithAttributes(attribute.String("payment", string(s.Payment)))
	p.completed.Add(ctx, 1, attrs)
	p.revenue.Add(ctx, s.Total.InexactFloat64(), attrs)

	zctx.From(ctx).Info("Sale recorded",
		zap.String("sale_id", s.ID),
		zap.Int("items", len(s.Items)),
		zap.String("total", s.Total.StringFixed(2)),
		zap.String("coupon", s.CouponCode),
	)
}

func (p *Processor) reject(ctx context.Context, span trace.Span, err error) error {
	reason := RejectReason(err)
	p.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	span.SetAttributes(attribute.String("order.reject_reason", reason))
	if reason == "internal" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	zctx.From(ctx).Debug("Order rejected", zap.String("reason", reason), zap.Error(err))
	return err
}

// RejectReason classifies a Checkout or RecordSale error. Everything that is
// not a validation or business-rule rejection is "internal".
func RejectReason(err error) string {
	var (
		notFound *ProductNotFoundError
		stock    *InsufficientStockError
		status   *coupon.StatusError
	)
	switch {
	case errors.Is(err, ErrInvalidCustomer):
		return "invalid_customer"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrPaymentRequired), errors.Is(err, sale.ErrInvalidStatus):
		return "invalid_request"
	case errors.As(err, &notFound):
		return "product_not_found"
	case errors.As(err, &stock):
		return "insufficient_stock"
	case errors.Is(err, coupon.ErrNotFound):
		return "coupon_not_found"
	case errors.As(err, &status):
		return "coupon_" + string(status.Status)
	case errors.Is(err, client.ErrNotFound):
		return "client_not_found"
	default:
		return "internal"
	}
}
