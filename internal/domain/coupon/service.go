package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field validation errors returned by Service.Create and Service.Update.
var (
	ErrCodeRequired      = errors.New("coupon code is required")
	ErrPercentOutOfRange = errors.New("discount percent must be between 1 and 100")
	ErrExpiryRequired    = errors.New("expiry date is required")
	ErrInvalidWindow     = errors.New("start date must not be after expiry date")
)

// IsValidationError reports whether err is one of the field validation errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrCodeRequired) ||
		errors.Is(err, ErrPercentOutOfRange) ||
		errors.Is(err, ErrExpiryRequired) ||
		errors.Is(err, ErrInvalidWindow)
}

// Input carries the admin-editable coupon fields. StartsAt defaults to now
// and Active defaults to true when nil.
type Input struct {
	Code            string
	DiscountPercent decimal.Decimal
	StartsAt        *time.Time
	ExpiresAt       *time.Time
	Active          *bool
}

// Service implements coupon registry management.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a coupon registry Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Now returns the clock the service derives statuses with.
func (s *Service) Now() time.Time {
	return s.now()
}

// List returns all coupons.
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	return s.repo.List(ctx)
}

// Create validates and stores a new coupon.
func (s *Service) Create(ctx context.Context, in Input) (*Coupon, error) {
	now := s.now()
	c := &Coupon{
		ID:        uuid.New().String(),
		Active:    true,
		StartsAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := apply(c, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create coupon")
	}
	return c, nil
}

// Update validates and replaces the editable fields of a coupon. A nil
// StartsAt keeps the stored start date.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Coupon, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(c, in); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, errors.Wrap(err, "update coupon")
	}
	return c, nil
}

// Delete removes a coupon. Sales keep the applied code as a snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func apply(c *Coupon, in Input) error {
	code := NormalizeCode(in.Code)
	if code == "" {
		return ErrCodeRequired
	}
	if in.DiscountPercent.LessThan(decimal.NewFromInt(1)) || in.DiscountPercent.GreaterThan(hundred) {
		return ErrPercentOutOfRange
	}
	if in.ExpiresAt == nil || in.ExpiresAt.IsZero() {
		return ErrExpiryRequired
	}
	startsAt := c.StartsAt
	if in.StartsAt != nil && !in.StartsAt.IsZero() {
		startsAt = *in.StartsAt
	}
	if startsAt.After(*in.ExpiresAt) {
		return ErrInvalidWindow
	}

	c.Code = code
	c.DiscountPercent = in.DiscountPercent
	c.StartsAt = startsAt
	c.ExpiresAt = *in.ExpiresAt
	if in.Active != nil {
		c.Active = *in.Active
	}
	return nil
}
