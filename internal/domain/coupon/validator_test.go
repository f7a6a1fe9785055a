package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	coupons  []*Coupon
	err      error
	lastCode string
}

func (m *mockCouponRepo) List(_ context.Context) ([]Coupon, error) {
	out := make([]Coupon, 0, len(m.coupons))
	for _, c := range m.coupons {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCouponRepo) GetByID(_ context.Context, id string) (*Coupon, error) {
	for _, c := range m.coupons {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*Coupon, error) {
	m.lastCode = code
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.coupons {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockCouponRepo) Create(_ context.Context, c *Coupon) error {
	for _, existing := range m.coupons {
		if existing.Code == c.Code {
			return ErrDuplicateCode
		}
	}
	cp := *c
	m.coupons = append(m.coupons, &cp)
	return nil
}

func (m *mockCouponRepo) Update(_ context.Context, c *Coupon) error {
	for i, existing := range m.coupons {
		if existing.ID == c.ID {
			cp := *c
			m.coupons[i] = &cp
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockCouponRepo) Delete(_ context.Context, id string) error {
	for i, c := range m.coupons {
		if c.ID == id {
			m.coupons = append(m.coupons[:i], m.coupons[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func TestRepoValidator_Validate(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := fixedNow.Add(-24 * time.Hour)
	future := fixedNow.Add(24 * time.Hour)
	farFuture := fixedNow.Add(48 * time.Hour)

	repo := &mockCouponRepo{coupons: []*Coupon{
		{Code: "SAVE10", DiscountPercent: decimal.NewFromInt(10), StartsAt: past, ExpiresAt: future, Active: true},
		{Code: "OFF", DiscountPercent: decimal.NewFromInt(10), StartsAt: past, ExpiresAt: future, Active: false},
		{Code: "OLD", DiscountPercent: decimal.NewFromInt(10), StartsAt: past.Add(-time.Hour), ExpiresAt: past, Active: true},
		{Code: "SOON", DiscountPercent: decimal.NewFromInt(10), StartsAt: future, ExpiresAt: farFuture, Active: true},
		{Code: "EDGE", DiscountPercent: decimal.NewFromInt(5), StartsAt: fixedNow, ExpiresAt: fixedNow, Active: true},
	}}

	tests := []struct {
		name       string
		code       string
		wantCode   string
		wantErr    error
		wantStatus Status
	}{
		{name: "active coupon", code: "SAVE10", wantCode: "SAVE10"},
		{name: "code is normalized", code: "  save10 ", wantCode: "SAVE10"},
		{name: "window bounds are inclusive", code: "EDGE", wantCode: "EDGE"},
		{name: "unknown code", code: "BOGUS", wantErr: ErrNotFound},
		{name: "blank code", code: "   ", wantErr: ErrNotFound},
		{name: "inactive", code: "OFF", wantStatus: StatusInactive},
		{name: "expired", code: "OLD", wantStatus: StatusExpired},
		{name: "scheduled", code: "SOON", wantStatus: StatusScheduled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRepoValidator(repo)
			v.now = func() time.Time { return fixedNow }

			got, err := v.Validate(context.Background(), tt.code)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantStatus != "":
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.wantStatus, statusErr.Status)
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantCode, got.Code)
			}
		})
	}
}

func TestRepoValidator_RepositoryError(t *testing.T) {
	v := NewRepoValidator(&mockCouponRepo{err: errors.New("db down")})

	_, err := v.Validate(context.Background(), "SAVE10")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "lookup coupon")
}

func TestStatusError_Messages(t *testing.T) {
	assert.Equal(t, "coupon inactive", (&StatusError{Status: StatusInactive}).Error())
	assert.Equal(t, "coupon scheduled", (&StatusError{Status: StatusScheduled}).Error())
	assert.Equal(t, "coupon expired", (&StatusError{Status: StatusExpired}).Error())
}

func TestCoupon_Discount(t *testing.T) {
	tests := []struct {
		subtotal string
		percent  string
		want     string
	}{
		{subtotal: "100.00", percent: "10", want: "10.00"},
		{subtotal: "59.99", percent: "15", want: "9.00"},
		{subtotal: "33.33", percent: "33.5", want: "11.17"},
		{subtotal: "80.00", percent: "100", want: "80.00"},
	}
	for _, tt := range tests {
		c := &Coupon{DiscountPercent: decimal.RequireFromString(tt.percent)}
		got := c.Discount(decimal.RequireFromString(tt.subtotal))
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
			"%s%% of %s: expected %s, got %s", tt.percent, tt.subtotal, tt.want, got)
	}
}
