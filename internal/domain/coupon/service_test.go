package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateValidation(t *testing.T) {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	expires := now.Add(30 * 24 * time.Hour)
	late := expires.Add(time.Hour)

	tests := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{
			name:    "missing code",
			in:      Input{Code: "  ", DiscountPercent: decimal.NewFromInt(10), ExpiresAt: &expires},
			wantErr: ErrCodeRequired,
		},
		{
			name:    "percent below range",
			in:      Input{Code: "X", DiscountPercent: decimal.RequireFromString("0.5"), ExpiresAt: &expires},
			wantErr: ErrPercentOutOfRange,
		},
		{
			name:    "percent above range",
			in:      Input{Code: "X", DiscountPercent: decimal.NewFromInt(101), ExpiresAt: &expires},
			wantErr: ErrPercentOutOfRange,
		},
		{
			name:    "missing expiry",
			in:      Input{Code: "X", DiscountPercent: decimal.NewFromInt(10)},
			wantErr: ErrExpiryRequired,
		},
		{
			name:    "start after expiry",
			in:      Input{Code: "X", DiscountPercent: decimal.NewFromInt(10), StartsAt: &late, ExpiresAt: &expires},
			wantErr: ErrInvalidWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(&mockCouponRepo{})
			s.now = func() time.Time { return now }

			_, err := s.Create(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestService_CreateDefaults(t *testing.T) {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	expires := now.Add(time.Hour)
	repo := &mockCouponRepo{}
	s := NewService(repo)
	s.now = func() time.Time { return now }

	c, err := s.Create(context.Background(), Input{
		Code:            " verao10 ",
		DiscountPercent: decimal.NewFromInt(10),
		ExpiresAt:       &expires,
	})
	require.NoError(t, err)

	assert.Equal(t, "VERAO10", c.Code)
	assert.Equal(t, now, c.StartsAt)
	assert.True(t, c.Active)
	assert.Equal(t, StatusActive, c.StatusAt(now))
	require.Len(t, repo.coupons, 1)

	_, err = s.Create(context.Background(), Input{
		Code:            "VERAO10",
		DiscountPercent: decimal.NewFromInt(5),
		ExpiresAt:       &expires,
	})
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestService_UpdateDeactivates(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := start.Add(90 * 24 * time.Hour)
	repo := &mockCouponRepo{coupons: []*Coupon{{
		ID: "k1", Code: "SAVE10", DiscountPercent: decimal.NewFromInt(10),
		StartsAt: start, ExpiresAt: expires, Active: true,
	}}}
	s := NewService(repo)
	off := false

	c, err := s.Update(context.Background(), "k1", Input{
		Code:            "SAVE10",
		DiscountPercent: decimal.NewFromInt(12),
		ExpiresAt:       &expires,
		Active:          &off,
	})
	require.NoError(t, err)

	assert.Equal(t, start, c.StartsAt, "start date kept when omitted")
	assert.True(t, decimal.NewFromInt(12).Equal(repo.coupons[0].DiscountPercent))
	assert.Equal(t, StatusInactive, repo.coupons[0].StatusAt(start.Add(time.Hour)))

	_, err = s.Update(context.Background(), "missing", Input{Code: "X"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	repo := &mockCouponRepo{coupons: []*Coupon{{ID: "k1", Code: "SAVE10"}}}
	s := NewService(repo)

	require.NoError(t, s.Delete(context.Background(), "k1"))
	assert.Empty(t, repo.coupons)
	require.ErrorIs(t, s.Delete(context.Background(), "k1"), ErrNotFound)
}
