// internal/domain/discount/service_test.go
package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCoupon_Percentage(t *testing.T) {
	s := &Service{}
	coupon := &Coupon{
		Code:          "SAVE10",
		DiscountType:  CouponTypePercentage,
		DiscountValue: 10,
	}

	amount, err := s.ValidateCoupon(coupon, 8000)
	require.NoError(t, err)
	assert.Equal(t, int64(800), amount)
}

func TestValidateCoupon_PercentageCap(t *testing.T) {
	s := &Service{}
	coupon := &Coupon{
		Code:              "SAVE10",
		DiscountType:      CouponTypePercentage,
		DiscountValue:     10,
		MaxDiscountAmount: 500,
	}

	amount, err := s.ValidateCoupon(coupon, 8000)
	require.NoError(t, err)
	assert.Equal(t, int64(500), amount)
}

func TestValidateCoupon_FixedAmount(t *testing.T) {
	s := &Service{}
	coupon := &Coupon{
		Code:          "FLAT5",
		DiscountType:  CouponTypeFixedAmount,
		DiscountValue: 500,
	}

	amount, err := s.ValidateCoupon(coupon, 8000)
	require.NoError(t, err)
	assert.Equal(t, int64(500), amount)
}

func TestValidateCoupon_FixedAmountCappedAtSubtotal(t *testing.T) {
	s := &Service{}
	coupon := &Coupon{
		Code:          "FLAT50",
		DiscountType:  CouponTypeFixedAmount,
		DiscountValue: 5000,
	}

	amount, err := s.ValidateCoupon(coupon, 3500)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), amount)
}

func TestValidateCoupon_MinOrderAmount(t *testing.T) {
	s := &Service{}
	coupon := &Coupon{
		Code:           "SAVE10",
		DiscountType:   CouponTypePercentage,
		DiscountValue:  10,
		MinOrderAmount: 5000,
	}

	_, err := s.ValidateCoupon(coupon, 4000)
	assert.Error(t, err)
}

func TestValidateCoupon_Expired(t *testing.T) {
	s := &Service{}
	expired := time.Now().UTC().Add(-time.Hour)
	coupon := &Coupon{
		Code:          "OLD",
		DiscountType:  CouponTypePercentage,
		DiscountValue: 10,
		ExpiresAt:     &expired,
	}

	_, err := s.ValidateCoupon(coupon, 8000)
	assert.Error(t, err)
}

func TestWelcomeDiscount_IsActive(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	used := now.Add(-time.Hour)

	tests := []struct {
		name     string
		discount WelcomeDiscount
		active   bool
	}{
		{"unused and unexpired", WelcomeDiscount{ExpiresAt: now.Add(time.Hour)}, true},
		{"already used", WelcomeDiscount{ExpiresAt: now.Add(time.Hour), UsedAt: &used}, false},
		{"expired", WelcomeDiscount{ExpiresAt: now.Add(-time.Minute)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.active, tt.discount.IsActive(now))
		})
	}
}
