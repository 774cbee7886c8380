// internal/domain/discount/service.go
package discount

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/sameday-checkout/internal/config"
	"gorm.io/gorm"
)

// Service handles welcome discounts and coupons
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new discount service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// ActiveWelcomeDiscount returns the user's unused, unexpired welcome
// discount, or nil when none exists.
func (s *Service) ActiveWelcomeDiscount(userID uint) (*WelcomeDiscount, error) {
	var wd WelcomeDiscount
	result := s.db.Where("user_id = ? AND used_at IS NULL AND expires_at > ?", userID, time.Now().UTC()).
		Order("expires_at asc").
		First(&wd)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to look up welcome discount: %w", result.Error)
	}
	return &wd, nil
}

// MarkWelcomeUsed consumes a welcome discount, stamping the order it
// was spent on and when.
func (s *Service) MarkWelcomeUsed(discountID, orderID uint) error {
	now := time.Now().UTC()
	result := s.db.Model(&WelcomeDiscount{}).
		Where("id = ? AND used_at IS NULL", discountID).
		Updates(map[string]interface{}{
			"used_at":  now,
			"order_id": orderID,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark welcome discount used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("welcome discount %d not found or already used", discountID)
	}
	return nil
}

// GrantWelcomeDiscount issues a welcome discount to a new user
func (s *Service) GrantWelcomeDiscount(userID uint, percentage float64, validFor time.Duration) (*WelcomeDiscount, error) {
	wd := WelcomeDiscount{
		UserID:     userID,
		Percentage: percentage,
		ExpiresAt:  time.Now().UTC().Add(validFor),
	}
	if err := s.db.Create(&wd).Error; err != nil {
		return nil, fmt.Errorf("failed to grant welcome discount: %w", err)
	}
	return &wd, nil
}

// GetCouponByCode looks up an active coupon by its code
func (s *Service) GetCouponByCode(code string) (*Coupon, error) {
	var coupon Coupon
	result := s.db.Where("code = ? AND is_active = ?", code, true).First(&coupon)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("invalid coupon code")
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", result.Error)
	}
	return &coupon, nil
}

// ValidateCoupon checks a coupon against the cart subtotal and returns
// the discount amount it grants.
func (s *Service) ValidateCoupon(coupon *Coupon, subtotal int64) (int64, error) {
	if coupon.ExpiresAt != nil && time.Now().UTC().After(*coupon.ExpiresAt) {
		return 0, fmt.Errorf("coupon %s has expired", coupon.Code)
	}

	if subtotal < coupon.MinOrderAmount {
		return 0, fmt.Errorf("minimum order amount of $%.2f required for coupon %s",
			float64(coupon.MinOrderAmount)/100, coupon.Code)
	}

	var amount int64
	if coupon.DiscountType == CouponTypePercentage {
		amount = int64(float64(subtotal) * coupon.DiscountValue / 100)
		if coupon.MaxDiscountAmount > 0 && amount > coupon.MaxDiscountAmount {
			amount = coupon.MaxDiscountAmount
		}
	} else {
		amount = int64(coupon.DiscountValue)
		if amount > subtotal {
			amount = subtotal
		}
	}

	return amount, nil
}

// ApplyCoupon validates a coupon for the subject (user or guest
// session) and caches the application so quote and submit see the same
// coupon.
func (s *Service) ApplyCoupon(ctx context.Context, subject, code string, subtotal int64) (*CouponApplication, error) {
	coupon, err := s.GetCouponByCode(code)
	if err != nil {
		return &CouponApplication{CouponCode: code, Applied: false, Message: err.Error()}, nil
	}

	amount, err := s.ValidateCoupon(coupon, subtotal)
	if err != nil {
		return &CouponApplication{CouponCode: code, Applied: false, Message: err.Error()}, nil
	}

	application := &CouponApplication{
		CouponID:       coupon.ID,
		CouponCode:     coupon.Code,
		DiscountType:   coupon.DiscountType,
		DiscountAmount: amount,
		Applied:        true,
		Message:        fmt.Sprintf("Coupon applied! You saved $%.2f", float64(amount)/100),
	}

	data, err := json.Marshal(application)
	if err != nil {
		return nil, fmt.Errorf("failed to encode coupon application: %w", err)
	}
	if err := s.redisClient.Set(ctx, appliedCouponKey(subject), data, 24*time.Hour).Err(); err != nil {
		return nil, fmt.Errorf("failed to store applied coupon: %w", err)
	}

	return application, nil
}

// StoredCoupon returns the cached coupon application for the subject,
// or nil when none is applied.
func (s *Service) StoredCoupon(ctx context.Context, subject string) *CouponApplication {
	data, err := s.redisClient.Get(ctx, appliedCouponKey(subject)).Result()
	if err != nil {
		return nil
	}

	var application CouponApplication
	if err := json.Unmarshal([]byte(data), &application); err != nil {
		return nil
	}
	return &application
}

// RemoveCoupon clears the cached coupon application
func (s *Service) RemoveCoupon(ctx context.Context, subject string) error {
	return s.redisClient.Del(ctx, appliedCouponKey(subject)).Err()
}

// RecordRedemption writes the redemption row tying a coupon to the
// order it was spent on.
func (s *Service) RecordRedemption(couponID, userID, orderID uint, amount int64) error {
	redemption := CouponRedemption{
		CouponID:       couponID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: amount,
	}
	if err := s.db.Create(&redemption).Error; err != nil {
		return fmt.Errorf("failed to record coupon redemption: %w", err)
	}
	return nil
}

func appliedCouponKey(subject string) string {
	return fmt.Sprintf("applied_coupon:%s", subject)
}
