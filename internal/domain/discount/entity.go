// internal/domain/discount/entity.go
package discount

import (
	"time"

	"gorm.io/gorm"
)

// WelcomeDiscount is a one-time, time-limited percentage discount
// granted to a newly registered user. Consuming it stamps the order it
// was spent on and when.
type WelcomeDiscount struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Percentage float64        `gorm:"not null" json:"percentage"`
	ExpiresAt  time.Time      `gorm:"not null" json:"expires_at"`
	UsedAt     *time.Time     `json:"used_at,omitempty"`
	OrderID    *uint          `gorm:"index" json:"order_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsActive reports whether the discount can still be spent
func (w *WelcomeDiscount) IsActive(now time.Time) bool {
	return w.UsedAt == nil && now.Before(w.ExpiresAt)
}

// CouponType discriminates how a coupon's value is interpreted
type CouponType string

const (
	CouponTypePercentage  CouponType = "percentage"
	CouponTypeFixedAmount CouponType = "fixed_amount"
)

// Coupon is a user-entered code granting an independent, additive
// discount on top of any membership discount.
type Coupon struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Code              string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	DiscountType      CouponType     `gorm:"not null;size:20" json:"discount_type"`
	DiscountValue     float64        `gorm:"not null" json:"discount_value"`       // Percentage, or amount in cents
	MinOrderAmount    int64          `gorm:"default:0" json:"min_order_amount"`    // In cents
	MaxDiscountAmount int64          `gorm:"default:0" json:"max_discount_amount"` // 0 = no cap
	IsActive          bool           `gorm:"default:true" json:"is_active"`
	ExpiresAt         *time.Time     `json:"expires_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// CouponRedemption records a coupon being spent on an order
type CouponRedemption struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CouponID       uint      `gorm:"not null;index" json:"coupon_id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	OrderID        uint      `gorm:"not null;index" json:"order_id"`
	DiscountAmount int64     `gorm:"not null" json:"discount_amount"` // In cents
	CreatedAt      time.Time `json:"created_at"`
}

// TableName overrides
func (WelcomeDiscount) TableName() string  { return "welcome_discounts" }
func (Coupon) TableName() string           { return "coupons" }
func (CouponRedemption) TableName() string { return "coupon_redemptions" }

// CouponApplication is the result of validating a coupon against a cart
type CouponApplication struct {
	CouponID       uint       `json:"coupon_id"`
	CouponCode     string     `json:"coupon_code"`
	DiscountType   CouponType `json:"discount_type"`
	DiscountAmount int64      `json:"discount_amount"` // In cents
	Applied        bool       `json:"applied"`
	Message        string     `json:"message,omitempty"`
}
