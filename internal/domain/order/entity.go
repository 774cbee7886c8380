// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusCreated        OrderStatus = "created"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// Order represents the authoritative order record
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      *uint       `gorm:"index" json:"user_id"` // Nullable for guest orders
	Status      OrderStatus `gorm:"not null;default:'created'" json:"status"`

	// Customer identity (account data for members, cached fields for guests)
	CustomerName  string `gorm:"size:255" json:"customer_name"`
	CustomerPhone string `gorm:"size:30" json:"customer_phone"`
	CustomerEmail string `gorm:"size:255" json:"customer_email"`

	// Delivery destination
	AddressText string   `gorm:"size:500;not null" json:"address_text"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Borough     string   `gorm:"size:20;not null" json:"borough"`

	// Delivery plan
	DeliveryTier string     `gorm:"size:20;not null" json:"delivery_tier"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"` // Economy tier only
	Notes        string     `gorm:"type:text" json:"notes"`

	PaymentMethod string `gorm:"size:50" json:"payment_method"`

	// Financial information, in cents
	SubtotalAmount       int64  `gorm:"not null" json:"subtotal_amount"`
	DeliveryFeeAmount    int64  `gorm:"default:0" json:"delivery_fee_amount"`
	DiscountKind         string `gorm:"size:20" json:"discount_kind"`
	DiscountAmount       int64  `gorm:"default:0" json:"discount_amount"`
	CouponCode           string `gorm:"size:50" json:"coupon_code"`
	CouponDiscountAmount int64  `gorm:"default:0" json:"coupon_discount_amount"`
	TotalAmount          int64  `gorm:"not null" json:"total_amount"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem represents a line in an order, with the unit price resolved
// at submission time.
type OrderItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrderID        uint      `gorm:"not null;index" json:"order_id"`
	ProductID      uint      `gorm:"not null;index" json:"product_id"`
	Name           string    `gorm:"not null;size:255" json:"name"`
	SelectedWeight string    `gorm:"size:50" json:"selected_weight"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	Price          int64     `gorm:"not null" json:"price"`       // Price per unit in cents
	TotalPrice     int64     `gorm:"not null" json:"total_price"` // Quantity * Price
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// GenerateOrderNumber generates a unique order number
// Format: ORD-YYYYMMDD-XXXXX
func GenerateOrderNumber(orderID uint, at time.Time) string {
	return fmt.Sprintf("ORD-%s-%05d", at.Format("20060102"), orderID)
}

// GetFormattedTotal returns total amount as dollars
func (o *Order) GetFormattedTotal() float64 {
	return float64(o.TotalAmount) / 100
}

// IsGuestOrder reports whether the order was placed without an account
func (o *Order) IsGuestOrder() bool {
	return o.UserID == nil
}
