// internal/domain/cart/entity.go
package cart

import (
	"time"

	"gorm.io/gorm"
)

// CartItem represents a cart item stored in database for authenticated users
type CartItem struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	ProductID      uint           `gorm:"not null;index" json:"product_id"`
	SelectedWeight string         `gorm:"size:50" json:"selected_weight"`
	Quantity       int            `gorm:"not null;default:1" json:"quantity"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// SessionCart represents a cart for guest users (stored in Redis)
type SessionCart struct {
	SessionID string            `json:"session_id"`
	Items     []SessionCartItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SessionCartItem represents a cart item for guest users
type SessionCartItem struct {
	ProductID      uint      `json:"product_id"`
	SelectedWeight string    `json:"selected_weight,omitempty"`
	Quantity       int       `json:"quantity"`
	AddedAt        time.Time `json:"added_at"`
}

// ItemRef is a cart row before product resolution: what the customer
// put in the cart, independent of where the cart lives.
type ItemRef struct {
	ProductID      uint
	SelectedWeight string
	Quantity       int
}

// LineItem is a priced cart line, ready for the pricing engine
type LineItem struct {
	ProductID      uint   `json:"product_id"`
	Name           string `json:"name"`
	SelectedWeight string `json:"selected_weight,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPrice      int64  `json:"unit_price"`  // In cents
	TotalPrice     int64  `json:"total_price"` // UnitPrice * Quantity
}

// CartResponse represents a shopping cart with priced items
type CartResponse struct {
	SessionID string     `json:"session_id,omitempty"`
	UserID    *uint      `json:"user_id,omitempty"`
	Items     []LineItem `json:"items"`
	SubTotal  int64      `json:"sub_total"`
	ItemCount int        `json:"item_count"`
}
