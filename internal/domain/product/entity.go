// internal/domain/product/entity.go
package product

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// WeightPriceMap maps a weight key (e.g. "250g") to a price in cents.
// Stored as a JSONB column.
type WeightPriceMap map[string]int64

// Value implements driver.Valuer
func (w WeightPriceMap) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	return json.Marshal(w)
}

// Scan implements sql.Scanner
func (w *WeightPriceMap) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for WeightPriceMap: %T", value)
	}

	return json.Unmarshal(data, w)
}

// Product represents the product entity
type Product struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SKU          string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name         string         `gorm:"not null;size:255" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	FlatPrice    int64          `gorm:"not null" json:"flat_price"` // Price in cents
	WeightPrices WeightPriceMap `gorm:"type:jsonb" json:"weight_prices,omitempty"`
	ImageURL     string         `gorm:"size:500" json:"image_url"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// PriceFor resolves the unit price for a selected weight key. Resolution
// is deterministic: tiered price if present for the key, else the flat
// price, else 0.
func (p *Product) PriceFor(selectedWeight string) int64 {
	if selectedWeight != "" && p.WeightPrices != nil {
		if price, ok := p.WeightPrices[selectedWeight]; ok {
			return price
		}
	}
	if p.FlatPrice > 0 {
		return p.FlatPrice
	}
	return 0
}
