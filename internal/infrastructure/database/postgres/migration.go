// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/your-org/sameday-checkout/internal/domain/cart"
	"github.com/your-org/sameday-checkout/internal/domain/discount"
	"github.com/your-org/sameday-checkout/internal/domain/order"
	"github.com/your-org/sameday-checkout/internal/domain/product"
	"github.com/your-org/sameday-checkout/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},

		&product.Product{},

		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},

		&discount.WelcomeDiscount{},
		&discount.Coupon{},
		&discount.CouponRedemption{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed")
	return nil
}

// SeedInitialData seeds development data
func (m *Migration) SeedInitialData() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil // Already seeded
	}

	log.Println("🌱 Seeding initial data...")

	products := []product.Product{
		{
			SKU:       "COF-HOUSE",
			Name:      "House Blend Coffee",
			FlatPrice: 1499,
			WeightPrices: product.WeightPriceMap{
				"250g": 1499,
				"500g": 2699,
				"1kg":  4999,
			},
			IsActive: true,
		},
		{
			SKU:       "TEA-GREEN",
			Name:      "Organic Green Tea",
			FlatPrice: 999,
			IsActive:  true,
		},
		{
			SKU:       "CHO-DARK",
			Name:      "Dark Chocolate Bar",
			FlatPrice: 450,
			IsActive:  true,
		},
	}

	for i := range products {
		if err := m.db.Create(&products[i]).Error; err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].SKU, err)
		}
	}

	coupons := []discount.Coupon{
		{
			Code:              "SAVE10",
			DiscountType:      discount.CouponTypePercentage,
			DiscountValue:     10,
			MinOrderAmount:    2000,
			MaxDiscountAmount: 5000,
			IsActive:          true,
		},
		{
			Code:           "FLAT5",
			DiscountType:   discount.CouponTypeFixedAmount,
			DiscountValue:  500,
			MinOrderAmount: 3000,
			IsActive:       true,
		},
	}

	for i := range coupons {
		if err := m.db.Create(&coupons[i]).Error; err != nil {
			return fmt.Errorf("failed to seed coupon %s: %w", coupons[i].Code, err)
		}
	}

	log.Printf("✅ Seeded %d products and %d coupons at %s", len(products), len(coupons), time.Now().Format(time.RFC3339))
	return nil
}
