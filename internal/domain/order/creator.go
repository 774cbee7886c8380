// internal/domain/order/creator.go
package order

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Creator is the order-creation service: one call, atomic and
// authoritative. Once Create returns an order ID the order exists, no
// matter what happens to any bookkeeping afterwards.
type Creator interface {
	Create(ctx context.Context, o *Order) (uint, error)
}

// GormCreator persists orders in PostgreSQL
type GormCreator struct {
	db *gorm.DB
}

// NewCreator creates the database-backed order creator
func NewCreator(db *gorm.DB) *GormCreator {
	return &GormCreator{db: db}
}

// Create writes the order and its items in one transaction and returns
// the new order ID.
func (c *GormCreator) Create(ctx context.Context, o *Order) (uint, error) {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		o.OrderNumber = GenerateOrderNumber(o.ID, time.Now().UTC())
		if err := tx.Model(o).Update("order_number", o.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to assign order number: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return o.ID, nil
}
