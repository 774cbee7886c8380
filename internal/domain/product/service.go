// internal/domain/product/service.go
package product

import (
	"fmt"

	"github.com/your-org/sameday-checkout/internal/config"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// GetProduct retrieves an active product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	result := s.db.Where("id = ? AND is_active = ?", id, true).First(&prod)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &prod, nil
}

// GetProducts lists active products
func (s *Service) GetProducts(page, limit int) ([]Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var products []Product
	var total int64

	query := s.db.Model(&Product{}).Where("is_active = ?", true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.Order("name asc").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return products, total, nil
}

// GetProductsByIDs performs a batch lookup by ID list. Missing or
// inactive products are simply absent from the result map; callers
// decide how to treat dangling references.
func (s *Service) GetProductsByIDs(ids []uint) (map[uint]*Product, error) {
	result := make(map[uint]*Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var products []Product
	if err := s.db.Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}
