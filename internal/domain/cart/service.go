// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/sameday-checkout/internal/config"
	"github.com/your-org/sameday-checkout/internal/domain/product"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db             *gorm.DB
	redisClient    *redis.Client
	config         *config.Config
	productService *product.Service
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:             db,
		redisClient:    redisClient,
		config:         cfg,
		productService: product.NewService(db, cfg),
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID      uint   `json:"product_id" binding:"required"`
	SelectedWeight string `json:"selected_weight"`
	Quantity       int    `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// GetCart retrieves the priced cart for a user or guest session
func (s *Service) GetCart(ctx context.Context, userID *uint, sessionID string) (*CartResponse, error) {
	items, err := s.Aggregate(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	return &CartResponse{
		SessionID: sessionID,
		UserID:    userID,
		Items:     items,
		SubTotal:  SubTotal(items),
		ItemCount: len(items),
	}, nil
}

// Aggregate normalizes authenticated and guest carts into priced line
// items. Items referencing products that no longer resolve are dropped.
func (s *Service) Aggregate(ctx context.Context, userID *uint, sessionID string) ([]LineItem, error) {
	rows, err := s.cartRows(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}

	products, err := s.productService.GetProductsByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart products: %w", err)
	}

	return BuildLineItems(rows, products), nil
}

// AddToCart adds an item to the cart
func (s *Service) AddToCart(ctx context.Context, userID *uint, sessionID string, req *AddToCartRequest) (*CartResponse, error) {
	// Validate product exists and is active
	prod, err := s.productService.GetProduct(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}

	// Validate the selected weight if the product is weight-priced
	if req.SelectedWeight != "" && prod.WeightPrices != nil {
		if _, ok := prod.WeightPrices[req.SelectedWeight]; !ok {
			return nil, fmt.Errorf("weight option %q is not available for %s", req.SelectedWeight, prod.Name)
		}
	}

	if userID != nil {
		if err := s.addToUserCart(*userID, req); err != nil {
			return nil, err
		}
	} else {
		if err := s.addToGuestCart(ctx, sessionID, req); err != nil {
			return nil, err
		}
	}

	return s.GetCart(ctx, userID, sessionID)
}

// UpdateCartItem updates quantity of a cart item; quantity 0 removes it
func (s *Service) UpdateCartItem(ctx context.Context, userID *uint, sessionID string, productID uint, selectedWeight string, req *UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	if userID != nil {
		if err := s.updateUserCartItem(*userID, productID, selectedWeight, req.Quantity); err != nil {
			return nil, err
		}
	} else {
		if err := s.updateGuestCartItem(ctx, sessionID, productID, selectedWeight, req.Quantity); err != nil {
			return nil, err
		}
	}

	return s.GetCart(ctx, userID, sessionID)
}

// RemoveFromCart removes an item from the cart
func (s *Service) RemoveFromCart(ctx context.Context, userID *uint, sessionID string, productID uint, selectedWeight string) (*CartResponse, error) {
	return s.UpdateCartItem(ctx, userID, sessionID, productID, selectedWeight, &UpdateCartItemRequest{Quantity: 0})
}

// ClearCart removes all items from the cart
func (s *Service) ClearCart(ctx context.Context, userID *uint, sessionID string) error {
	if userID != nil {
		return s.db.Where("user_id = ?", *userID).Delete(&CartItem{}).Error
	}
	return s.redisClient.Del(ctx, guestCartKey(sessionID)).Err()
}

// Private helper methods

func (s *Service) cartRows(ctx context.Context, userID *uint, sessionID string) ([]ItemRef, error) {
	if userID != nil {
		var dbItems []CartItem
		if err := s.db.Where("user_id = ?", *userID).Order("created_at asc").Find(&dbItems).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve user cart: %w", err)
		}

		rows := make([]ItemRef, len(dbItems))
		for i, item := range dbItems {
			rows[i] = ItemRef{
				ProductID:      item.ProductID,
				SelectedWeight: item.SelectedWeight,
				Quantity:       item.Quantity,
			}
		}
		return rows, nil
	}

	sessionCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rows := make([]ItemRef, len(sessionCart.Items))
	for i, item := range sessionCart.Items {
		rows[i] = ItemRef{
			ProductID:      item.ProductID,
			SelectedWeight: item.SelectedWeight,
			Quantity:       item.Quantity,
		}
	}
	return rows, nil
}

func (s *Service) addToUserCart(userID uint, req *AddToCartRequest) error {
	var existingItem CartItem
	result := s.db.Where("user_id = ? AND product_id = ? AND selected_weight = ?",
		userID, req.ProductID, req.SelectedWeight).First(&existingItem)

	if result.Error == gorm.ErrRecordNotFound {
		newItem := CartItem{
			UserID:         userID,
			ProductID:      req.ProductID,
			SelectedWeight: req.SelectedWeight,
			Quantity:       req.Quantity,
		}
		return s.db.Create(&newItem).Error
	} else if result.Error != nil {
		return fmt.Errorf("failed to look up cart item: %w", result.Error)
	}

	existingItem.Quantity += req.Quantity
	return s.db.Save(&existingItem).Error
}

func (s *Service) addToGuestCart(ctx context.Context, sessionID string, req *AddToCartRequest) error {
	sessionCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil {
		return err
	}

	itemExists := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].ProductID == req.ProductID &&
			sessionCart.Items[i].SelectedWeight == req.SelectedWeight {
			sessionCart.Items[i].Quantity += req.Quantity
			itemExists = true
			break
		}
	}

	if !itemExists {
		sessionCart.Items = append(sessionCart.Items, SessionCartItem{
			ProductID:      req.ProductID,
			SelectedWeight: req.SelectedWeight,
			Quantity:       req.Quantity,
			AddedAt:        time.Now().UTC(),
		})
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveGuestCart(ctx, sessionID, sessionCart)
}

func (s *Service) updateUserCartItem(userID, productID uint, selectedWeight string, quantity int) error {
	if quantity == 0 {
		return s.db.Where("user_id = ? AND product_id = ? AND selected_weight = ?",
			userID, productID, selectedWeight).Delete(&CartItem{}).Error
	}
	return s.db.Model(&CartItem{}).
		Where("user_id = ? AND product_id = ? AND selected_weight = ?", userID, productID, selectedWeight).
		Update("quantity", quantity).Error
}

func (s *Service) updateGuestCartItem(ctx context.Context, sessionID string, productID uint, selectedWeight string, quantity int) error {
	sessionCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil {
		return err
	}

	itemFound := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].ProductID == productID &&
			sessionCart.Items[i].SelectedWeight == selectedWeight {
			if quantity == 0 {
				sessionCart.Items = append(sessionCart.Items[:i], sessionCart.Items[i+1:]...)
			} else {
				sessionCart.Items[i].Quantity = quantity
			}
			itemFound = true
			break
		}
	}

	if !itemFound {
		return fmt.Errorf("item not found in cart")
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveGuestCart(ctx, sessionID, sessionCart)
}

func (s *Service) getGuestCart(ctx context.Context, sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for guest cart")
	}

	cartData, err := s.redisClient.Get(ctx, guestCartKey(sessionID)).Result()
	if err == redis.Nil {
		// Cart doesn't exist, return empty cart
		return &SessionCart{
			SessionID: sessionID,
			Items:     []SessionCartItem{},
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}, nil
	} else if err != nil {
		return nil, err
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(cartData), &sessionCart); err != nil {
		return nil, err
	}

	return &sessionCart, nil
}

func (s *Service) saveGuestCart(ctx context.Context, sessionID string, sessionCart *SessionCart) error {
	cartData, err := json.Marshal(sessionCart)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, guestCartKey(sessionID), cartData, s.config.Checkout.GuestCartTTL).Err()
}

func guestCartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}
