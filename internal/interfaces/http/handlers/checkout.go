// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/sameday-checkout/internal/config"
	"github.com/your-org/sameday-checkout/internal/domain/cart"
	"github.com/your-org/sameday-checkout/internal/domain/checkout"
	"github.com/your-org/sameday-checkout/internal/domain/delivery"
	"github.com/your-org/sameday-checkout/internal/domain/discount"
	"github.com/your-org/sameday-checkout/internal/domain/order"
	"github.com/your-org/sameday-checkout/internal/domain/user"
	"gorm.io/gorm"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	cartService     *cart.Service
	discountService *discount.Service
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler with its full
// collaborator graph.
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) *CheckoutHandler {
	location, err := time.LoadLocation(cfg.Checkout.TimeZone)
	if err != nil {
		location = time.UTC
	}

	cartService := cart.NewService(db, redisClient, cfg)
	discountService := discount.NewService(db, redisClient, cfg)
	orderService := order.NewService(db, cfg)
	userService := user.NewService(db, cfg, discountService)
	scheduler := delivery.NewScheduler(cfg.Checkout.ScheduleHorizonDays, location)

	checkoutService := checkout.NewService(
		cartService,
		discountService,
		orderService,
		userService,
		order.NewCreator(db),
		checkout.NewRedisIdentityStore(redisClient, cfg.Checkout.GuestCartTTL),
		checkout.NewRedisSubmitLocker(redisClient, cfg.Checkout.SubmitLockTTL),
		scheduler,
		cfg,
		logger,
	)

	return &CheckoutHandler{
		checkoutService: checkoutService,
		cartService:     cartService,
		discountService: discountService,
		config:          cfg,
	}
}

// GetDeliveryOptions handles GET /checkout/delivery-options
func (h *CheckoutHandler) GetDeliveryOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery options retrieved successfully",
		"data":    h.checkoutService.GetDeliveryOptions(),
	})
}

// GetQuote handles GET /checkout/quote
func (h *CheckoutHandler) GetQuote(c *gin.Context) {
	sub := subjectFromContext(c)

	borough := delivery.Borough(c.Query("borough"))
	tier := delivery.Tier(c.DefaultQuery("tier", string(delivery.TierStandard)))
	if !tier.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown delivery tier",
		})
		return
	}

	quote, err := h.checkoutService.Quote(c.Request.Context(), sub, borough, tier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to price cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quote calculated successfully",
		"data":    quote,
	})
}

// GetGuestIdentity handles GET /checkout/guest-identity
func (h *CheckoutHandler) GetGuestIdentity(c *gin.Context) {
	sub := subjectFromContext(c)

	identity, err := h.checkoutService.LoadGuestIdentity(c.Request.Context(), sub)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load guest details",
		})
		return
	}
	if identity == nil {
		identity = &checkout.GuestIdentity{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Guest details retrieved successfully",
		"data":    identity,
	})
}

// SaveGuestIdentity handles PUT /checkout/guest-identity
func (h *CheckoutHandler) SaveGuestIdentity(c *gin.Context) {
	sub := subjectFromContext(c)

	var identity checkout.GuestIdentity
	if err := c.ShouldBindJSON(&identity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.checkoutService.SaveGuestIdentity(c.Request.Context(), sub, identity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Guest details saved successfully",
		"data":    identity,
	})
}

// ApplyCoupon handles POST /checkout/apply-coupon
func (h *CheckoutHandler) ApplyCoupon(c *gin.Context) {
	sub := subjectFromContext(c)

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	items, err := h.cartService.Aggregate(c.Request.Context(), sub.UserID, sub.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load cart",
		})
		return
	}

	application, err := h.discountService.ApplyCoupon(c.Request.Context(), sub.Key(), req.Code, cart.SubTotal(items))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to apply coupon",
		})
		return
	}

	status := http.StatusOK
	if !application.Applied {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{
		"message": application.Message,
		"data":    application,
	})
}

// RemoveCoupon handles POST /checkout/remove-coupon
func (h *CheckoutHandler) RemoveCoupon(c *gin.Context) {
	sub := subjectFromContext(c)

	if err := h.discountService.RemoveCoupon(c.Request.Context(), sub.Key()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove coupon",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon removed successfully",
	})
}

// Submit handles POST /checkout/submit
func (h *CheckoutHandler) Submit(c *gin.Context) {
	sub := subjectFromContext(c)

	var req checkout.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.checkoutService.Submit(c.Request.Context(), sub, &req)
	if err != nil {
		h.renderSubmitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}

func (h *CheckoutHandler) renderSubmitError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": verr.Message,
			"code":  verr.Code,
			"field": verr.Field,
		})
		return
	}

	if errors.Is(err, checkout.ErrSubmissionInFlight) {
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
		return
	}

	var serr *checkout.SubmissionError
	if errors.As(err, &serr) {
		// The creation service's message goes back to the customer
		// unchanged; the attempt can be retried as-is.
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     serr.Error(),
			"retryable": true,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to submit order",
	})
}
