// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/sameday-checkout/internal/config"
	"github.com/your-org/sameday-checkout/internal/domain/cart"
	"github.com/your-org/sameday-checkout/internal/domain/delivery"
	"github.com/your-org/sameday-checkout/internal/domain/discount"
	"github.com/your-org/sameday-checkout/internal/domain/order"
	"github.com/your-org/sameday-checkout/internal/domain/pricing"
	"github.com/your-org/sameday-checkout/internal/domain/user"
)

// CartSource supplies and clears the subject's cart
type CartSource interface {
	Aggregate(ctx context.Context, userID *uint, sessionID string) ([]cart.LineItem, error)
	ClearCart(ctx context.Context, userID *uint, sessionID string) error
}

// DiscountSource supplies welcome discounts and applied coupons and
// records their consumption after an order commits.
type DiscountSource interface {
	ActiveWelcomeDiscount(userID uint) (*discount.WelcomeDiscount, error)
	MarkWelcomeUsed(discountID, orderID uint) error
	StoredCoupon(ctx context.Context, subject string) *discount.CouponApplication
	RemoveCoupon(ctx context.Context, subject string) error
	RecordRedemption(couponID, userID, orderID uint, amount int64) error
}

// OrderCounter reports how many orders a user has placed
type OrderCounter interface {
	CountUserOrders(userID uint) (int64, error)
}

// UserSource resolves account contact data for member orders
type UserSource interface {
	GetUserByID(userID uint) (*user.User, error)
}

// Service orchestrates checkout: quoting the cart, gating submission,
// creating the order and running the post-commit bookkeeping.
type Service struct {
	carts      CartSource
	discounts  DiscountSource
	orders     OrderCounter
	users      UserSource
	creator    order.Creator
	identities IdentityStore
	locker     SubmitLocker
	scheduler  *delivery.Scheduler
	gate       *Gate
	config     *config.Config
	logger     *logrus.Logger
	now        func() time.Time
}

// NewService creates a new checkout service
func NewService(
	carts CartSource,
	discounts DiscountSource,
	orders OrderCounter,
	users UserSource,
	creator order.Creator,
	identities IdentityStore,
	locker SubmitLocker,
	scheduler *delivery.Scheduler,
	cfg *config.Config,
	logger *logrus.Logger,
) *Service {
	return &Service{
		carts:      carts,
		discounts:  discounts,
		orders:     orders,
		users:      users,
		creator:    creator,
		identities: identities,
		locker:     locker,
		scheduler:  scheduler,
		gate:       NewGate(scheduler),
		config:     cfg,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// BoroughFees advertises the delivery fee a borough carries before any
// free-delivery threshold kicks in.
type BoroughFees struct {
	ID        delivery.Borough `json:"id"`
	MemberFee int64            `json:"member_fee"`
	GuestFee  int64            `json:"guest_fee"`
}

// DeliveryOptions is what the checkout page needs to render borough,
// tier and schedule pickers.
type DeliveryOptions struct {
	Boroughs       []BoroughFees         `json:"boroughs"`
	Tiers          []delivery.TierOption `json:"tiers"`
	AvailableDates []string              `json:"available_dates"`
	TimeSlots      []string              `json:"time_slots"`
}

// GetDeliveryOptions returns the selectable boroughs, tiers, dates and
// time slots.
func (s *Service) GetDeliveryOptions() *DeliveryOptions {
	boroughs := []delivery.Borough{
		delivery.BoroughBrooklyn,
		delivery.BoroughQueens,
		delivery.BoroughManhattan,
	}

	fees := make([]BoroughFees, 0, len(boroughs))
	for _, b := range boroughs {
		fees = append(fees, BoroughFees{
			ID:        b,
			MemberFee: pricing.DeliveryFee(b, true, 0, s.config.Checkout.FreeDeliveryThreshold),
			GuestFee:  pricing.DeliveryFee(b, false, 0, s.config.Checkout.FreeDeliveryThreshold),
		})
	}

	return &DeliveryOptions{
		Boroughs:       fees,
		Tiers:          delivery.TierOptions(),
		AvailableDates: s.scheduler.AvailableDates(s.now()),
		TimeSlots:      delivery.TimeSlots,
	}
}

// Quote prices the subject's cart for the given destination and tier.
// Quoting never mutates anything; it is safe to call on every keystroke.
func (s *Service) Quote(ctx context.Context, sub Subject, borough delivery.Borough, tier delivery.Tier) (*QuoteResponse, error) {
	items, err := s.carts.Aggregate(ctx, sub.UserID, sub.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	inputs, _, _, err := s.pricingInputs(ctx, sub, items, borough, tier)
	if err != nil {
		return nil, err
	}

	quote := pricing.Compute(*inputs)
	return &QuoteResponse{Items: items, Quote: quote}, nil
}

// SaveGuestIdentity stores the guest contact fields for the session
func (s *Service) SaveGuestIdentity(ctx context.Context, sub Subject, identity GuestIdentity) error {
	if sub.IsMember() {
		return fmt.Errorf("guest identity applies to guest sessions only")
	}
	return s.identities.Save(ctx, sub.SessionID, identity)
}

// LoadGuestIdentity returns the stored guest contact fields, if any
func (s *Service) LoadGuestIdentity(ctx context.Context, sub Subject) (*GuestIdentity, error) {
	if sub.IsMember() {
		return nil, nil
	}
	return s.identities.Load(ctx, sub.SessionID)
}

// Submit runs the full submission pipeline: re-entrancy guard, ordered
// validation, pricing, order creation, then best-effort bookkeeping.
// The order is authoritative the moment the creator returns an ID.
func (s *Service) Submit(ctx context.Context, sub Subject, req *SubmitRequest) (*SubmitResult, error) {
	acquired, err := s.locker.Acquire(ctx, sub.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to guard submission: %w", err)
	}
	if !acquired {
		return nil, ErrSubmissionInFlight
	}
	defer func() {
		if err := s.locker.Release(ctx, sub.Key()); err != nil {
			s.logger.WithError(err).WithField("subject", sub.Key()).
				Warn("Failed to release submit lock")
		}
	}()

	now := s.now()

	if !req.Tier.Valid() {
		req.Tier = delivery.TierStandard
	}

	items, err := s.carts.Aggregate(ctx, sub.UserID, sub.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if verr := s.gate.Check(sub, req, items, now); verr != nil {
		return nil, verr
	}

	inputs, welcome, coupon, err := s.pricingInputs(ctx, sub, items, req.Address.Borough, req.Tier)
	if err != nil {
		return nil, err
	}
	quote := pricing.Compute(*inputs)

	var scheduledAt *time.Time
	if req.Tier.RequiresSchedule() {
		// Already validated by the gate; resolve again for the record.
		scheduledAt, err = s.scheduler.ResolveWindow(req.ScheduledDate, req.TimeSlot, now)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve delivery window: %w", err)
		}
	}

	o, err := s.buildOrder(sub, req, items, quote, scheduledAt, coupon)
	if err != nil {
		return nil, err
	}

	orderID, err := s.creator.Create(ctx, o)
	if err != nil {
		// Nothing was consumed: the welcome discount, the coupon and
		// the cart are all untouched, so the customer can retry as-is.
		return nil, &SubmissionError{Cause: err}
	}

	effects := s.runPostCommit(ctx, sub, orderID, welcome, coupon, quote)

	return &SubmitResult{
		Status:      StatusSucceeded,
		OrderID:     orderID,
		OrderNumber: o.OrderNumber,
		Quote:       quote,
		ScheduledAt: scheduledAt,
		PostCommit:  effects,
	}, nil
}

// pricingInputs assembles the pricing engine inputs plus the welcome
// discount and coupon records they were derived from.
func (s *Service) pricingInputs(
	ctx context.Context,
	sub Subject,
	items []cart.LineItem,
	borough delivery.Borough,
	tier delivery.Tier,
) (*pricing.Inputs, *discount.WelcomeDiscount, *discount.CouponApplication, error) {
	inputs := &pricing.Inputs{
		Items:                 items,
		Borough:               borough,
		Tier:                  tier,
		IsMember:              sub.IsMember(),
		FreeDeliveryThreshold: s.config.Checkout.FreeDeliveryThreshold,
	}

	var welcome *discount.WelcomeDiscount
	if sub.IsMember() {
		var err error
		welcome, err = s.discounts.ActiveWelcomeDiscount(*sub.UserID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to look up welcome discount: %w", err)
		}
		if welcome != nil {
			pct := welcome.Percentage
			inputs.WelcomePercentage = &pct
		}

		count, err := s.orders.CountUserOrders(*sub.UserID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to count prior orders: %w", err)
		}
		inputs.HasPriorOrders = count > 0
	}

	coupon := s.discounts.StoredCoupon(ctx, sub.Key())
	if coupon != nil && coupon.Applied {
		inputs.CouponDiscount = coupon.DiscountAmount
	} else {
		coupon = nil
	}

	return inputs, welcome, coupon, nil
}

func (s *Service) buildOrder(
	sub Subject,
	req *SubmitRequest,
	items []cart.LineItem,
	quote pricing.Quote,
	scheduledAt *time.Time,
	coupon *discount.CouponApplication,
) (*order.Order, error) {
	o := &order.Order{
		UserID:      sub.UserID,
		Status:      order.OrderStatusCreated,
		AddressText: req.Address.Text,
		Latitude:    req.Address.Latitude,
		Longitude:   req.Address.Longitude,
		Borough:     string(req.Address.Borough),

		DeliveryTier: string(req.Tier),
		ScheduledAt:  scheduledAt,
		Notes:        req.Notes,

		PaymentMethod: req.PaymentMethod,

		SubtotalAmount:       quote.Subtotal,
		DeliveryFeeAmount:    quote.DeliveryFee,
		DiscountKind:         string(quote.Discount.Kind),
		DiscountAmount:       quote.Discount.Amount,
		CouponDiscountAmount: quote.CouponDiscount,
		TotalAmount:          quote.Total,
	}

	if coupon != nil {
		o.CouponCode = coupon.CouponCode
	}

	if sub.IsMember() {
		u, err := s.users.GetUserByID(*sub.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve account: %w", err)
		}
		o.CustomerName = u.GetFullName()
		o.CustomerPhone = u.Phone
		o.CustomerEmail = u.Email
	} else {
		o.CustomerName = req.Guest.Name
		o.CustomerPhone = req.Guest.Phone
		o.CustomerEmail = req.Guest.Email
	}

	o.Items = make([]order.OrderItem, len(items))
	for i, item := range items {
		o.Items[i] = order.OrderItem{
			ProductID:      item.ProductID,
			Name:           item.Name,
			SelectedWeight: item.SelectedWeight,
			Quantity:       item.Quantity,
			Price:          item.UnitPrice,
			TotalPrice:     item.TotalPrice,
		}
	}

	return o, nil
}

// runPostCommit performs the bookkeeping that follows a committed
// order. Each effect is independent and best-effort: a failure is
// logged and reported, never rolled back, and never fails the order.
func (s *Service) runPostCommit(
	ctx context.Context,
	sub Subject,
	orderID uint,
	welcome *discount.WelcomeDiscount,
	coupon *discount.CouponApplication,
	quote pricing.Quote,
) []EffectResult {
	effects := make([]EffectResult, 0, 3)

	if quote.Discount.Kind == pricing.DiscountWelcome && welcome != nil {
		effects = append(effects, s.effect("mark_welcome_used", sub, orderID, func() error {
			return s.discounts.MarkWelcomeUsed(welcome.ID, orderID)
		}))
	}

	if coupon != nil {
		// Redemption rows belong to accounts; guest coupons just get
		// cleared so the session cannot reuse them.
		if sub.IsMember() {
			effects = append(effects, s.effect("record_coupon_redemption", sub, orderID, func() error {
				if err := s.discounts.RecordRedemption(coupon.CouponID, *sub.UserID, orderID, coupon.DiscountAmount); err != nil {
					return err
				}
				return s.discounts.RemoveCoupon(ctx, sub.Key())
			}))
		} else {
			effects = append(effects, s.effect("clear_applied_coupon", sub, orderID, func() error {
				return s.discounts.RemoveCoupon(ctx, sub.Key())
			}))
		}
	}

	effects = append(effects, s.effect("clear_cart", sub, orderID, func() error {
		return s.carts.ClearCart(ctx, sub.UserID, sub.SessionID)
	}))

	return effects
}

func (s *Service) effect(name string, sub Subject, orderID uint, fn func() error) EffectResult {
	if err := fn(); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"effect":   name,
			"subject":  sub.Key(),
			"order_id": orderID,
		}).Warn("Post-commit effect failed")
		return EffectResult{Name: name, OK: false, Error: err.Error()}
	}
	return EffectResult{Name: name, OK: true}
}
