// internal/domain/pricing/engine.go
package pricing

import (
	"github.com/your-org/sameday-checkout/internal/domain/cart"
	"github.com/your-org/sameday-checkout/internal/domain/delivery"
)

// Delivery fee table in cents, keyed by borough and membership. The
// Manhattan fees include the city surcharge (5.00 member / 5.50 guest).
const (
	feeOuterBoroughMember = 500  // brooklyn, queens
	feeOuterBoroughGuest  = 550  // brooklyn, queens
	feeManhattanMember    = 1000 // incl. 500 surcharge
	feeManhattanGuest     = 1100 // incl. 550 surcharge

	// First-order discount percentage for authenticated users with no
	// prior orders.
	firstOrderPercentage = 10.0

	// DefaultFreeDeliveryThreshold is the subtotal at or above which
	// delivery is free regardless of tier or borough.
	DefaultFreeDeliveryThreshold = 10000
)

// DiscountKind tags the active membership discount
type DiscountKind string

const (
	DiscountNone       DiscountKind = "none"
	DiscountWelcome    DiscountKind = "welcome"
	DiscountFirstOrder DiscountKind = "first_order"
)

// ActiveDiscount is the single membership discount applied to a quote.
// Welcome and first-order discounts are mutually exclusive, so exactly
// one kind (or none) is ever active; the coupon discount is tracked
// separately because it stacks on top.
type ActiveDiscount struct {
	Kind       DiscountKind `json:"kind"`
	Percentage float64      `json:"percentage,omitempty"`
	Amount     int64        `json:"amount"` // In cents
}

// Inputs carries everything the pricing engine needs. The engine is a
// pure function of this struct: same inputs, same quote.
type Inputs struct {
	Items    []cart.LineItem
	Borough  delivery.Borough
	Tier     delivery.Tier
	IsMember bool

	// Active, unused, unexpired welcome discount percentage for the
	// authenticated user; nil when none exists.
	WelcomePercentage *float64

	// Whether the authenticated user has completed orders before.
	HasPriorOrders bool

	// Pre-validated coupon discount amount in cents (0 when no coupon
	// is applied).
	CouponDiscount int64

	// Subtotal at or above which delivery is free; falls back to
	// DefaultFreeDeliveryThreshold when 0.
	FreeDeliveryThreshold int64
}

// Quote is the priced order
type Quote struct {
	Subtotal       int64          `json:"subtotal"`
	DeliveryFee    int64          `json:"delivery_fee"`
	Discount       ActiveDiscount `json:"discount"`
	CouponDiscount int64          `json:"coupon_discount"`
	Total          int64          `json:"total"`

	// GuestTotal is what the same cart would cost without membership:
	// guest delivery fee, no membership discount. Display only.
	GuestTotal int64 `json:"guest_total"`
}

// Savings is the member advantage over guest pricing
func (q Quote) Savings() int64 {
	return q.GuestTotal - q.Total
}

// Compute prices the cart. The caller (ValidationGate) is responsible
// for rejecting malformed inputs such as negative quantities or unknown
// boroughs before submission; Compute itself never fails.
func Compute(in Inputs) Quote {
	subtotal := cart.SubTotal(in.Items)

	threshold := in.FreeDeliveryThreshold
	if threshold == 0 {
		threshold = DefaultFreeDeliveryThreshold
	}

	fee := DeliveryFee(in.Borough, in.IsMember, subtotal, threshold)

	discount := activeDiscount(subtotal, in)

	total := subtotal + fee - discount.Amount - in.CouponDiscount

	guestFee := DeliveryFee(in.Borough, false, subtotal, threshold)
	guestTotal := subtotal + guestFee - in.CouponDiscount

	return Quote{
		Subtotal:       subtotal,
		DeliveryFee:    fee,
		Discount:       discount,
		CouponDiscount: in.CouponDiscount,
		Total:          total,
		GuestTotal:     guestTotal,
	}
}

// DeliveryFee returns the committed delivery fee in cents. The fee keys
// on borough and membership only; tier never changes it, and any
// subtotal at or above the threshold ships free.
func DeliveryFee(borough delivery.Borough, isMember bool, subtotal, threshold int64) int64 {
	if subtotal >= threshold {
		return 0
	}

	switch borough {
	case delivery.BoroughBrooklyn, delivery.BoroughQueens:
		if isMember {
			return feeOuterBoroughMember
		}
		return feeOuterBoroughGuest
	case delivery.BoroughManhattan:
		if isMember {
			return feeManhattanMember
		}
		return feeManhattanGuest
	default:
		return 0
	}
}

// activeDiscount picks the single membership discount. A welcome
// discount always wins; the first-order discount is considered only
// when no welcome discount is active.
func activeDiscount(subtotal int64, in Inputs) ActiveDiscount {
	if !in.IsMember {
		return ActiveDiscount{Kind: DiscountNone}
	}

	if in.WelcomePercentage != nil {
		pct := *in.WelcomePercentage
		return ActiveDiscount{
			Kind:       DiscountWelcome,
			Percentage: pct,
			Amount:     percentOf(subtotal, pct),
		}
	}

	if !in.HasPriorOrders {
		return ActiveDiscount{
			Kind:       DiscountFirstOrder,
			Percentage: firstOrderPercentage,
			Amount:     percentOf(subtotal, firstOrderPercentage),
		}
	}

	return ActiveDiscount{Kind: DiscountNone}
}

func percentOf(amount int64, pct float64) int64 {
	return int64(float64(amount) * pct / 100)
}
