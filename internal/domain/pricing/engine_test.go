// internal/domain/pricing/engine_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/sameday-checkout/internal/domain/cart"
	"github.com/your-org/sameday-checkout/internal/domain/delivery"
)

func lineItems(subtotal int64) []cart.LineItem {
	return []cart.LineItem{
		{
			ProductID:  1,
			Name:       "Test Product",
			Quantity:   1,
			UnitPrice:  subtotal,
			TotalPrice: subtotal,
		},
	}
}

func TestDeliveryFee(t *testing.T) {
	tests := []struct {
		name     string
		borough  delivery.Borough
		isMember bool
		subtotal int64
		expected int64
	}{
		{"brooklyn member", delivery.BoroughBrooklyn, true, 4000, 500},
		{"brooklyn guest", delivery.BoroughBrooklyn, false, 4000, 550},
		{"queens member", delivery.BoroughQueens, true, 4000, 500},
		{"queens guest", delivery.BoroughQueens, false, 4000, 550},
		{"manhattan member includes surcharge", delivery.BoroughManhattan, true, 4000, 1000},
		{"manhattan guest includes surcharge", delivery.BoroughManhattan, false, 4000, 1100},
		{"no borough selected", delivery.BoroughNone, false, 4000, 0},
		{"free delivery at threshold", delivery.BoroughManhattan, false, 10000, 0},
		{"free delivery above threshold", delivery.BoroughBrooklyn, true, 15000, 0},
		{"just below threshold still charged", delivery.BoroughQueens, false, 9999, 550},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee := DeliveryFee(tt.borough, tt.isMember, tt.subtotal, DefaultFreeDeliveryThreshold)
			assert.Equal(t, tt.expected, fee)
		})
	}
}

func TestCompute_GuestStandardBrooklyn(t *testing.T) {
	quote := Compute(Inputs{
		Items:   lineItems(4000),
		Borough: delivery.BoroughBrooklyn,
		Tier:    delivery.TierStandard,
	})

	assert.Equal(t, int64(4000), quote.Subtotal)
	assert.Equal(t, int64(550), quote.DeliveryFee)
	assert.Equal(t, DiscountNone, quote.Discount.Kind)
	assert.Equal(t, int64(0), quote.Discount.Amount)
	assert.Equal(t, int64(4550), quote.Total)
	assert.Equal(t, quote.Total, quote.GuestTotal)
	assert.Equal(t, int64(0), quote.Savings())
}

func TestCompute_FreeDeliveryOverridesBoroughFee(t *testing.T) {
	quote := Compute(Inputs{
		Items:          lineItems(12000),
		Borough:        delivery.BoroughManhattan,
		Tier:           delivery.TierExpress,
		IsMember:       true,
		HasPriorOrders: true,
	})

	assert.Equal(t, int64(0), quote.DeliveryFee)
	assert.Equal(t, DiscountNone, quote.Discount.Kind)
	assert.Equal(t, int64(12000), quote.Total)
}

func TestCompute_WelcomeDiscount(t *testing.T) {
	pct := 10.0
	quote := Compute(Inputs{
		Items:             lineItems(8000),
		Borough:           delivery.BoroughQueens,
		Tier:              delivery.TierStandard,
		IsMember:          true,
		WelcomePercentage: &pct,
		HasPriorOrders:    false,
	})

	assert.Equal(t, int64(500), quote.DeliveryFee)
	assert.Equal(t, DiscountWelcome, quote.Discount.Kind)
	assert.Equal(t, int64(800), quote.Discount.Amount)
	assert.Equal(t, int64(7700), quote.Total)
}

func TestCompute_WelcomeBeatsFirstOrder(t *testing.T) {
	// A first-time buyer with an unused welcome discount gets exactly
	// one discount, and it is the welcome one.
	pct := 15.0
	quote := Compute(Inputs{
		Items:             lineItems(8000),
		Borough:           delivery.BoroughQueens,
		Tier:              delivery.TierStandard,
		IsMember:          true,
		WelcomePercentage: &pct,
		HasPriorOrders:    false,
	})

	assert.Equal(t, DiscountWelcome, quote.Discount.Kind)
	assert.Equal(t, 15.0, quote.Discount.Percentage)
	assert.Equal(t, int64(1200), quote.Discount.Amount)
}

func TestCompute_FirstOrderDiscount(t *testing.T) {
	quote := Compute(Inputs{
		Items:          lineItems(8000),
		Borough:        delivery.BoroughQueens,
		Tier:           delivery.TierStandard,
		IsMember:       true,
		HasPriorOrders: false,
	})

	assert.Equal(t, DiscountFirstOrder, quote.Discount.Kind)
	assert.Equal(t, 10.0, quote.Discount.Percentage)
	assert.Equal(t, int64(800), quote.Discount.Amount)
	assert.Equal(t, int64(7700), quote.Total)
}

func TestCompute_NoFirstOrderAfterPriorOrders(t *testing.T) {
	quote := Compute(Inputs{
		Items:          lineItems(8000),
		Borough:        delivery.BoroughQueens,
		Tier:           delivery.TierStandard,
		IsMember:       true,
		HasPriorOrders: true,
	})

	assert.Equal(t, DiscountNone, quote.Discount.Kind)
	assert.Equal(t, int64(8500), quote.Total)
}

func TestCompute_NoMembershipDiscountForGuests(t *testing.T) {
	quote := Compute(Inputs{
		Items:   lineItems(8000),
		Borough: delivery.BoroughBrooklyn,
		Tier:    delivery.TierStandard,
	})

	assert.Equal(t, DiscountNone, quote.Discount.Kind)
}

func TestCompute_CouponStacksOnMembershipDiscount(t *testing.T) {
	pct := 10.0
	quote := Compute(Inputs{
		Items:             lineItems(8000),
		Borough:           delivery.BoroughQueens,
		Tier:              delivery.TierStandard,
		IsMember:          true,
		WelcomePercentage: &pct,
		CouponDiscount:    300,
	})

	// 8000 + 500 - 800 - 300
	assert.Equal(t, int64(7400), quote.Total)
	assert.Equal(t, int64(300), quote.CouponDiscount)
	assert.Equal(t, DiscountWelcome, quote.Discount.Kind)
}

func TestCompute_TotalFormulaHoldsExactly(t *testing.T) {
	pct := 10.0
	inputs := Inputs{
		Items:             lineItems(5000),
		Borough:           delivery.BoroughManhattan,
		Tier:              delivery.TierEconomy,
		IsMember:          true,
		WelcomePercentage: &pct,
		CouponDiscount:    700,
	}
	quote := Compute(inputs)

	assert.Equal(t, quote.Subtotal+quote.DeliveryFee-quote.Discount.Amount-quote.CouponDiscount, quote.Total)
}

func TestCompute_TierNeverChangesFee(t *testing.T) {
	for _, tier := range []delivery.Tier{delivery.TierExpress, delivery.TierStandard, delivery.TierEconomy} {
		quote := Compute(Inputs{
			Items:    lineItems(4000),
			Borough:  delivery.BoroughManhattan,
			Tier:     tier,
			IsMember: true,
		})
		assert.Equal(t, int64(1000), quote.DeliveryFee, "tier %s", tier)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	pct := 10.0
	inputs := Inputs{
		Items:             lineItems(8000),
		Borough:           delivery.BoroughQueens,
		Tier:              delivery.TierStandard,
		IsMember:          true,
		WelcomePercentage: &pct,
		CouponDiscount:    250,
	}

	first := Compute(inputs)
	second := Compute(inputs)
	assert.Equal(t, first, second)
}

func TestCompute_GuestTotalAndSavings(t *testing.T) {
	quote := Compute(Inputs{
		Items:          lineItems(4000),
		Borough:        delivery.BoroughBrooklyn,
		Tier:           delivery.TierStandard,
		IsMember:       true,
		HasPriorOrders: true,
	})

	assert.Equal(t, int64(4500), quote.Total)
	assert.Equal(t, int64(4550), quote.GuestTotal)
	assert.Equal(t, int64(50), quote.Savings())
}

func TestCompute_EmptyCart(t *testing.T) {
	quote := Compute(Inputs{
		Items:   nil,
		Borough: delivery.BoroughBrooklyn,
		Tier:    delivery.TierStandard,
	})

	assert.Equal(t, int64(0), quote.Subtotal)
	assert.Equal(t, int64(550), quote.DeliveryFee)
	assert.Equal(t, int64(550), quote.Total)
}
