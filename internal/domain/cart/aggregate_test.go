// internal/domain/cart/aggregate_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/sameday-checkout/internal/domain/product"
)

func testProducts() map[uint]*product.Product {
	return map[uint]*product.Product{
		1: {
			ID:   1,
			Name: "Coffee Beans",
			WeightPrices: product.WeightPriceMap{
				"250g": 1200,
				"1kg":  4000,
			},
		},
		2: {
			ID:        2,
			Name:      "Sparkling Water",
			FlatPrice: 300,
		},
		3: {
			ID:   3,
			Name: "Tote Bag",
			// No weight tiers and no flat price
		},
	}
}

func TestBuildLineItems_WeightTierPricing(t *testing.T) {
	rows := []ItemRef{
		{ProductID: 1, SelectedWeight: "1kg", Quantity: 2},
	}

	items := BuildLineItems(rows, testProducts())
	require.Len(t, items, 1)
	assert.Equal(t, int64(4000), items[0].UnitPrice)
	assert.Equal(t, int64(8000), items[0].TotalPrice)
	assert.Equal(t, "Coffee Beans", items[0].Name)
}

func TestBuildLineItems_FlatPriceFallback(t *testing.T) {
	rows := []ItemRef{
		{ProductID: 2, Quantity: 3},
	}

	items := BuildLineItems(rows, testProducts())
	require.Len(t, items, 1)
	assert.Equal(t, int64(300), items[0].UnitPrice)
	assert.Equal(t, int64(900), items[0].TotalPrice)
}

func TestBuildLineItems_UnknownWeightFallsBackToFlat(t *testing.T) {
	rows := []ItemRef{
		{ProductID: 2, SelectedWeight: "500g", Quantity: 1},
	}

	items := BuildLineItems(rows, testProducts())
	require.Len(t, items, 1)
	assert.Equal(t, int64(300), items[0].UnitPrice)
}

func TestBuildLineItems_NoPriceResolvesToZero(t *testing.T) {
	rows := []ItemRef{
		{ProductID: 3, Quantity: 2},
	}

	items := BuildLineItems(rows, testProducts())
	require.Len(t, items, 1)
	assert.Equal(t, int64(0), items[0].UnitPrice)
	assert.Equal(t, int64(0), items[0].TotalPrice)
}

func TestBuildLineItems_DropsUnresolvableProducts(t *testing.T) {
	rows := []ItemRef{
		{ProductID: 2, Quantity: 1},
		{ProductID: 99, Quantity: 5}, // no longer sold
	}

	items := BuildLineItems(rows, testProducts())
	require.Len(t, items, 1)
	assert.Equal(t, uint(2), items[0].ProductID)
}

func TestSubTotal(t *testing.T) {
	items := []LineItem{
		{TotalPrice: 8000},
		{TotalPrice: 900},
	}
	assert.Equal(t, int64(8900), SubTotal(items))
	assert.Equal(t, int64(0), SubTotal(nil))
}
