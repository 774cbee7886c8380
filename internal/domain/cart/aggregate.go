// internal/domain/cart/aggregate.go
package cart

import (
	"github.com/your-org/sameday-checkout/internal/domain/product"
)

// BuildLineItems turns cart rows into priced line items. Unit price
// resolution is delegated to the product (tiered price for the selected
// weight key, else flat price, else 0). Rows whose product is missing
// from the lookup are dropped silently so stale guest-cart references
// never break checkout.
func BuildLineItems(rows []ItemRef, products map[uint]*product.Product) []LineItem {
	items := make([]LineItem, 0, len(rows))

	for _, row := range rows {
		prod, ok := products[row.ProductID]
		if !ok {
			continue
		}

		unitPrice := prod.PriceFor(row.SelectedWeight)
		items = append(items, LineItem{
			ProductID:      row.ProductID,
			Name:           prod.Name,
			SelectedWeight: row.SelectedWeight,
			Quantity:       row.Quantity,
			UnitPrice:      unitPrice,
			TotalPrice:     unitPrice * int64(row.Quantity),
		})
	}

	return items
}

// SubTotal sums the line totals
func SubTotal(items []LineItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.TotalPrice
	}
	return subtotal
}
