// Package pricing implements the order cost-composition pipeline. All
// arithmetic uses decimal semantics; each derived quantity is rounded to
// currency precision as it is produced, so the persisted snapshot is
// bit-stable across recomputations.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineItem is a cart line as consumed from the checkout flow.
type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Snapshot holds the monetary breakdown computed once at order-creation
// time. It is persisted verbatim by the caller and must never be silently
// recomputed from live catalog or promo data.
type Snapshot struct {
	ItemsCost      decimal.Decimal
	DiscountAmount decimal.Decimal
	DeliveryCost   decimal.Decimal
	PostcardCost   decimal.Decimal
	Total          decimal.Decimal
}

// Compose calculates the order totals. Each stage rounds half-up to two
// decimal places: the items subtotal first, then the discount amount derived
// from it, then the final total.
//
// A discount percent above 100 drives the total negative. That is a
// configuration error, and it is deliberately surfaced instead of clamped:
// hiding it would change observable financial behaviour.
func Compose(items []LineItem, discountPercent int, deliveryFee, postcardFee decimal.Decimal) Snapshot {
	itemsCost := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemsCost = itemsCost.Add(line)
	}
	itemsCost = round2(itemsCost)

	discountAmount := decimal.Zero
	if discountPercent > 0 {
		pct := decimal.NewFromInt(int64(discountPercent))
		discountAmount = round2(itemsCost.Mul(pct).Div(hundred))
	}

	total := round2(itemsCost.Sub(discountAmount).Add(deliveryFee).Add(postcardFee))

	return Snapshot{
		ItemsCost:      itemsCost,
		DiscountAmount: discountAmount,
		DeliveryCost:   round2(deliveryFee),
		PostcardCost:   round2(postcardFee),
		Total:          total,
	}
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
