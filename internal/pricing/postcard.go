package pricing

import "github.com/shopspring/decimal"

// PostcardFee computes the postcard add-on fee at order-creation time.
//
// An order with a custom uploaded image pays the site-wide custom image
// price, plus the chosen catalog postcard's price when one is used as the
// backing design. Without a custom image the fee is the catalog postcard's
// price alone, or zero when no postcard is attached.
//
// The returned fee is stored with the order; later edits to catalog or
// site-wide pricing never change an already-placed order's total.
func PostcardFee(withCustomImage bool, customImagePrice decimal.Decimal, catalogPrice *decimal.Decimal) decimal.Decimal {
	switch {
	case withCustomImage && catalogPrice != nil:
		return customImagePrice.Add(*catalogPrice)
	case withCustomImage:
		return customImagePrice
	case catalogPrice != nil:
		return *catalogPrice
	default:
		return decimal.Zero
	}
}
