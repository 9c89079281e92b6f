// Package pricing holds the downsell price math. All amounts are integer
// cents; nothing here touches the database.
package pricing

import (
	"fmt"

	"retention-flow-be/pkg/abtest"
)

// DefaultDownsellDiscount is the fixed discount offered to variant B users,
// in cents ($10.00).
const DefaultDownsellDiscount = 1000

// DownsellPrice returns the price offered on the retention screen.
// Variant A gets no discount; variant B gets the default $10 off, floored
// at zero.
func DownsellPrice(basePriceCents int, variant abtest.Variant) int {
	return DownsellPriceWithDiscount(basePriceCents, variant, DefaultDownsellDiscount)
}

// DownsellPriceWithDiscount is DownsellPrice with a configurable discount.
func DownsellPriceWithDiscount(basePriceCents int, variant abtest.Variant, discountCents int) int {
	if variant != abtest.VariantB {
		return basePriceCents
	}
	return DiscountedPrice(basePriceCents, discountCents)
}

// DiscountedPrice applies the discount regardless of variant, floored at
// zero. The charge on acceptance uses this: whoever reaches the offer and
// accepts pays the discounted price.
func DiscountedPrice(basePriceCents int, discountCents int) int {
	price := basePriceCents - discountCents
	if price < 0 {
		return 0
	}
	return price
}

// FormatPrice renders cents as a display string, e.g. 2999 -> "$29.99".
func FormatPrice(cents int) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
