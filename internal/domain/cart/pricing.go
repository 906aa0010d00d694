package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/scentcart/internal/domain/coupon"
)

// Pricing holds the three derived monetary quantities for a cart.
type Pricing struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	FinalPrice decimal.Decimal
}

// ComputePricing derives subtotal, discount, and final price from the items
// and the applied coupon. It is a pure function: recomputing from the same
// inputs always yields the same result, and the discount never pushes the
// final price below zero.
func ComputePricing(items []Item, applied *coupon.Coupon) Pricing {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice)
	}
	subtotal = subtotal.Round(2)

	discount := decimal.Zero
	if applied != nil {
		discount = applied.DiscountFor(subtotal)
	}

	final := subtotal.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Pricing{
		Subtotal:   subtotal,
		Discount:   discount,
		FinalPrice: final.Round(2),
	}
}
