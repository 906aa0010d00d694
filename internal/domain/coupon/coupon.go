// Package coupon holds the coupon value type and its discount math.
//
// Eligibility (minimum purchase, expiry, usage limits) is the remote coupon
// service's responsibility; a Coupon value only exists locally after the
// remote service has validated the code against the cart subtotal.
package coupon

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount to the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary discount capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
)

// Coupon is a remotely validated discount applied to the cart.
type Coupon struct {
	ID                string
	Code              string
	Type              DiscountType
	Value             decimal.Decimal
	Description       string
	MinPurchaseAmount decimal.Decimal
	ExpiresAt         *time.Time
}

// NormalizeCode canonicalizes a user-entered coupon code: trimmed and
// uppercased, matching how the remote service stores codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var hundred = decimal.NewFromInt(100)

// DiscountFor computes the discount amount the coupon grants on the given
// subtotal. The amount never exceeds the subtotal and never goes negative.
func (c Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch c.Type {
	case DiscountPercentage:
		amount = subtotal.Mul(c.Value).Div(hundred)
	case DiscountFixed:
		amount = decimal.Min(c.Value, subtotal)
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, subtotal).Round(2)
}
