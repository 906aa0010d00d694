package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
	assert.Equal(t, "FIFTYOFF", NormalizeCode("FiftyOff"))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestDiscountFor(t *testing.T) {
	tests := []struct {
		name     string
		coupon   Coupon
		subtotal int64
		want     string
	}{
		{
			name:     "ten percent",
			coupon:   Coupon{Type: DiscountPercentage, Value: decimal.NewFromInt(10)},
			subtotal: 20000,
			want:     "2000",
		},
		{
			name:     "hundred percent",
			coupon:   Coupon{Type: DiscountPercentage, Value: decimal.NewFromInt(100)},
			subtotal: 450,
			want:     "450",
		},
		{
			name:     "fixed below subtotal",
			coupon:   Coupon{Type: DiscountFixed, Value: decimal.NewFromInt(500)},
			subtotal: 3000,
			want:     "500",
		},
		{
			name:     "fixed capped at subtotal",
			coupon:   Coupon{Type: DiscountFixed, Value: decimal.NewFromInt(5000)},
			subtotal: 3000,
			want:     "3000",
		},
		{
			name:     "negative value clamps to zero",
			coupon:   Coupon{Type: DiscountPercentage, Value: decimal.NewFromInt(-10)},
			subtotal: 1000,
			want:     "0",
		},
		{
			name:     "unknown type grants nothing",
			coupon:   Coupon{Type: DiscountType("bogo"), Value: decimal.NewFromInt(10)},
			subtotal: 1000,
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.coupon.DiscountFor(decimal.NewFromInt(tt.subtotal))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"discount = %s, want %s", got, tt.want)
		})
	}
}
