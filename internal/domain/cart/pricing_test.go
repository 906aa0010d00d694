package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xenking/scentcart/internal/domain/coupon"
)

func priceItems(prices ...int64) []Item {
	items := make([]Item, len(prices))
	for i, p := range prices {
		items[i] = Item{UnitPrice: decimal.NewFromInt(p)}
	}
	return items
}

func TestComputePricing(t *testing.T) {
	tests := []struct {
		name         string
		items        []Item
		applied      *coupon.Coupon
		wantSubtotal string
		wantDiscount string
		wantFinal    string
	}{
		{
			name:         "empty cart",
			wantSubtotal: "0",
			wantDiscount: "0",
			wantFinal:    "0",
		},
		{
			name:         "subtotal is the sum of unit prices",
			items:        priceItems(1000, 2500),
			wantSubtotal: "3500",
			wantDiscount: "0",
			wantFinal:    "3500",
		},
		{
			name:  "percentage discount",
			items: priceItems(20000),
			applied: &coupon.Coupon{
				Type:  coupon.DiscountPercentage,
				Value: decimal.NewFromInt(10),
			},
			wantSubtotal: "20000",
			wantDiscount: "2000",
			wantFinal:    "18000",
		},
		{
			name:  "fixed discount capped at subtotal",
			items: priceItems(3000),
			applied: &coupon.Coupon{
				Type:  coupon.DiscountFixed,
				Value: decimal.NewFromInt(5000),
			},
			wantSubtotal: "3000",
			wantDiscount: "3000",
			wantFinal:    "0",
		},
		{
			name:  "fixed discount below subtotal",
			items: priceItems(3000),
			applied: &coupon.Coupon{
				Type:  coupon.DiscountFixed,
				Value: decimal.NewFromInt(500),
			},
			wantSubtotal: "3000",
			wantDiscount: "500",
			wantFinal:    "2500",
		},
		{
			name:  "percentage discount rounds to cents",
			items: priceItems(999),
			applied: &coupon.Coupon{
				Type:  coupon.DiscountPercentage,
				Value: decimal.NewFromInt(15),
			},
			wantSubtotal: "999",
			wantDiscount: "149.85",
			wantFinal:    "849.15",
		},
		{
			name:  "unknown discount type grants nothing",
			items: priceItems(1000),
			applied: &coupon.Coupon{
				Type:  coupon.DiscountType("mystery"),
				Value: decimal.NewFromInt(10),
			},
			wantSubtotal: "1000",
			wantDiscount: "0",
			wantFinal:    "1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePricing(tt.items, tt.applied)
			assert.True(t, got.Subtotal.Equal(decimal.RequireFromString(tt.wantSubtotal)),
				"subtotal = %s, want %s", got.Subtotal, tt.wantSubtotal)
			assert.True(t, got.Discount.Equal(decimal.RequireFromString(tt.wantDiscount)),
				"discount = %s, want %s", got.Discount, tt.wantDiscount)
			assert.True(t, got.FinalPrice.Equal(decimal.RequireFromString(tt.wantFinal)),
				"final = %s, want %s", got.FinalPrice, tt.wantFinal)
		})
	}
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		Kind:        KindPersonalizedBox,
		DisplayName: "Personalized Box",
		UnitPrice:   decimal.NewFromInt(120),
		Composition: &Composition{
			Perfumes:    []PerfumeSummary{{ExternalID: "p1", Name: "Iris", Brand: "Maison"}},
			DecantSize:  5,
			DecantCount: 8,
		},
	}

	tests := []struct {
		name    string
		mutate  func(d *Draft)
		wantErr error
	}{
		{name: "valid draft", mutate: func(*Draft) {}},
		{
			name:    "missing composition",
			mutate:  func(d *Draft) { d.Composition = nil },
			wantErr: ErrEmptyComposition,
		},
		{
			name:    "empty perfume list",
			mutate:  func(d *Draft) { d.Composition = &Composition{DecantSize: 5, DecantCount: 8} },
			wantErr: ErrEmptyComposition,
		},
		{
			name:    "zero decant size",
			mutate:  func(d *Draft) { d.Composition.DecantSize = 0 },
			wantErr: ErrInvalidDecantSize,
		},
		{
			name:    "negative decant count",
			mutate:  func(d *Draft) { d.Composition.DecantCount = -1 },
			wantErr: ErrInvalidDecantCount,
		},
		{
			name:    "blank name",
			mutate:  func(d *Draft) { d.DisplayName = "  " },
			wantErr: ErrEmptyName,
		},
		{
			name:    "negative price",
			mutate:  func(d *Draft) { d.UnitPrice = decimal.NewFromInt(-1) },
			wantErr: ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			comp := *valid.Composition
			d.Composition = &comp
			tt.mutate(&d)

			err := d.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
