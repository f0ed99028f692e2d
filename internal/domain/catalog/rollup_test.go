package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveUnitPriceCents(t *testing.T) {
	assert.Equal(t, int64(5000), EffectiveUnitPriceCents(5000, 0))
	assert.Equal(t, int64(4500), EffectiveUnitPriceCents(5000, 500))
	assert.Equal(t, int64(5000), EffectiveUnitPriceCents(5000, -100))
	assert.Equal(t, int64(0), EffectiveUnitPriceCents(5000, 5000))
	assert.Equal(t, int64(0), EffectiveUnitPriceCents(5000, 9000))
}

func TestRollupWithoutVariants(t *testing.T) {
	p := &Product{PriceCents: 12000, DiscountCents: 2000, InStock: true}

	d := Rollup(p, nil)

	assert.Equal(t, int64(10000), d.MinPriceCents)
	assert.Equal(t, int64(10000), d.MaxPriceCents)
	assert.True(t, d.Single())
	assert.True(t, d.InStock)

	p.InStock = false
	assert.False(t, Rollup(p, nil).InStock)
}

func TestRollupHasVariantsButEmptySetFallsBack(t *testing.T) {
	p := &Product{HasVariants: true, PriceCents: 8000, DiscountCents: 0, InStock: true}

	d := Rollup(p, []*Variant{})

	assert.Equal(t, int64(8000), d.MinPriceCents)
	assert.Equal(t, int64(8000), d.MaxPriceCents)
	assert.True(t, d.InStock)
}

func TestRollupPriceRangeAndStockOr(t *testing.T) {
	// 100ml in stock at 80, 50ml sold out at 50.
	p := &Product{HasVariants: true}
	variants := []*Variant{
		{Name: "100ml", PriceCents: 8000, InStock: true},
		{Name: "50ml", PriceCents: 5000, InStock: false},
	}

	d := Rollup(p, variants)

	assert.Equal(t, int64(5000), d.MinPriceCents)
	assert.Equal(t, int64(8000), d.MaxPriceCents)
	assert.False(t, d.Single())
	assert.Equal(t, "$50.00–$80.00", d.Label("$"))
	// Product stays available because one size still is.
	assert.True(t, d.InStock)

	// The sold-out size still cannot be added to a cart.
	assert.False(t, variants[1].Purchasable())
	assert.True(t, (&Variant{InStock: true, IsActive: true}).Purchasable())
	assert.False(t, (&Variant{InStock: true, IsActive: false}).Purchasable())
}

func TestRollupAllVariantsOutOfStock(t *testing.T) {
	p := &Product{HasVariants: true, InStock: true}
	variants := []*Variant{
		{PriceCents: 3000, InStock: false},
		{PriceCents: 3000, InStock: false},
	}

	d := Rollup(p, variants)

	assert.False(t, d.InStock)
	assert.True(t, d.Single())
	assert.Equal(t, "$30.00", d.Label("$"))
}

func TestSelectedUnitPriceUsesVariantDiscount(t *testing.T) {
	v := &Variant{PriceCents: 8000, DiscountCents: 1500}
	assert.Equal(t, int64(6500), v.SelectedUnitPriceCents())

	v = &Variant{PriceCents: 8000}
	assert.Equal(t, int64(8000), v.SelectedUnitPriceCents())
}

func TestLocalizedTextOr(t *testing.T) {
	ar := "عطر الورد"
	assert.Equal(t, "Rose Attar", LocalizedText{Primary: "Rose Attar"}.Or())
	assert.Equal(t, ar, LocalizedText{Primary: "Rose Attar", Secondary: &ar}.Or())

	empty := ""
	assert.Equal(t, "Rose Attar", LocalizedText{Primary: "Rose Attar", Secondary: &empty}.Or())
}
