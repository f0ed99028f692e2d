package catalog

import "fmt"

// Display is what the storefront shows and charges for a product before a
// variant is selected: a price (single value or range) and an availability
// flag.
type Display struct {
	MinPriceCents int64 `json:"min_price_cents"`
	MaxPriceCents int64 `json:"max_price_cents"`
	InStock       bool  `json:"in_stock"`
}

// Single reports whether the display price collapses to one value.
func (d Display) Single() bool { return d.MinPriceCents == d.MaxPriceCents }

// Label renders the display price in whole currency units, as a single
// value or a range.
func (d Display) Label(currency string) string {
	if d.Single() {
		return fmt.Sprintf("%s%d.%02d", currency, d.MinPriceCents/100, d.MinPriceCents%100)
	}
	return fmt.Sprintf("%s%d.%02d–%s%d.%02d",
		currency, d.MinPriceCents/100, d.MinPriceCents%100,
		currency, d.MaxPriceCents/100, d.MaxPriceCents%100)
}

// EffectiveUnitPriceCents applies a flat discount to a price. Discounts of
// zero or less leave the price untouched; the result never goes below zero.
func EffectiveUnitPriceCents(priceCents, discountCents int64) int64 {
	if discountCents <= 0 {
		return priceCents
	}
	if discountCents >= priceCents {
		return 0
	}
	return priceCents - discountCents
}

// Rollup derives the product-level display price and stock flag from its
// variant set.
//
// Without variants (or with has_variants set but an empty set, which falls
// back to the plain path) the product's own price and stock stand. With
// variants the display spans [min, max] of the variant prices and the
// product is in stock when ANY variant is. One sold-out size does not take
// the whole product off the shelf.
func Rollup(p *Product, variants []*Variant) Display {
	if !p.HasVariants || len(variants) == 0 {
		price := EffectiveUnitPriceCents(p.PriceCents, p.DiscountCents)
		return Display{MinPriceCents: price, MaxPriceCents: price, InStock: p.InStock}
	}

	d := Display{MinPriceCents: variants[0].PriceCents, MaxPriceCents: variants[0].PriceCents}
	for _, v := range variants {
		if v.PriceCents < d.MinPriceCents {
			d.MinPriceCents = v.PriceCents
		}
		if v.PriceCents > d.MaxPriceCents {
			d.MaxPriceCents = v.PriceCents
		}
		if v.InStock {
			d.InStock = true
		}
	}
	return d
}

// SelectedUnitPriceCents is the price locked into a cart line for a chosen
// variant: the variant's own price less its own flat discount.
func (v *Variant) SelectedUnitPriceCents() int64 {
	return EffectiveUnitPriceCents(v.PriceCents, v.DiscountCents)
}

// Purchasable reports whether an add-to-cart for this variant is allowed.
// The variant's own stock flag gates the line even when the product-level
// rollup says the product is in stock.
func (v *Variant) Purchasable() bool {
	return v.IsActive && v.InStock
}
