package carts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func i64(v int64) *int64 { return &v }

func TestAddItemMergesOnSameKey(t *testing.T) {
	var a Aggregate

	a.AddItem(Line{ProductID: 1, VariantID: i64(10), UnitPriceCents: 5000, Quantity: 1})
	a.AddItem(Line{ProductID: 1, VariantID: i64(10), UnitPriceCents: 5000, Quantity: 1})

	lines := a.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 2, a.ItemCount())
}

func TestAddItemKeepsLockedInPrice(t *testing.T) {
	var a Aggregate

	a.AddItem(Line{ProductID: 1, UnitPriceCents: 5000, Quantity: 1})
	// Catalog price moved; the merge must not reprice the line.
	a.AddItem(Line{ProductID: 1, UnitPriceCents: 9999, Quantity: 2})

	lines := a.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, int64(5000), lines[0].UnitPriceCents)
	assert.Equal(t, int64(15000), a.TotalPriceCents())
}

func TestVariantsAreDistinctLines(t *testing.T) {
	var a Aggregate

	a.AddItem(Line{ProductID: 1, VariantID: i64(10), UnitPriceCents: 8000, Quantity: 1})
	a.AddItem(Line{ProductID: 1, VariantID: i64(11), UnitPriceCents: 5000, Quantity: 1})
	a.AddItem(Line{ProductID: 1, VariantID: nil, UnitPriceCents: 6000, Quantity: 1})

	assert.Equal(t, 3, a.LineCount())
	assert.Equal(t, int64(19000), a.TotalPriceCents())
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	var a Aggregate

	a.AddItem(Line{ProductID: 1, UnitPriceCents: 5000, Quantity: 3})
	a.UpdateQuantity(1, nil, 0)

	assert.Equal(t, 0, a.LineCount())
	assert.Equal(t, 0, a.ItemCount())
	assert.Equal(t, int64(0), a.TotalPriceCents())
}

func TestUpdateQuantityClampsNegative(t *testing.T) {
	var a Aggregate

	a.AddItem(Line{ProductID: 1, UnitPriceCents: 5000, Quantity: 3})
	a.UpdateQuantity(1, nil, -5)

	assert.Equal(t, 0, a.LineCount())
}

func TestRemoveItemMatchesVariantKey(t *testing.T) {
	var a Aggregate

	a.AddItem(Line{ProductID: 1, VariantID: i64(10), Quantity: 1})
	a.AddItem(Line{ProductID: 1, VariantID: i64(11), Quantity: 1})

	a.RemoveItem(1, i64(10))

	lines := a.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, int64(11), *lines[0].VariantID)
}

func TestAddItemDefaultsToOneUnit(t *testing.T) {
	var a Aggregate

	a.AddItem(Line{ProductID: 1, UnitPriceCents: 5000})

	assert.Equal(t, 1, a.ItemCount())
}

func TestClear(t *testing.T) {
	var a Aggregate

	a.AddItem(Line{ProductID: 1, Quantity: 2})
	a.AddItem(Line{ProductID: 2, Quantity: 1})
	a.Clear()

	assert.Equal(t, 0, a.LineCount())
	assert.True(t, a.Hydrated())
}

func TestHydrationIsDistinctFromEmpty(t *testing.T) {
	var a Aggregate

	// Zero value: storage has not loaded yet. Not the same as empty.
	assert.False(t, a.Hydrated())
	assert.Equal(t, 0, a.LineCount())

	a.Hydrate(nil)
	assert.True(t, a.Hydrated())
	assert.Equal(t, 0, a.LineCount())

	a.Hydrate([]Line{{ProductID: 7, UnitPriceCents: 4000, Quantity: 2}})
	assert.Equal(t, int64(8000), a.TotalPriceCents())
}
