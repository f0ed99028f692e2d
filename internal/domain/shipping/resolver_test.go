package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func zones() []*Zone {
	return []*Zone{
		{ID: 1, Country: "Saudi Arabia", City: nil, PriceCents: 1500},
		{ID: 2, Country: "Saudi Arabia", City: strptr("Riyadh"), PriceCents: 1000},
		{ID: 3, Country: "Kuwait", City: nil, PriceCents: 2000},
	}
}

func TestResolveCityOverrideBeatsCountryDefault(t *testing.T) {
	r := Resolve(zones(), "Saudi Arabia", "Riyadh")
	assert.True(t, r.Resolved)
	assert.Equal(t, int64(1000), r.PriceCents)
}

func TestResolveCityMatchIsCaseInsensitive(t *testing.T) {
	r := Resolve(zones(), "saudi arabia", "RIYADH")
	assert.True(t, r.Resolved)
	assert.Equal(t, int64(1000), r.PriceCents)
}

func TestResolveFallsBackToCountryDefault(t *testing.T) {
	r := Resolve(zones(), "Saudi Arabia", "Jeddah")
	assert.True(t, r.Resolved)
	assert.Equal(t, int64(1500), r.PriceCents)

	r = Resolve(zones(), "Saudi Arabia", "")
	assert.True(t, r.Resolved)
	assert.Equal(t, int64(1500), r.PriceCents)
}

// Unmapped destinations resolve to a zero charge. The caller must surface
// Resolved=false instead of treating this as free shipping.
func TestResolveUnmappedDestination(t *testing.T) {
	r := Resolve(zones(), "France", "Paris")
	assert.False(t, r.Resolved)
	assert.Equal(t, int64(0), r.PriceCents)

	q := Fee(r, 3)
	assert.Equal(t, int64(0), q.FeeCents)
	assert.False(t, q.Rate.Resolved)
}

func TestFeeScalesWithQuantity(t *testing.T) {
	rate := Rate{PriceCents: 1000, Resolved: true}

	// cart of 2 units at 50 apiece with a 10/unit rate: shipping 20.
	q := Fee(rate, 2)
	assert.Equal(t, int64(2000), q.FeeCents)
	assert.False(t, q.Wholesale)

	// Monotonic non-decreasing in quantity below the threshold.
	prev := int64(-1)
	for n := 1; n < WholesaleThreshold; n += 7 {
		fee := Fee(rate, n).FeeCents
		assert.GreaterOrEqual(t, fee, prev)
		assert.Equal(t, rate.PriceCents*int64(n), fee)
		prev = fee
	}
}

func TestFeeWholesaleOverride(t *testing.T) {
	rate := Rate{PriceCents: 1000, Resolved: true}

	// 500 units would be 5000 units of charge; forced to zero instead.
	q := Fee(rate, WholesaleThreshold)
	assert.True(t, q.Wholesale)
	assert.Equal(t, int64(0), q.FeeCents)

	q = Fee(rate, WholesaleThreshold+250)
	assert.True(t, q.Wholesale)
	assert.Equal(t, int64(0), q.FeeCents)

	// One below the threshold still pays the computed fee.
	q = Fee(rate, WholesaleThreshold-1)
	assert.False(t, q.Wholesale)
	assert.Equal(t, rate.PriceCents*int64(WholesaleThreshold-1), q.FeeCents)
}

func TestFeeZeroQuantity(t *testing.T) {
	q := Fee(Rate{PriceCents: 1000, Resolved: true}, 0)
	assert.Equal(t, int64(0), q.FeeCents)
	assert.False(t, q.Wholesale)
}
