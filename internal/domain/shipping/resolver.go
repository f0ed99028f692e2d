package shipping

import "strings"

// WholesaleThreshold is the cart quantity at and above which computed
// shipping is waived. Large orders get a manually negotiated quote out of
// band; the order is still accepted with a zero shipping charge.
const WholesaleThreshold = 500

// Resolve picks the per-unit rate for a destination from a zone list.
// An exact (country, city) match beats the country-level default
// (city unset); matching is case-insensitive on both keys. No match
// resolves to a zero rate with Resolved=false.
func Resolve(zones []*Zone, country, city string) Rate {
	country = strings.TrimSpace(country)
	city = strings.TrimSpace(city)

	var countryDefault *Zone
	for _, z := range zones {
		if !strings.EqualFold(z.Country, country) {
			continue
		}
		if z.City != nil {
			if city != "" && strings.EqualFold(*z.City, city) {
				return Rate{PriceCents: z.PriceCents, Resolved: true}
			}
			continue
		}
		if countryDefault == nil {
			countryDefault = z
		}
	}

	if countryDefault != nil {
		return Rate{PriceCents: countryDefault.PriceCents, Resolved: true}
	}
	return Rate{}
}

// Fee computes the shipping charge for a cart: per-unit rate times total
// quantity, scaling with quantity rather than a flat per-order charge.
// At the wholesale threshold the computed fee is forced to zero regardless
// of the resolved rate.
func Fee(rate Rate, totalQuantity int) Quote {
	q := Quote{Rate: rate, TotalQuantity: totalQuantity}
	if totalQuantity <= 0 {
		return q
	}
	if totalQuantity >= WholesaleThreshold {
		q.Wholesale = true
		return q
	}
	q.FeeCents = rate.PriceCents * int64(totalQuantity)
	return q
}
