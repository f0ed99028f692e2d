package shipping

import (
	"context"
	"time"
)

// Zone maps a destination to a per-unit shipping rate. Country is the
// lookup key; a row with a city is a more specific override of the
// country-level default (city NULL). Continent is display grouping only.
type Zone struct {
	ID         int64     `json:"id"`
	Country    string    `json:"country"`
	City       *string   `json:"city,omitempty"`
	Continent  *string   `json:"continent,omitempty"`
	PriceCents int64     `json:"price_cents"`
	Details    *string   `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Rate is a resolved per-unit shipping rate. Resolved is false when no
// zone matched the destination; the rate is then zero, which callers must
// surface rather than silently charge.
type Rate struct {
	PriceCents int64 `json:"price_cents"`
	Resolved   bool  `json:"resolved"`
}

// Quote is the computed shipping charge for a cart bound for one
// destination.
type Quote struct {
	Rate          Rate  `json:"rate"`
	TotalQuantity int   `json:"total_quantity"`
	FeeCents      int64 `json:"fee_cents"`
	Wholesale     bool  `json:"wholesale"`
}

type Store interface {
	Create(ctx context.Context, z *Zone) (*Zone, error)
	GetByID(ctx context.Context, id int64) (*Zone, error)
	List(ctx context.Context, limit, offset int) ([]*Zone, int, error)
	Update(ctx context.Context, z *Zone) error
	Delete(ctx context.Context, id int64) error

	// Lookup resolves the per-unit rate for a destination: exact
	// (country, city) first, then the country-level default.
	Lookup(ctx context.Context, country, city string) (Rate, error)
}
