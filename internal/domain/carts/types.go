package carts

import (
	"context"
	"time"
)

type Cart struct {
	ID        int64      `json:"id"`
	Token     string     `json:"token"`
	Status    string     `json:"status"` // active, converted, abandoned
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Line is one purchase intent. The (ProductID, VariantID-or-nil) pair is
// the uniqueness key; UnitPriceCents is locked in at add time and never
// refreshed from the live catalog.
type Line struct {
	ProductID     int64   `json:"product_id"`
	VariantID     *int64  `json:"variant_id,omitempty"`
	Name          string  `json:"name"`
	VariantLabel  *string `json:"variant_label,omitempty"`
	ImageURL      *string `json:"image_url,omitempty"`
	CategoryLabel *string `json:"category_label,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity      int     `json:"quantity"`
}

func (l Line) LineTotalCents() int64 { return l.UnitPriceCents * int64(l.Quantity) }

type View struct {
	Cart          Cart   `json:"cart"`
	Items         []Line `json:"items"`
	SubtotalCents int64  `json:"subtotal_cents"`
	ItemCount     int    `json:"item_count"`
}

type Store interface {
	EnsureActive(ctx context.Context, token string) (int64, error)
	AddItem(ctx context.Context, token string, line Line) error
	UpdateItemQty(ctx context.Context, token string, productID int64, variantID *int64, qty int) error
	RemoveItem(ctx context.Context, token string, productID int64, variantID *int64) error
	Clear(ctx context.Context, token string) error
	GetView(ctx context.Context, token string) (*View, error)
	BumpTTL(ctx context.Context, token string) error
}
