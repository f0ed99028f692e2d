package orders

import (
	"context"
	"time"
)

type Order struct {
	ID            int64     `json:"id"`
	OrderNumber   string    `json:"order_number"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	AddressLine1  string    `json:"address_line1"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	PostalCode    *string   `json:"postal_code,omitempty"`
	SubtotalCents int64     `json:"subtotal_cents"`
	ShippingCents int64     `json:"shipping_cents"`
	TotalCents    int64     `json:"total_cents"`
	Status        Status    `json:"status"`
	IsVerified    bool      `json:"is_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderItem is the financial record of one line as charged: the unit price
// is the snapshot taken at order time and is never recomputed from the
// current catalog.
type OrderItem struct {
	ID             int64   `json:"id"`
	OrderID        int64   `json:"order_id"`
	ProductID      *int64  `json:"product_id,omitempty"`
	VariantID      *int64  `json:"variant_id,omitempty"`
	Name           string  `json:"name"`
	VariantLabel   *string `json:"variant_label,omitempty"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents int64   `json:"unit_price_cents"`
	TotalCents     int64   `json:"total_cents"`
}

type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

type Store interface {
	Create(ctx context.Context, o *Order, items []OrderItem) (*Order, error)

	GetByID(ctx context.Context, id int64) (*Order, error)
	GetDetail(ctx context.Context, orderID int64) (*OrderDetail, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]Order, int, error)

	UpdateStatus(ctx context.Context, orderID int64, next Status) (*Order, error)
	Accept(ctx context.Context, orderID int64) (*Order, error)
	Cancel(ctx context.Context, orderID int64) error
	Delete(ctx context.Context, orderID int64) error
	SetVerified(ctx context.Context, orderID int64, verified bool) error
}
