package carts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parfum/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

var ErrItemNotFound = errors.New("cart item not found")

type Repository struct {
	db  dbx.Querier
	ttl time.Duration
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q, ttl: 7 * 24 * time.Hour}
}

func (r *Repository) bumpTTLByCartID(ctx context.Context, cartID int64) {
	_, _ = r.db.Exec(ctx, `
UPDATE carts
SET expires_at = $2,
    updated_at = now()
WHERE id = $1
  AND status = 'active'
`, cartID, time.Now().Add(r.ttl))
}

func (r *Repository) BumpTTL(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `
UPDATE carts
SET expires_at = $2,
    updated_at = now()
WHERE token = $1
  AND status = 'active'
  AND (expires_at IS NULL OR expires_at > now())
`, token, time.Now().Add(r.ttl))
	return err
}

// EnsureActive returns the token's active cart id, creating one with a
// fresh TTL when none exists. The token is the single durable piece of
// client state; everything else lives server-side against it.
func (r *Repository) EnsureActive(ctx context.Context, token string) (int64, error) {
	var id int64

	err := r.db.QueryRow(ctx, `
SELECT id
FROM carts
WHERE token = $1
  AND status = 'active'
  AND (expires_at IS NULL OR expires_at > now())
LIMIT 1
`, token).Scan(&id)

	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("get active cart: %w", err)
	}

	exp := time.Now().Add(r.ttl)
	if err := r.db.QueryRow(ctx, `
INSERT INTO carts (token, status, expires_at)
VALUES ($1, 'active', $2)
RETURNING id
`, token, exp).Scan(&id); err != nil {
		return 0, fmt.Errorf("ensure active cart: %w", err)
	}

	return id, nil
}

// AddItem merges on the (product, variant) key: an existing line gains the
// added quantity and KEEPS its locked-in unit price; a new key inserts the
// line at the price provided now.
func (r *Repository) AddItem(ctx context.Context, token string, line Line) error {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}

	cartID, err := r.EnsureActive(ctx, token)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO cart_items (
  cart_id, product_id, variant_id, name, variant_label, image_url,
  category_label, unit_price_cents, quantity
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (cart_id, product_id, COALESCE(variant_id, 0))
DO UPDATE SET
  quantity   = cart_items.quantity + EXCLUDED.quantity,
  updated_at = now();
`
	if _, err := r.db.Exec(ctx, q,
		cartID, line.ProductID, line.VariantID, line.Name, line.VariantLabel,
		line.ImageURL, line.CategoryLabel, line.UnitPriceCents, line.Quantity,
	); err != nil {
		return fmt.Errorf("add item: %w", err)
	}

	r.bumpTTLByCartID(ctx, cartID)
	return nil
}

// UpdateItemQty clamps qty at zero and deletes the row on zero, so the
// table never holds a zero-quantity line.
func (r *Repository) UpdateItemQty(ctx context.Context, token string, productID int64, variantID *int64, qty int) error {
	if qty < 0 {
		qty = 0
	}
	if qty == 0 {
		return r.RemoveItem(ctx, token, productID, variantID)
	}

	var cartID int64
	err := r.db.QueryRow(ctx, `
UPDATE cart_items ci
SET quantity = $4,
    updated_at = now()
WHERE ci.product_id = $2
  AND ci.variant_id IS NOT DISTINCT FROM $3
  AND ci.cart_id = (
    SELECT id
    FROM carts
    WHERE token = $1
      AND status = 'active'
      AND (expires_at IS NULL OR expires_at > now())
    LIMIT 1
  )
RETURNING ci.cart_id
`, token, productID, variantID, qty).Scan(&cartID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return fmt.Errorf("update qty: %w", err)
	}

	r.bumpTTLByCartID(ctx, cartID)
	return nil
}

func (r *Repository) RemoveItem(ctx context.Context, token string, productID int64, variantID *int64) error {
	var cartID int64
	err := r.db.QueryRow(ctx, `
DELETE FROM cart_items
WHERE product_id = $2
  AND variant_id IS NOT DISTINCT FROM $3
  AND cart_id = (
    SELECT id
    FROM carts
    WHERE token = $1
      AND status = 'active'
      AND (expires_at IS NULL OR expires_at > now())
    LIMIT 1
  )
RETURNING cart_id
`, token, productID, variantID).Scan(&cartID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return fmt.Errorf("remove item: %w", err)
	}

	r.bumpTTLByCartID(ctx, cartID)
	return nil
}

func (r *Repository) Clear(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `
DELETE FROM cart_items
WHERE cart_id = (
  SELECT id
  FROM carts
  WHERE token = $1
    AND status = 'active'
    AND (expires_at IS NULL OR expires_at > now())
  LIMIT 1
)`, token)
	return err
}

// Convert finalizes a cart after checkout succeeds; its items stay behind
// as the historical source the order snapshot was taken from.
func (r *Repository) Convert(ctx context.Context, cartID int64) error {
	cmd, err := r.db.Exec(ctx, `
UPDATE carts
   SET status = 'converted', updated_at = now()
 WHERE id = $1
   AND status = 'active'
`, cartID)
	if err != nil {
		return fmt.Errorf("convert cart: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("cart not active (cannot convert)")
	}
	return nil
}

// GetView returns the priced cart for a token, or nil when the token has
// no live cart.
func (r *Repository) GetView(ctx context.Context, token string) (*View, error) {
	var v View
	err := r.db.QueryRow(ctx, `
SELECT id, token, status, expires_at, created_at, updated_at
FROM carts
WHERE token = $1
  AND status = 'active'
  AND (expires_at IS NULL OR expires_at > now())
ORDER BY updated_at DESC
LIMIT 1
`, token).Scan(&v.Cart.ID, &v.Cart.Token, &v.Cart.Status, &v.Cart.ExpiresAt, &v.Cart.CreatedAt, &v.Cart.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return r.fillLines(ctx, &v)
}

func (r *Repository) fillLines(ctx context.Context, v *View) (*View, error) {
	rows, err := r.db.Query(ctx, `
SELECT product_id, variant_id, name, variant_label, image_url, category_label,
       unit_price_cents, quantity
FROM cart_items
WHERE cart_id = $1
ORDER BY id ASC
`, v.Cart.ID)
	if err != nil {
		return nil, fmt.Errorf("cart lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(
			&l.ProductID, &l.VariantID, &l.Name, &l.VariantLabel, &l.ImageURL,
			&l.CategoryLabel, &l.UnitPriceCents, &l.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cart lines rows error: %w", err)
	}

	var agg Aggregate
	agg.Hydrate(lines)

	v.Items = agg.Lines()
	v.SubtotalCents = agg.TotalPriceCents()
	v.ItemCount = agg.ItemCount()

	return v, nil
}

// MarkExpiredAsAbandoned is admin housekeeping.
func (r *Repository) MarkExpiredAsAbandoned(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
UPDATE carts
SET status = 'abandoned',
    updated_at = now()
WHERE status = 'active'
  AND expires_at IS NOT NULL
  AND expires_at <= now()
`)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned: %w", err)
	}
	return tag.RowsAffected(), nil
}
