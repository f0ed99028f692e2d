package orders

import (
	"context"
	"errors"
	"fmt"

	"parfum/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	q   dbx.Querier
	gen *OrderNumberGenerator
}

func NewRepository(q dbx.Querier, gen *OrderNumberGenerator) *Repository {
	if gen == nil {
		panic("orders: OrderNumberGenerator is nil")
	}
	return &Repository{q: q, gen: gen}
}

const orderColumns = `
	id, order_number, customer_name, customer_email, customer_phone,
	address_line1, city, country, postal_code,
	subtotal_cents, shipping_cents, total_cents, status, is_verified, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.AddressLine1, &o.City, &o.Country, &o.PostalCode,
		&o.SubtotalCents, &o.ShippingCents, &o.TotalCents, &o.Status, &o.IsVerified, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persists one order row plus its item snapshot as a single logical
// unit. Call it inside a transaction (WithSalesTx): an order row must never
// be left behind without its initially-submitted items. The item count is
// re-queried after the inserts; a mismatch is reported as
// ErrItemsIncomplete instead of being passed off as success.
func (r *Repository) Create(ctx context.Context, o *Order, items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	if o.OrderNumber == "" {
		o.OrderNumber = r.gen.Generate()
	}
	o.Status = StatusPending
	o.IsVerified = false

	if err := r.q.QueryRow(ctx, `
		INSERT INTO orders (
		  order_number, customer_name, customer_email, customer_phone,
		  address_line1, city, country, postal_code,
		  subtotal_cents, shipping_cents, total_cents, status, is_verified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending', false)
		RETURNING id, created_at
	`,
		o.OrderNumber, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.AddressLine1, o.City, o.Country, o.PostalCode,
		o.SubtotalCents, o.ShippingCents, o.TotalCents,
	).Scan(&o.ID, &o.CreatedAt); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = o.ID
		items[i].TotalCents = items[i].UnitPriceCents * int64(items[i].Quantity)
		if _, err := r.q.Exec(ctx, `
			INSERT INTO order_items (
			  order_id, product_id, variant_id, name, variant_label,
			  quantity, unit_price_cents, total_cents
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			o.ID, items[i].ProductID, items[i].VariantID, items[i].Name,
			items[i].VariantLabel, items[i].Quantity, items[i].UnitPriceCents, items[i].TotalCents,
		); err != nil {
			return nil, fmt.Errorf("copy order item: %w", err)
		}
	}

	var count int
	if err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM order_items WHERE order_id = $1`, o.ID).Scan(&count); err != nil {
		return nil, fmt.Errorf("verify order items: %w", err)
	}
	if count != len(items) {
		return nil, fmt.Errorf("%w: expected %d, stored %d", ErrItemsIncomplete, len(items), count)
	}

	return o, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *Repository) GetDetail(ctx context.Context, orderID int64) (*OrderDetail, error) {
	o, err := r.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}

	return &OrderDetail{Order: *o, Items: items}, nil
}

func (r *Repository) loadItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.q.Query(ctx, `
SELECT id, order_id, product_id, variant_id, name, variant_label,
       quantity, unit_price_cents, total_cents
FROM order_items
WHERE order_id = $1
ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.VariantID, &it.Name, &it.VariantLabel,
			&it.Quantity, &it.UnitPriceCents, &it.TotalCents,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListAll: admin listing with optional status filter, default limit 30.
func (r *Repository) ListAll(ctx context.Context, status string, limit, offset int) ([]Order, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	where := "1=1"
	args := []any{}
	arg := 1

	if status != "" {
		where += fmt.Sprintf(" AND status = $%d", arg)
		args = append(args, status)
		arg++
	}

	q := fmt.Sprintf(`
SELECT `+orderColumns+`,
       COUNT(*) OVER() AS total_count
FROM orders
WHERE %s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, where, arg, arg+1)

	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("admin list orders: %w", err)
	}
	defer rows.Close()

	var (
		out   []Order
		total int
	)
	for rows.Next() {
		var o Order
		var t int
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
			&o.AddressLine1, &o.City, &o.Country, &o.PostalCode,
			&o.SubtotalCents, &o.ShippingCents, &o.TotalCents, &o.Status, &o.IsVerified, &o.CreatedAt,
			&t,
		); err != nil {
			return nil, 0, fmt.Errorf("scan admin order: %w", err)
		}
		if total == 0 {
			total = t
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateStatus applies one operator-triggered transition, validated against
// the state machine under a row lock.
func (r *Repository) UpdateStatus(ctx context.Context, orderID int64, next Status) (*Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	var current Status
	err := r.q.QueryRow(ctx,
		`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}

	if next == StatusCancelled && current == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !CanTransition(current, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}

	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, orderID, next)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		// The row vanished between lock and update; report, don't no-op.
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, orderID)
}

// Accept moves a pending order to shipped (see the naming note on Status).
// The caller dispatches the customer notification; a notification failure
// never rolls the transition back.
func (r *Repository) Accept(ctx context.Context, orderID int64) (*Order, error) {
	return r.UpdateStatus(ctx, orderID, StatusShipped)
}

func (r *Repository) Cancel(ctx context.Context, orderID int64) error {
	_, err := r.UpdateStatus(ctx, orderID, StatusCancelled)
	return err
}

// Delete hard-removes the order and its items: items first, then the order
// row, then a re-query to confirm the row is actually gone. Access rules
// can swallow a DELETE without an error; reporting success on a row that is
// still there would be worse than failing.
func (r *Repository) Delete(ctx context.Context, orderID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}

	cmd, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	var stillThere bool
	if err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&stillThere); err != nil {
		return fmt.Errorf("confirm order delete: %w", err)
	}
	if stillThere {
		return ErrDeleteNotConfirmed
	}
	return nil
}

// SetVerified toggles the back-office triage flag that separates
// confirmed-genuine orders from speculative ones. It never touches status
// or totals.
func (r *Repository) SetVerified(ctx context.Context, orderID int64, verified bool) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET is_verified = $2, updated_at = now() WHERE id = $1`, orderID, verified)
	if err != nil {
		return fmt.Errorf("set order verified: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
