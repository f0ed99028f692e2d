package storage

import (
	"context"
	"fmt"

	"parfum/internal/domain/carts"
	"parfum/internal/domain/catalog"
	"parfum/internal/domain/orders"
	"parfum/internal/domain/shipping"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool     *pgxpool.Pool // set so WithSalesTx can open transactions
	orderGen *orders.OrderNumberGenerator

	Catalog  catalog.Store
	Shipping *shipping.Repository
	Carts    *carts.Repository
	Orders   *orders.Repository
}

func NewContainer(db *pgxpool.Pool, orderGen *orders.OrderNumberGenerator) *Container {
	return &Container{
		pool:     db,
		orderGen: orderGen,
		Catalog:  catalog.NewRepository(db),
		Shipping: shipping.NewRepository(db),
		Carts:    carts.NewRepository(db),
		Orders:   orders.NewRepository(db, orderGen),
	}
}

// SalesTx is a temporary, tx-scoped set of repos for atomic units of work:
// checkout places the order row, its items and the cart conversion through
// one of these.
type SalesTx struct {
	Carts  *carts.Repository
	Orders *orders.Repository
}

// WithSalesTx runs a sales unit-of-work atomically.
func (c *Container) WithSalesTx(ctx context.Context, fn func(s *SalesTx) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil")
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	s := &SalesTx{
		Carts:  carts.NewRepository(tx),
		Orders: orders.NewRepository(tx, c.orderGen),
	}

	if err := fn(s); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
