package catalog

import (
	"context"
	"errors"
	"fmt"

	"parfum/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

const productColumns = `
	id, name_primary, name_secondary, description_primary, description_secondary,
	slug, price_cents, discount_cents, has_variants, in_stock, image_urls,
	is_active, audience, category_id, brand_id, sales_count, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	err := row.Scan(
		&p.ID, &p.Name.Primary, &p.Name.Secondary, &p.Description.Primary, &p.Description.Secondary,
		&p.Slug, &p.PriceCents, &p.DiscountCents, &p.HasVariants, &p.InStock, &p.ImageURLs,
		&p.IsActive, &p.Audience, &p.CategoryID, &p.BrandID, &p.SalesCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ------------------------------------
// Products
// ------------------------------------
func (r *Repository) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	query := `
		INSERT INTO products (
			name_primary, name_secondary, description_primary, description_secondary,
			slug, price_cents, discount_cents, has_variants, in_stock, image_urls,
			is_active, audience, category_id, brand_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, sales_count, created_at, updated_at;
	`
	if err := r.db.QueryRow(ctx, query,
		p.Name.Primary, p.Name.Secondary, p.Description.Primary, p.Description.Secondary,
		p.Slug, p.PriceCents, p.DiscountCents, p.HasVariants, p.InStock, p.ImageURLs,
		p.IsActive, p.Audience, p.CategoryID, p.BrandID,
	).Scan(&p.ID, &p.SalesCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (r *Repository) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repository) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return p, nil
}

// GetProductByName matches the primary product name, case-insensitively.
// Bulk import upserts by this key; the first match wins.
func (r *Repository) GetProductByName(ctx context.Context, name string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE LOWER(name_primary) = LOWER($1)
		ORDER BY id ASC
		LIMIT 1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product by name: %w", err)
	}
	return p, nil
}

func (r *Repository) ListProducts(ctx context.Context, f ProductFilter, limit, offset int) ([]*ProductCard, int, error) {
	if limit <= 0 || limit > 30 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	where := "1=1"
	args := []any{}
	arg := 1

	if f.ActiveOnly {
		where += " AND p.is_active = true"
	}
	if f.CategorySlug != "" {
		where += fmt.Sprintf(" AND c.slug = $%d", arg)
		args = append(args, f.CategorySlug)
		arg++
	}
	if f.BrandSlug != "" {
		where += fmt.Sprintf(" AND b.slug = $%d", arg)
		args = append(args, f.BrandSlug)
		arg++
	}
	if f.Audience != "" {
		where += fmt.Sprintf(" AND p.audience = $%d", arg)
		args = append(args, f.Audience)
		arg++
	}

	q := fmt.Sprintf(`
		SELECT p.id, p.name_primary, p.name_secondary, p.slug,
		       p.price_cents, p.discount_cents, p.has_variants, p.in_stock, p.audience,
		       (p.image_urls)[1] AS primary_image,
		       b.name AS brand_name,
		       c.name AS category_name,
		       COUNT(*) OVER() AS total_count
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE %s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d`, where, arg, arg+1)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		cards []*ProductCard
		total int
	)
	for rows.Next() {
		var card ProductCard
		var t int
		if err := rows.Scan(
			&card.ID, &card.Name.Primary, &card.Name.Secondary, &card.Slug,
			&card.PriceCents, &card.DiscountCents, &card.HasVariants, &card.InStock, &card.Audience,
			&card.PrimaryImage, &card.BrandName, &card.CategoryName, &t,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product card: %w", err)
		}
		if total == 0 {
			total = t
		}
		cards = append(cards, &card)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	return cards, total, nil
}

// ListAllProducts streams the full catalog, used by the spreadsheet export.
func (r *Repository) ListAllProducts(ctx context.Context) ([]*Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	defer rows.Close()

	var out []*Product
	for rows.Next() {
		p := &Product{}
		if err := rows.Scan(
			&p.ID, &p.Name.Primary, &p.Name.Secondary, &p.Description.Primary, &p.Description.Secondary,
			&p.Slug, &p.PriceCents, &p.DiscountCents, &p.HasVariants, &p.InStock, &p.ImageURLs,
			&p.IsActive, &p.Audience, &p.CategoryID, &p.BrandID, &p.SalesCount, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProduct writes all mutable columns. When the product has variants,
// price/discount/stock passed here are ignored in favor of the cached
// rollup, which is re-derived afterwards inside the same transaction.
func (r *Repository) UpdateProduct(ctx context.Context, p *Product) error {
	return r.withTx(ctx, func(q dbx.Querier) error {
		cmd, err := q.Exec(ctx, `
			UPDATE products
			SET name_primary = $1, name_secondary = $2,
			    description_primary = $3, description_secondary = $4,
			    slug = $5, price_cents = $6, discount_cents = $7,
			    has_variants = $8, in_stock = $9, image_urls = $10,
			    is_active = $11, audience = $12, category_id = $13, brand_id = $14,
			    updated_at = now()
			WHERE id = $15`,
			p.Name.Primary, p.Name.Secondary, p.Description.Primary, p.Description.Secondary,
			p.Slug, p.PriceCents, p.DiscountCents, p.HasVariants, p.InStock, p.ImageURLs,
			p.IsActive, p.Audience, p.CategoryID, p.BrandID, p.ID,
		)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrProductNotFound
		}
		return r.resyncProduct(ctx, q, p.ID)
	})
}

func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repository) GetProductDetailBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	p, err := r.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	variants, err := r.ListVariantsByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{
		Product:  p,
		Variants: variants,
		Display:  Rollup(p, variants),
	}

	if p.BrandID != nil {
		if detail.Brand, err = r.GetBrandByID(ctx, *p.BrandID); err != nil && !errors.Is(err, ErrBrandNotFound) {
			return nil, err
		}
	}
	if p.CategoryID != nil {
		if detail.Category, err = r.GetCategoryByID(ctx, *p.CategoryID); err != nil && !errors.Is(err, ErrCategoryNotFound) {
			return nil, err
		}
	}

	return detail, nil
}

func (r *Repository) AddProductImage(ctx context.Context, productID int64, url string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE products
		SET image_urls = array_append(image_urls, $2), updated_at = now()
		WHERE id = $1`, productID, url)
	if err != nil {
		return fmt.Errorf("add product image: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repository) RemoveProductImage(ctx context.Context, productID int64, url string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE products
		SET image_urls = array_remove(image_urls, $2), updated_at = now()
		WHERE id = $1`, productID, url)
	if err != nil {
		return fmt.Errorf("remove product image: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// IncrementSalesCount bumps the per-product sales tally server-side, so
// concurrent checkouts never lose increments.
func (r *Repository) IncrementSalesCount(ctx context.Context, productID int64, qty int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE products SET sales_count = sales_count + $2 WHERE id = $1`,
		productID, qty)
	if err != nil {
		return fmt.Errorf("increment sales count: %w", err)
	}
	return nil
}

// ------------------------------------
// Variants
// ------------------------------------
const variantColumns = `id, product_id, name, price_cents, discount_cents, in_stock, is_active, created_at, updated_at`

func (r *Repository) CreateVariant(ctx context.Context, v *Variant) (*Variant, error) {
	err := r.withTx(ctx, func(q dbx.Querier) error {
		if err := q.QueryRow(ctx, `
			INSERT INTO product_variants (product_id, name, price_cents, discount_cents, in_stock, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`,
			v.ProductID, v.Name, v.PriceCents, v.DiscountCents, v.InStock, v.IsActive,
		).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return fmt.Errorf("create variant: %w", err)
		}
		// First variant flips the product into derived price/stock mode.
		if _, err := q.Exec(ctx, `
			UPDATE products SET has_variants = true, updated_at = now()
			WHERE id = $1 AND has_variants = false`, v.ProductID); err != nil {
			return fmt.Errorf("mark has_variants: %w", err)
		}
		return r.resyncProduct(ctx, q, v.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Repository) GetVariantByID(ctx context.Context, id int64) (*Variant, error) {
	v := &Variant{}
	err := r.db.QueryRow(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE id = $1`, id).
		Scan(&v.ID, &v.ProductID, &v.Name, &v.PriceCents, &v.DiscountCents, &v.InStock, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return v, nil
}

func (r *Repository) ListVariantsByProduct(ctx context.Context, productID int64) ([]*Variant, error) {
	return listVariants(ctx, r.db, productID)
}

func listVariants(ctx context.Context, q dbx.Querier, productID int64) ([]*Variant, error) {
	rows, err := q.Query(ctx, `
		SELECT `+variantColumns+` FROM product_variants
		WHERE product_id = $1
		ORDER BY price_cents ASC, id ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var out []*Variant
	for rows.Next() {
		v := &Variant{}
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.PriceCents, &v.DiscountCents, &v.InStock, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) UpdateVariant(ctx context.Context, v *Variant) error {
	return r.withTx(ctx, func(q dbx.Querier) error {
		cmd, err := q.Exec(ctx, `
			UPDATE product_variants
			SET name = $1, price_cents = $2, discount_cents = $3,
			    in_stock = $4, is_active = $5, updated_at = now()
			WHERE id = $6`,
			v.Name, v.PriceCents, v.DiscountCents, v.InStock, v.IsActive, v.ID)
		if err != nil {
			return fmt.Errorf("update variant: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrVariantNotFound
		}
		return r.resyncProduct(ctx, q, v.ProductID)
	})
}

func (r *Repository) DeleteVariant(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(q dbx.Querier) error {
		var productID int64
		if err := q.QueryRow(ctx, `
			DELETE FROM product_variants WHERE id = $1 RETURNING product_id`, id).
			Scan(&productID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrVariantNotFound
			}
			return fmt.Errorf("delete variant: %w", err)
		}
		// Removing the last variant drops the product back to its own
		// price and stock columns.
		if _, err := q.Exec(ctx, `
			UPDATE products
			SET has_variants = EXISTS(SELECT 1 FROM product_variants WHERE product_id = $1),
			    updated_at = now()
			WHERE id = $1`, productID); err != nil {
			return fmt.Errorf("unmark has_variants: %w", err)
		}
		return r.resyncProduct(ctx, q, productID)
	})
}

func (r *Repository) SetHasVariants(ctx context.Context, productID int64, hasVariants bool) error {
	return r.withTx(ctx, func(q dbx.Querier) error {
		cmd, err := q.Exec(ctx, `
			UPDATE products SET has_variants = $2, updated_at = now() WHERE id = $1`,
			productID, hasVariants)
		if err != nil {
			return fmt.Errorf("set has_variants: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrProductNotFound
		}
		return r.resyncProduct(ctx, q, productID)
	})
}

// resyncProduct rewrites the product's cached price/stock columns from the
// current variant set. The cached columns are a projection of Rollup, never
// a second source of truth; every variant mutation funnels through here
// inside its transaction.
func (r *Repository) resyncProduct(ctx context.Context, q dbx.Querier, productID int64) error {
	var hasVariants, inStock bool
	var priceCents int64
	if err := q.QueryRow(ctx, `
		SELECT has_variants, price_cents, in_stock FROM products WHERE id = $1`, productID).
		Scan(&hasVariants, &priceCents, &inStock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("load product for resync: %w", err)
	}

	if !hasVariants {
		return nil
	}

	variants, err := listVariants(ctx, q, productID)
	if err != nil {
		return err
	}

	d := Rollup(&Product{HasVariants: true, PriceCents: priceCents, InStock: inStock}, variants)

	if _, err := q.Exec(ctx, `
		UPDATE products SET price_cents = $2, in_stock = $3, updated_at = now()
		WHERE id = $1`, productID, d.MinPriceCents, d.InStock); err != nil {
		return fmt.Errorf("resync product rollup: %w", err)
	}
	return nil
}
