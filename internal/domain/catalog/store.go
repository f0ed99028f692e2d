package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"parfum/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrBrandNotFound    = errors.New("brand not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrVariantNotFound  = errors.New("variant not found")
)

type Store interface {
	// Brands
	CreateBrand(ctx context.Context, b *Brand) (*Brand, error)
	GetBrandByID(ctx context.Context, id int64) (*Brand, error)
	GetBrandBySlug(ctx context.Context, slug string) (*Brand, error)
	ListBrands(ctx context.Context, limit, offset int) ([]*Brand, int, error)
	UpdateBrand(ctx context.Context, b *Brand) error
	DeleteBrand(ctx context.Context, id int64) error
	BrandExistsByNameOrSlug(ctx context.Context, name, slug string) (bool, error)

	// Categories
	CreateCategory(ctx context.Context, c *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error
	CategoryExistsByNameOrSlug(ctx context.Context, name, slug string) (bool, error)

	// Products
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	GetProductByName(ctx context.Context, name string) (*Product, error)
	ListProducts(ctx context.Context, f ProductFilter, limit, offset int) ([]*ProductCard, int, error)
	ListAllProducts(ctx context.Context) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error
	GetProductDetailBySlug(ctx context.Context, slug string) (*ProductDetail, error)
	AddProductImage(ctx context.Context, productID int64, url string) error
	RemoveProductImage(ctx context.Context, productID int64, url string) error
	IncrementSalesCount(ctx context.Context, productID int64, qty int) error

	// Variants. Every mutation re-derives the product's cached
	// price/stock columns in the same transaction.
	CreateVariant(ctx context.Context, v *Variant) (*Variant, error)
	GetVariantByID(ctx context.Context, id int64) (*Variant, error)
	ListVariantsByProduct(ctx context.Context, productID int64) ([]*Variant, error)
	UpdateVariant(ctx context.Context, v *Variant) error
	DeleteVariant(ctx context.Context, id int64) error
	SetHasVariants(ctx context.Context, productID int64, hasVariants bool) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

// ------------------------------------
// Transaction helper
// ------------------------------------
func (r *Repository) withTx(ctx context.Context, fn func(q dbx.Querier) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Printf("warning: rollback failed: %v", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// ------------------------------------
// Brands
// ------------------------------------
func (r *Repository) CreateBrand(ctx context.Context, b *Brand) (*Brand, error) {
	query := `
		INSERT INTO brands (name, slug, description, logo_url, is_featured)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at;
	`
	if err := r.db.QueryRow(ctx, query, b.Name, b.Slug, b.Description, b.LogoURL, b.IsFeatured).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}
	return b, nil
}

func (r *Repository) GetBrandByID(ctx context.Context, id int64) (*Brand, error) {
	return r.getBrand(ctx, `WHERE id = $1`, id)
}

func (r *Repository) GetBrandBySlug(ctx context.Context, slug string) (*Brand, error) {
	return r.getBrand(ctx, `WHERE slug = $1`, slug)
}

func (r *Repository) getBrand(ctx context.Context, where string, arg any) (*Brand, error) {
	query := `SELECT id, name, slug, description, logo_url, is_featured, created_at, updated_at FROM brands ` + where
	b := &Brand{}
	if err := r.db.QueryRow(ctx, query, arg).
		Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.LogoURL, &b.IsFeatured, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return b, nil
}

func (r *Repository) ListBrands(ctx context.Context, limit, offset int) ([]*Brand, int, error) {
	if limit <= 0 || limit > 30 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT id, name, slug, description, logo_url, is_featured, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM brands
		ORDER BY LOWER(name) ASC, id ASC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var (
		brands []*Brand
		total  int
	)
	for rows.Next() {
		var b Brand
		var t int
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.LogoURL, &b.IsFeatured, &b.CreatedAt, &b.UpdatedAt, &t); err != nil {
			return nil, 0, fmt.Errorf("scan brand: %w", err)
		}
		if total == 0 {
			total = t
		}
		brands = append(brands, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	return brands, total, nil
}

func (r *Repository) UpdateBrand(ctx context.Context, b *Brand) error {
	query := `
		UPDATE brands
		SET name = COALESCE($1, name),
		    slug = COALESCE($2, slug),
		    description = COALESCE($3, description),
		    logo_url = COALESCE($4, logo_url),
		    is_featured = $5,
		    updated_at = now()
		WHERE id = $6;
	`
	cmd, err := r.db.Exec(ctx, query, b.Name, b.Slug, b.Description, b.LogoURL, b.IsFeatured, b.ID)
	if err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrBrandNotFound
	}
	return nil
}

func (r *Repository) DeleteBrand(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM brands WHERE id = $1;`, id)
	if err != nil {
		// 23503 = foreign_key_violation; handler maps to 409
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("brand has dependent records: %w", err)
		}
		return fmt.Errorf("delete brand: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrBrandNotFound
	}
	return nil
}

func (r *Repository) BrandExistsByNameOrSlug(ctx context.Context, name, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM brands WHERE LOWER(name) = LOWER($1) OR slug = $2)`
	err := r.db.QueryRow(ctx, query, name, slug).Scan(&exists)
	return exists, err
}

// ------------------------------------
// Categories
// ------------------------------------
func (r *Repository) CreateCategory(ctx context.Context, c *Category) (*Category, error) {
	query := `
		INSERT INTO categories (name, slug, description, image_url, is_featured)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at;
	`
	if err := r.db.QueryRow(ctx, query, c.Name, c.Slug, c.Description, c.ImageURL, c.IsFeatured).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *Repository) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	return r.getCategory(ctx, `WHERE id = $1`, id)
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	return r.getCategory(ctx, `WHERE slug = $1`, slug)
}

func (r *Repository) getCategory(ctx context.Context, where string, arg any) (*Category, error) {
	query := `SELECT id, name, slug, description, image_url, is_featured, created_at, updated_at FROM categories ` + where
	c := &Category{}
	if err := r.db.QueryRow(ctx, query, arg).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.IsFeatured, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Repository) ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error) {
	if limit <= 0 || limit > 30 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT id, name, slug, description, image_url, is_featured, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM categories
		ORDER BY LOWER(name) ASC, id ASC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var (
		cats  []*Category
		total int
	)
	for rows.Next() {
		var c Category
		var t int
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.IsFeatured, &c.CreatedAt, &c.UpdatedAt, &t); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		if total == 0 {
			total = t
		}
		cats = append(cats, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	return cats, total, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c *Category) error {
	query := `
		UPDATE categories
		SET name = COALESCE($1, name),
		    slug = COALESCE($2, slug),
		    description = COALESCE($3, description),
		    image_url = COALESCE($4, image_url),
		    is_featured = $5,
		    updated_at = now()
		WHERE id = $6;
	`
	cmd, err := r.db.Exec(ctx, query, c.Name, c.Slug, c.Description, c.ImageURL, c.IsFeatured, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1;`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("category has dependent records: %w", err)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) CategoryExistsByNameOrSlug(ctx context.Context, name, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM categories WHERE LOWER(name) = LOWER($1) OR slug = $2)`
	err := r.db.QueryRow(ctx, query, name, slug).Scan(&exists)
	return exists, err
}
