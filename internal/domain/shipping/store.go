package shipping

import (
	"context"
	"errors"
	"fmt"

	"parfum/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

var ErrZoneNotFound = errors.New("shipping zone not found")

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

const zoneColumns = `id, country, city, continent, price_cents, details, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, z *Zone) (*Zone, error) {
	if err := r.db.QueryRow(ctx, `
		INSERT INTO shipping_zones (country, city, continent, price_cents, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		z.Country, z.City, z.Continent, z.PriceCents, z.Details,
	).Scan(&z.ID, &z.CreatedAt, &z.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create shipping zone: %w", err)
	}
	return z, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Zone, error) {
	z := &Zone{}
	err := r.db.QueryRow(ctx, `SELECT `+zoneColumns+` FROM shipping_zones WHERE id = $1`, id).
		Scan(&z.ID, &z.Country, &z.City, &z.Continent, &z.PriceCents, &z.Details, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("get shipping zone: %w", err)
	}
	return z, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Zone, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+zoneColumns+`, COUNT(*) OVER() AS total_count
		FROM shipping_zones
		ORDER BY country ASC, city ASC NULLS FIRST, id ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list shipping zones: %w", err)
	}
	defer rows.Close()

	var (
		zones []*Zone
		total int
	)
	for rows.Next() {
		z := &Zone{}
		var t int
		if err := rows.Scan(&z.ID, &z.Country, &z.City, &z.Continent, &z.PriceCents, &z.Details, &z.CreatedAt, &z.UpdatedAt, &t); err != nil {
			return nil, 0, fmt.Errorf("scan shipping zone: %w", err)
		}
		if total == 0 {
			total = t
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return zones, total, nil
}

func (r *Repository) Update(ctx context.Context, z *Zone) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE shipping_zones
		SET country = $1, city = $2, continent = $3, price_cents = $4, details = $5,
		    updated_at = now()
		WHERE id = $6`,
		z.Country, z.City, z.Continent, z.PriceCents, z.Details, z.ID)
	if err != nil {
		return fmt.Errorf("update shipping zone: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrZoneNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM shipping_zones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shipping zone: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrZoneNotFound
	}
	return nil
}

// Lookup fetches the candidate zones for a country and hands precedence to
// Resolve. An unmapped destination is not an error, it comes back unresolved.
func (r *Repository) Lookup(ctx context.Context, country, city string) (Rate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+zoneColumns+`
		FROM shipping_zones
		WHERE LOWER(country) = LOWER($1)
		ORDER BY id ASC`, country)
	if err != nil {
		return Rate{}, fmt.Errorf("lookup shipping rate: %w", err)
	}
	defer rows.Close()

	var zones []*Zone
	for rows.Next() {
		z := &Zone{}
		if err := rows.Scan(&z.ID, &z.Country, &z.City, &z.Continent, &z.PriceCents, &z.Details, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return Rate{}, fmt.Errorf("scan shipping zone: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return Rate{}, err
	}

	return Resolve(zones, country, city), nil
}
