package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalog-backend/internal/domains/brand"
)

const brandColumns = `
	b.id, b.name, b.slug, b.website, b.description, b.is_active,
	b.created_at, b.updated_at,
	(SELECT COUNT(*) FROM products p WHERE p.brand_id = b.id) AS products_count
`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) brand.Repository {
	return &postgresRepository{pool: pool}
}

func scanBrand(row pgx.Row) (*brand.Brand, error) {
	var b brand.Brand
	var products int64
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Slug,
		&b.Website,
		&b.Description,
		&b.IsActive,
		&b.CreatedAt,
		&b.UpdatedAt,
		&products,
	)
	if err != nil {
		return nil, err
	}
	b.ProductsCount = &products
	return &b, nil
}

func (r *postgresRepository) Create(ctx context.Context, b *brand.Brand) error {
	const query = `
		INSERT INTO brands (id, name, slug, website, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		b.ID, b.Name, b.Slug, b.Website, b.Description, b.IsActive, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, b)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*brand.Brand, error) {
	b, err := scanBrand(r.pool.QueryRow(ctx, `SELECT `+brandColumns+` FROM brands b WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, brand.NewBrandNotFound(id)
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*brand.Brand, error) {
	b, err := scanBrand(r.pool.QueryRow(ctx, `SELECT `+brandColumns+` FROM brands b WHERE b.slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, brand.ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to get brand by slug: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) List(ctx context.Context, search string, limit, offset int) ([]brand.Brand, int64, error) {
	where := ""
	args := []interface{}{}
	if s := strings.TrimSpace(search); s != "" {
		where = "WHERE b.name ILIKE $1"
		args = append(args, "%"+s+"%")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM brands b `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count brands: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM brands b
		%s
		ORDER BY b.name ASC
		LIMIT $%d OFFSET $%d
	`, brandColumns, where, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := make([]brand.Brand, 0, limit)
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan brand row: %w", err)
		}
		brands = append(brands, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating brand rows: %w", err)
	}
	return brands, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, b *brand.Brand) error {
	const query = `
		UPDATE brands
		SET name = $2, slug = $3, website = $4, description = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		b.ID, b.Name, b.Slug, b.Website, b.Description, b.IsActive, b.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, b)
	}
	if tag.RowsAffected() == 0 {
		return brand.NewBrandNotFound(b.ID)
	}
	return nil
}

// Delete removes the brand. products.brand_id is ON DELETE RESTRICT, so a
// brand still referenced by a product fails with a foreign key violation.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return brand.ErrHasProducts
		}
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return brand.NewBrandNotFound(id)
	}
	return nil
}

func (r *postgresRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM brands
			WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2)
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check brand slug: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE brand_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count brand products: %w", err)
	}
	return n, nil
}

func mapWriteError(err error, b *brand.Brand) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_brands_slug" {
		return brand.NewDuplicateSlug(b.Slug)
	}
	return fmt.Errorf("failed to write brand: %w", err)
}
