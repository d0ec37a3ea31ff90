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
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"catalog-backend/internal/domains/hierarchy"
	"catalog-backend/internal/domains/product"
	"catalog-backend/pkg/database"
)

const productColumns = `
	p.id, p.name, p.slug, p.sku, p.description, p.price, p.compare_at_price,
	p.images, p.category_id, p.brand_id, p.is_active, p.created_at, p.updated_at
`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) product.Repository {
	return &postgresRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	var compareAt decimal.NullDecimal
	var images []string
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.SKU,
		&p.Description,
		&p.Price,
		&compareAt,
		&images,
		&p.CategoryID,
		&p.BrandID,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if compareAt.Valid {
		p.CompareAtPrice = &compareAt.Decimal
	}
	p.Images = pq.StringArray(images)
	return &p, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *product.Product) error {
	const query = `
		INSERT INTO products (
			id, name, slug, sku, description, price, compare_at_price,
			images, category_id, brand_id, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.SKU, p.Description, p.Price, p.CompareAtPrice,
		[]string(p.Images), p.CategoryID, p.BrandID, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(p, err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.NewProductNotFound(id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return r.withOptions(ctx, p)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.slug = $1`, slug)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by slug: %w", err)
	}
	return r.withOptions(ctx, p)
}

func (r *postgresRepository) withOptions(ctx context.Context, p *product.Product) (*product.Product, error) {
	const query = `
		SELECT po.option_id
		FROM product_options po
		INNER JOIN attribute_options o ON o.id = po.option_id
		WHERE po.product_id = $1
		ORDER BY o.sort_order ASC, o.value ASC
	`
	rows, err := r.pool.Query(ctx, query, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product options: %w", err)
	}
	p.OptionIDs, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to get product options: %w", err)
	}
	return p, nil
}

// buildWhereClause constructs the WHERE clause for List.
func buildWhereClause(filter *product.ProductFilter) (string, []interface{}) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIndex := 1

	if s := strings.TrimSpace(filter.Search); s != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.sku ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+s+"%")
		argIndex++
	}

	if filter.CategoryID != nil {
		if filter.IncludeSubcategories {
			conditions = append(conditions, fmt.Sprintf(`p.category_id IN (
				WITH RECURSIVE subtree AS (
					SELECT id FROM categories WHERE id = $%d
					UNION
					SELECT c.id FROM categories c INNER JOIN subtree s ON c.parent_id = s.id
				)
				SELECT id FROM subtree
			)`, argIndex))
		} else {
			conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argIndex))
		}
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.BrandID != nil {
		conditions = append(conditions, fmt.Sprintf("p.brand_id = $%d", argIndex))
		args = append(args, *filter.BrandID)
		argIndex++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
	}

	return strings.Join(conditions, " AND "), args
}

func (r *postgresRepository) List(ctx context.Context, filter *product.ProductFilter) ([]product.Product, int64, error) {
	where, args := buildWhereClause(filter)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count query failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		WHERE %s
		ORDER BY p.created_at DESC, p.id
		LIMIT $%d OFFSET $%d
	`, productColumns, where, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products query failed: %w", err)
	}
	defer rows.Close()

	out := make([]product.Product, 0, filter.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products query failed: %w", err)
	}
	return out, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *product.Product) error {
	const query = `
		UPDATE products SET
			name = $2, slug = $3, sku = $4, description = $5, price = $6,
			compare_at_price = $7, images = $8, category_id = $9, brand_id = $10,
			is_active = $11, updated_at = $12
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.SKU, p.Description, p.Price, p.CompareAtPrice,
		[]string(p.Images), p.CategoryID, p.BrandID, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(p, err)
	}
	if tag.RowsAffected() == 0 {
		return product.NewProductNotFound(p.ID)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return product.NewProductNotFound(id)
	}
	return nil
}

func (r *postgresRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check product slug: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) AppendImage(ctx context.Context, id uuid.UUID, url string, max int) (bool, error) {
	const query = `
		UPDATE products SET images = array_append(images, $2), updated_at = NOW()
		WHERE id = $1 AND cardinality(images) < $3
	`
	tag, err := r.pool.Exec(ctx, query, id, url, max)
	if err != nil {
		return false, fmt.Errorf("failed to append product image: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return false, product.NewProductNotFound(id)
	}
	return false, nil
}

func (r *postgresRepository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to validate category: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) BrandExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM brands WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to validate brand: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) ExistingOptionIDs(ctx context.Context, ids []uuid.UUID) (hierarchy.IDSet, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM attribute_options WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve options: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to resolve options: %w", err)
	}
	return hierarchy.NewIDSet(found...), nil
}

func (r *postgresRepository) ReconcileOptionLinks(ctx context.Context, productID uuid.UUID, plan product.LinkPlanner) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return product.NewProductNotFound(productID)
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}

		rows, err := tx.Query(ctx, `SELECT option_id FROM product_options WHERE product_id = $1`, productID)
		if err != nil {
			return fmt.Errorf("failed to read product options: %w", err)
		}
		current, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return fmt.Errorf("failed to read product options: %w", err)
		}

		result, err := plan(ctx, hierarchy.NewIDSet(current...))
		if err != nil {
			return err
		}

		if result.ToRemove.Len() > 0 {
			const del = `DELETE FROM product_options WHERE product_id = $1 AND option_id = ANY($2::uuid[])`
			if _, err := tx.Exec(ctx, del, productID, result.ToRemove.Sorted()); err != nil {
				return fmt.Errorf("failed to unlink product options: %w", err)
			}
		}
		if result.ToAdd.Len() > 0 {
			const ins = `
				INSERT INTO product_options (product_id, option_id)
				SELECT $1, unnest($2::uuid[])
				ON CONFLICT DO NOTHING
			`
			if _, err := tx.Exec(ctx, ins, productID, result.ToAdd.Sorted()); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23503" {
					return product.ErrUnresolvedOptions
				}
				return fmt.Errorf("failed to link product options: %w", err)
			}
		}
		return nil
	})
}

func mapWriteError(p *product.Product, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("failed to write product: %w", err)
	}
	switch {
	case pgErr.Code == "23505" && pgErr.ConstraintName == "idx_products_slug":
		return product.NewDuplicateSlug(p.Slug)
	case pgErr.Code == "23505" && pgErr.ConstraintName == "idx_products_sku":
		return product.NewDuplicateSKU(p.SKU)
	case pgErr.Code == "23503" && strings.Contains(pgErr.ConstraintName, "category"):
		return product.NewCategoryNotFound(derefID(p.CategoryID))
	case pgErr.Code == "23503" && strings.Contains(pgErr.ConstraintName, "brand"):
		return product.NewBrandNotFound(derefID(p.BrandID))
	}
	return fmt.Errorf("failed to write product: %w", err)
}

func derefID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
