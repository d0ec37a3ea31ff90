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

	"catalog-backend/internal/domains/category"
	"catalog-backend/internal/domains/hierarchy"
	"catalog-backend/pkg/database"
	"catalog-backend/pkg/logger"
)

// TreeLockKey is the advisory lock key every category tree writer takes.
const TreeLockKey int64 = 0x63617467 // "catg"

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	maxTreeDepth          = 64
)

// querier is the part of pgxpool.Pool and pgx.Tx the queries need.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// selectColumns computes level, direct children and products for c.
const selectColumns = `
	c.id, c.name, c.slug, c.parent_id, c.sort_order,
	c.description, c.icon_url, c.is_active,
	c.created_at, c.updated_at,
	(
		WITH RECURSIVE parent_chain AS (
			SELECT id, parent_id, 1 AS level
			FROM categories
			WHERE id = c.id

			UNION ALL

			SELECT p.id, p.parent_id, pc.level + 1
			FROM categories p
			INNER JOIN parent_chain pc ON p.id = pc.parent_id
			WHERE pc.level < 64
		)
		SELECT MAX(level) FROM parent_chain
	) AS level,
	(SELECT COUNT(*) FROM categories ch WHERE ch.parent_id = c.id)::INT AS children_count,
	(SELECT COUNT(*) FROM products pr WHERE pr.category_id = c.id) AS products_count
`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) category.CategoryRepository {
	return &postgresRepository{pool: pool}
}

func scanCategory(row pgx.Row) (*category.Category, error) {
	c := &category.Category{}
	var level, children int
	var products int64
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.ParentID,
		&c.SortOrder,
		&c.Description,
		&c.IconURL,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
		&level,
		&children,
		&products,
	)
	if err != nil {
		return nil, err
	}
	c.Level = &level
	c.ChildCount = &children
	c.ProductsCount = &products
	return c, nil
}

func collectCategories(rows pgx.Rows) ([]category.Category, error) {
	defer rows.Close()
	out := make([]category.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================
// READS
// ============================================================

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query := `SELECT ` + selectColumns + ` FROM categories c WHERE c.id = $1`

	c, err := scanCategory(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.NewNotFound(id)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*category.Category, error) {
	query := `SELECT ` + selectColumns + ` FROM categories c WHERE c.slug = $1`

	c, err := scanCategory(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by slug: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) GetAll(ctx context.Context, filter *category.CategoryFilter) ([]category.Category, int64, error) {
	var where []string
	var args []interface{}
	argIndex := 1

	if filter.IsActive != nil {
		where = append(where, fmt.Sprintf("c.is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}
	if filter.ParentID != nil {
		where = append(where, fmt.Sprintf("c.parent_id = $%d", argIndex))
		args = append(args, *filter.ParentID)
		argIndex++
	} else if filter.RootOnly {
		where = append(where, "c.parent_id IS NULL")
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, fmt.Sprintf("(c.name ILIKE $%d OR c.slug ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+s+"%")
		argIndex++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM categories c ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		logger.Error("GetAll: count query failed", err)
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM categories c
		%s
		ORDER BY c.sort_order ASC, c.name ASC
		LIMIT $%d OFFSET $%d
	`, selectColumns, whereClause, argIndex, argIndex+1)

	rows, err := r.pool.Query(ctx, listQuery, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		logger.Error("GetAll: query failed", err)
		return nil, 0, fmt.Errorf("failed to get categories: %w", err)
	}
	cats, err := collectCategories(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get categories: %w", err)
	}
	return cats, total, nil
}

// GetTree walks the active tree from its roots. The path column orders
// siblings by sort order and keeps every subtree contiguous; the visited
// array stops the walk on a corrupted loop.
func (r *postgresRepository) GetTree(ctx context.Context) ([]category.Category, error) {
	const query = `
		WITH RECURSIVE tree AS (
			SELECT
				id, name, slug, parent_id, sort_order,
				description, icon_url, is_active,
				created_at, updated_at,
				1 AS level,
				ARRAY[lpad(sort_order::TEXT, 3, '0') || ':' || id::TEXT] AS path,
				ARRAY[id] AS visited,
				name::TEXT AS full_path
			FROM categories
			WHERE parent_id IS NULL AND is_active = true

			UNION ALL

			SELECT
				c.id, c.name, c.slug, c.parent_id, c.sort_order,
				c.description, c.icon_url, c.is_active,
				c.created_at, c.updated_at,
				t.level + 1,
				t.path || (lpad(c.sort_order::TEXT, 3, '0') || ':' || c.id::TEXT),
				t.visited || c.id,
				t.full_path || ' > ' || c.name
			FROM categories c
			INNER JOIN tree t ON c.parent_id = t.id
			WHERE c.is_active = true AND NOT c.id = ANY(t.visited)
		)
		SELECT
			t.id, t.name, t.slug, t.parent_id, t.sort_order,
			t.description, t.icon_url, t.is_active,
			t.created_at, t.updated_at,
			t.level, t.full_path,
			COALESCE(child_count.count, 0)::INT AS children_count
		FROM tree t
		LEFT JOIN (
			SELECT parent_id, COUNT(*) AS count
			FROM categories
			WHERE is_active = true AND parent_id IS NOT NULL
			GROUP BY parent_id
		) child_count ON t.id = child_count.parent_id
		ORDER BY t.path ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		logger.Error("GetTree: query failed", err)
		return nil, fmt.Errorf("failed to get category tree: %w", err)
	}
	defer rows.Close()

	out := make([]category.Category, 0)
	for rows.Next() {
		c := category.Category{}
		var level, children int
		var fullPath string
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Slug,
			&c.ParentID,
			&c.SortOrder,
			&c.Description,
			&c.IconURL,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
			&level,
			&fullPath,
			&children,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Level = &level
		c.FullPath = &fullPath
		c.ChildCount = &children
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get category tree: %w", err)
	}
	return out, nil
}

func (r *postgresRepository) GetChildren(ctx context.Context, parentID uuid.UUID) ([]category.Category, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM categories c
		WHERE c.parent_id = $1
		ORDER BY c.sort_order ASC, c.name ASC
	`
	rows, err := r.pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get children: %w", err)
	}
	return collectCategories(rows)
}

// GetAncestors returns the chain from the root down to id. An unknown id
// yields an empty slice.
func (r *postgresRepository) GetAncestors(ctx context.Context, id uuid.UUID) ([]category.Category, error) {
	query := `
		WITH RECURSIVE ancestors AS (
			SELECT id, parent_id, 0 AS depth
			FROM categories
			WHERE id = $1

			UNION ALL

			SELECT p.id, p.parent_id, a.depth + 1
			FROM categories p
			INNER JOIN ancestors a ON p.id = a.parent_id
			WHERE a.depth < $2
		)
		SELECT ` + selectColumns + `
		FROM ancestors a
		INNER JOIN categories c ON c.id = a.id
		ORDER BY a.depth DESC
	`
	rows, err := r.pool.Query(ctx, query, id, maxTreeDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to get ancestors: %w", err)
	}
	return collectCategories(rows)
}

func (r *postgresRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM categories
			WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2)
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// ============================================================
// WRITES
// ============================================================

func (r *postgresRepository) Update(ctx context.Context, c *category.Category) error {
	const query = `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, icon_url = $5,
			sort_order = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Slug, c.Description, c.IconURL, c.SortOrder, c.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, c)
	}
	if tag.RowsAffected() == 0 {
		return category.NewNotFound(c.ID)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return category.ErrHasChildren
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return category.NewNotFound(id)
	}
	return nil
}

func (r *postgresRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	const query = `
		DELETE FROM categories c
		WHERE c.id = ANY($1::uuid[])
			AND NOT EXISTS (SELECT 1 FROM categories ch WHERE ch.parent_id = c.id)
			AND NOT EXISTS (SELECT 1 FROM products p WHERE p.category_id = c.id)
	`
	tag, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete categories: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) SetActive(ctx context.Context, ids []uuid.UUID, active bool) (int64, error) {
	return setActive(ctx, r.pool, ids, active)
}

func (r *postgresRepository) InTreeTx(ctx context.Context, fn func(tx category.TreeTx) error) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := database.AdvisoryXactLock(ctx, tx, TreeLockKey); err != nil {
			return err
		}
		return fn(&treeTx{q: tx})
	})
}

// ============================================================
// TREE TRANSACTION
// ============================================================

type treeTx struct {
	q querier
}

func (t *treeTx) Forest(ctx context.Context) (*hierarchy.Snapshot, error) {
	rows, err := t.q.Query(ctx, `SELECT id, parent_id FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("failed to read category forest: %w", err)
	}
	defer rows.Close()

	var edges []hierarchy.Edge
	for rows.Next() {
		var id uuid.UUID
		var parent *uuid.UUID
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e := hierarchy.Edge{Child: id}
		if parent != nil {
			e.Parent = *parent
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category forest: %w", err)
	}
	return hierarchy.NewSnapshot(edges), nil
}

func (t *treeTx) InactiveIDs(ctx context.Context) (hierarchy.IDSet, error) {
	rows, err := t.q.Query(ctx, `SELECT id FROM categories WHERE NOT is_active`)
	if err != nil {
		return nil, fmt.Errorf("failed to read inactive categories: %w", err)
	}
	defer rows.Close()

	ids := hierarchy.NewIDSet()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan category id: %w", err)
		}
		ids.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inactive categories: %w", err)
	}
	return ids, nil
}

func (t *treeTx) Create(ctx context.Context, c *category.Category) error {
	const query = `
		INSERT INTO categories (
			id, name, slug, parent_id, sort_order,
			description, icon_url, is_active,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := t.q.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Slug,
		c.ParentID,
		c.SortOrder,
		c.Description,
		c.IconURL,
		c.IsActive,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, c)
	}
	return nil
}

func (t *treeTx) SetParent(ctx context.Context, ids []uuid.UUID, parent *uuid.UUID) (int64, error) {
	const query = `
		UPDATE categories
		SET parent_id = $2, updated_at = NOW()
		WHERE id = ANY($1::uuid[])
	`
	tag, err := t.q.Exec(ctx, query, ids, parent)
	if err != nil {
		return 0, fmt.Errorf("failed to set parent: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *treeTx) SetActive(ctx context.Context, ids []uuid.UUID, active bool) (int64, error) {
	return setActive(ctx, t.q, ids, active)
}

func setActive(ctx context.Context, q querier, ids []uuid.UUID, active bool) (int64, error) {
	const query = `
		UPDATE categories
		SET is_active = $2, updated_at = NOW()
		WHERE id = ANY($1::uuid[]) AND is_active <> $2
	`
	tag, err := q.Exec(ctx, query, ids, active)
	if err != nil {
		return 0, fmt.Errorf("failed to update category status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// mapWriteError turns constraint violations into domain errors.
func mapWriteError(err error, c *category.Category) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "idx_categories_slug":
			return category.NewDuplicateSlug(c.Slug)
		case pgErr.Code == pgForeignKeyViolation && c.ParentID != nil:
			return category.NewParentNotFound(*c.ParentID)
		}
	}
	return fmt.Errorf("failed to write category: %w", err)
}
