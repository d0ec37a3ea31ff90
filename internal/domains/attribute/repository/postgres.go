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

	"catalog-backend/internal/domains/attribute"
	"catalog-backend/internal/domains/hierarchy"
	"catalog-backend/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) attribute.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) CreateAttribute(ctx context.Context, a *attribute.Attribute) error {
	const query = `
		INSERT INTO attributes (id, name, slug, input_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, a.ID, a.Name, a.Slug, string(a.InputType), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "idx_attributes_slug" {
			return attribute.NewDuplicateSlug(a.Slug)
		}
		return fmt.Errorf("failed to create attribute: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetAttribute(ctx context.Context, id uuid.UUID) (*attribute.Attribute, error) {
	const query = `
		SELECT id, name, slug, input_type, created_at, updated_at
		FROM attributes
		WHERE id = $1
	`
	var a attribute.Attribute
	var inputType string
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Slug, &inputType, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attribute.NewAttributeNotFound(id)
		}
		return nil, fmt.Errorf("failed to get attribute: %w", err)
	}
	a.InputType = attribute.InputType(inputType)

	const optionsQuery = `
		SELECT o.id, o.value, o.label, o.sort_order, o.created_at
		FROM attribute_option_links l
		INNER JOIN attribute_options o ON o.id = l.option_id
		WHERE l.attribute_id = $1
		ORDER BY o.sort_order ASC, o.value ASC
	`
	rows, err := r.pool.Query(ctx, optionsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get attribute options: %w", err)
	}
	a.Options, err = collectOptions(rows)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepository) ListAttributes(ctx context.Context, limit, offset int) ([]attribute.Attribute, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM attributes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attributes: %w", err)
	}

	const query = `
		SELECT id, name, slug, input_type, created_at, updated_at
		FROM attributes
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attributes: %w", err)
	}
	defer rows.Close()

	out := make([]attribute.Attribute, 0, limit)
	for rows.Next() {
		var a attribute.Attribute
		var inputType string
		if err := rows.Scan(&a.ID, &a.Name, &a.Slug, &inputType, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attribute: %w", err)
		}
		a.InputType = attribute.InputType(inputType)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list attributes: %w", err)
	}
	return out, total, nil
}

func (r *postgresRepository) AttributeSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM attributes WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check attribute slug: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) CreateOption(ctx context.Context, o *attribute.Option) error {
	const query = `
		INSERT INTO attribute_options (id, value, label, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.pool.Exec(ctx, query, o.ID, o.Value, o.Label, o.SortOrder, o.CreatedAt); err != nil {
		return fmt.Errorf("failed to create option: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListOptions(ctx context.Context, search string, limit, offset int) ([]attribute.Option, int64, error) {
	where := ""
	args := []interface{}{}
	if s := strings.TrimSpace(search); s != "" {
		where = "WHERE value ILIKE $1 OR label ILIKE $1"
		args = append(args, "%"+s+"%")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM attribute_options `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count options: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, value, label, sort_order, created_at
		FROM attribute_options
		%s
		ORDER BY sort_order ASC, value ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list options: %w", err)
	}
	opts, err := collectOptions(rows)
	if err != nil {
		return nil, 0, err
	}
	return opts, total, nil
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

func (r *postgresRepository) ReconcileOptionLinks(ctx context.Context, attributeID uuid.UUID, plan attribute.LinkPlanner) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM attributes WHERE id = $1 FOR UPDATE`, attributeID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return attribute.NewAttributeNotFound(attributeID)
			}
			return fmt.Errorf("failed to lock attribute: %w", err)
		}

		rows, err := tx.Query(ctx, `SELECT option_id FROM attribute_option_links WHERE attribute_id = $1`, attributeID)
		if err != nil {
			return fmt.Errorf("failed to read option links: %w", err)
		}
		current, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return fmt.Errorf("failed to read option links: %w", err)
		}

		result, err := plan(ctx, hierarchy.NewIDSet(current...))
		if err != nil {
			return err
		}

		if result.ToRemove.Len() > 0 {
			const del = `DELETE FROM attribute_option_links WHERE attribute_id = $1 AND option_id = ANY($2::uuid[])`
			if _, err := tx.Exec(ctx, del, attributeID, result.ToRemove.Sorted()); err != nil {
				return fmt.Errorf("failed to unlink options: %w", err)
			}
		}
		if result.ToAdd.Len() > 0 {
			const ins = `
				INSERT INTO attribute_option_links (attribute_id, option_id)
				SELECT $1, unnest($2::uuid[])
				ON CONFLICT DO NOTHING
			`
			if _, err := tx.Exec(ctx, ins, attributeID, result.ToAdd.Sorted()); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23503" {
					return attribute.ErrUnresolvedOptions
				}
				return fmt.Errorf("failed to link options: %w", err)
			}
		}
		return nil
	})
}

func collectOptions(rows pgx.Rows) ([]attribute.Option, error) {
	defer rows.Close()
	out := make([]attribute.Option, 0)
	for rows.Next() {
		var o attribute.Option
		if err := rows.Scan(&o.ID, &o.Value, &o.Label, &o.SortOrder, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read options: %w", err)
	}
	return out, nil
}
