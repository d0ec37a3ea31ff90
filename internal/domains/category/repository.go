package category

import (
	"context"

	"github.com/google/uuid"

	"catalog-backend/internal/domains/hierarchy"
)

// CategoryRepository is the persistence boundary of the category domain.
// Reads outside InTreeTx see committed data only; every write that can
// change the shape of the tree goes through InTreeTx.
type CategoryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	GetAll(ctx context.Context, filter *CategoryFilter) ([]Category, int64, error)

	// GetTree returns every category in depth-first order with Level,
	// FullPath and ChildCount filled.
	GetTree(ctx context.Context) ([]Category, error)

	// GetChildren returns the direct children of parentID by sort order.
	GetChildren(ctx context.Context, parentID uuid.UUID) ([]Category, error)

	// GetAncestors returns the path from the root down to id, inclusive.
	GetAncestors(ctx context.Context, id uuid.UUID) ([]Category, error)

	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	CountProducts(ctx context.Context, id uuid.UUID) (int64, error)

	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteMany removes the given categories that have neither children
	// nor products and returns how many rows went away.
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)

	SetActive(ctx context.Context, ids []uuid.UUID, active bool) (int64, error)

	// InTreeTx runs fn in one transaction that holds the category tree
	// lock. Concurrent tree writers are serialized, so a check made on the
	// forest read inside fn still holds when fn writes.
	InTreeTx(ctx context.Context, fn func(tx TreeTx) error) error
}

// TreeTx is the view of the category tree inside InTreeTx.
type TreeTx interface {
	// Forest reads every parent edge of the tree in one query.
	Forest(ctx context.Context) (*hierarchy.Snapshot, error)

	// InactiveIDs returns the ids of every inactive category.
	InactiveIDs(ctx context.Context) (hierarchy.IDSet, error)

	Create(ctx context.Context, c *Category) error

	// SetParent points every id in ids at parent. A nil parent detaches
	// them to the root level.
	SetParent(ctx context.Context, ids []uuid.UUID, parent *uuid.UUID) (int64, error)

	SetActive(ctx context.Context, ids []uuid.UUID, active bool) (int64, error)
}
