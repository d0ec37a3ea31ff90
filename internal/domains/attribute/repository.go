package attribute

import (
	"context"

	"github.com/google/uuid"

	"catalog-backend/internal/domains/hierarchy"
)

// LinkPlanner receives the option ids currently linked to an attribute and
// returns the edits to apply. Returning an error aborts without writing.
type LinkPlanner func(ctx context.Context, current hierarchy.IDSet) (hierarchy.Result, error)

type Repository interface {
	CreateAttribute(ctx context.Context, a *Attribute) error
	// GetAttribute returns the attribute with its linked options.
	GetAttribute(ctx context.Context, id uuid.UUID) (*Attribute, error)
	ListAttributes(ctx context.Context, limit, offset int) ([]Attribute, int64, error)
	AttributeSlugExists(ctx context.Context, slug string) (bool, error)

	CreateOption(ctx context.Context, o *Option) error
	ListOptions(ctx context.Context, search string, limit, offset int) ([]Option, int64, error)

	// ExistingOptionIDs returns the subset of ids that are real options,
	// in one query.
	ExistingOptionIDs(ctx context.Context, ids []uuid.UUID) (hierarchy.IDSet, error)

	// ReconcileOptionLinks locks the attribute row, reads its current links,
	// and applies what plan returns, all in one transaction.
	ReconcileOptionLinks(ctx context.Context, attributeID uuid.UUID, plan LinkPlanner) error
}
