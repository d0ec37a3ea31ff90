package product

import (
	"context"

	"github.com/google/uuid"

	"catalog-backend/internal/domains/hierarchy"
)

// LinkPlanner receives the option ids currently linked to a product and
// returns the edits to apply. Returning an error aborts without writing.
type LinkPlanner func(ctx context.Context, current hierarchy.IDSet) (hierarchy.Result, error)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	// GetByID and GetBySlug fill OptionIDs.
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, filter *ProductFilter) ([]Product, int64, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)

	// AppendImage adds url to the product's images unless it already holds
	// max of them. It reports false when the limit was hit.
	AppendImage(ctx context.Context, id uuid.UUID, url string, max int) (bool, error)

	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	BrandExists(ctx context.Context, id uuid.UUID) (bool, error)

	ExistingOptionIDs(ctx context.Context, ids []uuid.UUID) (hierarchy.IDSet, error)
	// ReconcileOptionLinks locks the product row, reads its current links,
	// and applies what plan returns, all in one transaction.
	ReconcileOptionLinks(ctx context.Context, productID uuid.UUID, plan LinkPlanner) error
}

// ImageStore keeps uploaded product images.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
