package category

import (
	"context"

	"github.com/google/uuid"
)

type CategoryService interface {
	Create(ctx context.Context, req CreateCategoryReq) (*CategoryResp, error)
	GetByID(ctx context.Context, id uuid.UUID) (*CategoryResp, error)
	GetBySlug(ctx context.Context, slug string) (*CategoryResp, error)
	GetAll(ctx context.Context, filter *CategoryFilter) (*CategoryListResp, error)
	GetTree(ctx context.Context) ([]CategoryTreeItemResp, error)
	// RefreshTree rebuilds the cached tree from the database.
	RefreshTree(ctx context.Context) ([]CategoryTreeItemResp, error)
	GetBreadcrumb(ctx context.Context, id uuid.UUID) (*CategoryBreadcrumbResp, error)
	GetSubcategories(ctx context.Context, id uuid.UUID) ([]CategoryResp, error)

	Update(ctx context.Context, id uuid.UUID, req UpdateCategoryReq) (*CategoryResp, error)
	MoveToParent(ctx context.Context, id uuid.UUID, req MoveToParentReq) (*CategoryResp, error)
	BulkMove(ctx context.Context, req BulkMoveReq) (*BulkMoveResp, error)
	SetSubcategories(ctx context.Context, id uuid.UUID, req SetSubcategoriesReq) (*SetSubcategoriesResp, error)

	Activate(ctx context.Context, id uuid.UUID) (*CategoryResp, error)
	// Deactivate deactivates the category and its whole subtree.
	Deactivate(ctx context.Context, id uuid.UUID) (*BulkActionResp, error)
	BulkActivate(ctx context.Context, req BulkCategoryIDsReq) (*BulkActionResp, error)
	BulkDeactivate(ctx context.Context, req BulkCategoryIDsReq) (*BulkActionResp, error)

	Delete(ctx context.Context, id uuid.UUID) error
	BulkDelete(ctx context.Context, req BulkCategoryIDsReq) (*BulkActionResp, error)
}
