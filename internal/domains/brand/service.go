package brand

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	Create(ctx context.Context, req CreateBrandReq) (*BrandResp, error)
	GetByID(ctx context.Context, id uuid.UUID) (*BrandResp, error)
	GetBySlug(ctx context.Context, slug string) (*BrandResp, error)
	List(ctx context.Context, search string, limit, offset int) (*BrandListResp, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateBrandReq) (*BrandResp, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
