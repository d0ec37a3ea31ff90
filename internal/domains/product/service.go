package product

import (
	"context"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type Service interface {
	Create(ctx context.Context, req CreateProductReq) (*ProductResp, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProductResp, error)
	// GetBySlug is served from cache when possible.
	GetBySlug(ctx context.Context, slug string) (*ProductResp, error)
	List(ctx context.Context, filter *ProductFilter) (*ProductListResp, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductReq) (*ProductResp, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SetProductOptions makes req.OptionIDs exactly the options linked to the
	// product. Unknown ids fail the call and nothing is changed.
	SetProductOptions(ctx context.Context, id uuid.UUID, req SetOptionsReq) (*SetOptionsResp, error)

	// AddImage validates, resizes and stores an uploaded image, then appends
	// its URL to the product.
	AddImage(ctx context.Context, id uuid.UUID, data []byte) (*ProductResp, error)

	// Export renders every product matching filter as a spreadsheet, up to
	// MaxExportRows rows.
	Export(ctx context.Context, filter *ProductFilter) (*excelize.File, error)
}
