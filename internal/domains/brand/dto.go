package brand

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// CreateBrandReq is the body of POST /v1/brands.
type CreateBrandReq struct {
	Name        string `json:"name"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

func (r CreateBrandReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 255).Error("name must be 1-255 characters"),
		),
		validation.Field(&r.Website, is.URL.Error("website must be a valid URL")),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

// UpdateBrandReq is the body of PUT /v1/brands/{id}; nil fields are kept.
type UpdateBrandReq struct {
	Name        *string `json:"name"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (r UpdateBrandReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.NilOrNotEmpty.Error("name must not be empty"),
			validation.Length(1, 255).Error("name must be 1-255 characters"),
		),
		validation.Field(&r.Website, is.URL.Error("website must be a valid URL")),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

type BrandResp struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Website       string    `json:"website,omitempty"`
	Description   string    `json:"description,omitempty"`
	IsActive      bool      `json:"is_active"`
	ProductsCount int64     `json:"products_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type BrandListResp struct {
	Brands []BrandResp `json:"brands"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func ToBrandResp(b *Brand) BrandResp {
	resp := BrandResp{
		ID:          b.ID,
		Name:        b.Name,
		Slug:        b.Slug,
		Website:     b.Website,
		Description: b.Description,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.ProductsCount != nil {
		resp.ProductsCount = *b.ProductsCount
	}
	return resp
}
