package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"catalog-backend/internal/shared/utils"
)

type Product struct {
	// Identity
	ID   uuid.UUID
	Name string
	Slug string
	SKU  string

	// Relationships
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID

	// Pricing
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal

	// Content
	Description string
	Images      pq.StringArray

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Loaded by GetByID / GetBySlug only
	OptionIDs []uuid.UUID
}

// ProductFilter narrows List. With IncludeSubcategories set, CategoryID
// matches products anywhere under that category.
type ProductFilter struct {
	CategoryID           *uuid.UUID
	IncludeSubcategories bool
	BrandID              *uuid.UUID
	IsActive             *bool
	Search               string
	MinPrice             *decimal.Decimal
	MaxPrice             *decimal.Decimal
	Limit                int
	Offset               int
}

func NewProduct(req *CreateProductReq) *Product {
	now := time.Now()
	name := strings.TrimSpace(req.Name)
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	images := pq.StringArray(req.Images)
	if images == nil {
		images = pq.StringArray{}
	}
	return &Product{
		ID:             uuid.New(),
		Name:           name,
		Slug:           utils.GenerateSlug(name),
		SKU:            NormalizeSKU(req.SKU),
		CategoryID:     req.CategoryID,
		BrandID:        req.BrandID,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Description:    req.Description,
		Images:         images,
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Apply copies the non-nil fields of req. A nil uuid in CategoryID or
// BrandID clears the reference. It reports whether the slug changed.
func (p *Product) Apply(req *UpdateProductReq) bool {
	slugChanged := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		slug := utils.GenerateSlug(name)
		slugChanged = slug != p.Slug
		p.Name, p.Slug = name, slug
	}
	if req.SKU != nil {
		p.SKU = NormalizeSKU(*req.SKU)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.CompareAtPrice != nil {
		if req.CompareAtPrice.IsZero() {
			p.CompareAtPrice = nil
		} else {
			v := *req.CompareAtPrice
			p.CompareAtPrice = &v
		}
	}
	if req.Images != nil {
		p.Images = pq.StringArray(req.Images)
	}
	if req.CategoryID != nil {
		p.CategoryID = optionalRef(*req.CategoryID)
	}
	if req.BrandID != nil {
		p.BrandID = optionalRef(*req.BrandID)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.UpdatedAt = time.Now()
	return slugChanged
}

// IsOnSale reports whether a compare-at price above the price is set.
func (p *Product) IsOnSale() bool {
	return p.CompareAtPrice != nil && p.CompareAtPrice.GreaterThan(p.Price)
}

func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func optionalRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
