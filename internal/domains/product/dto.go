package product

import (
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxImages            = 10
	MaxOptionsPerProduct = 200
	MaxExportRows        = 5000
)

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ============ REQUESTS ============

type CreateProductReq struct {
	Name           string           `json:"name"`
	SKU            string           `json:"sku"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	Images         []string         `json:"images"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	BrandID        *uuid.UUID       `json:"brand_id"`
	IsActive       *bool            `json:"is_active"`
}

func (r CreateProductReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("name is required"), validation.Length(1, 255)),
		validation.Field(&r.SKU,
			validation.Required.Error("sku is required"),
			validation.Length(1, 64),
			validation.Match(skuPattern).Error("sku may contain letters, digits, '-' and '_'"),
		),
		validation.Field(&r.Description, validation.Length(0, 5000)),
		validation.Field(&r.Price, validation.By(nonNegative)),
		validation.Field(&r.CompareAtPrice, validation.By(nonNegative), validation.By(notBelow(r.Price))),
		validation.Field(&r.Images, validation.Length(0, MaxImages), validation.Each(is.URL)),
		validation.Field(&r.CategoryID, validation.NotIn(uuid.Nil).Error("must not be the nil uuid")),
		validation.Field(&r.BrandID, validation.NotIn(uuid.Nil).Error("must not be the nil uuid")),
	)
}

// UpdateProductReq is a partial update. Sending the nil uuid for
// category_id or brand_id clears it, and a zero compare_at_price removes it.
type UpdateProductReq struct {
	Name           *string          `json:"name"`
	SKU            *string          `json:"sku"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	Images         []string         `json:"images"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	BrandID        *uuid.UUID       `json:"brand_id"`
	IsActive       *bool            `json:"is_active"`
}

func (r UpdateProductReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.SKU,
			validation.NilOrNotEmpty,
			validation.Length(1, 64),
			validation.Match(skuPattern).Error("sku may contain letters, digits, '-' and '_'"),
		),
		validation.Field(&r.Description, validation.Length(0, 5000)),
		validation.Field(&r.Price, validation.By(nonNegative)),
		validation.Field(&r.CompareAtPrice, validation.By(nonNegative)),
		validation.Field(&r.Images, validation.Length(0, MaxImages), validation.Each(is.URL)),
	)
}

// SetOptionsReq replaces the attribute options linked to a product.
type SetOptionsReq struct {
	OptionIDs []uuid.UUID `json:"option_ids"`
}

func (r SetOptionsReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OptionIDs,
			validation.Length(0, MaxOptionsPerProduct),
			validation.Each(validation.NotIn(uuid.Nil).Error("must not be the nil uuid")),
		),
	)
}

func nonNegative(value interface{}) error {
	d, ok := asDecimal(value)
	if ok && d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func notBelow(price decimal.Decimal) validation.RuleFunc {
	return func(value interface{}) error {
		d, ok := asDecimal(value)
		if ok && d.LessThan(price) {
			return errors.New("must not be lower than price")
		}
		return nil
	}
}

func asDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Decimal{}, false
		}
		return *v, true
	}
	return decimal.Decimal{}, false
}

// ============ RESPONSES ============

type ProductResp struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	SKU            string           `json:"sku"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	OnSale         bool             `json:"on_sale"`
	Images         []string         `json:"images"`
	CategoryID     *uuid.UUID       `json:"category_id,omitempty"`
	BrandID        *uuid.UUID       `json:"brand_id,omitempty"`
	OptionIDs      []uuid.UUID      `json:"option_ids,omitempty"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type ProductListResp struct {
	Products []ProductResp `json:"products"`
	Total    int64         `json:"total"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
}

type SetOptionsResp struct {
	Product ProductResp `json:"product"`
	Added   []uuid.UUID `json:"added"`
	Removed []uuid.UUID `json:"removed"`
}

func ToProductResp(p *Product) ProductResp {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	return ProductResp{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		SKU:            p.SKU,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		OnSale:         p.IsOnSale(),
		Images:         images,
		CategoryID:     p.CategoryID,
		BrandID:        p.BrandID,
		OptionIDs:      p.OptionIDs,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
