package category

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// MaxBulkItems caps the number of ids accepted by bulk endpoints.
const MaxBulkItems = 100

// ============================================================
// REQUEST DTOs
// ============================================================

// CreateCategoryReq is the body of POST /v1/categories.
//
//	{
//	  "name": "Fiction",
//	  "parent_id": "550e8400-e29b-41d4-a716-446655440000",
//	  "description": "Novels and short stories",
//	  "icon_url": "https://cdn.example.com/fiction.svg",
//	  "sort_order": 1
//	}
//
// A missing parent_id creates a root category.
type CreateCategoryReq struct {
	Name        string     `json:"name"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Description string     `json:"description"`
	IconURL     string     `json:"icon_url"`
	SortOrder   int        `json:"sort_order"`
}

func (r CreateCategoryReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 255).Error("name must be 1-255 characters"),
		),
		validation.Field(&r.ParentID, validation.NotIn(uuid.Nil).Error("parent_id must not be the nil uuid")),
		validation.Field(&r.Description, validation.Length(0, 1000).Error("description must be at most 1000 characters")),
		validation.Field(&r.IconURL, is.URL.Error("icon_url must be a valid URL")),
		validation.Field(&r.SortOrder, validation.Min(0), validation.Max(999)),
	)
}

// UpdateCategoryReq is the body of PUT /v1/categories/{id}. Nil fields are
// left unchanged. The parent is changed through MoveToParentReq only.
type UpdateCategoryReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IconURL     *string `json:"icon_url"`
	SortOrder   *int    `json:"sort_order"`
}

func (r UpdateCategoryReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.NilOrNotEmpty.Error("name must not be empty"),
			validation.Length(1, 255).Error("name must be 1-255 characters"),
		),
		validation.Field(&r.Description, validation.Length(0, 1000).Error("description must be at most 1000 characters")),
		validation.Field(&r.IconURL, is.URL.Error("icon_url must be a valid URL")),
		validation.Field(&r.SortOrder, validation.Min(0), validation.Max(999)),
	)
}

// MoveToParentReq is the body of PATCH /v1/categories/{id}/parent.
// A null parent_id moves the category to the root level.
type MoveToParentReq struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

func (r MoveToParentReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ParentID, validation.NotIn(uuid.Nil).Error("parent_id must not be the nil uuid")),
	)
}

// MoveItem is one reparent instruction of a bulk move.
type MoveItem struct {
	CategoryID uuid.UUID  `json:"category_id"`
	ParentID   *uuid.UUID `json:"parent_id"`
}

func (m MoveItem) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.CategoryID, validation.NotIn(uuid.Nil).Error("category_id is required")),
		validation.Field(&m.ParentID, validation.NotIn(uuid.Nil).Error("parent_id must not be the nil uuid")),
	)
}

// BulkMoveReq is the body of POST /v1/categories/bulk/move.
//
//	{
//	  "moves": [
//	    {"category_id": "...", "parent_id": "..."},
//	    {"category_id": "...", "parent_id": null}
//	  ]
//	}
//
// Moves are checked in order against the tree as it stands after the
// previous moves. Either every move is applied or none is.
type BulkMoveReq struct {
	Moves []MoveItem `json:"moves"`
}

func (r BulkMoveReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Moves,
			validation.Required.Error("moves must not be empty"),
			validation.Length(1, MaxBulkItems),
		),
	)
}

// SetSubcategoriesReq is the body of PUT /v1/categories/{id}/subcategories.
// It replaces the direct children of the category. Children missing from
// the list are detached to the root level. An empty list is rejected unless
// allow_empty is set.
type SetSubcategoriesReq struct {
	SubcategoryIDs []uuid.UUID `json:"subcategory_ids"`
	AllowEmpty     bool        `json:"allow_empty"`
}

func (r SetSubcategoriesReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SubcategoryIDs,
			validation.Length(0, MaxBulkItems),
			validation.Each(validation.NotIn(uuid.Nil).Error("must not be the nil uuid")),
		),
	)
}

// BulkCategoryIDsReq is the body of the bulk activate, deactivate and
// delete endpoints.
type BulkCategoryIDsReq struct {
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

func (r BulkCategoryIDsReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CategoryIDs,
			validation.Required.Error("category_ids must not be empty"),
			validation.Length(1, MaxBulkItems),
			validation.Each(validation.NotIn(uuid.Nil).Error("must not be the nil uuid")),
		),
	)
}

// ============================================================
// RESPONSE DTOs
// ============================================================

type CategoryResp struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	ParentID      *uuid.UUID `json:"parent_id,omitempty"`
	Level         int        `json:"level"`
	SortOrder     int        `json:"sort_order"`
	Description   string     `json:"description,omitempty"`
	IconURL       string     `json:"icon_url,omitempty"`
	ChildrenCount int        `json:"children_count"`
	ProductsCount int64      `json:"products_count"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CategoryTreeItemResp is one row of GET /v1/categories/tree. The tree is
// returned flat in depth-first order; clients nest it using ParentID and
// Level.
type CategoryTreeItemResp struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	ParentID      *uuid.UUID `json:"parent_id,omitempty"`
	Level         int        `json:"level"`
	FullPath      string     `json:"full_path"`
	ChildrenCount int        `json:"children_count"`
	IsActive      bool       `json:"is_active"`
}

type BreadcrumbItem struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Slug  string    `json:"slug"`
	Level int       `json:"level"`
}

// CategoryBreadcrumbResp lists the path from the root down to the category.
type CategoryBreadcrumbResp struct {
	Items []BreadcrumbItem `json:"items"`
}

type CategoryListResp struct {
	Categories []CategoryResp `json:"categories"`
	Total      int64          `json:"total"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
}

type BulkActionResp struct {
	Affected int64       `json:"affected"`
	Skipped  []uuid.UUID `json:"skipped,omitempty"`
}

type BulkMoveResp struct {
	Moved int `json:"moved"`
}

// SetSubcategoriesResp reports what SetSubcategories changed.
type SetSubcategoriesResp struct {
	ParentID      uuid.UUID      `json:"parent_id"`
	Added         []uuid.UUID    `json:"added"`
	Removed       []uuid.UUID    `json:"removed"`
	Subcategories []CategoryResp `json:"subcategories"`
}

// ============================================================
// MAPPERS
// ============================================================

func ToCategoryResp(c *Category) CategoryResp {
	resp := CategoryResp{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		ParentID:    c.ParentID,
		Level:       c.GetLevel(),
		SortOrder:   c.SortOrder,
		Description: c.Description,
		IconURL:     c.IconURL,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.ChildCount != nil {
		resp.ChildrenCount = *c.ChildCount
	}
	if c.ProductsCount != nil {
		resp.ProductsCount = *c.ProductsCount
	}
	return resp
}

func ToCategoryResps(cats []Category) []CategoryResp {
	out := make([]CategoryResp, len(cats))
	for i := range cats {
		out[i] = ToCategoryResp(&cats[i])
	}
	return out
}

func ToTreeItemResp(c *Category) CategoryTreeItemResp {
	item := CategoryTreeItemResp{
		ID:       c.ID,
		Name:     c.Name,
		Slug:     c.Slug,
		ParentID: c.ParentID,
		Level:    c.GetLevel(),
		FullPath: c.Name,
		IsActive: c.IsActive,
	}
	if c.FullPath != nil {
		item.FullPath = *c.FullPath
	}
	if c.ChildCount != nil {
		item.ChildrenCount = *c.ChildCount
	}
	return item
}

func ToBreadcrumbResp(ancestors []Category) CategoryBreadcrumbResp {
	items := make([]BreadcrumbItem, len(ancestors))
	for i := range ancestors {
		items[i] = BreadcrumbItem{
			ID:    ancestors[i].ID,
			Name:  ancestors[i].Name,
			Slug:  ancestors[i].Slug,
			Level: i + 1,
		}
	}
	return CategoryBreadcrumbResp{Items: items}
}
