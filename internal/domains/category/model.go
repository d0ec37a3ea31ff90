package category

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"catalog-backend/internal/shared/utils"
)

// Category is one node of the catalog category forest. A nil ParentID makes
// it a root (level 1).
type Category struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	ParentID    *uuid.UUID
	SortOrder   int
	Description string
	IconURL     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Computed by queries, not stored.
	Level         *int
	FullPath      *string
	ChildCount    *int
	ProductsCount *int64
}

// CategoryFilter narrows GetAll. Nil pointers are ignored.
type CategoryFilter struct {
	IsActive *bool
	ParentID *uuid.UUID
	RootOnly bool
	Search   string
	Limit    int
	Offset   int
}

// NewCategory builds an active category with a fresh id. The id is assigned
// here, before any hierarchy check runs, so a category that is not yet
// persisted is still compared by identity.
func NewCategory(name string, parentID *uuid.UUID, description, iconURL string, sortOrder int) *Category {
	now := time.Now()
	name = strings.TrimSpace(name)
	return &Category{
		ID:          uuid.New(),
		Name:        name,
		Slug:        utils.GenerateSlug(name),
		ParentID:    parentID,
		SortOrder:   sortOrder,
		Description: description,
		IconURL:     iconURL,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply copies the non-nil fields of req and regenerates the slug when the
// name changed. It reports whether the slug changed.
func (c *Category) Apply(req *UpdateCategoryReq) bool {
	slugChanged := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != c.Name {
			c.Name = name
			slug := utils.GenerateSlug(name)
			slugChanged = slug != c.Slug
			c.Slug = slug
		}
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.IconURL != nil {
		c.IconURL = *req.IconURL
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	c.UpdatedAt = time.Now()
	return slugChanged
}

func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

func (c *Category) GetLevel() int {
	if c.Level == nil {
		return 1
	}
	return *c.Level
}

// CanDelete reports whether the category has neither children nor products.
// Unknown counts are treated as zero.
func (c *Category) CanDelete() bool {
	if c.ChildCount != nil && *c.ChildCount > 0 {
		return false
	}
	if c.ProductsCount != nil && *c.ProductsCount > 0 {
		return false
	}
	return true
}
