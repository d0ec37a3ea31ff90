package brand

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"catalog-backend/internal/shared/utils"
)

type Brand struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Website     string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	ProductsCount *int64
}

func NewBrand(name, website, description string) *Brand {
	now := time.Now()
	name = strings.TrimSpace(name)
	return &Brand{
		ID:          uuid.New(),
		Name:        name,
		Slug:        utils.GenerateSlug(name),
		Website:     strings.TrimSpace(website),
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply copies the non-nil fields of req. It reports whether the slug
// changed.
func (b *Brand) Apply(req *UpdateBrandReq) bool {
	slugChanged := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		slug := utils.GenerateSlug(name)
		slugChanged = slug != b.Slug
		b.Name, b.Slug = name, slug
	}
	if req.Website != nil {
		b.Website = strings.TrimSpace(*req.Website)
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	b.UpdatedAt = time.Now()
	return slugChanged
}
