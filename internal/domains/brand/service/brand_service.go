package service

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"catalog-backend/internal/domains/brand"
	"catalog-backend/internal/shared/utils"
	"catalog-backend/pkg/logger"
)

type brandService struct {
	repo brand.Repository
}

func NewBrandService(repo brand.Repository) brand.Service {
	return &brandService{repo: repo}
}

func (s *brandService) Create(ctx context.Context, req brand.CreateBrandReq) (*brand.BrandResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	b := brand.NewBrand(req.Name, req.Website, req.Description)
	if err := s.ensureSlugFree(ctx, b.Slug, nil); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, wrap("create brand", err)
	}
	logger.Info("brand created", map[string]interface{}{"brand_id": b.ID.String(), "slug": b.Slug})

	resp := brand.ToBrandResp(b)
	return &resp, nil
}

func (s *brandService) GetByID(ctx context.Context, id uuid.UUID) (*brand.BrandResp, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get brand", err)
	}
	resp := brand.ToBrandResp(b)
	return &resp, nil
}

func (s *brandService) GetBySlug(ctx context.Context, slug string) (*brand.BrandResp, error) {
	b, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, wrap("get brand", err)
	}
	resp := brand.ToBrandResp(b)
	return &resp, nil
}

func (s *brandService) List(ctx context.Context, search string, limit, offset int) (*brand.BrandListResp, error) {
	limit, offset = utils.NormalizePage(limit, offset)
	brands, total, err := s.repo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, wrap("list brands", err)
	}
	out := make([]brand.BrandResp, len(brands))
	for i := range brands {
		out[i] = brand.ToBrandResp(&brands[i])
	}
	return &brand.BrandListResp{Brands: out, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *brandService) Update(ctx context.Context, id uuid.UUID, req brand.UpdateBrandReq) (*brand.BrandResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get brand", err)
	}
	if b.Apply(&req) {
		if err := s.ensureSlugFree(ctx, b.Slug, &b.ID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, wrap("update brand", err)
	}
	resp := brand.ToBrandResp(b)
	return &resp, nil
}

// Delete refuses while any product still references the brand.
func (s *brandService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return wrap("count brand products", err)
	}
	if n > 0 {
		return brand.NewHasProducts(id, n)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrap("delete brand", err)
	}
	logger.Info("brand deleted", map[string]interface{}{"brand_id": id.String()})
	return nil
}

func (s *brandService) ensureSlugFree(ctx context.Context, slug string, excludeID *uuid.UUID) error {
	exists, err := s.repo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return wrap("check brand slug", err)
	}
	if exists {
		return brand.NewDuplicateSlug(slug)
	}
	return nil
}

func wrap(op string, err error) error {
	var be *brand.BrandError
	var verrs validation.Errors
	if errors.As(err, &be) || errors.As(err, &verrs) {
		return err
	}
	logger.Error(op+" failed", err)
	return brand.NewInternal(op, err)
}
