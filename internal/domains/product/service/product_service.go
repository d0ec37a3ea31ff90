package service

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"catalog-backend/internal/domains/hierarchy"
	"catalog-backend/internal/domains/product"
	"catalog-backend/internal/infrastructure/storage"
	"catalog-backend/internal/shared/metrics"
	"catalog-backend/internal/shared/utils"
	"catalog-backend/pkg/cache"
	"catalog-backend/pkg/logger"
)

const (
	slugCachePrefix    = "product:slug:"
	cachePattern       = "product:*"
	detailCacheTTL     = 10 * time.Minute
	optionsAssociation = "product_options"
)

type productService struct {
	repo      product.Repository
	cache     cache.Cache
	images    product.ImageStore
	processor *storage.ImageProcessor
}

type Option func(*productService)

// WithImageStore enables image uploads.
func WithImageStore(store product.ImageStore) Option {
	return func(s *productService) { s.images = store }
}

func NewProductService(repo product.Repository, c cache.Cache, opts ...Option) product.Service {
	s := &productService{repo: repo, cache: c, processor: storage.NewImageProcessor()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *productService) Create(ctx context.Context, req product.CreateProductReq) (*product.ProductResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.CategoryID, req.BrandID); err != nil {
		return nil, err
	}

	p := product.NewProduct(&req)
	slug, err := s.uniqueSlug(ctx, p.Slug, p.SKU, nil)
	if err != nil {
		return nil, err
	}
	p.Slug = slug

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, wrap("create product", err)
	}
	s.invalidate(ctx)

	logger.Info("product created", map[string]interface{}{"product_id": p.ID.String(), "sku": p.SKU})
	resp := product.ToProductResp(p)
	return &resp, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*product.ProductResp, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get product", err)
	}
	resp := product.ToProductResp(p)
	return &resp, nil
}

func (s *productService) GetBySlug(ctx context.Context, slug string) (*product.ProductResp, error) {
	key := slugCachePrefix + slug
	var cached product.ProductResp
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("product cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	if found {
		return &cached, nil
	}

	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, wrap("get product by slug", err)
	}
	resp := product.ToProductResp(p)
	if err := s.cache.Set(ctx, key, resp, detailCacheTTL); err != nil {
		logger.Warn("product cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter *product.ProductFilter) (*product.ProductListResp, error) {
	if filter == nil {
		filter = &product.ProductFilter{}
	}
	filter.Limit, filter.Offset = utils.NormalizePage(filter.Limit, filter.Offset)

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, wrap("list products", err)
	}
	out := make([]product.ProductResp, len(products))
	for i := range products {
		out[i] = product.ToProductResp(&products[i])
	}
	return &product.ProductListResp{
		Products: out,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req product.UpdateProductReq) (*product.ProductResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get product", err)
	}

	var categoryID, brandID *uuid.UUID
	if req.CategoryID != nil && *req.CategoryID != uuid.Nil {
		categoryID = req.CategoryID
	}
	if req.BrandID != nil && *req.BrandID != uuid.Nil {
		brandID = req.BrandID
	}
	if err := s.checkRefs(ctx, categoryID, brandID); err != nil {
		return nil, err
	}

	if p.Apply(&req) {
		slug, err := s.uniqueSlug(ctx, p.Slug, p.SKU, &p.ID)
		if err != nil {
			return nil, err
		}
		p.Slug = slug
	}
	if p.CompareAtPrice != nil && p.CompareAtPrice.LessThan(p.Price) {
		return nil, validation.Errors{"compare_at_price": errors.New("must not be lower than price")}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, wrap("update product", err)
	}
	s.invalidate(ctx)

	resp := product.ToProductResp(p)
	return &resp, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrap("delete product", err)
	}
	s.invalidate(ctx)
	logger.Info("product deleted", map[string]interface{}{"product_id": id.String()})

	if s.images != nil {
		if err := s.images.DeleteByPrefix(ctx, imagePrefix(id)); err != nil {
			logger.Warn("failed to remove product images", map[string]interface{}{"product_id": id.String(), "error": err.Error()})
		}
	}
	return nil
}

func (s *productService) AddImage(ctx context.Context, id uuid.UUID, data []byte) (*product.ProductResp, error) {
	if s.images == nil {
		return nil, product.ErrStorageDisabled
	}
	if err := s.processor.ValidateImage(data); err != nil {
		return nil, product.NewInvalidImage(err)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get product", err)
	}
	if len(p.Images) >= product.MaxImages {
		return nil, product.ErrTooManyImages
	}

	normalized, err := s.processor.Normalize(data)
	if err != nil {
		return nil, product.NewInvalidImage(err)
	}

	key := imagePrefix(id) + uuid.NewString() + ".jpg"
	url, err := s.images.Upload(ctx, key, normalized, "image/jpeg")
	if err != nil {
		return nil, wrap("upload product image", err)
	}

	appended, err := s.repo.AppendImage(ctx, id, url, product.MaxImages)
	if err != nil || !appended {
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			logger.Warn("failed to remove orphaned image", map[string]interface{}{"key": key, "error": delErr.Error()})
		}
		if err != nil {
			return nil, wrap("append product image", err)
		}
		return nil, product.ErrTooManyImages
	}
	s.invalidate(ctx)

	return s.GetByID(ctx, id)
}

func (s *productService) SetProductOptions(ctx context.Context, id uuid.UUID, req product.SetOptionsReq) (*product.SetOptionsResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	desired := hierarchy.NewIDSet(req.OptionIDs...)
	resolver := hierarchy.ResolverFunc(s.repo.ExistingOptionIDs)

	var applied hierarchy.Result
	err := s.repo.ReconcileOptionLinks(ctx, id, func(ctx context.Context, current hierarchy.IDSet) (hierarchy.Result, error) {
		result, err := hierarchy.Reconcile(ctx, current, desired, resolver)
		if err != nil {
			return result, err
		}
		if ue, ok := hierarchy.AsUnresolved(result.Err()); ok {
			return result, product.NewUnresolvedOptions(ue)
		}
		applied = result
		return result, nil
	})
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, product.ErrUnresolvedOptions) {
			outcome = metrics.OutcomeUnresolved
		}
		metrics.ObserveReconcile(optionsAssociation, outcome, 0, 0)
		return nil, wrap("set product options", err)
	}

	outcome := metrics.OutcomeApplied
	if applied.IsNoop() {
		outcome = metrics.OutcomeNoop
	} else {
		s.invalidate(ctx)
	}
	metrics.ObserveReconcile(optionsAssociation, outcome, applied.ToAdd.Len(), applied.ToRemove.Len())

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get product", err)
	}
	return &product.SetOptionsResp{
		Product: product.ToProductResp(p),
		Added:   applied.ToAdd.Sorted(),
		Removed: applied.ToRemove.Sorted(),
	}, nil
}

func (s *productService) checkRefs(ctx context.Context, categoryID, brandID *uuid.UUID) error {
	if categoryID != nil {
		ok, err := s.repo.CategoryExists(ctx, *categoryID)
		if err != nil {
			return wrap("validate category", err)
		}
		if !ok {
			return product.NewCategoryNotFound(*categoryID)
		}
	}
	if brandID != nil {
		ok, err := s.repo.BrandExists(ctx, *brandID)
		if err != nil {
			return wrap("validate brand", err)
		}
		if !ok {
			return product.NewBrandNotFound(*brandID)
		}
	}
	return nil
}

// uniqueSlug returns base, or base suffixed with the SKU when base is
// already used by another product.
func (s *productService) uniqueSlug(ctx context.Context, base, sku string, excludeID *uuid.UUID) (string, error) {
	taken, err := s.repo.SlugExists(ctx, base, excludeID)
	if err != nil {
		return "", wrap("check product slug", err)
	}
	if !taken {
		return base, nil
	}
	slug := utils.GenerateSlug(base + "-" + strings.ToLower(sku))
	taken, err = s.repo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return "", wrap("check product slug", err)
	}
	if taken {
		return "", product.NewDuplicateSlug(slug)
	}
	return slug, nil
}

func imagePrefix(id uuid.UUID) string {
	return "products/" + id.String() + "/"
}

func (s *productService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, cachePattern); err != nil {
		logger.Warn("product cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

func wrap(op string, err error) error {
	var pe *product.ProductError
	var verrs validation.Errors
	if errors.As(err, &pe) || errors.As(err, &verrs) {
		return err
	}
	logger.Error(op+" failed", err)
	return product.NewInternal(op, err)
}
