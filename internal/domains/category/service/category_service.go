package service

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"catalog-backend/internal/domains/category"
	"catalog-backend/internal/domains/hierarchy"
	"catalog-backend/internal/shared/metrics"
	"catalog-backend/internal/shared/utils"
	"catalog-backend/pkg/cache"
	"catalog-backend/pkg/logger"
)

const (
	treeCacheKey     = "category:tree"
	cachePattern     = "category:*"
	subcategoriesTag = "category_subcategories"
)

// Options tunes the category service. Zero values fall back to defaults.
type Options struct {
	MaxDepth             int
	TreeCacheTTL         time.Duration
	ReconcileConcurrency int

	// OnTreeChanged, when set, runs after every write has invalidated the
	// category cache.
	OnTreeChanged func(ctx context.Context)
}

type categoryServiceImpl struct {
	repository category.CategoryRepository
	cache      cache.Cache
	opts       Options
}

func NewCategoryService(repo category.CategoryRepository, c cache.Cache, opts Options) category.CategoryService {
	if opts.MaxDepth < 1 {
		opts.MaxDepth = 3
	}
	if opts.TreeCacheTTL <= 0 {
		opts.TreeCacheTTL = 10 * time.Minute
	}
	if opts.ReconcileConcurrency < 1 {
		opts.ReconcileConcurrency = hierarchy.DefaultExistsConcurrency
	}
	return &categoryServiceImpl{repository: repo, cache: c, opts: opts}
}

// ============================================================
// READS
// ============================================================

func (s *categoryServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*category.CategoryResp, error) {
	c, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get category", err)
	}
	resp := category.ToCategoryResp(c)
	return &resp, nil
}

func (s *categoryServiceImpl) GetBySlug(ctx context.Context, slug string) (*category.CategoryResp, error) {
	c, err := s.repository.GetBySlug(ctx, slug)
	if err != nil {
		return nil, wrap("get category", err)
	}
	resp := category.ToCategoryResp(c)
	return &resp, nil
}

func (s *categoryServiceImpl) GetAll(ctx context.Context, filter *category.CategoryFilter) (*category.CategoryListResp, error) {
	if filter == nil {
		filter = &category.CategoryFilter{}
	}
	filter.Limit, filter.Offset = utils.NormalizePage(filter.Limit, filter.Offset)

	cats, total, err := s.repository.GetAll(ctx, filter)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	return &category.CategoryListResp{
		Categories: category.ToCategoryResps(cats),
		Total:      total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// GetTree serves the flat tree from cache and falls back to the database.
// Cache failures are logged and never fail the request.
func (s *categoryServiceImpl) GetTree(ctx context.Context) ([]category.CategoryTreeItemResp, error) {
	var cached []category.CategoryTreeItemResp
	found, err := s.cache.Get(ctx, treeCacheKey, &cached)
	if err != nil {
		logger.Warn("category tree cache read failed", map[string]interface{}{"error": err.Error()})
	}
	if found {
		return cached, nil
	}

	return s.RefreshTree(ctx)
}

// RefreshTree loads the tree from the database and overwrites the cached
// copy, whatever the cache holds.
func (s *categoryServiceImpl) RefreshTree(ctx context.Context) ([]category.CategoryTreeItemResp, error) {
	cats, err := s.repository.GetTree(ctx)
	if err != nil {
		return nil, wrap("load category tree", err)
	}
	items := make([]category.CategoryTreeItemResp, len(cats))
	for i := range cats {
		items[i] = category.ToTreeItemResp(&cats[i])
	}

	if err := s.cache.Set(ctx, treeCacheKey, items, s.opts.TreeCacheTTL); err != nil {
		logger.Warn("category tree cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return items, nil
}

func (s *categoryServiceImpl) GetBreadcrumb(ctx context.Context, id uuid.UUID) (*category.CategoryBreadcrumbResp, error) {
	ancestors, err := s.repository.GetAncestors(ctx, id)
	if err != nil {
		return nil, wrap("load breadcrumb", err)
	}
	if len(ancestors) == 0 {
		return nil, category.NewNotFound(id)
	}
	resp := category.ToBreadcrumbResp(ancestors)
	return &resp, nil
}

func (s *categoryServiceImpl) GetSubcategories(ctx context.Context, id uuid.UUID) ([]category.CategoryResp, error) {
	if _, err := s.repository.GetByID(ctx, id); err != nil {
		return nil, wrap("get category", err)
	}
	children, err := s.repository.GetChildren(ctx, id)
	if err != nil {
		return nil, wrap("list subcategories", err)
	}
	return category.ToCategoryResps(children), nil
}

// ============================================================
// WRITES
// ============================================================

func (s *categoryServiceImpl) Create(ctx context.Context, req category.CreateCategoryReq) (*category.CategoryResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entity := category.NewCategory(req.Name, req.ParentID, req.Description, req.IconURL, req.SortOrder)
	if err := s.ensureSlugFree(ctx, entity.Slug, nil); err != nil {
		return nil, err
	}

	err := s.repository.InTreeTx(ctx, func(tx category.TreeTx) error {
		forest, inactive, err := readTree(ctx, tx)
		if err != nil {
			return err
		}
		level, err := s.place(ctx, "create", forest, inactive, entity.ID, entity.ParentID)
		if err != nil {
			return err
		}
		entity.Level = &level
		return tx.Create(ctx, entity)
	})
	if err != nil {
		return nil, wrap("create category", err)
	}

	s.invalidate(ctx)
	logger.Info("category created", map[string]interface{}{
		"category_id": entity.ID.String(),
		"slug":        entity.Slug,
	})

	resp := category.ToCategoryResp(entity)
	return &resp, nil
}

func (s *categoryServiceImpl) Update(ctx context.Context, id uuid.UUID, req category.UpdateCategoryReq) (*category.CategoryResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get category", err)
	}
	if c.Apply(&req) {
		if err := s.ensureSlugFree(ctx, c.Slug, &c.ID); err != nil {
			return nil, err
		}
	}
	if err := s.repository.Update(ctx, c); err != nil {
		return nil, wrap("update category", err)
	}

	s.invalidate(ctx)
	resp := category.ToCategoryResp(c)
	return &resp, nil
}

// MoveToParent re-parents one category. A nil parent moves it to the root
// level. The cycle check and the depth check run against the forest read
// under the tree lock.
func (s *categoryServiceImpl) MoveToParent(ctx context.Context, id uuid.UUID, req category.MoveToParentReq) (*category.CategoryResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.repository.InTreeTx(ctx, func(tx category.TreeTx) error {
		forest, inactive, err := readTree(ctx, tx)
		if err != nil {
			return err
		}
		if _, ok := forest.Parent(id); !ok {
			return category.NewNotFound(id)
		}
		if _, err := s.place(ctx, "move", forest, inactive, id, req.ParentID); err != nil {
			return err
		}
		_, err = tx.SetParent(ctx, []uuid.UUID{id}, req.ParentID)
		return err
	})
	if err != nil {
		return nil, wrap("move category", err)
	}

	s.invalidate(ctx)
	logger.Info("category moved", map[string]interface{}{
		"category_id": id.String(),
		"parent_id":   uuidString(req.ParentID),
	})
	return s.GetByID(ctx, id)
}

// BulkMove applies every move or none. Each move is checked against a
// working copy of the forest that already reflects the moves before it,
// so a pair of moves that together would form a loop is rejected.
func (s *categoryServiceImpl) BulkMove(ctx context.Context, req category.BulkMoveReq) (*category.BulkMoveResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	seen := hierarchy.NewIDSet()
	for _, m := range req.Moves {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if seen.Has(m.CategoryID) {
			return nil, category.NewDuplicateMove(m.CategoryID)
		}
		seen.Add(m.CategoryID)
	}

	err := s.repository.InTreeTx(ctx, func(tx category.TreeTx) error {
		forest, inactive, err := readTree(ctx, tx)
		if err != nil {
			return err
		}
		for i, m := range req.Moves {
			if _, ok := forest.Parent(m.CategoryID); !ok {
				return category.NewMoveError(i, category.NewNotFound(m.CategoryID))
			}
			if _, err := s.place(ctx, "bulk_move", forest, inactive, m.CategoryID, m.ParentID); err != nil {
				var ce *category.CategoryError
				if errors.As(err, &ce) {
					return category.NewMoveError(i, ce)
				}
				return err
			}
			forest.Set(m.CategoryID, parentOrNil(m.ParentID))
		}
		for _, m := range req.Moves {
			if _, err := tx.SetParent(ctx, []uuid.UUID{m.CategoryID}, m.ParentID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap("move categories", err)
	}

	s.invalidate(ctx)
	logger.Info("categories moved", map[string]interface{}{"count": len(req.Moves)})
	return &category.BulkMoveResp{Moved: len(req.Moves)}, nil
}

// SetSubcategories makes the requested ids exactly the direct children of
// id. Unknown ids fail the whole request before anything is written; every
// addition is cycle and depth checked; children left out of the list are
// detached to the root level.
func (s *categoryServiceImpl) SetSubcategories(ctx context.Context, id uuid.UUID, req category.SetSubcategoriesReq) (*category.SetSubcategoriesResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.SubcategoryIDs) == 0 && !req.AllowEmpty {
		return nil, category.ErrEmptyChildren
	}

	var result hierarchy.Result
	err := s.repository.InTreeTx(ctx, func(tx category.TreeTx) error {
		forest, inactive, err := readTree(ctx, tx)
		if err != nil {
			return err
		}
		if _, ok := forest.Parent(id); !ok {
			return category.NewNotFound(id)
		}

		children, err := forest.ChildrenOf(ctx, id)
		if err != nil {
			return err
		}
		current := hierarchy.NewIDSet(children...)
		desired := hierarchy.NewIDSet(req.SubcategoryIDs...)

		resolver := hierarchy.ExistsFunc(forest.Exists).WithLimit(s.opts.ReconcileConcurrency)
		result, err = hierarchy.Reconcile(ctx, current, desired, resolver)
		if err != nil {
			return err
		}
		if ue, ok := hierarchy.AsUnresolved(result.Err()); ok {
			return category.NewUnresolvedError(ue)
		}

		removed := result.ToRemove.Sorted()
		for _, child := range removed {
			forest.Set(child, uuid.Nil)
		}
		parent := id
		added := result.ToAdd.Sorted()
		for _, child := range added {
			if _, err := s.place(ctx, "set_subcategories", forest, inactive, child, &parent); err != nil {
				return err
			}
			forest.Set(child, parent)
		}

		if len(removed) > 0 {
			if _, err := tx.SetParent(ctx, removed, nil); err != nil {
				return err
			}
		}
		if len(added) > 0 {
			if _, err := tx.SetParent(ctx, added, &parent); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.ObserveReconcile(subcategoriesTag, reconcileOutcome(err), 0, 0)
		return nil, wrap("set subcategories", err)
	}

	outcome := metrics.OutcomeApplied
	if result.IsNoop() {
		outcome = metrics.OutcomeNoop
	} else {
		s.invalidate(ctx)
	}
	metrics.ObserveReconcile(subcategoriesTag, outcome, result.ToAdd.Len(), result.ToRemove.Len())
	logger.Info("subcategories reconciled", map[string]interface{}{
		"category_id": id.String(),
		"added":       result.ToAdd.Len(),
		"removed":     result.ToRemove.Len(),
	})

	children, err := s.repository.GetChildren(ctx, id)
	if err != nil {
		return nil, wrap("list subcategories", err)
	}
	return &category.SetSubcategoriesResp{
		ParentID:      id,
		Added:         result.ToAdd.Sorted(),
		Removed:       result.ToRemove.Sorted(),
		Subcategories: category.ToCategoryResps(children),
	}, nil
}

// Activate refuses to activate a category whose parent is inactive, so an
// active category always has an active path to the root. Create, moves and
// BulkActivate keep the same rule.
func (s *categoryServiceImpl) Activate(ctx context.Context, id uuid.UUID) (*category.CategoryResp, error) {
	err := s.repository.InTreeTx(ctx, func(tx category.TreeTx) error {
		forest, inactive, err := readTree(ctx, tx)
		if err != nil {
			return err
		}
		parent, ok := forest.Parent(id)
		if !ok {
			return category.NewNotFound(id)
		}
		if parent != uuid.Nil && inactive.Has(parent) {
			return category.NewParentInactive(id, parent)
		}
		_, err = tx.SetActive(ctx, []uuid.UUID{id}, true)
		return err
	})
	if err != nil {
		return nil, wrap("activate category", err)
	}
	s.invalidate(ctx)
	return s.GetByID(ctx, id)
}

func (s *categoryServiceImpl) Deactivate(ctx context.Context, id uuid.UUID) (*category.BulkActionResp, error) {
	var affected int64
	err := s.repository.InTreeTx(ctx, func(tx category.TreeTx) error {
		forest, err := tx.Forest(ctx)
		if err != nil {
			return err
		}
		if _, ok := forest.Parent(id); !ok {
			return category.NewNotFound(id)
		}
		subtree, err := collectSubtree(ctx, forest, id)
		if err != nil {
			return err
		}
		affected, err = tx.SetActive(ctx, subtree, false)
		return err
	})
	if err != nil {
		return nil, wrap("deactivate category", err)
	}
	s.invalidate(ctx)
	logger.Info("category subtree deactivated", map[string]interface{}{
		"category_id": id.String(),
		"affected":    affected,
	})
	return &category.BulkActionResp{Affected: affected}, nil
}

// BulkActivate activates the listed categories whose ancestors are all
// active or listed too. The others, unknown ids included, are skipped and
// reported.
func (s *categoryServiceImpl) BulkActivate(ctx context.Context, req category.BulkCategoryIDsReq) (*category.BulkActionResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var affected int64
	var skipped []uuid.UUID
	err := s.repository.InTreeTx(ctx, func(tx category.TreeTx) error {
		forest, inactive, err := readTree(ctx, tx)
		if err != nil {
			return err
		}
		batch := hierarchy.NewIDSet(req.CategoryIDs...)
		skipped = nil
		var ready []uuid.UUID
		for _, id := range batch.Sorted() {
			if activePath(forest, inactive, batch, id) {
				ready = append(ready, id)
			} else {
				skipped = append(skipped, id)
			}
		}
		if len(ready) == 0 {
			return nil
		}
		affected, err = tx.SetActive(ctx, ready, true)
		return err
	})
	if err != nil {
		return nil, wrap("activate categories", err)
	}
	s.invalidate(ctx)
	if len(skipped) > 0 {
		logger.Warn("categories left inactive under inactive parents", map[string]interface{}{"skipped": len(skipped)})
	}
	return &category.BulkActionResp{Affected: affected, Skipped: skipped}, nil
}

// BulkDeactivate deactivates every listed category together with its
// subtree.
func (s *categoryServiceImpl) BulkDeactivate(ctx context.Context, req category.BulkCategoryIDsReq) (*category.BulkActionResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var affected int64
	err := s.repository.InTreeTx(ctx, func(tx category.TreeTx) error {
		forest, err := tx.Forest(ctx)
		if err != nil {
			return err
		}
		all := hierarchy.NewIDSet()
		for _, id := range req.CategoryIDs {
			if _, ok := forest.Parent(id); !ok {
				continue
			}
			subtree, err := collectSubtree(ctx, forest, id)
			if err != nil {
				return err
			}
			all = all.Union(hierarchy.NewIDSet(subtree...))
		}
		if all.Len() == 0 {
			return nil
		}
		affected, err = tx.SetActive(ctx, all.Sorted(), false)
		return err
	})
	if err != nil {
		return nil, wrap("deactivate categories", err)
	}
	s.invalidate(ctx)
	return &category.BulkActionResp{Affected: affected}, nil
}

func (s *categoryServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	children, err := s.repository.GetChildren(ctx, id)
	if err != nil {
		return wrap("list subcategories", err)
	}
	if len(children) > 0 {
		return category.ErrHasChildren
	}
	n, err := s.repository.CountProducts(ctx, id)
	if err != nil {
		return wrap("count products", err)
	}
	if n > 0 {
		return category.ErrHasProducts
	}
	if err := s.repository.Delete(ctx, id); err != nil {
		return wrap("delete category", err)
	}
	s.invalidate(ctx)
	logger.Info("category deleted", map[string]interface{}{"category_id": id.String()})
	return nil
}

// BulkDelete removes the deletable categories among the ids and skips the
// rest.
func (s *categoryServiceImpl) BulkDelete(ctx context.Context, req category.BulkCategoryIDsReq) (*category.BulkActionResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	n, err := s.repository.DeleteMany(ctx, req.CategoryIDs)
	if err != nil {
		return nil, wrap("delete categories", err)
	}
	s.invalidate(ctx)
	return &category.BulkActionResp{Affected: n}, nil
}

// ============================================================
// HELPERS
// ============================================================

// place validates putting child under parent in forest and returns the
// level child would get. A nil parent is the root level. An active child
// may not go under an inactive parent; a new category counts as active.
func (s *categoryServiceImpl) place(ctx context.Context, op string, forest *hierarchy.Snapshot, inactive hierarchy.IDSet, child uuid.UUID, parent *uuid.UUID) (int, error) {
	if parent == nil {
		return 1, nil
	}
	if _, ok := forest.Parent(*parent); !ok {
		return 0, category.NewParentNotFound(*parent)
	}

	err := hierarchy.CheckEdge(ctx, child, *parent, forest)
	ce, isCycle := hierarchy.AsCycle(err)
	metrics.ObserveCheck(op, err, isCycle)
	if isCycle {
		return 0, category.NewCycleError(ce)
	}
	if err != nil {
		return 0, err
	}

	height, err := hierarchy.SubtreeHeight(ctx, child, forest)
	if err != nil {
		return 0, err
	}
	level := levelOf(forest, *parent) + 1
	if deepest := level + height; deepest > s.opts.MaxDepth {
		return 0, category.NewMaxDepthExceeded(s.opts.MaxDepth, deepest)
	}
	if inactive.Has(*parent) && !inactive.Has(child) {
		return 0, category.NewParentInactive(child, *parent)
	}
	return level, nil
}

// readTree reads the forest and the inactive ids under the tree lock.
func readTree(ctx context.Context, tx category.TreeTx) (*hierarchy.Snapshot, hierarchy.IDSet, error) {
	forest, err := tx.Forest(ctx)
	if err != nil {
		return nil, nil, err
	}
	inactive, err := tx.InactiveIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	return forest, inactive, nil
}

// activePath reports whether every ancestor of id is active or in batch.
// Unknown ids, dangling parents and parent loops count as blocked.
func activePath(forest *hierarchy.Snapshot, inactive, batch hierarchy.IDSet, id uuid.UUID) bool {
	node := id
	for steps := 0; steps <= forest.Len(); steps++ {
		parent, ok := forest.Parent(node)
		if !ok {
			return false
		}
		if parent == uuid.Nil {
			return true
		}
		if inactive.Has(parent) && !batch.Has(parent) {
			return false
		}
		node = parent
	}
	return false
}

func (s *categoryServiceImpl) ensureSlugFree(ctx context.Context, slug string, excludeID *uuid.UUID) error {
	exists, err := s.repository.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return wrap("check slug", err)
	}
	if exists {
		return category.NewDuplicateSlug(slug)
	}
	return nil
}

func (s *categoryServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, cachePattern); err != nil {
		logger.Warn("category cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
	if s.opts.OnTreeChanged != nil {
		s.opts.OnTreeChanged(ctx)
	}
}

// levelOf counts the nodes from id up to its root, id included. The walk is
// bounded by the forest size so a corrupted parent chain still ends.
func levelOf(forest *hierarchy.Snapshot, id uuid.UUID) int {
	level := 1
	for i := 0; i <= forest.Len(); i++ {
		parent, ok := forest.Parent(id)
		if !ok || parent == uuid.Nil {
			break
		}
		level++
		id = parent
	}
	return level
}

// collectSubtree returns root and every descendant, root first.
func collectSubtree(ctx context.Context, lookup hierarchy.Lookup, root uuid.UUID) ([]uuid.UUID, error) {
	visited := hierarchy.NewIDSet(root)
	out := []uuid.UUID{root}
	for i := 0; i < len(out); i++ {
		children, err := lookup.ChildrenOf(ctx, out[i])
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if visited.Has(c) {
				continue
			}
			visited.Add(c)
			out = append(out, c)
		}
	}
	return out, nil
}

func wrap(op string, err error) error {
	var ce *category.CategoryError
	var verrs validation.Errors
	if errors.As(err, &ce) || errors.As(err, &verrs) {
		return err
	}
	logger.Error(op+" failed", err)
	return category.NewInternal(op, err)
}

func reconcileOutcome(err error) string {
	switch {
	case errors.Is(err, category.ErrUnresolved):
		return metrics.OutcomeUnresolved
	case errors.Is(err, category.ErrCycle):
		return metrics.OutcomeCycle
	}
	return metrics.OutcomeError
}

func parentOrNil(p *uuid.UUID) uuid.UUID {
	if p == nil {
		return uuid.Nil
	}
	return *p
}

func uuidString(p *uuid.UUID) string {
	if p == nil {
		return ""
	}
	return p.String()
}
