package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-backend/internal/domains/category"
	"catalog-backend/internal/domains/hierarchy"
	infraCache "catalog-backend/internal/infrastructure/cache"
)

func newTestService(repo *fakeRepo) category.CategoryService {
	return NewCategoryService(repo, infraCache.NewMemoryCache(), Options{MaxDepth: 3})
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

// chain builds root > mid > leaf and returns the three ids.
func chain(repo *fakeRepo) (root, mid, leaf uuid.UUID) {
	root = repo.add("Books", nil)
	mid = repo.add("Fiction", ptr(root))
	leaf = repo.add("Crime", ptr(mid))
	return root, mid, leaf
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("root category", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)

		resp, err := svc.Create(ctx, category.CreateCategoryReq{Name: "Văn Học"})
		require.NoError(t, err)
		assert.Equal(t, "van-hoc", resp.Slug)
		assert.Equal(t, 1, resp.Level)
		assert.Nil(t, resp.ParentID)
		assert.Contains(t, repo.cats, resp.ID)
	})

	t.Run("child gets parent level plus one", func(t *testing.T) {
		repo := newFakeRepo()
		root := repo.add("Books", nil)
		svc := newTestService(repo)

		resp, err := svc.Create(ctx, category.CreateCategoryReq{Name: "Poetry", ParentID: ptr(root)})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Level)
		assert.Equal(t, root, *repo.parentOf(resp.ID))
	})

	t.Run("missing parent", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)

		_, err := svc.Create(ctx, category.CreateCategoryReq{Name: "Orphan", ParentID: ptr(uuid.New())})
		assert.ErrorIs(t, err, category.ErrParentNotFound)
		assert.Empty(t, repo.cats)
	})

	t.Run("max depth", func(t *testing.T) {
		repo := newFakeRepo()
		_, _, leaf := chain(repo)
		svc := newTestService(repo)

		_, err := svc.Create(ctx, category.CreateCategoryReq{Name: "Too Deep", ParentID: ptr(leaf)})
		assert.ErrorIs(t, err, category.ErrMaxDepthExceeded)
		assert.Equal(t, http.StatusUnprocessableEntity, category.GetHTTPStatusCode(err))
		assert.Len(t, repo.cats, 3)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		repo := newFakeRepo()
		repo.add("Books", nil)
		svc := newTestService(repo)

		_, err := svc.Create(ctx, category.CreateCategoryReq{Name: "books"})
		assert.ErrorIs(t, err, category.ErrDuplicateSlug)
		assert.Equal(t, http.StatusConflict, category.GetHTTPStatusCode(err))
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestService(newFakeRepo())

		_, err := svc.Create(ctx, category.CreateCategoryReq{Name: "", SortOrder: 1000})
		var verrs validation.Errors
		require.True(t, errors.As(err, &verrs))
		assert.Contains(t, verrs, "name")
		assert.Contains(t, verrs, "sort_order")
		assert.Equal(t, http.StatusBadRequest, category.GetHTTPStatusCode(err))
	})
}

func TestMoveToParent(t *testing.T) {
	ctx := context.Background()

	t.Run("under own descendant is a cycle", func(t *testing.T) {
		repo := newFakeRepo()
		root, _, leaf := chain(repo)
		svc := newTestService(repo)

		_, err := svc.MoveToParent(ctx, root, category.MoveToParentReq{ParentID: ptr(leaf)})
		require.Error(t, err)
		assert.ErrorIs(t, err, category.ErrCycle)
		assert.ErrorIs(t, err, hierarchy.ErrCycle)
		assert.Equal(t, http.StatusConflict, category.GetHTTPStatusCode(err))

		var ce *category.CategoryError
		require.True(t, errors.As(err, &ce))
		details := ce.Details.(map[string]interface{})
		assert.Equal(t, root, details["category_id"])
		assert.Equal(t, leaf, details["parent_id"])
		assert.Nil(t, repo.parentOf(root))
	})

	t.Run("under itself is a cycle", func(t *testing.T) {
		repo := newFakeRepo()
		root := repo.add("Books", nil)
		svc := newTestService(repo)

		_, err := svc.MoveToParent(ctx, root, category.MoveToParentReq{ParentID: ptr(root)})
		assert.ErrorIs(t, err, hierarchy.ErrCycle)
	})

	t.Run("to root", func(t *testing.T) {
		repo := newFakeRepo()
		_, mid, _ := chain(repo)
		svc := newTestService(repo)

		resp, err := svc.MoveToParent(ctx, mid, category.MoveToParentReq{})
		require.NoError(t, err)
		assert.Nil(t, resp.ParentID)
		assert.Equal(t, 1, resp.Level)
	})

	t.Run("to sibling branch", func(t *testing.T) {
		repo := newFakeRepo()
		root, _, leaf := chain(repo)
		other := repo.add("Comics", ptr(root))
		svc := newTestService(repo)

		resp, err := svc.MoveToParent(ctx, leaf, category.MoveToParentReq{ParentID: ptr(other)})
		require.NoError(t, err)
		assert.Equal(t, other, *resp.ParentID)
		assert.Equal(t, 3, resp.Level)
	})

	t.Run("subtree height counts toward depth", func(t *testing.T) {
		repo := newFakeRepo()
		root := repo.add("Books", nil)
		mid := repo.add("Fiction", ptr(root))
		other := repo.add("Music", nil)
		repo.add("Jazz", ptr(other))
		svc := newTestService(repo)

		// Music (height 1) under Fiction (level 2) would reach level 4.
		_, err := svc.MoveToParent(ctx, other, category.MoveToParentReq{ParentID: ptr(mid)})
		assert.ErrorIs(t, err, category.ErrMaxDepthExceeded)

		_, err = svc.MoveToParent(ctx, other, category.MoveToParentReq{ParentID: ptr(root)})
		assert.NoError(t, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		svc := newTestService(newFakeRepo())

		_, err := svc.MoveToParent(ctx, uuid.New(), category.MoveToParentReq{})
		assert.ErrorIs(t, err, category.ErrCategoryNotFound)
	})

	t.Run("unknown parent", func(t *testing.T) {
		repo := newFakeRepo()
		root := repo.add("Books", nil)
		svc := newTestService(repo)

		_, err := svc.MoveToParent(ctx, root, category.MoveToParentReq{ParentID: ptr(uuid.New())})
		assert.ErrorIs(t, err, category.ErrParentNotFound)
	})

	t.Run("store failure is internal", func(t *testing.T) {
		repo := newFakeRepo()
		root := repo.add("Books", nil)
		repo.failForest = true
		svc := newTestService(repo)

		_, err := svc.MoveToParent(ctx, root, category.MoveToParentReq{})
		assert.ErrorIs(t, err, errRepoDown)
		assert.Equal(t, http.StatusInternalServerError, category.GetHTTPStatusCode(err))
	})
}

func TestBulkMove(t *testing.T) {
	ctx := context.Background()

	t.Run("moves that only loop together are rejected", func(t *testing.T) {
		repo := newFakeRepo()
		a := repo.add("Alpha", nil)
		b := repo.add("Beta", nil)
		svc := newTestService(repo)

		_, err := svc.BulkMove(ctx, category.BulkMoveReq{Moves: []category.MoveItem{
			{CategoryID: a, ParentID: ptr(b)},
			{CategoryID: b, ParentID: ptr(a)},
		}})
		require.Error(t, err)
		assert.ErrorIs(t, err, category.ErrCycle)

		var ce *category.CategoryError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, 1, ce.Details.(map[string]interface{})["index"])

		assert.Nil(t, repo.parentOf(a), "nothing may be applied")
		assert.Nil(t, repo.parentOf(b))
	})

	t.Run("later moves see earlier ones", func(t *testing.T) {
		repo := newFakeRepo()
		a := repo.add("Alpha", nil)
		b := repo.add("Beta", nil)
		c := repo.add("Gamma", ptr(a))
		svc := newTestService(repo)

		// Gamma leaves Alpha first, so Alpha can then go under Gamma.
		resp, err := svc.BulkMove(ctx, category.BulkMoveReq{Moves: []category.MoveItem{
			{CategoryID: c, ParentID: ptr(b)},
			{CategoryID: a, ParentID: ptr(c)},
		}})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Moved)
		assert.Equal(t, b, *repo.parentOf(c))
		assert.Equal(t, c, *repo.parentOf(a))
	})

	t.Run("depth uses the working tree", func(t *testing.T) {
		repo := newFakeRepo()
		a := repo.add("Alpha", nil)
		b := repo.add("Beta", nil)
		c := repo.add("Gamma", nil)
		d := repo.add("Delta", nil)
		svc := newTestService(repo)

		_, err := svc.BulkMove(ctx, category.BulkMoveReq{Moves: []category.MoveItem{
			{CategoryID: b, ParentID: ptr(a)},
			{CategoryID: c, ParentID: ptr(b)},
			{CategoryID: d, ParentID: ptr(c)},
		}})
		assert.ErrorIs(t, err, category.ErrMaxDepthExceeded)
		assert.Nil(t, repo.parentOf(b))
	})

	t.Run("duplicate category", func(t *testing.T) {
		repo := newFakeRepo()
		a := repo.add("Alpha", nil)
		svc := newTestService(repo)

		_, err := svc.BulkMove(ctx, category.BulkMoveReq{Moves: []category.MoveItem{
			{CategoryID: a},
			{CategoryID: a},
		}})
		assert.ErrorIs(t, err, category.ErrDuplicateMove)
		assert.Zero(t, repo.txCount)
	})

	t.Run("empty", func(t *testing.T) {
		svc := newTestService(newFakeRepo())

		_, err := svc.BulkMove(ctx, category.BulkMoveReq{})
		assert.Equal(t, http.StatusBadRequest, category.GetHTTPStatusCode(err))
	})
}

func TestSetSubcategories(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces children and detaches the rest to root", func(t *testing.T) {
		repo := newFakeRepo()
		root := repo.add("Books", nil)
		keep := repo.add("Fiction", ptr(root))
		drop := repo.add("Poetry", ptr(root))
		adopt := repo.add("Comics", nil)
		svc := newTestService(repo)

		resp, err := svc.SetSubcategories(ctx, root, category.SetSubcategoriesReq{
			SubcategoryIDs: []uuid.UUID{keep, adopt},
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{adopt}, resp.Added)
		assert.Equal(t, []uuid.UUID{drop}, resp.Removed)
		assert.Len(t, resp.Subcategories, 2)

		assert.Equal(t, root, *repo.parentOf(keep))
		assert.Equal(t, root, *repo.parentOf(adopt))
		assert.Nil(t, repo.parentOf(drop))
	})

	t.Run("second identical call is a no-op", func(t *testing.T) {
		repo := newFakeRepo()
		root := repo.add("Books", nil)
		child := repo.add("Fiction", nil)
		svc := newTestService(repo)
		req := category.SetSubcategoriesReq{SubcategoryIDs: []uuid.UUID{child}}

		_, err := svc.SetSubcategories(ctx, root, req)
		require.NoError(t, err)
		resp, err := svc.SetSubcategories(ctx, root, req)
		require.NoError(t, err)
		assert.Empty(t, resp.Added)
		assert.Empty(t, resp.Removed)
	})

	t.Run("unknown ids fail without changes", func(t *testing.T) {
		repo := newFakeRepo()
		root := repo.add("Books", nil)
		existing := repo.add("Fiction", ptr(root))
		free := repo.add("Comics", nil)
		missing1, missing2 := uuid.New(), uuid.New()
		svc := newTestService(repo)

		_, err := svc.SetSubcategories(ctx, root, category.SetSubcategoriesReq{
			SubcategoryIDs: []uuid.UUID{free, missing1, missing2},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, category.ErrUnresolved)
		assert.ErrorIs(t, err, hierarchy.ErrUnresolved)
		assert.Equal(t, http.StatusNotFound, category.GetHTTPStatusCode(err))

		ue, ok := hierarchy.AsUnresolved(err)
		require.True(t, ok)
		assert.ElementsMatch(t, []uuid.UUID{missing1, missing2}, ue.IDs)

		assert.Equal(t, root, *repo.parentOf(existing))
		assert.Nil(t, repo.parentOf(free))
	})

	t.Run("ancestor as child is a cycle", func(t *testing.T) {
		repo := newFakeRepo()
		root, mid, _ := chain(repo)
		svc := newTestService(repo)

		_, err := svc.SetSubcategories(ctx, mid, category.SetSubcategoriesReq{
			SubcategoryIDs: []uuid.UUID{root},
		})
		assert.ErrorIs(t, err, category.ErrCycle)
		assert.Nil(t, repo.parentOf(root))
	})

	t.Run("self as child is a cycle", func(t *testing.T) {
		repo := newFakeRepo()
		root := repo.add("Books", nil)
		svc := newTestService(repo)

		_, err := svc.SetSubcategories(ctx, root, category.SetSubcategoriesReq{
			SubcategoryIDs: []uuid.UUID{root},
		})
		assert.ErrorIs(t, err, hierarchy.ErrCycle)
	})

	t.Run("empty list needs allow_empty", func(t *testing.T) {
		repo := newFakeRepo()
		root := repo.add("Books", nil)
		child := repo.add("Fiction", ptr(root))
		svc := newTestService(repo)

		_, err := svc.SetSubcategories(ctx, root, category.SetSubcategoriesReq{})
		assert.ErrorIs(t, err, category.ErrEmptyChildren)
		assert.Equal(t, root, *repo.parentOf(child))

		resp, err := svc.SetSubcategories(ctx, root, category.SetSubcategoriesReq{AllowEmpty: true})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{child}, resp.Removed)
		assert.Nil(t, repo.parentOf(child))
	})

	t.Run("unknown parent", func(t *testing.T) {
		svc := newTestService(newFakeRepo())

		_, err := svc.SetSubcategories(ctx, uuid.New(), category.SetSubcategoriesReq{AllowEmpty: true})
		assert.ErrorIs(t, err, category.ErrCategoryNotFound)
	})
}

func TestActivation(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivate cascades", func(t *testing.T) {
		repo := newFakeRepo()
		root, mid, leaf := chain(repo)
		other := repo.add("Music", nil)
		svc := newTestService(repo)

		resp, err := svc.Deactivate(ctx, mid)
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Affected)
		assert.True(t, repo.cats[root].IsActive)
		assert.False(t, repo.cats[mid].IsActive)
		assert.False(t, repo.cats[leaf].IsActive)
		assert.True(t, repo.cats[other].IsActive)
	})

	t.Run("activate under inactive parent", func(t *testing.T) {
		repo := newFakeRepo()
		root, mid, _ := chain(repo)
		svc := newTestService(repo)

		_, err := svc.Deactivate(ctx, root)
		require.NoError(t, err)

		_, err = svc.Activate(ctx, mid)
		assert.ErrorIs(t, err, category.ErrParentInactive)

		_, err = svc.Activate(ctx, root)
		require.NoError(t, err)
		_, err = svc.Activate(ctx, mid)
		assert.NoError(t, err)
	})

	t.Run("bulk activate skips ids under inactive parents", func(t *testing.T) {
		repo := newFakeRepo()
		root, mid, leaf := chain(repo)
		svc := newTestService(repo)

		_, err := svc.Deactivate(ctx, root)
		require.NoError(t, err)

		resp, err := svc.BulkActivate(ctx, category.BulkCategoryIDsReq{CategoryIDs: []uuid.UUID{mid, leaf}})
		require.NoError(t, err)
		assert.Equal(t, int64(0), resp.Affected)
		assert.ElementsMatch(t, []uuid.UUID{mid, leaf}, resp.Skipped)
		assert.False(t, repo.cats[mid].IsActive)
		assert.False(t, repo.cats[leaf].IsActive)
	})

	t.Run("bulk activate accepts parents in the same batch", func(t *testing.T) {
		repo := newFakeRepo()
		root, mid, leaf := chain(repo)
		svc := newTestService(repo)

		_, err := svc.Deactivate(ctx, root)
		require.NoError(t, err)

		ghost := uuid.New()
		resp, err := svc.BulkActivate(ctx, category.BulkCategoryIDsReq{CategoryIDs: []uuid.UUID{leaf, root, mid, ghost}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Affected)
		assert.Equal(t, []uuid.UUID{ghost}, resp.Skipped)
		assert.True(t, repo.cats[root].IsActive)
		assert.True(t, repo.cats[mid].IsActive)
		assert.True(t, repo.cats[leaf].IsActive)
	})

	t.Run("create under inactive parent", func(t *testing.T) {
		repo := newFakeRepo()
		other := repo.add("Music", nil)
		svc := newTestService(repo)

		_, err := svc.Deactivate(ctx, other)
		require.NoError(t, err)

		_, err = svc.Create(ctx, category.CreateCategoryReq{Name: "Jazz", ParentID: ptr(other)})
		assert.ErrorIs(t, err, category.ErrParentInactive)
		assert.Len(t, repo.cats, 1)
	})

	t.Run("move active category under inactive parent", func(t *testing.T) {
		repo := newFakeRepo()
		_, mid, leaf := chain(repo)
		other := repo.add("Music", nil)
		svc := newTestService(repo)

		_, err := svc.Deactivate(ctx, other)
		require.NoError(t, err)

		_, err = svc.MoveToParent(ctx, leaf, category.MoveToParentReq{ParentID: ptr(other)})
		assert.ErrorIs(t, err, category.ErrParentInactive)
		assert.Equal(t, mid, *repo.parentOf(leaf))
		assert.True(t, repo.cats[leaf].IsActive)

		_, err = svc.Deactivate(ctx, leaf)
		require.NoError(t, err)
		_, err = svc.MoveToParent(ctx, leaf, category.MoveToParentReq{ParentID: ptr(other)})
		require.NoError(t, err)
		assert.Equal(t, other, *repo.parentOf(leaf))
	})

	t.Run("bulk move under inactive parent", func(t *testing.T) {
		repo := newFakeRepo()
		_, mid, leaf := chain(repo)
		other := repo.add("Music", nil)
		svc := newTestService(repo)

		_, err := svc.Deactivate(ctx, other)
		require.NoError(t, err)

		_, err = svc.BulkMove(ctx, category.BulkMoveReq{Moves: []category.MoveItem{
			{CategoryID: leaf, ParentID: ptr(other)},
		}})
		assert.ErrorIs(t, err, category.ErrParentInactive)
		assert.Equal(t, mid, *repo.parentOf(leaf))
	})

	t.Run("set subcategories under inactive parent", func(t *testing.T) {
		repo := newFakeRepo()
		_, mid, leaf := chain(repo)
		other := repo.add("Music", nil)
		svc := newTestService(repo)

		_, err := svc.Deactivate(ctx, other)
		require.NoError(t, err)

		_, err = svc.SetSubcategories(ctx, other, category.SetSubcategoriesReq{SubcategoryIDs: []uuid.UUID{leaf}})
		assert.ErrorIs(t, err, category.ErrParentInactive)
		assert.Equal(t, mid, *repo.parentOf(leaf))
	})

	t.Run("bulk deactivate merges subtrees", func(t *testing.T) {
		repo := newFakeRepo()
		root, mid, _ := chain(repo)
		svc := newTestService(repo)

		resp, err := svc.BulkDeactivate(ctx, category.BulkCategoryIDsReq{CategoryIDs: []uuid.UUID{root, mid, uuid.New()}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Affected)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	root, mid, leaf := chain(repo)
	repo.products[leaf] = 2
	svc := newTestService(repo)

	assert.ErrorIs(t, svc.Delete(ctx, mid), category.ErrHasChildren)
	assert.ErrorIs(t, svc.Delete(ctx, leaf), category.ErrHasProducts)

	lone := repo.add("Music", nil)
	require.NoError(t, svc.Delete(ctx, lone))
	assert.NotContains(t, repo.cats, lone)

	resp, err := svc.BulkDelete(ctx, category.BulkCategoryIDsReq{CategoryIDs: []uuid.UUID{root, mid, leaf}})
	require.NoError(t, err)
	assert.Zero(t, resp.Affected)
}

func TestGetTree_CachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	root, _, _ := chain(repo)
	svc := newTestService(repo)

	first, err := svc.GetTree(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	_, err = svc.GetTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.treeCalls)

	_, err = svc.Create(ctx, category.CreateCategoryReq{Name: "Poetry", ParentID: ptr(root)})
	require.NoError(t, err)

	after, err := svc.GetTree(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 4)
	assert.Equal(t, 2, repo.treeCalls)
}

func TestRefreshTree_IgnoresCachedCopy(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	root, _, _ := chain(repo)
	svc := newTestService(repo)

	_, err := svc.GetTree(ctx)
	require.NoError(t, err)

	// Written behind the service's back, so nothing invalidates the cache.
	repo.add("Poetry", ptr(root))

	stale, err := svc.GetTree(ctx)
	require.NoError(t, err)
	assert.Len(t, stale, 3)

	fresh, err := svc.RefreshTree(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 4)
	assert.Equal(t, 2, repo.treeCalls)

	after, err := svc.GetTree(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 4)
	assert.Equal(t, 2, repo.treeCalls)
}

func TestReads(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	root, mid, leaf := chain(repo)
	svc := newTestService(repo)

	crumb, err := svc.GetBreadcrumb(ctx, leaf)
	require.NoError(t, err)
	require.Len(t, crumb.Items, 3)
	assert.Equal(t, root, crumb.Items[0].ID)
	assert.Equal(t, leaf, crumb.Items[2].ID)
	assert.Equal(t, 3, crumb.Items[2].Level)

	_, err = svc.GetBreadcrumb(ctx, uuid.New())
	assert.ErrorIs(t, err, category.ErrCategoryNotFound)

	subs, err := svc.GetSubcategories(ctx, root)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, mid, subs[0].ID)

	bySlug, err := svc.GetBySlug(ctx, "crime")
	require.NoError(t, err)
	assert.Equal(t, leaf, bySlug.ID)

	list, err := svc.GetAll(ctx, &category.CategoryFilter{RootOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 20, list.Limit)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	root := repo.add("Books", nil)
	repo.add("Music", nil)
	svc := newTestService(repo)

	name := "Music"
	_, err := svc.Update(ctx, root, category.UpdateCategoryReq{Name: &name})
	assert.ErrorIs(t, err, category.ErrDuplicateSlug)

	name = "Printed Books"
	resp, err := svc.Update(ctx, root, category.UpdateCategoryReq{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "printed-books", resp.Slug)

	empty := ""
	_, err = svc.Update(ctx, root, category.UpdateCategoryReq{Name: &empty})
	assert.Equal(t, http.StatusBadRequest, category.GetHTTPStatusCode(err))
}

func TestOnTreeChanged(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	root, _, leaf := chain(repo)

	changes := 0
	svc := NewCategoryService(repo, infraCache.NewMemoryCache(), Options{
		MaxDepth:      3,
		OnTreeChanged: func(context.Context) { changes++ },
	})

	_, err := svc.MoveToParent(ctx, root, category.MoveToParentReq{ParentID: ptr(leaf)})
	require.Error(t, err)
	assert.Zero(t, changes, "rejected writes do not fire the hook")

	_, err = svc.Create(ctx, category.CreateCategoryReq{Name: "Poetry", ParentID: ptr(root)})
	require.NoError(t, err)
	assert.Equal(t, 1, changes)
}
