package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"catalog-backend/internal/domains/category"
	"catalog-backend/internal/domains/hierarchy"
)

var errRepoDown = errors.New("repository unavailable")

// fakeRepo keeps categories in memory. InTreeTx works on a copy and only
// commits it when fn succeeds, so partial writes are observable as bugs.
type fakeRepo struct {
	mu         sync.Mutex
	cats       map[uuid.UUID]category.Category
	products   map[uuid.UUID]int64
	treeCalls  int
	txCount    int
	failForest bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		cats:     make(map[uuid.UUID]category.Category),
		products: make(map[uuid.UUID]int64),
	}
}

// add stores a category directly and returns its id.
func (r *fakeRepo) add(name string, parent *uuid.UUID) uuid.UUID {
	c := category.NewCategory(name, parent, "", "", 0)
	r.cats[c.ID] = *c
	return c.ID
}

func (r *fakeRepo) parentOf(id uuid.UUID) *uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cats[id].ParentID
}

func (r *fakeRepo) decorate(c category.Category) category.Category {
	level := 1
	for p := c.ParentID; p != nil && level <= len(r.cats); p = r.cats[*p].ParentID {
		level++
	}
	children := 0
	for _, other := range r.cats {
		if other.ParentID != nil && *other.ParentID == c.ID {
			children++
		}
	}
	products := r.products[c.ID]
	c.Level = &level
	c.ChildCount = &children
	c.ProductsCount = &products
	return c
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cats[id]
	if !ok {
		return nil, category.NewNotFound(id)
	}
	d := r.decorate(c)
	return &d, nil
}

func (r *fakeRepo) GetBySlug(_ context.Context, slug string) (*category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cats {
		if c.Slug == slug {
			d := r.decorate(c)
			return &d, nil
		}
	}
	return nil, category.ErrCategoryNotFound
}

func (r *fakeRepo) GetAll(_ context.Context, filter *category.CategoryFilter) ([]category.Category, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []category.Category
	for _, c := range r.cats {
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		if filter.RootOnly && c.ParentID != nil {
			continue
		}
		out = append(out, r.decorate(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	if filter.Offset >= len(out) {
		return []category.Category{}, total, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *fakeRepo) GetTree(_ context.Context) ([]category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.treeCalls++
	var out []category.Category
	for _, c := range r.cats {
		if c.IsActive {
			out = append(out, r.decorate(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepo) GetChildren(_ context.Context, parentID uuid.UUID) ([]category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []category.Category
	for _, c := range r.cats {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, r.decorate(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepo) GetAncestors(_ context.Context, id uuid.UUID) ([]category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var chain []category.Category
	for cur, ok := r.cats[id]; ok; {
		chain = append([]category.Category{r.decorate(cur)}, chain...)
		if cur.ParentID == nil {
			break
		}
		cur, ok = r.cats[*cur.ParentID]
	}
	return chain, nil
}

func (r *fakeRepo) ExistsBySlug(_ context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cats {
		if c.Slug == slug && (excludeID == nil || c.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CountProducts(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id], nil
}

func (r *fakeRepo) Update(_ context.Context, c *category.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cats[c.ID]; !ok {
		return category.NewNotFound(c.ID)
	}
	r.cats[c.ID] = *c
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cats[id]; !ok {
		return category.NewNotFound(id)
	}
	delete(r.cats, id)
	return nil
}

func (r *fakeRepo) DeleteMany(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.cats[id]; !ok || r.products[id] > 0 {
			continue
		}
		hasChildren := false
		for _, c := range r.cats {
			if c.ParentID != nil && *c.ParentID == id {
				hasChildren = true
				break
			}
		}
		if !hasChildren {
			delete(r.cats, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) SetActive(_ context.Context, ids []uuid.UUID, active bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return setActive(r.cats, ids, active), nil
}

func (r *fakeRepo) InTreeTx(ctx context.Context, fn func(tx category.TreeTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txCount++

	staged := make(map[uuid.UUID]category.Category, len(r.cats))
	for id, c := range r.cats {
		staged[id] = c
	}
	if err := fn(&fakeTx{cats: staged, failForest: r.failForest}); err != nil {
		return err
	}
	r.cats = staged
	return nil
}

type fakeTx struct {
	cats       map[uuid.UUID]category.Category
	failForest bool
}

func (t *fakeTx) Forest(context.Context) (*hierarchy.Snapshot, error) {
	if t.failForest {
		return nil, errRepoDown
	}
	edges := make([]hierarchy.Edge, 0, len(t.cats))
	for id, c := range t.cats {
		e := hierarchy.Edge{Child: id}
		if c.ParentID != nil {
			e.Parent = *c.ParentID
		}
		edges = append(edges, e)
	}
	return hierarchy.NewSnapshot(edges), nil
}

func (t *fakeTx) InactiveIDs(context.Context) (hierarchy.IDSet, error) {
	ids := hierarchy.NewIDSet()
	for id, c := range t.cats {
		if !c.IsActive {
			ids.Add(id)
		}
	}
	return ids, nil
}

func (t *fakeTx) Create(_ context.Context, c *category.Category) error {
	t.cats[c.ID] = *c
	return nil
}

func (t *fakeTx) SetParent(_ context.Context, ids []uuid.UUID, parent *uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		c, ok := t.cats[id]
		if !ok {
			continue
		}
		if parent != nil {
			p := *parent
			c.ParentID = &p
		} else {
			c.ParentID = nil
		}
		t.cats[id] = c
		n++
	}
	return n, nil
}

func (t *fakeTx) SetActive(_ context.Context, ids []uuid.UUID, active bool) (int64, error) {
	return setActive(t.cats, ids, active), nil
}

func setActive(cats map[uuid.UUID]category.Category, ids []uuid.UUID, active bool) int64 {
	var n int64
	for _, id := range ids {
		c, ok := cats[id]
		if !ok || c.IsActive == active {
			continue
		}
		c.IsActive = active
		cats[id] = c
		n++
	}
	return n
}
