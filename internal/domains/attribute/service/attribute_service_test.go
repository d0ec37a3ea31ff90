package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-backend/internal/domains/attribute"
	"catalog-backend/internal/domains/hierarchy"
)

type memRepo struct {
	attrs        map[uuid.UUID]attribute.Attribute
	options      map[uuid.UUID]attribute.Option
	links        map[uuid.UUID]hierarchy.IDSet
	resolveCalls int
	resolveErr   error
}

func newMemRepo() *memRepo {
	return &memRepo{
		attrs:   map[uuid.UUID]attribute.Attribute{},
		options: map[uuid.UUID]attribute.Option{},
		links:   map[uuid.UUID]hierarchy.IDSet{},
	}
}

func (m *memRepo) CreateAttribute(_ context.Context, a *attribute.Attribute) error {
	m.attrs[a.ID] = *a
	return nil
}

func (m *memRepo) GetAttribute(_ context.Context, id uuid.UUID) (*attribute.Attribute, error) {
	a, ok := m.attrs[id]
	if !ok {
		return nil, attribute.NewAttributeNotFound(id)
	}
	a.Options = nil
	for _, oid := range m.links[id].Sorted() {
		a.Options = append(a.Options, m.options[oid])
	}
	return &a, nil
}

func (m *memRepo) ListAttributes(_ context.Context, limit, offset int) ([]attribute.Attribute, int64, error) {
	var out []attribute.Attribute
	for _, a := range m.attrs {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (m *memRepo) AttributeSlugExists(_ context.Context, slug string) (bool, error) {
	for _, a := range m.attrs {
		if a.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) CreateOption(_ context.Context, o *attribute.Option) error {
	m.options[o.ID] = *o
	return nil
}

func (m *memRepo) ListOptions(_ context.Context, _ string, _, _ int) ([]attribute.Option, int64, error) {
	var out []attribute.Option
	for _, o := range m.options {
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (m *memRepo) ExistingOptionIDs(_ context.Context, ids []uuid.UUID) (hierarchy.IDSet, error) {
	m.resolveCalls++
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	found := hierarchy.NewIDSet()
	for _, id := range ids {
		if _, ok := m.options[id]; ok {
			found.Add(id)
		}
	}
	return found, nil
}

func (m *memRepo) ReconcileOptionLinks(ctx context.Context, id uuid.UUID, plan attribute.LinkPlanner) error {
	if _, ok := m.attrs[id]; !ok {
		return attribute.NewAttributeNotFound(id)
	}
	current := m.links[id]
	if current == nil {
		current = hierarchy.NewIDSet()
	}
	result, err := plan(ctx, current.Union(hierarchy.NewIDSet()))
	if err != nil {
		return err
	}
	m.links[id] = current.Minus(result.ToRemove).Union(result.ToAdd)
	return nil
}

func seed(t *testing.T, svc attribute.Service, inputType attribute.InputType, values ...string) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	a, err := svc.CreateAttribute(ctx, attribute.CreateAttributeReq{Name: "Color " + string(inputType), InputType: inputType})
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(values))
	for i, v := range values {
		o, err := svc.CreateOption(ctx, attribute.CreateOptionReq{Value: v, SortOrder: i})
		require.NoError(t, err)
		ids[i] = o.ID
	}
	return a.ID, ids
}

func TestSetAttributeOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("links replace and repeat is a no-op", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewAttributeService(repo)
		attrID, opts := seed(t, svc, attribute.InputSelect, "red", "green", "blue")

		resp, err := svc.SetAttributeOptions(ctx, attrID, attribute.SetOptionsReq{OptionIDs: opts[:2]})
		require.NoError(t, err)
		assert.ElementsMatch(t, opts[:2], resp.Added)
		assert.Empty(t, resp.Removed)
		assert.Len(t, resp.Attribute.Options, 2)
		assert.Equal(t, 1, repo.resolveCalls, "existence is checked in one batch")

		resp, err = svc.SetAttributeOptions(ctx, attrID, attribute.SetOptionsReq{OptionIDs: opts[1:]})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{opts[2]}, resp.Added)
		assert.Equal(t, []uuid.UUID{opts[0]}, resp.Removed)

		resp, err = svc.SetAttributeOptions(ctx, attrID, attribute.SetOptionsReq{OptionIDs: opts[1:]})
		require.NoError(t, err)
		assert.Empty(t, resp.Added)
		assert.Empty(t, resp.Removed)
	})

	t.Run("unknown options change nothing", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewAttributeService(repo)
		attrID, opts := seed(t, svc, attribute.InputMultiselect, "s", "m")
		_, err := svc.SetAttributeOptions(ctx, attrID, attribute.SetOptionsReq{OptionIDs: opts[:1]})
		require.NoError(t, err)

		ghost1, ghost2 := uuid.New(), uuid.New()
		_, err = svc.SetAttributeOptions(ctx, attrID, attribute.SetOptionsReq{
			OptionIDs: []uuid.UUID{opts[1], ghost1, ghost2},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, attribute.ErrUnresolvedOptions)
		assert.Equal(t, http.StatusNotFound, attribute.GetHTTPStatusCode(err))

		ue, ok := hierarchy.AsUnresolved(err)
		require.True(t, ok)
		assert.ElementsMatch(t, []uuid.UUID{ghost1, ghost2}, ue.IDs)
		assert.True(t, repo.links[attrID].Equal(hierarchy.NewIDSet(opts[0])))
	})

	t.Run("empty list unlinks everything without resolving", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewAttributeService(repo)
		attrID, opts := seed(t, svc, attribute.InputSelect, "a", "b")
		_, err := svc.SetAttributeOptions(ctx, attrID, attribute.SetOptionsReq{OptionIDs: opts})
		require.NoError(t, err)
		calls := repo.resolveCalls

		resp, err := svc.SetAttributeOptions(ctx, attrID, attribute.SetOptionsReq{})
		require.NoError(t, err)
		assert.ElementsMatch(t, opts, resp.Removed)
		assert.Equal(t, 0, repo.links[attrID].Len())
		assert.Equal(t, calls, repo.resolveCalls)
	})

	t.Run("text attributes take no options", func(t *testing.T) {
		svc := NewAttributeService(newMemRepo())
		attrID, opts := seed(t, svc, attribute.InputText, "x")

		_, err := svc.SetAttributeOptions(ctx, attrID, attribute.SetOptionsReq{OptionIDs: opts})
		assert.ErrorIs(t, err, attribute.ErrOptionsDisabled)
	})

	t.Run("resolver failure is internal", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewAttributeService(repo)
		attrID, opts := seed(t, svc, attribute.InputSelect, "a")
		repo.resolveErr = errors.New("db down")

		_, err := svc.SetAttributeOptions(ctx, attrID, attribute.SetOptionsReq{OptionIDs: opts})
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, attribute.GetHTTPStatusCode(err))
		assert.Equal(t, 0, repo.links[attrID].Len())
	})

	t.Run("unknown attribute", func(t *testing.T) {
		svc := NewAttributeService(newMemRepo())

		_, err := svc.SetAttributeOptions(ctx, uuid.New(), attribute.SetOptionsReq{})
		assert.ErrorIs(t, err, attribute.ErrAttributeNotFound)
	})
}

func TestCreateAttribute(t *testing.T) {
	ctx := context.Background()
	svc := NewAttributeService(newMemRepo())

	a, err := svc.CreateAttribute(ctx, attribute.CreateAttributeReq{Name: "Kích Thước"})
	require.NoError(t, err)
	assert.Equal(t, "kich-thuoc", a.Slug)
	assert.Equal(t, attribute.InputSelect, a.InputType)

	_, err = svc.CreateAttribute(ctx, attribute.CreateAttributeReq{Name: "kich thuoc"})
	assert.ErrorIs(t, err, attribute.ErrDuplicateSlug)

	_, err = svc.CreateAttribute(ctx, attribute.CreateAttributeReq{Name: "Weight", InputType: "slider"})
	assert.Equal(t, http.StatusBadRequest, attribute.GetHTTPStatusCode(err))
}
