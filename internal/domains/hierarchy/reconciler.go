package hierarchy

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Resolver reports which of the given ids denote real entities.
// Implementations should answer with a single batched read where possible.
type Resolver interface {
	Resolve(ctx context.Context, ids []uuid.UUID) (IDSet, error)
}

// ResolverFunc adapts a batch lookup function to Resolver.
type ResolverFunc func(ctx context.Context, ids []uuid.UUID) (IDSet, error)

func (f ResolverFunc) Resolve(ctx context.Context, ids []uuid.UUID) (IDSet, error) {
	return f(ctx, ids)
}

// DefaultExistsConcurrency bounds the parallel checks an ExistsFunc runs.
const DefaultExistsConcurrency = 8

// ExistsFunc adapts a per-id existence predicate (for example Lookup.Exists)
// to Resolver. Checks run concurrently, at most DefaultExistsConcurrency at
// a time; use WithLimit to change the bound.
type ExistsFunc func(ctx context.Context, id uuid.UUID) (bool, error)

func (f ExistsFunc) Resolve(ctx context.Context, ids []uuid.UUID) (IDSet, error) {
	return f.WithLimit(DefaultExistsConcurrency).Resolve(ctx, ids)
}

// WithLimit returns a Resolver running at most limit checks at once.
// A limit below 1 means sequential.
func (f ExistsFunc) WithLimit(limit int) Resolver {
	if limit < 1 {
		limit = 1
	}
	return ResolverFunc(func(ctx context.Context, ids []uuid.UUID) (IDSet, error) {
		var mu sync.Mutex
		found := make(IDSet, len(ids))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for _, id := range ids {
			g.Go(func() error {
				ok, err := f(gctx, id)
				if err != nil {
					return err
				}
				if ok {
					mu.Lock()
					found.Add(id)
					mu.Unlock()
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return found, nil
	})
}

// Result is the outcome of Reconcile. When Invalid is non-empty, ToAdd and
// ToRemove are both empty and the caller must not mutate anything.
type Result struct {
	ToAdd    IDSet
	ToRemove IDSet
	Invalid  IDSet
}

// Err returns the UnresolvedIdentifiers outcome, or nil when every desired
// id resolved.
func (r Result) Err() error {
	if r.Invalid.Len() == 0 {
		return nil
	}
	return &UnresolvedIdentifiersError{IDs: r.Invalid.Sorted()}
}

// IsNoop reports whether applying the result would change nothing.
func (r Result) IsNoop() bool {
	return r.ToAdd.Len() == 0 && r.ToRemove.Len() == 0 && r.Invalid.Len() == 0
}

// Reconcile computes the edits that turn current into desired.
//
// Every desired id is resolved first; if any does not exist the result
// carries only Invalid. Otherwise ToAdd = desired - current and
// ToRemove = current - desired, so ids present in both are left alone and
// calling Reconcile again after applying the result yields a no-op. An empty
// desired set means "unlink everything".
//
// The returned error is non-nil only when the resolver itself failed.
func Reconcile(ctx context.Context, current, desired IDSet, resolver Resolver) (Result, error) {
	empty := Result{ToAdd: IDSet{}, ToRemove: IDSet{}, Invalid: IDSet{}}

	if desired.Len() > 0 {
		found, err := resolver.Resolve(ctx, desired.Slice())
		if err != nil {
			return empty, err
		}
		if invalid := desired.Minus(found); invalid.Len() > 0 {
			empty.Invalid = invalid
			return empty, nil
		}
	}

	return Result{
		ToAdd:    desired.Minus(current),
		ToRemove: current.Minus(desired),
		Invalid:  IDSet{},
	}, nil
}
