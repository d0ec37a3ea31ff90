package hierarchy

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// fakeLookup is a map-backed Lookup that counts reads.
type fakeLookup struct {
	mu            sync.Mutex
	children      map[uuid.UUID][]uuid.UUID
	nodes         IDSet
	childrenCalls map[uuid.UUID]int
	existsCalls   int
	failOn        uuid.UUID
}

var errStoreDown = errors.New("store unavailable")

func newFakeLookup(edges ...Edge) *fakeLookup {
	f := &fakeLookup{
		children:      make(map[uuid.UUID][]uuid.UUID),
		nodes:         NewIDSet(),
		childrenCalls: make(map[uuid.UUID]int),
	}
	for _, e := range edges {
		f.nodes.Add(e.Child)
		if e.Parent != uuid.Nil {
			f.nodes.Add(e.Parent)
			f.children[e.Parent] = append(f.children[e.Parent], e.Child)
		}
	}
	return f
}

func (f *fakeLookup) ChildrenOf(_ context.Context, node uuid.UUID) ([]uuid.UUID, error) {
	f.childrenCalls[node]++
	if f.failOn != uuid.Nil && node == f.failOn {
		return nil, errStoreDown
	}
	return f.children[node], nil
}

func (f *fakeLookup) Exists(_ context.Context, node uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	return f.nodes.Has(node), nil
}

func (f *fakeLookup) totalChildrenCalls() int {
	total := 0
	for _, n := range f.childrenCalls {
		total += n
	}
	return total
}

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}
