package hierarchy

import (
	"context"

	"github.com/google/uuid"
)

// Snapshot is an in-memory Lookup built from a batch of edges, typically a
// whole subtree read in one query. It never fails and is not safe for
// concurrent mutation.
type Snapshot struct {
	parent   map[uuid.UUID]uuid.UUID
	children map[uuid.UUID][]uuid.UUID
}

// NewSnapshot indexes edges. Duplicate edges are collapsed; when the same
// child appears with different parents the last edge wins.
func NewSnapshot(edges []Edge) *Snapshot {
	s := &Snapshot{
		parent:   make(map[uuid.UUID]uuid.UUID, len(edges)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, e := range edges {
		s.Set(e.Child, e.Parent)
	}
	return s
}

func (s *Snapshot) ChildrenOf(_ context.Context, node uuid.UUID) ([]uuid.UUID, error) {
	return s.children[node], nil
}

func (s *Snapshot) Exists(_ context.Context, node uuid.UUID) (bool, error) {
	_, ok := s.parent[node]
	return ok, nil
}

// Parent returns node's parent. ok is false when node is unknown; a known
// root returns uuid.Nil and true.
func (s *Snapshot) Parent(node uuid.UUID) (parent uuid.UUID, ok bool) {
	parent, ok = s.parent[node]
	return parent, ok
}

// Roots returns every known node without a parent.
func (s *Snapshot) Roots() []uuid.UUID {
	roots := NewIDSet()
	for child, parent := range s.parent {
		if parent == uuid.Nil {
			roots.Add(child)
		}
	}
	return roots.Sorted()
}

// Set records (or replaces) child's parent. BulkMove uses it to apply each
// accepted move to a working copy before checking the next one.
func (s *Snapshot) Set(child, parent uuid.UUID) {
	if old, ok := s.parent[child]; ok {
		if old == parent {
			return
		}
		s.detach(child, old)
	}
	s.parent[child] = parent
	if parent != uuid.Nil {
		s.children[parent] = append(s.children[parent], child)
	}
}

// Nodes returns every known node in byte order.
func (s *Snapshot) Nodes() []uuid.UUID {
	nodes := make(IDSet, len(s.parent))
	for id := range s.parent {
		nodes.Add(id)
	}
	return nodes.Sorted()
}

// Len returns the number of known nodes.
func (s *Snapshot) Len() int {
	return len(s.parent)
}

func (s *Snapshot) detach(child, parent uuid.UUID) {
	siblings := s.children[parent]
	for i, id := range siblings {
		if id == child {
			s.children[parent] = append(siblings[:i:i], siblings[i+1:]...)
			return
		}
	}
}
