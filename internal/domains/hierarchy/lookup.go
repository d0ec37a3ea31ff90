// Package hierarchy keeps parent/child hierarchies acyclic and computes the
// minimal add/remove delta when the set of entities linked to an owner is
// replaced.
//
// Nothing here owns storage. Every read goes through a Lookup or Resolver
// supplied by the caller, and every outcome is returned as a value: the
// package never logs, wraps or retries. Callers are responsible for running
// "read snapshot, check, persist" inside one transaction; two checks that
// pass independently can still form a cycle once both commit.
package hierarchy

import (
	"context"

	"github.com/google/uuid"
)

// Lookup is the read-only view of a hierarchy store.
//
// ChildrenOf returns direct children only; the transitive walk is done by
// WouldCreateCycle. Implementations may batch or cache reads, and any
// cancellation or timeout belongs to them.
type Lookup interface {
	ChildrenOf(ctx context.Context, node uuid.UUID) ([]uuid.UUID, error)
	Exists(ctx context.Context, node uuid.UUID) (bool, error)
}

// Edge is one child -> parent link. A zero Parent marks a root.
type Edge struct {
	Child  uuid.UUID
	Parent uuid.UUID
}

// IsRoot reports whether the edge attaches Child at the top level.
func (e Edge) IsRoot() bool {
	return e.Parent == uuid.Nil
}
