package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sentinels for errors.Is checks on the typed outcomes below.
var (
	ErrCycle      = errors.New("hierarchy cycle detected")
	ErrUnresolved = errors.New("unresolved identifiers")
)

// CycleError is the CycleDetected outcome: attaching Child under Parent would
// make Child its own ancestor.
type CycleError struct {
	Child  uuid.UUID
	Parent uuid.UUID
}

func (e *CycleError) Error() string {
	if e.Child == e.Parent {
		return fmt.Sprintf("node %s cannot be its own parent", e.Child)
	}
	return fmt.Sprintf("cannot attach node %s under %s: %s is already a descendant of %s",
		e.Child, e.Parent, e.Parent, e.Child)
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// UnresolvedIdentifiersError is the UnresolvedIdentifiers outcome. IDs holds
// every desired identifier that did not resolve, in sorted order.
type UnresolvedIdentifiersError struct {
	IDs []uuid.UUID
}

func (e *UnresolvedIdentifiersError) Error() string {
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = id.String()
	}
	return fmt.Sprintf("%d identifier(s) do not exist: %s", len(e.IDs), strings.Join(parts, ", "))
}

func (e *UnresolvedIdentifiersError) Is(target error) bool {
	return target == ErrUnresolved
}

// AsCycle unwraps err into a *CycleError if it carries one.
func AsCycle(err error) (*CycleError, bool) {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AsUnresolved unwraps err into an *UnresolvedIdentifiersError if it carries one.
func AsUnresolved(err error) (*UnresolvedIdentifiersError, bool) {
	var ue *UnresolvedIdentifiersError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
