package hierarchy

import (
	"context"

	"github.com/google/uuid"
)

// WouldCreateCycle reports whether attaching child under parent would make
// child an ancestor of itself.
//
// The walk goes downward from child: the move is unsafe only when parent is
// already somewhere in child's subtree. A zero child is a node that has no
// identity yet and therefore no descendants; a zero parent means "attach to
// root" and can never close a loop.
//
// The traversal uses an explicit stack and a visited set, so a store that is
// already corrupted (contains a loop) still terminates, and ChildrenOf is
// called at most once per visited node.
func WouldCreateCycle(ctx context.Context, child, parent uuid.UUID, lookup Lookup) (bool, error) {
	if child == parent {
		return true, nil
	}
	if child == uuid.Nil || parent == uuid.Nil {
		return false, nil
	}

	visited := map[uuid.UUID]struct{}{child: {}}
	stack := []uuid.UUID{child}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := lookup.ChildrenOf(ctx, current)
		if err != nil {
			return false, err
		}

		for _, next := range children {
			if next == parent {
				return true, nil
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			stack = append(stack, next)
		}
	}

	return false, nil
}

// CheckEdge is WouldCreateCycle folded into an error: it returns a
// *CycleError naming both nodes when the edge is rejected, the lookup's own
// error if a read failed, and nil otherwise.
func CheckEdge(ctx context.Context, child, parent uuid.UUID, lookup Lookup) error {
	cyclic, err := WouldCreateCycle(ctx, child, parent, lookup)
	if err != nil {
		return err
	}
	if cyclic {
		return &CycleError{Child: child, Parent: parent}
	}
	return nil
}

// SubtreeHeight returns the number of levels below root: 0 for a leaf, 1 when
// root only has direct children, and so on. Like WouldCreateCycle it is
// iterative and never expands a node twice.
func SubtreeHeight(ctx context.Context, root uuid.UUID, lookup Lookup) (int, error) {
	type frame struct {
		node  uuid.UUID
		depth int
	}

	height := 0
	visited := map[uuid.UUID]struct{}{root: {}}
	stack := []frame{{node: root}}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current.depth > height {
			height = current.depth
		}

		children, err := lookup.ChildrenOf(ctx, current.node)
		if err != nil {
			return 0, err
		}
		for _, next := range children {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			stack = append(stack, frame{node: next, depth: current.depth + 1})
		}
	}

	return height, nil
}
