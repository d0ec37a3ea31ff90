package hierarchy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	n := ids(4)
	a, b, c, d := n[0], n[1], n[2], n[3]

	snap := NewSnapshot([]Edge{
		{Child: a}, {Child: b, Parent: a}, {Child: c, Parent: a},
		{Child: c, Parent: a}, {Child: d},
	})

	children, err := snap.ChildrenOf(ctx, a)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{b, c}, children)

	ok, err := snap.Exists(ctx, c)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = snap.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	parent, known := snap.Parent(b)
	assert.True(t, known)
	assert.Equal(t, a, parent)

	assert.ElementsMatch(t, []uuid.UUID{a, d}, snap.Roots())
	assert.Equal(t, 4, snap.Len())
}

func TestSnapshot_SetMovesChild(t *testing.T) {
	ctx := context.Background()
	n := ids(3)
	a, b, c := n[0], n[1], n[2]
	snap := NewSnapshot([]Edge{{Child: a}, {Child: b}, {Child: c, Parent: a}})

	snap.Set(c, b)

	fromA, _ := snap.ChildrenOf(ctx, a)
	fromB, _ := snap.ChildrenOf(ctx, b)
	assert.Empty(t, fromA)
	assert.Equal(t, []uuid.UUID{c}, fromB)

	snap.Set(c, uuid.Nil)
	fromB, _ = snap.ChildrenOf(ctx, b)
	assert.Empty(t, fromB)
	assert.ElementsMatch(t, []uuid.UUID{a, b, c}, snap.Roots())
}

func TestSnapshot_BulkMoveStopsAtFirstCycle(t *testing.T) {
	ctx := context.Background()
	n := ids(3)
	a, b, c := n[0], n[1], n[2]
	snap := NewSnapshot([]Edge{{Child: a}, {Child: b}, {Child: c}})

	// a under b is fine on its own, then b under a closes the loop.
	moves := []Edge{{Child: a, Parent: b}, {Child: b, Parent: a}, {Child: c, Parent: a}}

	var failed error
	for _, m := range moves {
		if err := CheckEdge(ctx, m.Child, m.Parent, snap); err != nil {
			failed = err
			break
		}
		snap.Set(m.Child, m.Parent)
	}

	ce, ok := AsCycle(failed)
	require.True(t, ok)
	assert.Equal(t, b, ce.Child)
	assert.Equal(t, a, ce.Parent)
}
